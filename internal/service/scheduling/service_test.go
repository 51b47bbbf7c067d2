package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/pkg/clock"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/logger"
)

// In-memory fakes. The appointment fake enforces the same occupied-slot
// uniqueness rule the storage constraint does, under a mutex, so races are
// decided exactly once.

type fakeClinicianRepo struct {
	clinicians map[uuid.UUID]*model.Clinician
}

func (f *fakeClinicianRepo) CreateWithUser(_ context.Context, _ *model.User, c *model.Clinician) error {
	f.clinicians[c.ID] = c
	return nil
}

func (f *fakeClinicianRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinician, error) {
	c, ok := f.clinicians[id]
	if !ok {
		return nil, apperrors.NotFound("clinician")
	}
	return c, nil
}

func (f *fakeClinicianRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Clinician, error) {
	for _, c := range f.clinicians {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("clinician")
}

func (f *fakeClinicianRepo) Update(_ context.Context, c *model.Clinician) error {
	f.clinicians[c.ID] = c
	return nil
}

func (f *fakeClinicianRepo) List(_ context.Context, specializationID *uuid.UUID) ([]*model.Clinician, error) {
	var out []*model.Clinician
	for _, c := range f.clinicians {
		if specializationID != nil && c.SpecializationID != *specializationID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) CreateWithUser(_ context.Context, _ *model.User, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}
	return p, nil
}

func (f *fakePatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	for _, p := range f.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient")
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

type fakeAvailabilityRepo struct {
	windows map[string]*model.AvailabilityWindow // clinicianID|date
}

func availKey(clinicianID uuid.UUID, date string) string {
	return clinicianID.String() + "|" + date
}

func (f *fakeAvailabilityRepo) Upsert(_ context.Context, w *model.AvailabilityWindow) error {
	// Overwrites keep the stored row's id, matching the conflict clause in
	// the real repository.
	if existing, ok := f.windows[availKey(w.ClinicianID, w.Date)]; ok {
		w.ID = existing.ID
		w.CreatedAt = existing.CreatedAt
	} else if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	f.windows[availKey(w.ClinicianID, w.Date)] = w
	return nil
}

func (f *fakeAvailabilityRepo) GetForDate(_ context.Context, clinicianID uuid.UUID, date string) (*model.AvailabilityWindow, error) {
	w, ok := f.windows[availKey(clinicianID, date)]
	if !ok {
		return nil, apperrors.NotFound("availability window")
	}
	return w, nil
}

func (f *fakeAvailabilityRepo) ListForClinician(_ context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range f.windows {
		if w.ClinicianID == clinicianID && w.Date >= fromDate && w.Date <= toDate {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) ListForClinicians(_ context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, id := range clinicianIDs {
		for _, w := range f.windows {
			if w.ClinicianID == id && w.Date >= fromDate && w.Date <= toDate {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	records      map[uuid.UUID]*model.ConsultationRecord // appointmentID keyed
	events       []*model.OutboxEvent
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		records:      make(map[uuid.UUID]*model.ConsultationRecord),
	}
}

func occupying(status model.AppointmentStatus) bool {
	for _, s := range model.OccupyingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.appointments {
		if existing.ClinicianID == a.ClinicianID && existing.Date == a.Date &&
			existing.Time == a.Time && occupying(existing.Status) {
			return apperrors.Conflict("slot is already booked")
		}
	}
	a.ID = uuid.New()
	f.appointments[a.ID] = a
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) HasConflict(_ context.Context, clinicianID uuid.UUID, date, timeOfDay string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ClinicianID == clinicianID && a.Date == date && a.Time == timeOfDay && occupying(a.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointmentRepo) ListOccupied(_ context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.appointments {
		if !occupying(a.Status) || a.Date < fromDate || a.Date > toDate {
			continue
		}
		for _, id := range clinicianIDs {
			if a.ClinicianID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment")
	}
	a.Status = status
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeAppointmentRepo) CompleteWithConsultation(_ context.Context, id uuid.UUID, record *model.ConsultationRecord, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment")
	}
	if _, exists := f.records[id]; exists {
		return apperrors.Conflict("consultation already recorded")
	}
	a.Status = model.AppointmentStatusCompleted
	record.ID = uuid.New()
	record.AppointmentID = id
	f.records[id] = record
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeAppointmentRepo) ListForClinician(_ context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.ClinicianID == clinicianID && a.Status != model.AppointmentStatusCancelled &&
			a.Date >= fromDate && a.Date <= toDate {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListForPatient(_ context.Context, patientID uuid.UUID, statuses []model.AppointmentStatus, fromDate string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.PatientID != patientID {
			continue
		}
		if fromDate != "" && a.Date < fromDate {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if a.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

type fakeConsultationRepo struct {
	appointments *fakeAppointmentRepo
}

func (f *fakeConsultationRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.ConsultationRecord, error) {
	f.appointments.mu.Lock()
	defer f.appointments.mu.Unlock()
	r, ok := f.appointments.records[appointmentID]
	if !ok {
		return nil, apperrors.NotFound("consultation record")
	}
	return r, nil
}

func (f *fakeConsultationRepo) ListHistory(_ context.Context, patientID uuid.UUID) ([]*model.HistoryEntry, error) {
	f.appointments.mu.Lock()
	defer f.appointments.mu.Unlock()
	var out []*model.HistoryEntry
	for _, a := range f.appointments.appointments {
		if a.PatientID != patientID || a.Status != model.AppointmentStatusCompleted {
			continue
		}
		out = append(out, &model.HistoryEntry{
			Appointment:  *a,
			Consultation: f.appointments.records[a.ID],
		})
	}
	return out, nil
}

// fixture wires a service over fakes with one clinician, one patient and a
// deterministic clock.
type fixture struct {
	svc            *Service
	clinicians     *fakeClinicianRepo
	patients       *fakePatientRepo
	availability   *fakeAvailabilityRepo
	appointments   *fakeAppointmentRepo
	clinician      *model.Clinician
	patient        *model.Patient
	clinicianActor model.Actor
	patientActor   model.Actor
	adminActor     model.Actor
	today          string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	clinician := &model.Clinician{
		Base:             model.Base{ID: uuid.New()},
		UserID:           uuid.New(),
		SpecializationID: uuid.New(),
		Name:             "Dr. Adams",
		Email:            "adams@clinic.test",
		Active:           true,
	}
	patient := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Name:   "Pat Doe",
		Email:  "pat@clinic.test",
		Active: true,
	}

	clinicians := &fakeClinicianRepo{clinicians: map[uuid.UUID]*model.Clinician{clinician.ID: clinician}}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}}
	availability := &fakeAvailabilityRepo{windows: make(map[string]*model.AvailabilityWindow)}
	appointments := newFakeAppointmentRepo()
	consultations := &fakeConsultationRepo{appointments: appointments}

	svc := NewService(
		clinicians, patients, availability, appointments, consultations,
		clock.Fixed{Time: now},
		Config{SlotInterval: 30 * time.Minute, HorizonDays: 7},
		nil,
		logger.NewLogger(nil),
	)

	return &fixture{
		svc:            svc,
		clinicians:     clinicians,
		patients:       patients,
		availability:   availability,
		appointments:   appointments,
		clinician:      clinician,
		patient:        patient,
		clinicianActor: model.Actor{UserID: clinician.UserID, Role: model.RoleClinician, Name: clinician.Name},
		patientActor:   model.Actor{UserID: patient.UserID, Role: model.RolePatient, Name: patient.Name},
		adminActor:     model.Actor{UserID: uuid.New(), Role: model.RoleAdmin, Name: "Admin"},
		today:          now.Format(model.DateFormat),
	}
}

func (f *fixture) setWindow(t *testing.T, date, start, end string) {
	t.Helper()
	err := f.availability.Upsert(context.Background(), &model.AvailabilityWindow{
		ClinicianID: f.clinician.ID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
	})
	require.NoError(t, err)
}

func (f *fixture) book(t *testing.T, date, timeOfDay string) *model.Appointment {
	t.Helper()
	appt, err := f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
		ClinicianID: f.clinician.ID.String(),
		Date:        date,
		Time:        timeOfDay,
	})
	require.NoError(t, err)
	return appt
}

func slotsFor(t *testing.T, result []*model.ClinicianSlots, clinicianID uuid.UUID, date string) []string {
	t.Helper()
	for _, cs := range result {
		if cs.ClinicianID != clinicianID {
			continue
		}
		for _, day := range cs.Days {
			if day.Date == date {
				return day.Slots
			}
		}
	}
	t.Fatalf("no slot cell for clinician %s on %s", clinicianID, date)
	return nil
}

func TestListBookableSlotsFromWindow(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	result, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Len(t, result[0].Days, 7)

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"},
		slotsFor(t, result, f.clinician.ID, f.today))

	// No window published for tomorrow, so the cell is present but empty.
	tomorrow := "2026-03-03"
	assert.Empty(t, slotsFor(t, result, f.clinician.ID, tomorrow))
}

func TestListBookableSlotsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")
	f.book(t, f.today, "09:30")

	first, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)
	second, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)

	// Listing is a pure read; repeating it without intervening writes
	// yields the same view.
	assert.Equal(t, first, second)
}

func TestBookedSlotDisappearsFromListing(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	f.book(t, f.today, "09:30")

	result, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"},
		slotsFor(t, result, f.clinician.ID, f.today))
}

func TestCancelledSlotReappears(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:30")
	require.NoError(t, f.svc.Cancel(context.Background(), f.patientActor, appt.ID))

	result, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Contains(t, slotsFor(t, result, f.clinician.ID, f.today), "09:30")

	// And the freed slot is bookable again.
	f.book(t, f.today, "09:30")
}

func TestCompletedSlotStaysOccupied(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:30")
	_, err := f.svc.Complete(context.Background(), f.clinicianActor, appt.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "routine check"})
	require.NoError(t, err)

	result, err := f.svc.ListBookableSlots(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.NotContains(t, slotsFor(t, result, f.clinician.ID, f.today), "09:30")

	_, err = f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
		ClinicianID: f.clinician.ID.String(),
		Date:        f.today,
		Time:        "09:30",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestBookRejectsDoubleBooking(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	f.book(t, f.today, "10:00")

	_, err := f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
		ClinicianID: f.clinician.ID.String(),
		Date:        f.today,
		Time:        "10:00",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestBookRejectsTimeOutsideWindow(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	tests := []struct {
		name string
		time string
	}{
		{"before window", "08:30"},
		{"at window end", "11:00"},
		{"off the slot grid", "09:15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
				ClinicianID: f.clinician.ID.String(),
				Date:        f.today,
				Time:        tt.time,
			})
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestBookRejectsDateWithoutWindow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
		ClinicianID: f.clinician.ID.String(),
		Date:        f.today,
		Time:        "09:00",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestBookUnknownClinician(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.patientActor, &model.BookAppointmentRequest{
		ClinicianID: uuid.NewString(),
		Date:        f.today,
		Time:        "09:00",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestConcurrentBookingOneWinner(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	// Second patient competing for the same slot.
	other := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Name:   "Sam Roe",
		Email:  "sam@clinic.test",
		Active: true,
	}
	f.patients.patients[other.ID] = other
	otherActor := model.Actor{UserID: other.UserID, Role: model.RolePatient, Name: other.Name}

	req := func() *model.BookAppointmentRequest {
		return &model.BookAppointmentRequest{
			ClinicianID: f.clinician.ID.String(),
			Date:        f.today,
			Time:        "09:00",
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.svc.Book(context.Background(), f.patientActor, req())
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.svc.Book(context.Background(), otherActor, req())
	}()
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else if apperrors.Is(err, apperrors.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one booking must win")
	assert.Equal(t, 1, conflicts, "the loser must see a conflict")
}

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:00")

	stranger := model.Actor{UserID: uuid.New(), Role: model.RolePatient, Name: "Stranger"}
	err := f.svc.Cancel(context.Background(), stranger, appt.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	// Administrators may cancel any appointment.
	require.NoError(t, f.svc.Cancel(context.Background(), f.adminActor, appt.ID))
}

func TestCancelTerminalStatusRejected(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:00")
	require.NoError(t, f.svc.Cancel(context.Background(), f.patientActor, appt.ID))

	err := f.svc.Cancel(context.Background(), f.patientActor, appt.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	other := f.book(t, f.today, "09:30")
	_, err = f.svc.Complete(context.Background(), f.clinicianActor, other.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "flu"})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), f.patientActor, other.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCompleteOnlyAssignedClinician(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:00")

	otherClinician := &model.Clinician{
		Base:             model.Base{ID: uuid.New()},
		UserID:           uuid.New(),
		SpecializationID: f.clinician.SpecializationID,
		Name:             "Dr. Brown",
		Email:            "brown@clinic.test",
		Active:           true,
	}
	f.clinicians.clinicians[otherClinician.ID] = otherClinician
	otherActor := model.Actor{UserID: otherClinician.UserID, Role: model.RoleClinician, Name: otherClinician.Name}

	_, err := f.svc.Complete(context.Background(), otherActor, appt.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "flu"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	record, err := f.svc.Complete(context.Background(), f.clinicianActor, appt.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "flu", Prescription: "rest"})
	require.NoError(t, err)
	assert.Equal(t, "flu", record.Diagnosis)

	// Completing twice is rejected.
	_, err = f.svc.Complete(context.Background(), f.clinicianActor, appt.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "flu"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestSetAvailabilityValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetAvailability(context.Background(), f.clinicianActor, &model.SetAvailabilityRequest{
		Date:      f.today,
		StartTime: "17:00",
		EndTime:   "09:00",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	w, err := f.svc.SetAvailability(context.Background(), f.clinicianActor, &model.SetAvailabilityRequest{
		Date:      f.today,
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)
	assert.Equal(t, f.clinician.ID, w.ClinicianID)

	// Resubmitting overwrites the existing window for the date.
	w2, err := f.svc.SetAvailability(context.Background(), f.clinicianActor, &model.SetAvailabilityRequest{
		Date:      f.today,
		StartTime: "10:00",
		EndTime:   "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", w2.StartTime)
	assert.Equal(t, w.ID, w2.ID)

	got, err := f.availability.GetForDate(context.Background(), f.clinician.ID, f.today)
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Equal(t, "12:00", got.EndTime)
}

func TestHistoryShowsCompletedOnly(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	completed := f.book(t, f.today, "09:00")
	_, err := f.svc.Complete(context.Background(), f.clinicianActor, completed.ID,
		&model.CompleteAppointmentRequest{Diagnosis: "migraine", Prescription: "hydration"})
	require.NoError(t, err)

	f.book(t, f.today, "09:30") // still Booked, must not appear

	history, err := f.svc.History(context.Background(), f.patientActor)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, completed.ID, history[0].Appointment.ID)
	require.NotNil(t, history[0].Consultation)
	assert.Equal(t, "migraine", history[0].Consultation.Diagnosis)
}

func TestHistoryForPatientRoleGate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.HistoryForPatient(context.Background(), f.patientActor, f.patient.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = f.svc.HistoryForPatient(context.Background(), f.clinicianActor, f.patient.ID)
	assert.NoError(t, err)

	_, err = f.svc.HistoryForPatient(context.Background(), f.adminActor, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpcomingForPatientExcludesCancelled(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	kept := f.book(t, f.today, "09:00")
	dropped := f.book(t, f.today, "09:30")
	require.NoError(t, f.svc.Cancel(context.Background(), f.patientActor, dropped.ID))

	upcoming, err := f.svc.UpcomingForPatient(context.Background(), f.patientActor)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, kept.ID, upcoming[0].ID)
}

func TestBookWritesOutboxEvent(t *testing.T) {
	f := newFixture(t)
	f.setWindow(t, f.today, "09:00", "11:00")

	appt := f.book(t, f.today, "09:00")
	require.Len(t, f.appointments.events, 1)
	assert.Equal(t, model.EventAppointmentBooked, f.appointments.events[0].EventType)

	require.NoError(t, f.svc.Cancel(context.Background(), f.patientActor, appt.ID))
	require.Len(t, f.appointments.events, 2)
	assert.Equal(t, model.EventAppointmentCancelled, f.appointments.events[1].EventType)
}
