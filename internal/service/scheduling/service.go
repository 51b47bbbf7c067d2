package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
	"github.com/carebook/clinic-api/pkg/clock"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/logger"
)

// DefaultHorizonDays is the rolling forward-looking range over which
// bookable slots are listed: today through today+6.
const DefaultHorizonDays = 7

// Notifier delivers booking lifecycle mail. Failures are logged, never
// surfaced to the caller.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to, name, date, timeOfDay string) error
}

// Service owns the appointment domain: it turns published availability
// windows into bookable slots, performs the atomic booking decision, and
// drives the appointment status lifecycle.
type Service struct {
	clinicians    repository.ClinicianRepository
	patients      repository.PatientRepository
	availability  repository.AvailabilityRepository
	appointments  repository.AppointmentRepository
	consultations repository.ConsultationRepository
	clock         clock.Clock
	slotInterval  time.Duration
	horizonDays   int
	notifier      Notifier
	logger        *logger.Logger
}

type Config struct {
	SlotInterval time.Duration
	HorizonDays  int
}

func NewService(
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	availability repository.AvailabilityRepository,
	appointments repository.AppointmentRepository,
	consultations repository.ConsultationRepository,
	clk clock.Clock,
	cfg Config,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	if cfg.SlotInterval <= 0 {
		cfg.SlotInterval = DefaultSlotInterval
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	return &Service{
		clinicians:    clinicians,
		patients:      patients,
		availability:  availability,
		appointments:  appointments,
		consultations: consultations,
		clock:         clk,
		slotInterval:  cfg.SlotInterval,
		horizonDays:   cfg.HorizonDays,
		notifier:      notifier,
		logger:        log,
	}
}

// horizon returns the consecutive calendar dates of the listing range,
// starting today.
func (s *Service) horizon(days int) []string {
	if days <= 0 {
		days = s.horizonDays
	}
	now := s.clock.Now()
	dates := make([]string, days)
	for i := 0; i < days; i++ {
		dates[i] = now.AddDate(0, 0, i).Format(model.DateFormat)
	}
	return dates
}

type slotKey struct {
	clinicianID uuid.UUID
	date        string
	time        string
}

// ListBookableSlots produces the per-clinician, per-date view of open slots
// over the horizon. A clinician with no window on a date gets an empty cell
// for that date; a slot already held by an occupying appointment is
// filtered out.
func (s *Service) ListBookableSlots(ctx context.Context, specializationID *uuid.UUID, horizonDays int) ([]*model.ClinicianSlots, error) {
	dates := s.horizon(horizonDays)

	clinicians, err := s.clinicians.List(ctx, specializationID)
	if err != nil {
		return nil, err
	}
	if len(clinicians) == 0 {
		return []*model.ClinicianSlots{}, nil
	}

	ids := make([]uuid.UUID, len(clinicians))
	for i, c := range clinicians {
		ids[i] = c.ID
	}

	fromDate, toDate := dates[0], dates[len(dates)-1]

	windows, err := s.availability.ListForClinicians(ctx, ids, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	windowFor := make(map[slotKey]*model.AvailabilityWindow, len(windows))
	for _, w := range windows {
		windowFor[slotKey{clinicianID: w.ClinicianID, date: w.Date}] = w
	}

	occupied, err := s.appointments.ListOccupied(ctx, ids, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	occupiedSet := make(map[slotKey]struct{}, len(occupied))
	for _, a := range occupied {
		occupiedSet[slotKey{clinicianID: a.ClinicianID, date: a.Date, time: a.Time}] = struct{}{}
	}

	result := make([]*model.ClinicianSlots, 0, len(clinicians))
	for _, c := range clinicians {
		cs := &model.ClinicianSlots{
			ClinicianID:      c.ID,
			ClinicianName:    c.Name,
			SpecializationID: c.SpecializationID,
			Days:             make([]model.DaySlots, 0, len(dates)),
		}
		for _, date := range dates {
			day := model.DaySlots{Date: date, Slots: []string{}}
			if w, ok := windowFor[slotKey{clinicianID: c.ID, date: date}]; ok {
				slots, err := GenerateSlots(w.StartTime, w.EndTime, s.slotInterval)
				if err != nil {
					return nil, apperrors.Store(fmt.Errorf("bad availability window %s: %w", w.ID, err))
				}
				for _, slot := range slots {
					if _, taken := occupiedSet[slotKey{clinicianID: c.ID, date: date, time: slot}]; !taken {
						day.Slots = append(day.Slots, slot)
					}
				}
			}
			cs.Days = append(cs.Days, day)
		}
		result = append(result, cs)
	}
	return result, nil
}

// Book creates an appointment for the requesting patient. The conflict
// pre-check here is advisory; the storage uniqueness constraint decides
// races, so a lost race still comes back as a conflict error.
func (s *Service) Book(ctx context.Context, actor model.Actor, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if req.ClinicianID == "" || req.Date == "" || req.Time == "" {
		return nil, apperrors.Validation("clinician, date and time are required")
	}
	clinicianID, err := uuid.Parse(req.ClinicianID)
	if err != nil {
		return nil, apperrors.Validation("invalid clinician id")
	}

	patient, err := s.patients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.clinicians.Get(ctx, clinicianID); err != nil {
		return nil, err
	}

	// The requested time must be one of the discrete slots derivable from
	// the clinician's window on that date.
	window, err := s.availability.GetForDate(ctx, clinicianID, req.Date)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation("clinician has no availability on this date")
		}
		return nil, err
	}
	slots, err := GenerateSlots(window.StartTime, window.EndTime, s.slotInterval)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("bad availability window %s: %w", window.ID, err))
	}
	if !contains(slots, req.Time) {
		return nil, apperrors.Validation("time is not a bookable slot")
	}

	// Advisory re-check: the listing the patient chose from may be stale.
	taken, err := s.appointments.HasConflict(ctx, clinicianID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Conflict("slot is already booked")
	}

	appointment := &model.Appointment{
		PatientID:   patient.ID,
		ClinicianID: clinicianID,
		Date:        req.Date,
		Time:        req.Time,
		Status:      model.AppointmentStatusBooked,
	}

	event, err := outboxEvent(model.EventAppointmentBooked, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, appointment, event); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendBookingConfirmation(ctx, patient.Email, patient.Name, appointment.Date, appointment.Time); err != nil {
			s.logger.Error(err, "failed to send booking confirmation")
		}
	}

	return appointment, nil
}

// Cancel transitions an appointment to Cancelled. Only the owning patient
// or an administrator may cancel, and only from a cancellable status.
func (s *Service) Cancel(ctx context.Context, actor model.Actor, appointmentID uuid.UUID) error {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() {
		patient, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return apperrors.Forbidden("not permitted to cancel this appointment")
		}
		if patient.ID != appointment.PatientID {
			return apperrors.Forbidden("not permitted to cancel this appointment")
		}
	}

	if !appointment.Status.Cancellable() {
		return apperrors.Conflict(fmt.Sprintf("appointment in status %s cannot be cancelled", appointment.Status))
	}

	appointment.Status = model.AppointmentStatusCancelled
	event, err := outboxEvent(model.EventAppointmentCancelled, appointment)
	if err != nil {
		return err
	}
	return s.appointments.UpdateStatus(ctx, appointmentID, model.AppointmentStatusCancelled, event)
}

// Complete closes a consultation: the assigned clinician records the
// outcome and the appointment becomes Completed. The status flip and the
// consultation record are committed as one transaction.
func (s *Service) Complete(ctx context.Context, actor model.Actor, appointmentID uuid.UUID, req *model.CompleteAppointmentRequest) (*model.ConsultationRecord, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	clinician, err := s.clinicians.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.Forbidden("not permitted to complete this appointment")
	}
	if clinician.ID != appointment.ClinicianID {
		return nil, apperrors.Forbidden("not permitted to complete this appointment")
	}

	if !appointment.Status.Completable() {
		return nil, apperrors.Conflict(fmt.Sprintf("appointment in status %s cannot be completed", appointment.Status))
	}

	record := &model.ConsultationRecord{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	}

	appointment.Status = model.AppointmentStatusCompleted
	event, err := outboxEvent(model.EventAppointmentCompleted, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.CompleteWithConsultation(ctx, appointmentID, record, event); err != nil {
		return nil, err
	}
	return record, nil
}

// SetAvailability publishes (or overwrites) the clinician's working hours
// for one date.
func (s *Service) SetAvailability(ctx context.Context, actor model.Actor, req *model.SetAvailabilityRequest) (*model.AvailabilityWindow, error) {
	if req.StartTime >= req.EndTime {
		return nil, apperrors.Validation("start_time must be before end_time")
	}

	clinician, err := s.clinicians.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	window := &model.AvailabilityWindow{
		ClinicianID: clinician.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := s.availability.Upsert(ctx, window); err != nil {
		return nil, err
	}
	return window, nil
}

// ListAvailability returns the requesting clinician's windows over the
// horizon.
func (s *Service) ListAvailability(ctx context.Context, actor model.Actor, horizonDays int) ([]*model.AvailabilityWindow, error) {
	clinician, err := s.clinicians.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	dates := s.horizon(horizonDays)
	return s.availability.ListForClinician(ctx, clinician.ID, dates[0], dates[len(dates)-1])
}

// UpcomingForClinician returns the requesting clinician's non-cancelled
// appointments over the horizon.
func (s *Service) UpcomingForClinician(ctx context.Context, actor model.Actor) ([]*model.Appointment, error) {
	clinician, err := s.clinicians.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	dates := s.horizon(0)
	return s.appointments.ListForClinician(ctx, clinician.ID, dates[0], dates[len(dates)-1])
}

// UpcomingForPatient returns the requesting patient's booked appointments
// from today onwards.
func (s *Service) UpcomingForPatient(ctx context.Context, actor model.Actor) ([]*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	today := s.clock.Now().Format(model.DateFormat)
	return s.appointments.ListForPatient(ctx, patient.ID,
		[]model.AppointmentStatus{model.AppointmentStatusBooked}, today)
}

// History returns the requesting patient's completed appointments with
// their consultation records.
func (s *Service) History(ctx context.Context, actor model.Actor) ([]*model.HistoryEntry, error) {
	patient, err := s.patients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.consultations.ListHistory(ctx, patient.ID)
}

// HistoryForPatient lets a clinician or administrator review any patient's
// consultation history.
func (s *Service) HistoryForPatient(ctx context.Context, actor model.Actor, patientID uuid.UUID) ([]*model.HistoryEntry, error) {
	if !actor.IsClinician() && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("not permitted to view patient history")
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.consultations.ListHistory(ctx, patientID)
}

func outboxEvent(eventType string, appointment *model.Appointment) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(appointment)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to marshal event payload: %w", err))
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}, nil
}

func contains(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
