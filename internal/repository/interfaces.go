package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
	}

	SpecializationRepository interface {
		Create(ctx context.Context, spec *model.Specialization) error
		Get(ctx context.Context, id uuid.UUID) (*model.Specialization, error)
		GetByName(ctx context.Context, name string) (*model.Specialization, error)
		List(ctx context.Context) ([]*model.Specialization, error)
	}

	ClinicianRepository interface {
		// CreateWithUser persists the account row and the clinician profile
		// as one transaction; a failure leaves neither behind.
		CreateWithUser(ctx context.Context, user *model.User, clinician *model.Clinician) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Clinician, error)
		Update(ctx context.Context, clinician *model.Clinician) error
		// List returns active clinicians, optionally filtered by specialization.
		List(ctx context.Context, specializationID *uuid.UUID) ([]*model.Clinician, error)
	}

	PatientRepository interface {
		CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	AvailabilityRepository interface {
		// Upsert overwrites any existing window for (clinician, date).
		Upsert(ctx context.Context, window *model.AvailabilityWindow) error
		GetForDate(ctx context.Context, clinicianID uuid.UUID, date string) (*model.AvailabilityWindow, error)
		ListForClinician(ctx context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error)
		ListForClinicians(ctx context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error)
	}

	AppointmentRepository interface {
		// Create persists the appointment and the outbox event in one
		// transaction. The storage-level uniqueness constraint on occupied
		// slots is the authoritative double-booking guard; a violation
		// surfaces as a conflict error.
		Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// HasConflict checks the strict occupying set for the exact triple.
		HasConflict(ctx context.Context, clinicianID uuid.UUID, date, timeOfDay string) (bool, error)
		ListOccupied(ctx context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, event *model.OutboxEvent) error
		// CompleteWithConsultation flips the status and inserts the
		// consultation record as one transaction.
		CompleteWithConsultation(ctx context.Context, id uuid.UUID, record *model.ConsultationRecord, event *model.OutboxEvent) error
		ListForClinician(ctx context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID, statuses []model.AppointmentStatus, fromDate string) ([]*model.Appointment, error)
	}

	ConsultationRepository interface {
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ConsultationRecord, error)
		// ListHistory returns completed appointments joined with their
		// consultation records, newest first.
		ListHistory(ctx context.Context, patientID uuid.UUID) ([]*model.HistoryEntry, error)
	}

	StatsRepository interface {
		GetAdminStats(ctx context.Context, upcomingLimit int) (*model.AdminStats, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
