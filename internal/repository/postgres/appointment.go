package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

// appointments_occupied_slot_key is a partial unique index on
// (clinician_id, date, time) WHERE status IN ('Booked', 'Completed').
// It is the authoritative double-booking guard; the service-level conflict
// check is advisory only.
const occupiedSlotConstraint = "appointments_occupied_slot_key"

func insertOutboxEvent(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return nil
	}
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`, event.ID, event.EventType, event.Payload, event.Status, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, patient_id, clinician_id, date, time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		appointment.ID,
		appointment.PatientID,
		appointment.ClinicianID,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, occupiedSlotConstraint) {
			return apperrors.Conflict("slot is already booked")
		}
		return apperrors.Store(fmt.Errorf("failed to create appointment: %w", err))
	}

	if err := insertOutboxEvent(ctx, tx, event); err != nil {
		return apperrors.Store(err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err, occupiedSlotConstraint) {
			return apperrors.Conflict("slot is already booked")
		}
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, clinician_id, date, time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, wrapNotFound(err, "appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) HasConflict(ctx context.Context, clinicianID uuid.UUID, date, timeOfDay string) (bool, error) {
	query, args, err := sqlx.In(`
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE clinician_id = ? AND date = ? AND time = ?
			AND status IN (?)
		)
	`, clinicianID, date, timeOfDay, model.OccupyingStatuses)
	if err != nil {
		return false, apperrors.Store(fmt.Errorf("failed to build query: %w", err))
	}

	var hasConflict bool
	if err := r.db.GetContext(ctx, &hasConflict, r.db.Rebind(query), args...); err != nil {
		return false, apperrors.Store(fmt.Errorf("failed to check conflict: %w", err))
	}
	return hasConflict, nil
}

func (r *appointmentRepository) ListOccupied(ctx context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error) {
	if len(clinicianIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, patient_id, clinician_id, date, time, status, created_at, updated_at
		FROM appointments
		WHERE clinician_id IN (?) AND date BETWEEN ? AND ?
		AND status IN (?)
		ORDER BY date, time ASC
	`, clinicianIDs, fromDate, toDate, model.OccupyingStatuses)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to build query: %w", err))
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, r.db.Rebind(query), args...); err != nil {
		return nil, apperrors.Store(err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, time.Now(), id)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to update appointment status: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}

	if err := insertOutboxEvent(ctx, tx, event); err != nil {
		return apperrors.Store(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *appointmentRepository) CompleteWithConsultation(ctx context.Context, id uuid.UUID, record *model.ConsultationRecord, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, model.AppointmentStatusCompleted, time.Now(), id)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to complete appointment: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}

	record.ID = uuid.New()
	record.AppointmentID = id
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO consultation_records (id, appointment_id, diagnosis, prescription, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.ID, record.AppointmentID, record.Diagnosis,
		record.Prescription, record.Notes, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "consultation_records_appointment_id_key") {
			return apperrors.Conflict("appointment already has a consultation record")
		}
		return apperrors.Store(fmt.Errorf("failed to create consultation record: %w", err))
	}

	if err := insertOutboxEvent(ctx, tx, event); err != nil {
		return apperrors.Store(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *appointmentRepository) ListForClinician(ctx context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, clinician_id, date, time, status, created_at, updated_at
		FROM appointments
		WHERE clinician_id = $1 AND date BETWEEN $2 AND $3
		AND status != 'Cancelled'
		ORDER BY date, time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, clinicianID, fromDate, toDate); err != nil {
		return nil, apperrors.Store(err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, statuses []model.AppointmentStatus, fromDate string) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, clinician_id, date, time, status, created_at, updated_at
		FROM appointments
		WHERE patient_id = ?
	`
	args := []interface{}{patientID}

	if len(statuses) > 0 {
		query += " AND status IN (?)"
		args = append(args, statuses)
	}
	if fromDate != "" {
		query += " AND date >= ?"
		args = append(args, fromDate)
	}
	query += " ORDER BY date, time ASC"

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to build query: %w", err))
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, r.db.Rebind(query), inArgs...); err != nil {
		return nil, apperrors.Store(err)
	}
	return appointments, nil
}
