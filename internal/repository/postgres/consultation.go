package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

func (r *consultationRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ConsultationRecord, error) {
	query := `
		SELECT id, appointment_id, diagnosis, prescription, notes, created_at, updated_at
		FROM consultation_records
		WHERE appointment_id = $1
	`
	var record model.ConsultationRecord
	if err := r.db.GetContext(ctx, &record, query, appointmentID); err != nil {
		return nil, wrapNotFound(err, "consultation record")
	}
	return &record, nil
}

func (r *consultationRepository) ListHistory(ctx context.Context, patientID uuid.UUID) ([]*model.HistoryEntry, error) {
	query := `
		SELECT a.id, a.patient_id, a.clinician_id, a.date, a.time, a.status,
		       a.created_at, a.updated_at,
		       c.id AS consultation_id, c.diagnosis, c.prescription, c.notes
		FROM appointments a
		LEFT JOIN consultation_records c ON c.appointment_id = a.id
		WHERE a.patient_id = $1 AND a.status = 'Completed'
		ORDER BY a.date DESC, a.time DESC
	`
	rows, err := r.db.QueryxContext(ctx, query, patientID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		var row struct {
			model.Appointment
			ConsultationID *uuid.UUID `db:"consultation_id"`
			Diagnosis      *string    `db:"diagnosis"`
			Prescription   *string    `db:"prescription"`
			Notes          *string    `db:"notes"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, apperrors.Store(err)
		}

		entry := &model.HistoryEntry{Appointment: row.Appointment}
		if row.ConsultationID != nil {
			entry.Consultation = &model.ConsultationRecord{
				AppointmentID: row.Appointment.ID,
				Diagnosis:     deref(row.Diagnosis),
				Prescription:  deref(row.Prescription),
				Notes:         deref(row.Notes),
			}
			entry.Consultation.ID = *row.ConsultationID
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store(err)
	}
	return entries, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
