package model

import (
	"github.com/google/uuid"
)

// ConsultationRecord holds the outcome of a completed appointment. It is
// created exactly once, in the same transaction that marks the appointment
// Completed, and is immutable afterwards.
type ConsultationRecord struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Prescription  string    `db:"prescription" json:"prescription"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
}

type CompleteAppointmentRequest struct {
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// HistoryEntry joins a completed appointment with its consultation record
// for the patient-history views.
type HistoryEntry struct {
	Appointment  Appointment         `json:"appointment"`
	Consultation *ConsultationRecord `json:"consultation,omitempty"`
}
