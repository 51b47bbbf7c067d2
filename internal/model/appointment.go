package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked      AppointmentStatus = "Booked"
	AppointmentStatusPending     AppointmentStatus = "Pending"
	AppointmentStatusRescheduled AppointmentStatus = "Rescheduled"
	AppointmentStatusCompleted   AppointmentStatus = "Completed"
	AppointmentStatusCancelled   AppointmentStatus = "Cancelled"
)

// OccupyingStatuses is the strict occupying set: an appointment in any of
// these states makes its (clinician, date, time) triple unbookable. The same
// set is used at listing time and at commit time.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentStatusBooked,
	AppointmentStatusCompleted,
}

// Cancellable reports whether an appointment in this status may still be
// cancelled. Completed and Cancelled are terminal.
func (s AppointmentStatus) Cancellable() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusPending, AppointmentStatusRescheduled:
		return true
	}
	return false
}

// Completable reports whether the clinician may close the consultation.
func (s AppointmentStatus) Completable() bool {
	return s.Cancellable()
}

// Appointment ties one patient, one clinician and one discrete date/time
// slot together. Rows are never deleted; lifecycle is status-only.
type Appointment struct {
	Base
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID         `db:"clinician_id" json:"clinician_id"`
	Date        string            `db:"date" json:"date"`
	Time        string            `db:"time" json:"time"`
	Status      AppointmentStatus `db:"status" json:"status"`
}

type BookAppointmentRequest struct {
	ClinicianID string `json:"clinician_id" binding:"required,uuid"`
	Date        string `json:"date" binding:"required,dateymd"`
	Time        string `json:"time" binding:"required,timehm"`
}

// DaySlots is one cell of the bookable-slots view: the open slot times for
// one clinician on one date, in generated order.
type DaySlots struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// ClinicianSlots is the per-clinician slice of the bookable-slots view over
// the listing horizon.
type ClinicianSlots struct {
	ClinicianID      uuid.UUID  `json:"clinician_id"`
	ClinicianName    string     `json:"clinician_name"`
	SpecializationID uuid.UUID  `json:"specialization_id"`
	Days             []DaySlots `json:"days"`
}
