package model

import (
	"github.com/google/uuid"
)

// AvailabilityWindow is a clinician's published working hours for one
// calendar date. At most one window exists per (clinician, date); setting
// availability again for the same date overwrites the previous window.
type AvailabilityWindow struct {
	Base
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	Date        string    `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
}

type SetAvailabilityRequest struct {
	Date      string `json:"date" binding:"required,dateymd"`
	StartTime string `json:"start_time" binding:"required,timehm"`
	EndTime   string `json:"end_time" binding:"required,timehm"`
}
