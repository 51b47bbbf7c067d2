package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Wire formats for calendar dates and slot times. All times are local and
// naive; there is no timezone handling anywhere in the system.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)
