package model

import (
	"github.com/google/uuid"
)

// Clinician is a staff profile owned by a user with RoleClinician. Exactly
// one specialization is required.
type Clinician struct {
	Base
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	SpecializationID uuid.UUID `db:"specialization_id" json:"specialization_id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	ContactInfo      string    `db:"contact_info" json:"contact_info,omitempty"`
	Active           bool      `db:"active" json:"active"`
}

type CreateClinicianRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Name             string `json:"name" binding:"required"`
	Password         string `json:"password" binding:"required,min=8"`
	SpecializationID string `json:"specialization_id" binding:"required,uuid"`
	ContactInfo      string `json:"contact_info"`
}

type UpdateClinicianRequest struct {
	Name             *string `json:"name"`
	ContactInfo      *string `json:"contact_info"`
	SpecializationID *string `json:"specialization_id" binding:"omitempty,uuid"`
}
