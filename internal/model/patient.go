package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	DateOfBirth string    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ContactInfo string    `db:"contact_info" json:"contact_info,omitempty"`
	Active      bool      `db:"active" json:"active"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	ContactInfo *string `json:"contact_info"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,dateymd"`
}
