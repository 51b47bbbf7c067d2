package model

// Role constants
const (
	RoleAdmin     = "Administrator"
	RoleClinician = "Clinician"
	RolePatient   = "Patient"
)

// User represents a system account. Clinician and Patient profiles hang off
// it one-to-one; the role decides which.
type User struct {
	Base
	Email        string `db:"email" json:"email"`
	Name         string `db:"name" json:"name"`
	Password     string `db:"-" json:"password,omitempty"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
	ContactInfo  string `db:"contact_info" json:"contact_info,omitempty"`
	Active       bool   `db:"active" json:"active"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	ContactInfo *string `json:"contact_info"`
}
