package model

import "github.com/google/uuid"

// Actor is the authenticated principal behind a request. It is threaded
// explicitly into every service call; there is no ambient current-user state.
type Actor struct {
	UserID uuid.UUID
	Role   string
	Name   string
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsClinician() bool { return a.Role == RoleClinician }
func (a Actor) IsPatient() bool   { return a.Role == RolePatient }

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,dateymd"`
	ContactInfo string `json:"contact_info"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
