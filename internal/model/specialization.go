package model

type Specialization struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

type CreateSpecializationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
