package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

const patientColumns = `
	p.id, p.user_id, p.date_of_birth, p.created_at, p.updated_at,
	u.name AS name, u.email AS email, u.contact_info AS contact_info, u.active AS active
`

func (r *patientRepository) CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	now := time.Now()
	user.ID = uuid.New()
	user.Role = model.RolePatient
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, contact_info, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role,
		user.ContactInfo, user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return apperrors.Conflict("email already registered")
		}
		return apperrors.Store(fmt.Errorf("failed to create user: %w", err))
	}

	patient.ID = uuid.New()
	patient.UserID = user.ID
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO patients (id, user_id, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		patient.ID, patient.UserID, patient.DateOfBirth,
		patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to create patient profile: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}

	patient.Name = user.Name
	patient.Email = user.Email
	patient.ContactInfo = user.ContactInfo
	patient.Active = true
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, wrapNotFound(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		return nil, wrapNotFound(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	now := time.Now()
	patient.UpdatedAt = now

	result, err := tx.ExecContext(ctx, `
		UPDATE patients
		SET date_of_birth = $1, updated_at = $2
		WHERE id = $3
	`, patient.DateOfBirth, now, patient.ID)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to update patient: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET name = $1, contact_info = $2, updated_at = $3
		WHERE id = $4
	`, patient.Name, patient.ContactInfo, now, patient.UserID)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to update patient user: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		ORDER BY u.name ASC
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, apperrors.Store(err)
	}
	return patients, nil
}
