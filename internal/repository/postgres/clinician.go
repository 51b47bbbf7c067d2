package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

const clinicianColumns = `
	c.id, c.user_id, c.specialization_id, c.created_at, c.updated_at,
	u.name AS name, u.email AS email, u.contact_info AS contact_info, u.active AS active
`

func (r *clinicianRepository) CreateWithUser(ctx context.Context, user *model.User, clinician *model.Clinician) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	now := time.Now()
	user.ID = uuid.New()
	user.Role = model.RoleClinician
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

	clinician.ID = uuid.New()
	clinician.UserID = user.ID
	clinician.CreatedAt = now
	clinician.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO clinicians (id, user_id, specialization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		clinician.ID, clinician.UserID, clinician.SpecializationID,
		clinician.CreatedAt, clinician.UpdatedAt,
	)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to create clinician profile: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}

	clinician.Name = user.Name
	clinician.Email = user.Email
	clinician.ContactInfo = user.ContactInfo
	clinician.Active = true
	return nil
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := `
		SELECT ` + clinicianColumns + `
		FROM clinicians c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	var clinician model.Clinician
	if err := r.db.GetContext(ctx, &clinician, query, id); err != nil {
		return nil, wrapNotFound(err, "clinician")
	}
	return &clinician, nil
}

func (r *clinicianRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Clinician, error) {
	query := `
		SELECT ` + clinicianColumns + `
		FROM clinicians c
		JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
	`
	var clinician model.Clinician
	if err := r.db.GetContext(ctx, &clinician, query, userID); err != nil {
		return nil, wrapNotFound(err, "clinician")
	}
	return &clinician, nil
}

func (r *clinicianRepository) Update(ctx context.Context, clinician *model.Clinician) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	now := time.Now()
	clinician.UpdatedAt = now

	result, err := tx.ExecContext(ctx, `
		UPDATE clinicians
		SET specialization_id = $1, updated_at = $2
		WHERE id = $3
	`, clinician.SpecializationID, now, clinician.ID)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to update clinician: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("clinician")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET name = $1, contact_info = $2, updated_at = $3
		WHERE id = $4
	`, clinician.Name, clinician.ContactInfo, now, clinician.UserID)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to update clinician user: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *clinicianRepository) List(ctx context.Context, specializationID *uuid.UUID) ([]*model.Clinician, error) {
	query := `
		SELECT ` + clinicianColumns + `
		FROM clinicians c
		JOIN users u ON u.id = c.user_id
		WHERE u.active = true
	`
	args := []interface{}{}
	if specializationID != nil {
		query += " AND c.specialization_id = $1"
		args = append(args, *specializationID)
	}
	query += " ORDER BY u.name ASC"

	var clinicians []*model.Clinician
	if err := r.db.SelectContext(ctx, &clinicians, query, args...); err != nil {
		return nil, apperrors.Store(err)
	}
	return clinicians, nil
}
