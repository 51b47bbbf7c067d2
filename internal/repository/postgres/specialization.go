package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

func (r *specializationRepository) Create(ctx context.Context, spec *model.Specialization) error {
	query := `
		INSERT INTO specializations (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	spec.ID = uuid.New()
	spec.CreatedAt = time.Now()
	spec.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		spec.ID,
		spec.Name,
		spec.Description,
		spec.CreatedAt,
		spec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "specializations_name_key") {
			return apperrors.Conflict("specialization already exists")
		}
		return apperrors.Store(err)
	}
	return nil
}

func (r *specializationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Specialization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM specializations
		WHERE id = $1
	`
	var spec model.Specialization
	if err := r.db.GetContext(ctx, &spec, query, id); err != nil {
		return nil, wrapNotFound(err, "specialization")
	}
	return &spec, nil
}

func (r *specializationRepository) GetByName(ctx context.Context, name string) (*model.Specialization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM specializations
		WHERE name = $1
	`
	var spec model.Specialization
	if err := r.db.GetContext(ctx, &spec, query, name); err != nil {
		return nil, wrapNotFound(err, "specialization")
	}
	return &spec, nil
}

func (r *specializationRepository) List(ctx context.Context) ([]*model.Specialization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM specializations
		ORDER BY name ASC
	`
	var specs []*model.Specialization
	if err := r.db.SelectContext(ctx, &specs, query); err != nil {
		return nil, apperrors.Store(err)
	}
	return specs, nil
}
