package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

func (r *availabilityRepository) Upsert(ctx context.Context, window *model.AvailabilityWindow) error {
	// One window per (clinician, date): a second publish for the same date
	// replaces the working hours instead of adding a duplicate row.
	query := `
		INSERT INTO availability_windows (id, clinician_id, date, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (clinician_id, date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	window.UpdatedAt = time.Now()

	// On the overwrite path the stored row keeps its original id, so scan
	// the winning values back instead of trusting the generated ones.
	err := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		window.ClinicianID,
		window.Date,
		window.StartTime,
		window.EndTime,
		time.Now(),
		window.UpdatedAt,
	).Scan(&window.ID, &window.CreatedAt)
	if err != nil {
		return apperrors.Store(fmt.Errorf("failed to upsert availability window: %w", err))
	}
	return nil
}

func (r *availabilityRepository) GetForDate(ctx context.Context, clinicianID uuid.UUID, date string) (*model.AvailabilityWindow, error) {
	query := `
		SELECT id, clinician_id, date, start_time, end_time, created_at, updated_at
		FROM availability_windows
		WHERE clinician_id = $1 AND date = $2
	`
	var window model.AvailabilityWindow
	if err := r.db.GetContext(ctx, &window, query, clinicianID, date); err != nil {
		return nil, wrapNotFound(err, "availability window")
	}
	return &window, nil
}

func (r *availabilityRepository) ListForClinician(ctx context.Context, clinicianID uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, clinician_id, date, start_time, end_time, created_at, updated_at
		FROM availability_windows
		WHERE clinician_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`
	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, clinicianID, fromDate, toDate); err != nil {
		return nil, apperrors.Store(err)
	}
	return windows, nil
}

func (r *availabilityRepository) ListForClinicians(ctx context.Context, clinicianIDs []uuid.UUID, fromDate, toDate string) ([]*model.AvailabilityWindow, error) {
	if len(clinicianIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, clinician_id, date, start_time, end_time, created_at, updated_at
		FROM availability_windows
		WHERE clinician_id IN (?) AND date BETWEEN ? AND ?
		ORDER BY clinician_id, date ASC
	`, clinicianIDs, fromDate, toDate)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to build query: %w", err))
	}

	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, r.db.Rebind(query), args...); err != nil {
		return nil, apperrors.Store(err)
	}
	return windows, nil
}
