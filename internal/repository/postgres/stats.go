package postgres

import (
	"context"
	"fmt"

	"github.com/carebook/clinic-api/internal/model"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
)

func (r *statsRepository) GetAdminStats(ctx context.Context, upcomingLimit int) (*model.AdminStats, error) {
	stats := &model.AdminStats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM clinicians", &stats.TotalClinicians},
		{"SELECT COUNT(*) FROM patients", &stats.TotalPatients},
		{"SELECT COUNT(*) FROM appointments", &stats.TotalAppointments},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, apperrors.Store(fmt.Errorf("failed to count: %w", err))
		}
	}

	query := `
		SELECT id, patient_id, clinician_id, date, time, status, created_at, updated_at
		FROM appointments
		WHERE status = 'Booked'
		ORDER BY date, time ASC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &stats.Upcoming, query, upcomingLimit); err != nil {
		return nil, apperrors.Store(err)
	}
	return stats, nil
}
