package report

import (
	"context"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
)

const defaultUpcomingLimit = 10

// Service produces the administrator dashboard aggregates.
type Service struct {
	stats repository.StatsRepository
}

func NewService(stats repository.StatsRepository) *Service {
	return &Service{stats: stats}
}

func (s *Service) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	return s.stats.GetAdminStats(ctx, defaultUpcomingLimit)
}
