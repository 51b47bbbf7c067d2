package specialization

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
)

const (
	listCacheKey    = "specializations:list"
	defaultCacheTTL = 5 * time.Minute
)

// Service manages the specialization catalog. The list is small and
// read-heavy (every bookable-slots filter touches it), so reads go through
// an in-process cache that is invalidated on writes.
type Service struct {
	repo  repository.SpecializationRepository
	cache *gocache.Cache
}

func NewService(repo repository.SpecializationRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(defaultCacheTTL, 10*time.Minute),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateSpecializationRequest) (*model.Specialization, error) {
	spec := &model.Specialization{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, spec); err != nil {
		return nil, err
	}
	s.cache.Delete(listCacheKey)
	return spec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Specialization, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Specialization, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Specialization), nil
	}
	specs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(listCacheKey, specs, gocache.DefaultExpiration)
	return specs, nil
}
