package clinician

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/email"
	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/logger"
	"github.com/carebook/clinic-api/pkg/security"
)

// Service covers administrator-side clinician management. Clinician
// accounts are always provisioned here, never self-registered.
type Service struct {
	clinicians      repository.ClinicianRepository
	specializations repository.SpecializationRepository
	users           repository.UserRepository
	hasher          security.PasswordHasher
	emailSvc        email.Service
	logger          *logger.Logger
}

func NewService(
	clinicians repository.ClinicianRepository,
	specializations repository.SpecializationRepository,
	users repository.UserRepository,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		clinicians:      clinicians,
		specializations: specializations,
		users:           users,
		hasher:          hasher,
		emailSvc:        emailSvc,
		logger:          log,
	}
}

// Create provisions the account and the profile in one transaction.
func (s *Service) Create(ctx context.Context, req *model.CreateClinicianRequest) (*model.Clinician, error) {
	specializationID, err := uuid.Parse(req.SpecializationID)
	if err != nil {
		return nil, apperrors.Validation("invalid specialization id")
	}
	if _, err := s.specializations.Get(ctx, specializationID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleClinician,
		ContactInfo:  req.ContactInfo,
		Active:       true,
	}
	clinician := &model.Clinician{
		SpecializationID: specializationID,
		Name:             req.Name,
		Email:            req.Email,
		ContactInfo:      req.ContactInfo,
		Active:           true,
	}

	if err := s.clinicians.CreateWithUser(ctx, user, clinician); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email")
	}

	return clinician, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	return s.clinicians.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, specializationID *uuid.UUID) ([]*model.Clinician, error) {
	return s.clinicians.List(ctx, specializationID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateClinicianRequest) (*model.Clinician, error) {
	clinician, err := s.clinicians.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinician.Name = *req.Name
	}
	if req.ContactInfo != nil {
		clinician.ContactInfo = *req.ContactInfo
	}
	if req.SpecializationID != nil {
		specializationID, err := uuid.Parse(*req.SpecializationID)
		if err != nil {
			return nil, apperrors.Validation("invalid specialization id")
		}
		if _, err := s.specializations.Get(ctx, specializationID); err != nil {
			return nil, err
		}
		clinician.SpecializationID = specializationID
	}

	if err := s.clinicians.Update(ctx, clinician); err != nil {
		return nil, err
	}
	return clinician, nil
}

// SetActive toggles the clinician's account. Deactivation does not touch
// existing appointments; the clinician simply stops appearing in slot
// listings and fails login.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	clinician, err := s.clinicians.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.users.SetActive(ctx, clinician.UserID, active)
}
