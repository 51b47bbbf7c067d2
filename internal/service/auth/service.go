package auth

import (
	"context"

	"github.com/carebook/clinic-api/internal/email"
	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
	"github.com/carebook/clinic-api/pkg/auth"
	apperrors "github.com/carebook/clinic-api/pkg/errors"
	"github.com/carebook/clinic-api/pkg/logger"
	"github.com/carebook/clinic-api/pkg/security"
)

// Service handles account registration, login and activation. Patient
// self-registration is the only open signup path; clinician and
// administrator accounts are provisioned by an administrator.
type Service struct {
	users    repository.UserRepository
	patients repository.PatientRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(
	users repository.UserRepository,
	patients repository.PatientRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		patients: patients,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		logger:   log,
	}
}

// RegisterPatient creates the account row and the patient profile as one
// transaction; a failure leaves neither behind.
func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterRequest) (*model.Patient, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RolePatient,
		ContactInfo:  req.ContactInfo,
		Active:       true,
	}
	patient := &model.Patient{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		ContactInfo: req.ContactInfo,
		Active:      true,
	}

	if err := s.patients.CreateWithUser(ctx, user, patient); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email")
	}

	return patient, nil
}

// Login verifies credentials and issues a signed token carrying the user's
// role. Unknown email and bad password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, apperrors.Unauthorized("account is deactivated")
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.jwtSvc.GenerateToken(user.ID, user.Role, user.Name)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	return &model.TokenResponse{
		Token: token,
		Role:  user.Role,
		Name:  user.Name,
	}, nil
}
