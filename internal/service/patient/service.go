package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/internal/repository"
)

// Service covers administrator-side patient management. Patients create
// their own accounts through registration; administrators list, correct
// and deactivate them here.
type Service struct {
	patients repository.PatientRepository
	users    repository.UserRepository
}

func NewService(patients repository.PatientRepository, users repository.UserRepository) *Service {
	return &Service{patients: patients, users: users}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.ContactInfo != nil {
		patient.ContactInfo = *req.ContactInfo
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.users.SetActive(ctx, patient.UserID, active)
}
