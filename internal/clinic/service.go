package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrDoctorInactive = errors.New("doctor is not active")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClinic(ctx context.Context, name string, address, phone *string) (*Clinic, error) {
	c := &Clinic{Name: name, Address: address, Phone: phone}
	created, err := s.repo.CreateClinic(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create clinic: %w", err)
	}
	return created, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.repo.GetClinicByID(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) ([]Clinic, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListClinics(ctx, limit, offset)
}

func (s *Service) CreateDoctor(ctx context.Context, clinicID uuid.UUID, name string, specialization *string) (*Doctor, error) {
	if _, err := s.repo.GetClinicByID(ctx, clinicID); err != nil {
		return nil, err
	}

	d := &Doctor{
		ClinicID:       clinicID,
		Name:           name,
		Specialization: specialization,
		Status:         DoctorActive,
	}
	created, err := s.repo.CreateDoctor(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return created, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) ListDoctorsByClinic(ctx context.Context, clinicID uuid.UUID) ([]Doctor, error) {
	if _, err := s.repo.GetClinicByID(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.repo.ListDoctorsByClinic(ctx, clinicID)
}

// EnsureDoctor checks that the doctor exists.
func (s *Service) EnsureDoctor(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetDoctorByID(ctx, id)
	return err
}

// EnsureActiveDoctor is the precondition check run before slot creation.
func (s *Service) EnsureActiveDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		return err
	}
	if !d.IsActive() {
		return ErrDoctorInactive
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, name string, email, phone *string) (*Patient, error) {
	p := &Patient{Name: name, Email: email, Phone: phone}
	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return created, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

// EnsurePatient is the precondition check run before booking.
func (s *Service) EnsurePatient(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetPatientByID(ctx, id)
	return err
}
