package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	"github.com/medisched/medisched-api/pkg/auth"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
	"github.com/medisched/medisched-api/pkg/security"
)

type AuthService interface {
	RegisterDoctor(ctx context.Context, req *model.RegisterDoctorRequest) (*model.AuthResponse, error)
	RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

type Service struct {
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	tokens      *auth.TokenService
	hasher      security.PasswordHasher
}

func NewService(doctorRepo repository.DoctorRepository, patientRepo repository.PatientRepository,
	tokens *auth.TokenService, hasher security.PasswordHasher) *Service {
	return &Service{
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		tokens:      tokens,
		hasher:      hasher,
	}
}

func (s *Service) RegisterDoctor(ctx context.Context, req *model.RegisterDoctorRequest) (*model.AuthResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	doctor := &model.Doctor{
		Base:                  model.NewBase(),
		Name:                  req.Name,
		Email:                 req.Email,
		PasswordHash:          hash,
		Specialty:             req.Specialty,
		Experience:            req.Experience,
		City:                  req.City,
		State:                 req.State,
		ConsultationLocations: req.ConsultationLocations,
	}

	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal("failed to create doctor", err)
	}

	resp, err := s.respond(doctor.ID, doctor.Name, doctor.Email, model.PrincipalKindDoctor)
	if err != nil {
		return nil, err
	}
	resp.Specialty = doctor.Specialty
	resp.Experience = doctor.Experience
	resp.City = doctor.City
	resp.State = doctor.State
	resp.ConsultationLocations = doctor.ConsultationLocations
	return resp, nil
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.AuthResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	patient := &model.Patient{
		Base:         model.NewBase(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal("failed to create patient", err)
	}

	return s.respond(patient.ID, patient.Name, patient.Email, model.PrincipalKindPatient)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	switch req.Kind {
	case model.PrincipalKindDoctor:
		doctor, err := s.doctorRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, invalidCredentials(err)
		}
		if err := s.hasher.Compare(doctor.PasswordHash, req.Password); err != nil {
			return nil, apperrors.Unauthenticated("invalid credentials")
		}
		resp, err := s.respond(doctor.ID, doctor.Name, doctor.Email, model.PrincipalKindDoctor)
		if err != nil {
			return nil, err
		}
		resp.Specialty = doctor.Specialty
		resp.Experience = doctor.Experience
		resp.City = doctor.City
		resp.State = doctor.State
		resp.ConsultationLocations = doctor.ConsultationLocations
		return resp, nil
	case model.PrincipalKindPatient:
		patient, err := s.patientRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, invalidCredentials(err)
		}
		if err := s.hasher.Compare(patient.PasswordHash, req.Password); err != nil {
			return nil, apperrors.Unauthenticated("invalid credentials")
		}
		return s.respond(patient.ID, patient.Name, patient.Email, model.PrincipalKindPatient)
	default:
		return nil, apperrors.Validation("unknown user type")
	}
}

func (s *Service) respond(id uuid.UUID, name, email string, kind model.PrincipalKind) (*model.AuthResponse, error) {
	token, err := s.tokens.Generate(id, kind)
	if err != nil {
		return nil, apperrors.Internal("failed to generate token", err)
	}
	return &model.AuthResponse{
		ID:    id,
		Name:  name,
		Email: email,
		Kind:  kind,
		Token: token,
	}, nil
}

func invalidCredentials(err error) error {
	if err == repository.ErrNotFound {
		return apperrors.Unauthenticated("invalid credentials")
	}
	return apperrors.Internal("failed to look up account", err)
}
