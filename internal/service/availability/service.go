package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type AvailabilityService interface {
	CreateSlot(ctx context.Context, doctorID uuid.UUID, req *model.CreateSlotRequest) (*model.AvailabilitySlot, error)
	ListOpenSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.AvailabilitySlot, error)
}

type Service struct {
	repo       repository.AvailabilityRepository
	doctorRepo repository.DoctorRepository
}

func NewService(repo repository.AvailabilityRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{repo: repo, doctorRepo: doctorRepo}
}

func (s *Service) CreateSlot(ctx context.Context, doctorID uuid.UUID, req *model.CreateSlotRequest) (*model.AvailabilitySlot, error) {
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("doctor not found")
		}
		return nil, apperrors.Internal("failed to get doctor", err)
	}

	if !locationAllowed(doctor.ConsultationLocations, req.Location) {
		return nil, apperrors.Validation(fmt.Sprintf(
			"location %q is not one of the doctor's consultation locations %v",
			req.Location, []string(doctor.ConsultationLocations)))
	}

	if !req.Start.Before(req.End) {
		return nil, apperrors.Validation("slot start must be before slot end")
	}
	if !req.Start.After(time.Now()) {
		return nil, apperrors.Validation("slot must start in the future")
	}

	overlap, err := s.repo.HasOverlap(ctx, doctorID, req.Start, req.End)
	if err != nil {
		return nil, apperrors.Internal("failed to check for overlapping slots", err)
	}
	if overlap {
		return nil, apperrors.Conflict("slot overlaps an existing availability window")
	}

	slot := &model.AvailabilitySlot{
		Base:      model.NewBase(),
		DoctorID:  doctorID,
		StartTime: req.Start,
		EndTime:   req.End,
		Location:  req.Location,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, apperrors.Internal("failed to create slot", err)
	}
	return slot, nil
}

// ListOpenSlots returns a doctor's open future slots, optionally restricted
// to a single calendar day (date in YYYY-MM-DD, interpreted in server local
// time).
func (s *Service) ListOpenSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.AvailabilitySlot, error) {
	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("doctor not found")
		}
		return nil, apperrors.Internal("failed to get doctor", err)
	}

	var from, to *time.Time
	if date != "" {
		day, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			return nil, apperrors.Validation("date must be in YYYY-MM-DD format")
		}
		end := day.AddDate(0, 0, 1)
		from, to = &day, &end
	}

	slots, err := s.repo.ListOpen(ctx, doctorID, from, to)
	if err != nil {
		return nil, apperrors.Internal("failed to list slots", err)
	}
	return slots, nil
}

func locationAllowed(allowed []string, location string) bool {
	for _, l := range allowed {
		if l == location {
			return true
		}
	}
	return false
}
