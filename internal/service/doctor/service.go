package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
)

const (
	listCacheTTL    = 1 * time.Minute
	cacheCleanupTTL = 5 * time.Minute
)

type DoctorService interface {
	List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error)
}

type Service struct {
	repo             repository.DoctorRepository
	availabilityRepo repository.AvailabilityRepository
	listCache        *cache.Cache
}

func NewService(repo repository.DoctorRepository, availabilityRepo repository.AvailabilityRepository) *Service {
	return &Service{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		listCache:        cache.New(listCacheTTL, cacheCleanupTTL),
	}
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	key := listCacheKey(filters)
	if cached, ok := s.listCache.Get(key); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal("failed to list doctors", err)
	}

	s.listCache.Set(key, doctors, cache.DefaultExpiration)
	return doctors, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("doctor not found")
		}
		return nil, apperrors.Internal("failed to get doctor", err)
	}

	slots, err := s.availabilityRepo.ListOpen(ctx, id, nil, nil)
	if err != nil {
		return nil, apperrors.Internal("failed to list availability", err)
	}

	return &model.DoctorProfile{Doctor: *doctor, Availabilities: slots}, nil
}

func (s *Service) UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error) {
	doctor, err := s.repo.UpdateConsultationLocations(ctx, id, locations)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("doctor not found")
		}
		return nil, apperrors.Internal("failed to update consultation locations", err)
	}

	// Stale list entries would advertise the old locations.
	s.listCache.Flush()
	return doctor, nil
}

func listCacheKey(filters *model.DoctorFilters) string {
	if filters == nil {
		return "doctors::::"
	}
	return fmt.Sprintf("doctors:%s:%s:%s:%s", filters.Specialty, filters.City, filters.State, filters.Name)
}
