package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	authService "github.com/medisched/medisched-api/internal/service/auth"
	availabilityService "github.com/medisched/medisched-api/internal/service/availability"
	doctorService "github.com/medisched/medisched-api/internal/service/doctor"
	"github.com/medisched/medisched-api/pkg/auth"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
	"github.com/medisched/medisched-api/pkg/security"
)

// fakeDoctorDirectory holds the single doctor of the shared store, so the
// lifecycle test can run registration through the same state the booking
// fakes read.
type fakeDoctorDirectory struct{ store *fakeStore }

func (r *fakeDoctorDirectory) Create(ctx context.Context, doctor *model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.doctor = *doctor
	return nil
}

func (r *fakeDoctorDirectory) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if id != r.store.doctor.ID {
		return nil, repository.ErrNotFound
	}
	copied := r.store.doctor
	return &copied, nil
}

func (r *fakeDoctorDirectory) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if email != r.store.doctor.Email {
		return nil, repository.ErrNotFound
	}
	copied := r.store.doctor
	return &copied, nil
}

func (r *fakeDoctorDirectory) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := r.store.doctor
	return []*model.Doctor{&copied}, nil
}

func (r *fakeDoctorDirectory) UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if id != r.store.doctor.ID {
		return nil, repository.ErrNotFound
	}
	r.store.doctor.ConsultationLocations = locations
	copied := r.store.doctor
	return &copied, nil
}

type fakePatientLedger struct{ store *fakeStore }

func (r *fakePatientLedger) Create(ctx context.Context, patient *model.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.patient = *patient
	return nil
}

func (r *fakePatientLedger) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if id != r.store.patient.ID {
		return nil, repository.ErrNotFound
	}
	copied := r.store.patient
	return &copied, nil
}

func (r *fakePatientLedger) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if email != r.store.patient.Email {
		return nil, repository.ErrNotFound
	}
	copied := r.store.patient
	return &copied, nil
}

// TestBookingLifecycle walks the whole patient journey through the real
// services: register both parties, publish slots, book, list, cancel, and
// see the slot reappear in the doctor's profile.
func TestBookingLifecycle(t *testing.T) {
	store := newFakeStore()
	doctors := &fakeDoctorDirectory{store: store}
	patients := &fakePatientLedger{store: store}
	slots := &fakeAvailabilityRepo{store: store}

	accounts := authService.NewService(doctors, patients,
		auth.NewTokenService("lifecycle-secret", time.Hour),
		security.NewBcryptHasher(bcrypt.MinCost))
	schedule := availabilityService.NewService(slots, doctors)
	directory := doctorService.NewService(doctors, slots)
	bookings, outbox := newTestService(store)

	ctx := context.Background()

	doctorResp, err := accounts.RegisterDoctor(ctx, &model.RegisterDoctorRequest{
		Name:                  "Dr. Asha Rao",
		Email:                 "asha@example.com",
		Password:              "rosemary-kite",
		Specialty:             "cardiology",
		Experience:            12,
		City:                  "Pune",
		State:                 "MH",
		ConsultationLocations: []string{"Downtown Clinic"},
	})
	require.NoError(t, err)

	patientResp, err := accounts.RegisterPatient(ctx, &model.RegisterPatientRequest{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "rosemary-kite",
	})
	require.NoError(t, err)

	day := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	morning, err := schedule.CreateSlot(ctx, doctorResp.ID, &model.CreateSlotRequest{
		Start:    day,
		End:      day.Add(time.Hour),
		Location: "Downtown Clinic",
	})
	require.NoError(t, err)

	// A window starting exactly where the first one ends is accepted.
	_, err = schedule.CreateSlot(ctx, doctorResp.ID, &model.CreateSlotRequest{
		Start:    day.Add(time.Hour),
		End:      day.Add(2 * time.Hour),
		Location: "Downtown Clinic",
	})
	require.NoError(t, err)

	// An intersecting window is not.
	_, err = schedule.CreateSlot(ctx, doctorResp.ID, &model.CreateSlotRequest{
		Start:    day.Add(30 * time.Minute),
		End:      day.Add(90 * time.Minute),
		Location: "Downtown Clinic",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	profile, err := directory.GetProfile(ctx, doctorResp.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Availabilities, 2)

	detail, err := bookings.Book(ctx, patientResp.ID, morning.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, detail.Status)

	// The reserved slot drops out of the doctor's open availability.
	profile, err = directory.GetProfile(ctx, doctorResp.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Availabilities, 1)

	booked, err := bookings.ListForPatient(ctx, patientResp.ID)
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.True(t, booked[0].SlotStart.Equal(morning.StartTime))

	require.NoError(t, bookings.Cancel(ctx, patientResp.ID, detail.ID))

	// Canceling releases the slot back into the profile.
	profile, err = directory.GetProfile(ctx, doctorResp.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Availabilities, 2)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventBookingConfirmed, outbox.events[0].EventType)
	assert.Equal(t, model.EventBookingCanceled, outbox.events[1].EventType)
}
