package booking

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
	"github.com/medisched/medisched-api/pkg/logger"
	"github.com/medisched/medisched-api/pkg/metrics"
)

// fakeStore backs both the availability and appointment repository fakes with
// the same mutex-guarded state, so reservations behave like the database's
// compare-and-set.
type fakeStore struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*model.AvailabilitySlot
	appointments map[uuid.UUID]*model.Appointment
	doctor       model.Doctor
	patient      model.Patient
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:        make(map[uuid.UUID]*model.AvailabilitySlot),
		appointments: make(map[uuid.UUID]*model.Appointment),
		doctor: model.Doctor{
			Base:  model.NewBase(),
			Name:  "Dr. Asha Rao",
			Email: "asha@example.com",
		},
		patient: model.Patient{
			Base:  model.NewBase(),
			Name:  "Ravi Kumar",
			Email: "ravi@example.com",
		},
	}
}

func (s *fakeStore) addSlot(start time.Time) *model.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := &model.AvailabilitySlot{
		Base:      model.NewBase(),
		DoctorID:  s.doctor.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Location:  "Downtown Clinic",
	}
	s.slots[slot.ID] = slot
	return slot
}

type fakeAvailabilityRepo struct{ store *fakeStore }

func (r *fakeAvailabilityRepo) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.slots[slot.ID] = slot
	return nil
}

func (r *fakeAvailabilityRepo) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	slot, ok := r.store.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeAvailabilityRepo) HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, slot := range r.store.slots {
		if slot.DoctorID == doctorID && slot.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAvailabilityRepo) ListOpen(ctx context.Context, doctorID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var open []*model.AvailabilitySlot
	for _, slot := range r.store.slots {
		if slot.DoctorID == doctorID && !slot.Reserved {
			copied := *slot
			open = append(open, &copied)
		}
	}
	return open, nil
}

type fakeAppointmentRepo struct{ store *fakeStore }

func (r *fakeAppointmentRepo) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	slot, ok := r.store.slots[slotID]
	if !ok || slot.Reserved {
		return nil, repository.ErrSlotUnavailable
	}
	slot.Reserved = true
	appointment := &model.Appointment{
		Base:      model.NewBase(),
		DoctorID:  slot.DoctorID,
		PatientID: patientID,
		SlotID:    slotID,
		Status:    model.AppointmentStatusBooked,
	}
	r.store.appointments[appointment.ID] = appointment
	return appointment, nil
}

func (r *fakeAppointmentRepo) Cancel(ctx context.Context, appointmentID, slotID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	appointment, ok := r.store.appointments[appointmentID]
	if !ok {
		return repository.ErrNotFound
	}
	if appointment.Status == model.AppointmentStatusCanceled {
		return repository.ErrAlreadyCanceled
	}
	appointment.Status = model.AppointmentStatusCanceled
	if slot, ok := r.store.slots[slotID]; ok {
		slot.Reserved = false
	}
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	appointment, ok := r.store.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	appointment, ok := r.store.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	slot := r.store.slots[appointment.SlotID]
	return &model.AppointmentDetail{
		Appointment:  *appointment,
		SlotStart:    slot.StartTime,
		SlotEnd:      slot.EndTime,
		SlotLocation: slot.Location,
		DoctorName:   r.store.doctor.Name,
		DoctorEmail:  r.store.doctor.Email,
		PatientName:  r.store.patient.Name,
		PatientEmail: r.store.patient.Email,
	}, nil
}

func (r *fakeAppointmentRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var details []*model.AppointmentDetail
	for _, appointment := range r.store.appointments {
		if appointment.PatientID == patientID {
			slot := r.store.slots[appointment.SlotID]
			details = append(details, &model.AppointmentDetail{
				Appointment: *appointment,
				SlotStart:   slot.StartTime,
				SlotEnd:     slot.EndTime,
			})
		}
	}
	return details, nil
}

func (r *fakeAppointmentRepo) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService(store *fakeStore) (*Service, *fakeOutboxRepo) {
	outbox := &fakeOutboxRepo{}
	l := logger.NewLogger(&logger.Config{Output: io.Discard})
	svc := NewService(
		&fakeAppointmentRepo{store: store},
		&fakeAvailabilityRepo{store: store},
		outbox,
		metrics.NewMetrics("test"),
		l,
	)
	return svc, outbox
}

func TestBookReservesSlotAndEnqueuesEvent(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(24 * time.Hour))
	svc, outbox := newTestService(store)

	detail, err := svc.Book(context.Background(), store.patient.ID, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, detail.Status)
	assert.Equal(t, store.patient.ID, detail.PatientID)
	assert.True(t, store.slots[slot.ID].Reserved)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventBookingConfirmed, outbox.events[0].EventType)
}

func TestBookRejectsPastSlot(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(-1 * time.Hour))
	svc, _ := newTestService(store)

	_, err := svc.Book(context.Background(), store.patient.ID, slot.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestBookUnknownSlotReturnsNotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.Book(context.Background(), store.patient.ID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestConcurrentBookingsExactlyOneWinner(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(24 * time.Hour))
	svc, outbox := newTestService(store)

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), uuid.New(), slot.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case apperrors.IsCode(err, apperrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, outbox.events, 1)
}

func TestCancelReleasesSlotForRebooking(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(24 * time.Hour))
	svc, outbox := newTestService(store)

	detail, err := svc.Book(context.Background(), store.patient.ID, slot.ID)
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), store.patient.ID, detail.ID)
	require.NoError(t, err)
	assert.False(t, store.slots[slot.ID].Reserved)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventBookingCanceled, outbox.events[1].EventType)

	// The released slot can be booked again.
	_, err = svc.Book(context.Background(), store.patient.ID, slot.ID)
	assert.NoError(t, err)
}

func TestCancelRejectsForeignAppointment(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(24 * time.Hour))
	svc, _ := newTestService(store)

	detail, err := svc.Book(context.Background(), store.patient.ID, slot.ID)
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), uuid.New(), detail.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	assert.True(t, store.slots[slot.ID].Reserved)
}

func TestCancelTwiceRejected(t *testing.T) {
	store := newFakeStore()
	slot := store.addSlot(time.Now().Add(24 * time.Hour))
	svc, _ := newTestService(store)

	detail, err := svc.Book(context.Background(), store.patient.ID, slot.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), store.patient.ID, detail.ID))
	err = svc.Cancel(context.Background(), store.patient.ID, detail.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}
