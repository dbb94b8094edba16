package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
)

// Sentinel errors surfaced by repository implementations. Services translate
// these into the application error taxonomy.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrSlotUnavailable = errors.New("slot is no longer available")
	ErrAlreadyCanceled = errors.New("appointment is already canceled")
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		UpdateConsultationLocations(ctx context.Context, id uuid.UUID, locations []string) (*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	}

	AvailabilityRepository interface {
		Create(ctx context.Context, slot *model.AvailabilitySlot) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error)
		HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error)
		// ListOpen returns unreserved future slots ordered by start time,
		// optionally bounded to a [from, to) window.
		ListOpen(ctx context.Context, doctorID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error)
	}

	// AppointmentRepository owns the transactional reserve/release state
	// transitions straddling slots and appointments.
	AppointmentRepository interface {
		// Reserve atomically claims the slot (compare-and-set on reserved)
		// and inserts the appointment. Returns ErrSlotUnavailable when a
		// concurrent caller won the slot.
		Reserve(ctx context.Context, slotID, patientID uuid.UUID) (*model.Appointment, error)
		// Cancel atomically marks the appointment canceled and releases its
		// slot. Returns ErrAlreadyCanceled when the appointment is terminal.
		Cancel(ctx context.Context, appointmentID, slotID uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
