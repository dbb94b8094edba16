package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/internal/repository"
	apperrors "github.com/medisched/medisched-api/pkg/errors"
	"github.com/medisched/medisched-api/pkg/logger"
	"github.com/medisched/medisched-api/pkg/metrics"
)

type BookingService interface {
	Book(ctx context.Context, patientID, slotID uuid.UUID) (*model.AppointmentDetail, error)
	Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error)
}

type Service struct {
	appointmentRepo  repository.AppointmentRepository
	availabilityRepo repository.AvailabilityRepository
	outboxRepo       repository.OutboxRepository
	metrics          *metrics.Metrics
	logger           *logger.Logger
}

func NewService(appointmentRepo repository.AppointmentRepository, availabilityRepo repository.AvailabilityRepository,
	outboxRepo repository.OutboxRepository, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		outboxRepo:       outboxRepo,
		metrics:          m,
		logger:           l,
	}
}

// Book claims the slot for the patient. The compare-and-set on the slot's
// reserved flag happens inside a single database transaction, so exactly one
// of any number of concurrent callers wins; the rest get a conflict.
func (s *Service) Book(ctx context.Context, patientID, slotID uuid.UUID) (*model.AppointmentDetail, error) {
	slot, err := s.availabilityRepo.Get(ctx, slotID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("slot not found")
		}
		return nil, apperrors.Internal("failed to get slot", err)
	}
	if !slot.StartTime.After(time.Now()) {
		return nil, apperrors.Validation("slot is in the past")
	}

	appointment, err := s.appointmentRepo.Reserve(ctx, slotID, patientID)
	if err != nil {
		if err == repository.ErrSlotUnavailable {
			s.metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict("slot is no longer available")
		}
		return nil, apperrors.Internal("failed to reserve slot", err)
	}
	s.metrics.BookingsReserved.Inc()

	detail, err := s.appointmentRepo.GetDetail(ctx, appointment.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load appointment", err)
	}

	s.enqueueEvent(ctx, model.EventBookingConfirmed, detail)
	return detail, nil
}

// Cancel releases the patient's appointment. Only the owning patient may
// cancel, and canceling twice is rejected rather than treated as a no-op.
func (s *Service) Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) error {
	detail, err := s.appointmentRepo.GetDetail(ctx, appointmentID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("appointment not found")
		}
		return apperrors.Internal("failed to get appointment", err)
	}

	if detail.PatientID != patientID {
		return apperrors.Forbidden("appointment belongs to a different patient")
	}
	if detail.Status == model.AppointmentStatusCanceled {
		return apperrors.Validation("appointment is already canceled")
	}

	if err := s.appointmentRepo.Cancel(ctx, appointmentID, detail.SlotID); err != nil {
		if err == repository.ErrAlreadyCanceled {
			return apperrors.Validation("appointment is already canceled")
		}
		return apperrors.Internal("failed to cancel appointment", err)
	}
	s.metrics.BookingsCanceled.Inc()

	s.enqueueEvent(ctx, model.EventBookingCanceled, detail)
	return nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	details, err := s.appointmentRepo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal("failed to list appointments", err)
	}
	return details, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	details, err := s.appointmentRepo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal("failed to list appointments", err)
	}
	return details, nil
}

// enqueueEvent records a notification event in the outbox. Failure to
// enqueue never fails the booking; the state change already committed.
func (s *Service) enqueueEvent(ctx context.Context, eventType string, detail *model.AppointmentDetail) {
	payload, err := json.Marshal(model.BookingEvent{
		AppointmentID: detail.ID,
		DoctorName:    detail.DoctorName,
		DoctorEmail:   detail.DoctorEmail,
		PatientName:   detail.PatientName,
		PatientEmail:  detail.PatientEmail,
		SlotStart:     detail.SlotStart,
		SlotEnd:       detail.SlotEnd,
		Location:      detail.SlotLocation,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal booking event", "appointment_id", detail.ID)
		return
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue booking event", "appointment_id", detail.ID, "event_type", eventType)
	}
}
