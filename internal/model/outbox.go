package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCanceled  = "booking.canceled"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// BookingEvent is the payload carried by booking.confirmed and
// booking.canceled outbox events. It holds everything the notification
// worker needs to render emails without reading the database again.
type BookingEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	DoctorName    string    `json:"doctor_name"`
	DoctorEmail   string    `json:"doctor_email"`
	PatientName   string    `json:"patient_name"`
	PatientEmail  string    `json:"patient_email"`
	SlotStart     time.Time `json:"slot_start"`
	SlotEnd       time.Time `json:"slot_end"`
	Location      string    `json:"location"`
}
