package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked   AppointmentStatus = "booked"
	AppointmentStatusCanceled AppointmentStatus = "canceled"
)

type Appointment struct {
	Base
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	SlotID    uuid.UUID         `db:"slot_id" json:"slot_id"`
	Status    AppointmentStatus `db:"status" json:"status"`
}

// AppointmentDetail embeds the slot window and counterpart principals for
// list responses and notification payloads.
type AppointmentDetail struct {
	Appointment
	SlotStart    time.Time `db:"slot_start" json:"slot_start"`
	SlotEnd      time.Time `db:"slot_end" json:"slot_end"`
	SlotLocation string    `db:"slot_location" json:"slot_location"`
	DoctorName   string    `db:"doctor_name" json:"doctor_name"`
	DoctorEmail  string    `db:"doctor_email" json:"doctor_email"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	PatientEmail string    `db:"patient_email" json:"patient_email"`
}

type BookAppointmentRequest struct {
	SlotID uuid.UUID `json:"slot_id" binding:"required"`
}
