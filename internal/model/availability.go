package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a doctor-published bookable time window. The reserved
// flag is the single source of truth for bookability and is only mutated by
// the booking coordinator.
type AvailabilitySlot struct {
	Base
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Location  string    `db:"location" json:"location"`
	Reserved  bool      `db:"reserved" json:"reserved"`
}

// Overlaps reports whether the half-open window [start, end) intersects the
// slot's window. Back-to-back windows that merely touch do not overlap.
func (s *AvailabilitySlot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

type CreateSlotRequest struct {
	Start    time.Time `json:"start" binding:"required,futuredate"`
	End      time.Time `json:"end" binding:"required,gtfield=Start"`
	Location string    `json:"location" binding:"required"`
}
