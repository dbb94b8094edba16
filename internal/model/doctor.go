package model

import (
	"github.com/lib/pq"
)

type Doctor struct {
	Base
	Name                  string         `db:"name" json:"name"`
	Email                 string         `db:"email" json:"email"`
	PasswordHash          string         `db:"password_hash" json:"-"`
	Specialty             string         `db:"specialty" json:"specialty"`
	Experience            int            `db:"experience" json:"experience"`
	City                  string         `db:"city" json:"city"`
	State                 string         `db:"state" json:"state"`
	ConsultationLocations pq.StringArray `db:"consultation_locations" json:"consultation_locations"`
}

// DoctorProfile is a doctor with its open future slots embedded.
type DoctorProfile struct {
	Doctor
	Availabilities []*AvailabilitySlot `json:"availabilities"`
}

type DoctorFilters struct {
	Specialty string `form:"specialty"`
	City      string `form:"city"`
	State     string `form:"state"`
	Name      string `form:"name"`
}

type UpdateLocationsRequest struct {
	ConsultationLocations []string `json:"consultation_locations" binding:"required,min=1,dive,required"`
}
