package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBase allocates identity and timestamps for a new record.
func NewBase() Base {
	now := time.Now()
	return Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// PrincipalKind discriminates the two principal collections.
type PrincipalKind string

const (
	PrincipalKindDoctor  PrincipalKind = "doctor"
	PrincipalKindPatient PrincipalKind = "patient"
)

func (k PrincipalKind) Valid() bool {
	return k == PrincipalKindDoctor || k == PrincipalKindPatient
}
