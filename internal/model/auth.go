package model

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string        `json:"email" binding:"required,email"`
	Password string        `json:"password" binding:"required,min=8"`
	Kind     PrincipalKind `json:"user_type" binding:"required,oneof=doctor patient"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterDoctorRequest struct {
	Name                  string   `json:"name" binding:"required"`
	Email                 string   `json:"email" binding:"required,email"`
	Password              string   `json:"password" binding:"required,min=8"`
	Specialty             string   `json:"specialty" binding:"required"`
	Experience            int      `json:"experience" binding:"gte=0"`
	City                  string   `json:"city" binding:"required"`
	State                 string   `json:"state" binding:"required"`
	ConsultationLocations []string `json:"consultation_locations" binding:"required,min=1,dive,required"`
}

// AuthResponse mirrors the registration/login payload: the principal plus a
// signed bearer token.
type AuthResponse struct {
	ID                    uuid.UUID     `json:"id"`
	Name                  string        `json:"name"`
	Email                 string        `json:"email"`
	Kind                  PrincipalKind `json:"user_type"`
	Specialty             string        `json:"specialty,omitempty"`
	Experience            int           `json:"experience,omitempty"`
	City                  string        `json:"city,omitempty"`
	State                 string        `json:"state,omitempty"`
	ConsultationLocations []string      `json:"consultation_locations,omitempty"`
	Token                 string        `json:"token"`
}
