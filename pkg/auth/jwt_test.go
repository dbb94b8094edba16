package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched-api/internal/model"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.Generate(id, model.PrincipalKindPatient)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.PrincipalID)
	assert.Equal(t, model.PrincipalKindPatient, claims.Kind)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Generate(uuid.New(), model.PrincipalKindDoctor)
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	token, err := svc.Generate(uuid.New(), model.PrincipalKindDoctor)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
}
