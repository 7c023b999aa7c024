package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sixywin-backend/internal/config"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret"})

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret"})
	other := NewJWTService(&config.Config{JWTSecret: "other-secret"})

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret"})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
