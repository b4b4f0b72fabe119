package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/pipeliner/pkg/auth"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := NewJWTService("test-secret", 24)

	account := auth.Account{
		ID:       "acc1",
		Username: "testuser",
	}

	token, err := service.GenerateToken(account)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	accountID, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc1", accountID)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	service := NewJWTService("test-secret", 24)
	other := NewJWTService("other-secret", 24)

	token, err := service.GenerateToken(auth.Account{ID: "acc1", Username: "testuser"})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	service := NewJWTService("test-secret", 0)
	service.tokenExpiration = -time.Minute

	token, err := service.GenerateToken(auth.Account{ID: "acc1", Username: "testuser"})
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	service := NewJWTService("test-secret", 24)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
