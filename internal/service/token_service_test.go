package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipehub/internal/apperrors"
	"recipehub/internal/config"
	"recipehub/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	svc := testTokenService()

	token, expiresIn, err := svc.Issue(&models.User{ID: 7, Name: "alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), expiresIn)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := testTokenService()

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(&config.Config{
		JWTSecret:      "another-secret-another-secret-another!",
		AccessTokenTTL: 15 * time.Minute,
	})
	token, _, err := issuer.Issue(&models.User{ID: 7, Name: "alice"})
	require.NoError(t, err)

	_, err = testTokenService().Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenService(&config.Config{
		JWTSecret:      "test-secret-test-secret-test-secret!",
		AccessTokenTTL: -time.Minute,
	})
	token, _, err := issuer.Issue(&models.User{ID: 7, Name: "alice"})
	require.NoError(t, err)

	_, err = testTokenService().Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
