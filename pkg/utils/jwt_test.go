package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	subject := uuid.New()

	token, err := GenerateToken(subject, "admin", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, subject, identity.Subject)
	assert.Equal(t, "admin", identity.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "user", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "user", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenMissing(t *testing.T) {
	_, err := ValidateToken("", "secret")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestValidateTokenStripsBearerPrefix(t *testing.T) {
	subject := uuid.New()
	token, err := GenerateToken(subject, "user", "secret", time.Hour)
	require.NoError(t, err)

	identity, err := ValidateToken("Bearer "+token, "secret")
	require.NoError(t, err)
	assert.Equal(t, subject, identity.Subject)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}
