package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
)

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("battery staple", hash))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, issued, err := m.GenerateJWT("user-1", "Admin")
	require.NoError(t, err)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.NotEmpty(t, claims.ID)

	_, second, err := m.GenerateJWT("user-1", "Admin")
	require.NoError(t, err)
	assert.NotEqual(t, issued.ID, second.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.GenerateJWT("user-1", "Student")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).ValidateJWT(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = m.ValidateJWT("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateJWT("user-1", "Student")
	require.NoError(t, err)
	_, err = m.ValidateJWT(old)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, _, err = NewTokenManager("", time.Hour).GenerateJWT("user-1", "Student")
	assert.Error(t, err)
}
