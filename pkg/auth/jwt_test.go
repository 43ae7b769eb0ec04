package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", "scholarmind", ttl)
	require.NoError(t, err)
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t, time.Hour)

	token, err := s.GenerateToken("user-1", "ada@example.com", "Ada")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.DisplayName)

	t.Run("accepts a Bearer prefix", func(t *testing.T) {
		claims, err := s.ValidateToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	s := newTestTokenService(t, time.Hour)

	t.Run("empty token", func(t *testing.T) {
		_, err := s.ValidateToken("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other, err := NewTokenService("other-secret", "scholarmind", time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken("user-1", "ada@example.com", "")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestTokenService(t, -time.Minute)
		token, err := expired.GenerateToken("user-1", "ada@example.com", "")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewTokenService("test-secret", "someone-else", time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken("user-1", "ada@example.com", "")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "scholarmind", time.Hour)
	assert.Error(t, err)
}
