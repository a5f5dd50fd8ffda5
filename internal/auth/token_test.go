package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	signed, issued, err := manager.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := manager.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, issued.ID, claims.ID)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	signed, _, err := NewTokenManager("secret-a", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)
	signed, _, err := manager.Issue(1)
	require.NoError(t, err)

	_, err = manager.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	_, err := manager.Parse("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
