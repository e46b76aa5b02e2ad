package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-at-least-32-bytes!!")

func TestGenerateTokenPair(t *testing.T) {
	pair, access, refresh, err := GenerateTokenPair("user-1", testSecret, 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	require.Equal(t, TokenTypeAccess, access.TokenType)
	require.Equal(t, TokenTypeRefresh, refresh.TokenType)
	require.Equal(t, "user-1", access.UserID)
	require.Equal(t, "user-1", refresh.UserID)
	require.NotEqual(t, access.JTI, refresh.JTI)
	require.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
}

func TestDecodeTokenRoundTrip(t *testing.T) {
	pair, access, refresh, err := GenerateTokenPair("user-1", testSecret, 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	claims, err := DecodeToken(pair.AccessToken, testSecret)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
	require.Equal(t, string(TokenTypeAccess), claims.TokenType)
	require.Equal(t, access.JTI, claims.JTI())

	claims, err = DecodeToken(pair.RefreshToken, testSecret)
	require.NoError(t, err)
	require.Equal(t, string(TokenTypeRefresh), claims.TokenType)
	require.Equal(t, refresh.JTI, claims.JTI())
}

func TestDecodeTokenWrongSecret(t *testing.T) {
	pair, _, _, err := GenerateTokenPair("user-1", testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = DecodeToken(pair.AccessToken, []byte("another-secret-key-32-bytes-long!!"))
	require.EqualError(t, err, "Invalid token signature")
}

func TestDecodeTokenExpired(t *testing.T) {
	pair, _, _, err := GenerateTokenPair("user-1", testSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = DecodeToken(pair.AccessToken, testSecret)
	require.EqualError(t, err, "Token has expired")
}

func TestDecodeTokenMalformed(t *testing.T) {
	_, err := DecodeToken("not.a.jwt", testSecret)
	require.EqualError(t, err, "Invalid token")
}

func TestJwtTokenRevoke(t *testing.T) {
	_, _, refresh, err := GenerateTokenPair("user-1", testSecret, time.Minute, time.Hour)
	require.NoError(t, err)

	require.True(t, refresh.IsValid())
	require.False(t, refresh.IsRevoked())

	refresh.Revoke()
	require.True(t, refresh.IsRevoked())
	require.False(t, refresh.IsValid())
	require.NotNil(t, refresh.RevokedAt)

	firstRevokedAt := *refresh.RevokedAt
	refresh.Revoke()
	require.Equal(t, firstRevokedAt, *refresh.RevokedAt)
}

func TestJwtTokenExpiry(t *testing.T) {
	_, access, _, err := GenerateTokenPair("user-1", testSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	require.True(t, access.IsExpired())
	require.False(t, access.IsValid())
	require.False(t, access.IsRevoked())
}
