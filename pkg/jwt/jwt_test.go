package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")
	tok, exp, err := GenerateToken(secret, "u-1", "a@b.co", TypeAccess, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := ParseToken(secret, TypeAccess, tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "a@b.co", claims.Email)

	_, err = ParseToken(secret, TypeRefresh, tok)
	require.Error(t, err)
	_, err = ParseToken([]byte("other"), TypeAccess, tok)
	require.Error(t, err)
}

func TestExpiresAt(t *testing.T) {
	tok, exp, err := GenerateToken([]byte("s"), "u", "", TypeAccess, 10*time.Minute)
	require.NoError(t, err)

	got, err := ExpiresAt(tok)
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), got.Unix())

	_, err = ExpiresAt("garbage")
	require.Error(t, err)
}

func TestShouldRefresh(t *testing.T) {
	require.True(t, ShouldRefresh(time.Now().Add(30*time.Second), time.Minute))
	require.False(t, ShouldRefresh(time.Now().Add(time.Hour), time.Minute))
}
