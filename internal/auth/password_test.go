package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Procure123!")
	require.NoError(t, err)
	require.True(t, VerifyPassword("Procure123!", hash))
	require.False(t, VerifyPassword("Procure123?", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.True(t, VerifyPassword("same-password", first))
	require.True(t, VerifyPassword("same-password", second))
}

func TestHashPasswordEncoding(t *testing.T) {
	hash, err := HashPassword("x")
	require.NoError(t, err)
	salt, key, ok := strings.Cut(hash, "$")
	require.True(t, ok)
	require.Len(t, salt, saltSize*2)
	require.Len(t, key, keySize*2)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	require.False(t, VerifyPassword("x", ""))
	require.False(t, VerifyPassword("x", "no-delimiter"))
	require.False(t, VerifyPassword("x", "nothex$abcd"))
	require.False(t, VerifyPassword("x", "abcd$nothex"))
	// A valid salt with an empty or truncated key segment must never match.
	require.False(t, VerifyPassword("x", "deadbeefdeadbeefdeadbeefdeadbeef$"))
	require.False(t, VerifyPassword("x", "deadbeefdeadbeefdeadbeefdeadbeef$abcd"))
}
