package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	token, err := Sign("s3cret", "operator", time.Minute)
	require.NoError(t, err)
	require.NoError(t, Verify("s3cret", token))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign("s3cret", "operator", time.Minute)
	require.NoError(t, err)
	require.ErrorIs(t, Verify("wrong", token), ErrTokenInvalid)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := Sign("s3cret", "operator", -time.Minute)
	require.NoError(t, err)
	require.ErrorIs(t, Verify("s3cret", token), ErrTokenExpired)
}
