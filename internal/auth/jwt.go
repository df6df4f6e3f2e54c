// Package auth guards the monitor's mutate routes with an optional
// shared-secret bearer token, following the teacher's JWT verification
// pattern stripped of device pairing and refresh-token issuance — the
// monitor has no concept of a device identity, only "may mutate or not".
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type claims struct {
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for subject, valid for ttl. Operators mint
// tokens with this (or any HS256-compatible signer) out of band; the
// monitor itself never issues tokens.
func Sign(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "taskscheduler",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(secret))
}

// Verify parses and validates an HS256 token against secret.
func Verify(secret, token string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer("taskscheduler"),
	)

	parsed, err := parser.ParseWithClaims(token, &claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
