// Package security implements the passwordless credential pipeline:
// short-lived login secrets and the bearer tokens handed out once a
// secret is redeemed.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the validity window of an issued bearer token.
const SessionTTL = 15 * time.Minute

// ErrUnauthenticated covers every possible verification failure. A
// client must not be able to tell a forged token from an expired one
var ErrUnauthenticated = errors.New("unauthenticated")

type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	// Contact is the email or phone the user proved ownership of
	Contact string `json:"contact"`
}

// Sessions mints and validates bearer tokens. The signing key is
// loaded once at startup and never rotated at runtime.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret []byte) *Sessions {
	return &Sessions{secret: secret, ttl: SessionTTL}
}

// Issue signs a claim set binding the user to the contact they logged
// in with. Possession of the result is proof of authentication, the
// server keeps no session state.
func (s *Sessions) Issue(userID, contact string) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:  userID,
		Contact: contact,
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token, %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry. Bad signature, malformed input
// and expiry all collapse into ErrUnauthenticated.
func (s *Sessions) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	})
	if err != nil || !t.Valid || claims.UserID == "" {
		return nil, ErrUnauthenticated
	}

	return claims, nil
}
