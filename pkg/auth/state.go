package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// signState returns a short-lived HS256 token binding the OAuth round trip
// to user.
func (g *Gate) signState(user string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.stateTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.stateSecret)
	if err != nil {
		return "", fmt.Errorf("signing oauth state: %w", err)
	}
	return signed, nil
}

// parseState verifies a state token and returns the user it was issued for.
func (g *Gate) parseState(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: missing", ErrInvalidState)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return g.stateSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || parsed == nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	user := strings.TrimSpace(claims.Subject)
	if user == "" {
		return "", fmt.Errorf("%w: subject is empty", ErrInvalidState)
	}
	return user, nil
}
