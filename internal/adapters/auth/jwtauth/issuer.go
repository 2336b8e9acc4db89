package jwtauth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issue firma un token HS256 para un caregiver. Lo usan los tests y el
// seed para generar credenciales de dev; no hay endpoint de login.
func Issue(secret, issuer, caregiverID, email, role string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrNotConfigured
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	tc := tokenClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caregiverID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return tok.SignedString([]byte(secret))
}
