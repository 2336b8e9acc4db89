// Package jwtauth implementa auth.AuthVerifier con tokens HMAC firmados
// localmente. Se activa cuando hay JWT_SECRET; sin secret el middleware
// queda en modo dev.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prinik8/AIcare/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("jwtauth: secret not configured")
	ErrTokenEmpty    = errors.New("jwtauth: token is empty")
	ErrInvalidToken  = errors.New("jwtauth: invalid token")
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNotConfigured
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	caregiverID := strings.TrimSpace(tc.Subject)
	if caregiverID == "" {
		return auth.Claims{}, errors.New("jwtauth: claims missing subject")
	}

	return auth.Claims{
		CaregiverID: caregiverID,
		Email:       strings.TrimSpace(tc.Email),
		Role:        strings.TrimSpace(tc.Role),
	}, nil
}
