package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	secret := "test-secret"
	issuer := "aicare"

	token, err := Issue(secret, issuer, "caregiver-1", "ana@example.com", "caregiver", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	v, err := NewVerifier(secret, issuer)
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.CaregiverID != "caregiver-1" {
		t.Fatalf("expected caregiver-1, got %s", claims.CaregiverID)
	}
	if claims.Email != "ana@example.com" || claims.Role != "caregiver" {
		t.Fatalf("expected email/role preserved, got %+v", claims)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := Issue("secret-a", "aicare", "caregiver-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	v, _ := NewVerifier("secret-b", "aicare")
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error with wrong secret")
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	token, err := Issue("secret", "other-app", "caregiver-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	v, _ := NewVerifier("secret", "aicare")
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error with wrong issuer")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	now := time.Now().Add(-2 * time.Hour)
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "caregiver-1",
			Issuer:    "aicare",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	v, _ := NewVerifier("secret", "aicare")
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestVerify_RejectsUnexpectedAlg(t *testing.T) {
	// alg none firmado "a mano"
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "caregiver-1", Issuer: "aicare"},
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	v, _ := NewVerifier("secret", "aicare")
	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Fatalf("expected error for alg=none token")
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "aicare",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	v, _ := NewVerifier("secret", "aicare")
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error for token without subject")
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	v, _ := NewVerifier("secret", "")
	if _, err := v.Verify(context.Background(), "  "); err != ErrTokenEmpty {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	if _, err := NewVerifier("  ", "aicare"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
