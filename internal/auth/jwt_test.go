package auth_test

import (
	"errors"
	"testing"
	"time"

	"accounthub/internal/auth"
)

func TestSignAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret", 24*time.Hour)

	token, err := m.SignToken(42, "ann@example.com", "admin")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("got uid %d, want 42", claims.UserID)
	}
	if claims.Email != "ann@example.com" {
		t.Fatalf("got email %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Fatalf("got role %q", claims.Role)
	}
	if claims.Subject != "42" {
		t.Fatalf("got subject %q, want 42", claims.Subject)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.SignToken(1, "a@x.com", "user")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = m.VerifyToken(token)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	signer := auth.NewManager("secret-one", time.Hour)
	verifier := auth.NewManager("secret-two", time.Hour)

	token, err := signer.SignToken(1, "a@x.com", "user")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = verifier.VerifyToken(token)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.VerifyToken("not-a-token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
