package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateJWT("secret", id, "jane@example.org", "staff", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != id || claims.Email != "jane@example.org" || claims.Role != "staff" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := ParseJWT("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret must be rejected, got %v", err)
	}
	if _, err := ParseJWT("secret", token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token must be rejected, got %v", err)
	}
}

func TestJWTDefaultExpiration(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), "a@example.org", "member", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	// Non-positive expiration falls back to 24h.
	if _, err := ParseJWT("secret", token); err != nil {
		t.Errorf("expected default expiration, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("short password accepted")
	}

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("CheckPassword: %v", err)
	}
	if err := CheckPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
