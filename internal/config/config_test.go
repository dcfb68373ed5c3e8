package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHIRT_ORDERS_OPEN", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("SITE_URL", "https://example.org/")

	cfg := Load()

	if cfg.ShirtOrdersOpen {
		t.Error("shirt orders should be closed by default")
	}
	if cfg.JWTExpiration != 24*time.Hour {
		t.Errorf("JWTExpiration = %s, want 24h", cfg.JWTExpiration)
	}
	if cfg.SiteURL != "https://example.org" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "true")
	if !getEnvBool("X_BOOL", false) {
		t.Error("expected true")
	}
	t.Setenv("X_BOOL", "garbage")
	if getEnvBool("X_BOOL", false) {
		t.Error("expected fallback on parse error")
	}
}

func TestIsStaff(t *testing.T) {
	cfg := &Config{StaffEmails: parseList(" a@example.org, ,B@example.org")}

	if len(cfg.StaffEmails) != 2 {
		t.Fatalf("expected 2 staff emails, got %v", cfg.StaffEmails)
	}
	if !cfg.IsStaff("b@EXAMPLE.org") {
		t.Error("staff match should be case-insensitive")
	}
	if cfg.IsStaff("c@example.org") {
		t.Error("unexpected staff match")
	}
}
