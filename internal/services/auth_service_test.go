package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civic-action/platform/internal/auth"
	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memUsers struct {
	byEmail map[string]*models.User
	logins  int
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repositories.ErrAlreadyExists
	}
	u.ID = uuid.New()
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) UpdateLastLogin(context.Context, uuid.UUID) error {
	m.logins++
	return nil
}

func (m *memUsers) SetStaff(_ context.Context, id uuid.UUID, staff bool) error {
	for _, u := range m.byEmail {
		if u.ID == id {
			u.IsStaff = staff
			return nil
		}
	}
	return repositories.ErrNotFound
}

func newAuthFixture() (*AuthService, *memUsers, *config.Config) {
	users := &memUsers{byEmail: map[string]*models.User{}}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiration: time.Hour, StaffEmails: []string{"staff@example.org"}}
	return NewAuthService(users, cfg, zap.NewNop()), users, cfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users, cfg := newAuthFixture()
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "  Member@Example.org ", "correct horse", "Ada", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "member@example.org" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.LastName != nil {
		t.Error("blank last name should be stored as NULL")
	}
	claims, err := auth.ParseJWT(cfg.JWTSecret, token)
	if err != nil || claims.UserID != u.ID {
		t.Fatalf("token does not identify the user: %v", err)
	}

	if _, _, err := svc.Register(ctx, "member@example.org", "another pass", "", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := svc.Login(ctx, "MEMBER@example.org", "correct horse"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if users.logins != 1 {
		t.Errorf("last login not recorded")
	}

	for _, tc := range []struct{ email, password string }{
		{"member@example.org", "wrong password"},
		{"nobody@example.org", "correct horse"},
	} {
		if _, _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestRegisterStaff(t *testing.T) {
	svc, _, cfg := newAuthFixture()

	u, token, err := svc.Register(context.Background(), "Staff@example.org", "correct horse", "", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !u.IsStaff {
		t.Error("configured staff address should be flagged")
	}
	claims, err := auth.ParseJWT(cfg.JWTSecret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != "staff" {
		t.Errorf("role = %q, want staff", claims.Role)
	}
}

func TestLoginPromotesConfiguredStaff(t *testing.T) {
	svc, _, cfg := newAuthFixture()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "later@example.org", "correct horse", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.IsStaff {
		t.Fatal("unexpected staff flag")
	}

	cfg.StaffEmails = append(cfg.StaffEmails, "later@example.org")
	u, token, err := svc.Login(ctx, "later@example.org", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !u.IsStaff {
		t.Error("login should persist the staff flag")
	}
	claims, err := auth.ParseJWT(cfg.JWTSecret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != "staff" {
		t.Errorf("role = %q, want staff", claims.Role)
	}
}
