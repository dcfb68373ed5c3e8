package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civic-action/platform/internal/auth"
	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEmailTaken = errors.New("an account with this email already exists")

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	SetStaff(ctx context.Context, id uuid.UUID, staff bool) error
}

type AuthService struct {
	users userStore
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(users userStore, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{users: users, cfg: cfg, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &models.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		FirstName:    optional(firstName),
		LastName:     optional(lastName),
	}
	u.IsStaff = s.cfg.IsStaff(u.Email)

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.String()))
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", err
	}

	// Staff granted through configuration after signup is persisted on next login.
	if !u.IsStaff && s.cfg.IsStaff(u.Email) {
		if err := s.users.SetStaff(ctx, u.ID, true); err != nil {
			return nil, "", fmt.Errorf("promote staff: %w", err)
		}
		u.IsStaff = true
		s.log.Info("user promoted to staff", zap.String("user_id", u.ID.String()))
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID.String()), zap.Error(err))
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	return auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Email, u.Role(), s.cfg.JWTExpiration)
}

// optional turns a blank form value into a NULL column.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
