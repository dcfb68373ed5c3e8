package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    *string    `json:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"`
	IsStaff      bool       `json:"is_staff"`
	IsOrganizer  bool       `json:"is_organizer"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Role collapses the flags into the rbac role carried in tokens.
func (u *User) Role() string {
	switch {
	case u.IsStaff:
		return "staff"
	case u.IsOrganizer:
		return "organizer"
	}
	return "member"
}
