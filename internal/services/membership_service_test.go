package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestIsActiveMember(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name        string
		memberships []models.Membership
		want        bool
	}{
		{"none", nil, false},
		{"open ended", []models.Membership{{StartDate: past}}, true},
		{"expired", []models.Membership{{StartDate: past.AddDate(-1, 0, 0), EndDate: &past}}, false},
		{"not started", []models.Membership{{StartDate: future}}, false},
		{"one of many", []models.Membership{{StartDate: future}, {StartDate: past, EndDate: &future}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActiveMember(tt.memberships, now); got != tt.want {
				t.Errorf("IsActiveMember() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrantMembershipValidation(t *testing.T) {
	svc := NewMembershipService(nil, nil, nil, zap.NewNop())
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	tests := []struct {
		name string
		m    models.Membership
	}{
		{"unknown kind", models.Membership{UserID: uuid.New(), StartDate: start, Kind: "lifetime"}},
		{"end before start", models.Membership{UserID: uuid.New(), StartDate: start, EndDate: &end, Kind: models.MembershipKindComp}},
		{"end equals start", models.Membership{UserID: uuid.New(), StartDate: start, EndDate: &start, Kind: models.MembershipKindRegular}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.GrantMembership(context.Background(), uuid.New(), &tt.m)
			if !errors.Is(err, ErrInvalidMembership) {
				t.Errorf("expected ErrInvalidMembership, got %v", err)
			}
		})
	}
}

func TestParseCost(t *testing.T) {
	got, err := ParseCost("12.345")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "12.35" {
		t.Errorf("ParseCost rounded to %s, want 12.35", got)
	}
	if _, err := ParseCost("twelve"); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}
