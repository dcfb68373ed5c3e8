package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RecurrenceOnce    = "once"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

func IsValidRecurrence(r string) bool {
	switch r {
	case RecurrenceOnce, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// DonationTier price, cost and recurrence are fixed once created.
type DonationTier struct {
	ID          uuid.UUID       `json:"id"`
	StripePrice string          `json:"stripe_price"`
	Cost        decimal.Decimal `json:"cost"`
	Recurrence  string          `json:"recurrence"`
	Active      bool            `json:"active"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"created_at"`
}

type DonationProduct struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	StripeProductID *string   `json:"stripe_product_id,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

type Donation struct {
	ID                uuid.UUID       `json:"id"`
	DonationProductID *uuid.UUID      `json:"donation_product_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Comment           *string         `json:"comment,omitempty"`
	StripeCustomerID  *string         `json:"stripe_customer_id,omitempty"`
	StripeReference   *string         `json:"stripe_reference,omitempty"`
	Email             *string         `json:"email,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

const (
	MembershipKindRegular = "regular"
	MembershipKindComp    = "comp"
)

type Membership struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Kind      string     `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
}

func IsValidMembershipKind(kind string) bool {
	return kind == MembershipKindRegular || kind == MembershipKindComp
}

func (m *Membership) ActiveAt(now time.Time) bool {
	if now.Before(m.StartDate) {
		return false
	}
	return m.EndDate == nil || now.Before(*m.EndDate)
}
