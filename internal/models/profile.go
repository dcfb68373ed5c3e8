package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID          uuid.UUID `json:"user_id"`
	NewsletterOptIn bool      `json:"newsletter_opt_in"`
	StreetAddress   *string   `json:"street_address,omitempty"`
	ZipCode         *string   `json:"zip_code,omitempty"`
	Location        *Point    `json:"location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	ShirtFitStraight = "straight"
	ShirtFitFitted   = "fitted"
	ShirtPrintBlack  = "black"
	ShirtPrintWhite  = "white"
)

type ShirtOrder struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Fit             string          `json:"fit"`
	PrintColor      string          `json:"print_color"`
	Size            string          `json:"size"`
	Paid            bool            `json:"paid"`
	BillingDetails  json.RawMessage `json:"billing_details,omitempty"`
	ShippingDetails json.RawMessage `json:"shipping_details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

const DoNotEmailAccountDeletion = "account_deletion"

type DoNotEmail struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Application struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"` // project/organizer
	CreatedAt time.Time `json:"created_at"`
}
