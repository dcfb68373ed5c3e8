package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCanceled  = "canceled"
	CampaignStatusSuspended = "suspended"
)

// CampaignStatuses is ordered the way the admin listing groups campaigns.
var CampaignStatuses = []string{
	CampaignStatusDraft,
	CampaignStatusActive,
	CampaignStatusCompleted,
	CampaignStatusCanceled,
	CampaignStatusSuspended,
}

var campaignStatusColors = map[string]string{
	CampaignStatusDraft:     "#999",
	CampaignStatusActive:    "#28a745",
	CampaignStatusCompleted: "#007bff",
	CampaignStatusCanceled:  "#dc3545",
	CampaignStatusSuspended: "#ffc107",
}

func IsValidCampaignStatus(status string) bool {
	return contains(CampaignStatuses, status)
}

// CampaignStatusColor returns the admin listing colour for a status.
func CampaignStatusColor(status string) string {
	if c, ok := campaignStatusColors[status]; ok {
		return c
	}
	return "#000"
}

// CampaignPage is a page of type campaign with its campaign-specific settings.
type CampaignPage struct {
	Page

	Status      string  `json:"status"`
	Visible     bool    `json:"visible"`
	Description *string `json:"description,omitempty"`

	CallToAction       *string `json:"call_to_action,omitempty"`
	CallToActionHeader bool    `json:"call_to_action_header"`

	DonationAction          bool       `json:"donation_action"`
	DonationProductID       *uuid.UUID `json:"donation_product_id,omitempty"`
	DonationGoal            *int       `json:"donation_goal,omitempty"`
	DonationGoalShowNumbers bool       `json:"donation_goal_show_numbers"`

	SubscriptionAction bool `json:"subscription_action"`
	SocialShares       bool `json:"social_shares"`

	Body             Stream     `json:"body"`
	CoverImageID     *uuid.UUID `json:"cover_image_id,omitempty"`
	LegacyCampaignID *uuid.UUID `json:"legacy_campaign_id,omitempty"`
}

// NewCampaignPage returns a campaign page with the column defaults applied.
func NewCampaignPage(title, slug string) *CampaignPage {
	return &CampaignPage{
		Page: Page{
			PageType: PageTypeCampaign,
			Title:    title,
			Slug:     slug,
		},
		Status:                  CampaignStatusDraft,
		Visible:                 true,
		CallToActionHeader:      true,
		DonationGoalShowNumbers: true,
		SocialShares:            true,
		Body:                    Stream{},
	}
}

// HasPetitions reports whether the body contains at least one petition block.
func (c *CampaignPage) HasPetitions() bool {
	for _, b := range c.Body {
		if b.Type == BlockTypePetition {
			return true
		}
	}
	return false
}

// HasActions is true when the page offers visitors anything to do.
func (c *CampaignPage) HasActions(eventCount int) bool {
	return c.HasPetitions() || eventCount > 0 || c.DonationAction || c.SubscriptionAction
}

// DonationProgress returns the percentage of the goal reached, capped at 100.
func DonationProgress(goal *int, total *decimal.Decimal) int {
	hasGoal := goal != nil && *goal != 0
	if hasGoal && total != nil && !total.IsZero() {
		g := decimal.NewFromInt(int64(*goal))
		if total.GreaterThan(g) {
			return 100
		}
		return int(total.Mul(decimal.NewFromInt(100)).Div(g).IntPart())
	}
	if hasGoal {
		return 100
	}
	return 0
}

// LegacyCampaign is a row of the pre page-tree campaigns table, read only by the migration.
type LegacyCampaign struct {
	ID                      uuid.UUID
	Title                   string
	Slug                    string
	Status                  string
	Visible                 bool
	Description             *string
	CallToAction            *string
	CallToActionHeader      bool
	DonationAction          bool
	DonationProductID       *uuid.UUID
	DonationGoal            *int
	DonationGoalShowNumbers bool
	SubscriptionAction      bool
	SocialShares            bool
	ContentRendered         *string
	CoverPath               *string
	CreatedAt               time.Time
}

// Redirect maps an old path to a page.
type Redirect struct {
	ID             uuid.UUID `json:"id"`
	OldPath        string    `json:"old_path"`
	RedirectPageID uuid.UUID `json:"redirect_page_id"`
	IsPermanent    bool      `json:"is_permanent"`
	CreatedAt      time.Time `json:"created_at"`
}

// Image is an uploaded image referenced by cover fields and image blocks.
type Image struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
}
