package dto

import (
	"encoding/json"
	"time"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Pages

type ReorderPagesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type CreateCampaignsIndexRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Slug  string `json:"slug" validate:"omitempty,max=255,slug"`
}

type PageLiveRequest struct {
	Live bool `json:"live"`
}

type UpdatePageMetaRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	ShowInMenus bool   `json:"show_in_menus"`
}

type CampaignPageRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Slug        string  `json:"slug" validate:"required,max=255,slug"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft active completed canceled suspended"`
	Visible     *bool   `json:"visible,omitempty"`
	Live        *bool   `json:"live,omitempty"`
	Description *string `json:"description,omitempty"`

	CallToAction       *string `json:"call_to_action,omitempty" validate:"omitempty,max=64"`
	CallToActionHeader *bool   `json:"call_to_action_header,omitempty"`

	DonationAction          bool    `json:"donation_action"`
	DonationProductID       *string `json:"donation_product_id,omitempty" validate:"omitempty,uuid"`
	DonationGoal            *int    `json:"donation_goal,omitempty" validate:"omitempty,min=0"`
	DonationGoalShowNumbers *bool   `json:"donation_goal_show_numbers,omitempty"`

	SubscriptionAction bool  `json:"subscription_action"`
	SocialShares       *bool `json:"social_shares,omitempty"`

	Body         json.RawMessage `json:"body,omitempty"`
	CoverImageID *string         `json:"cover_image_id,omitempty" validate:"omitempty,uuid"`
}

type CampaignEventsRequest struct {
	EventIDs []string `json:"event_ids" validate:"dive,uuid"`
}

type ScheduledEventRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// Petitions

type PetitionRequest struct {
	Title                 string  `json:"title" validate:"required,max=255"`
	Letter                *string `json:"letter,omitempty"`
	CallToAction          *string `json:"call_to_action,omitempty" validate:"omitempty,max=64"`
	CallToActionHeader    bool    `json:"call_to_action_header"`
	DisplayOnCampaignPage bool    `json:"display_on_campaign_page"`
	Active                bool    `json:"active"`
	SignatureGoal         *int    `json:"signature_goal,omitempty" validate:"omitempty,min=0"`
	ShowSubmissions       bool    `json:"show_submissions"`

	SendEmail           bool    `json:"send_email"`
	MailtoSend          bool    `json:"mailto_send"`
	EmailSubject        *string `json:"email_subject,omitempty" validate:"omitempty,max=255"`
	EmailBody           *string `json:"email_body,omitempty"`
	EmailTo             *string `json:"email_to,omitempty"`
	EmailCC             *string `json:"email_cc,omitempty"`
	EmailIncludeComment bool    `json:"email_include_comment"`

	CreateAccountOptIn bool     `json:"create_account_opt_in"`
	RedirectAfter      *string  `json:"redirect_after,omitempty" validate:"omitempty,url"`
	SignatureFields    []string `json:"signature_fields" validate:"dive,oneof=first_name last_name email phone_number postal_address_line_1 postal_address_line_2 city state zip_code comment"`
}

// SignPetitionForm is the html form posted from a campaign page.
type SignPetitionForm struct {
	FirstName          string `form:"first_name"`
	LastName           string `form:"last_name"`
	Email              string `form:"email"`
	PhoneNumber        string `form:"phone_number"`
	PostalAddressLine1 string `form:"postal_address_line_1"`
	PostalAddressLine2 string `form:"postal_address_line_2"`
	City               string `form:"city"`
	State              string `form:"state"`
	ZipCode            string `form:"zip_code"`
	Comment            string `form:"comment"`
	SendEmail          string `form:"send_email"`
	NewsletterOptIn    string `form:"newsletter_opt_in"`
	CreateAccountOptIn string `form:"create_account_opt_in"`
}

// Checked reports whether a checkbox value was submitted ticked.
func Checked(v string) bool {
	return v == "on"
}

type SignatureVisibilityRequest struct {
	Visible bool `json:"visible"`
}

// Elections

type ElectionRequest struct {
	Title                         string    `json:"title" validate:"required,max=255"`
	Description                   *string   `json:"description,omitempty"`
	MembershipEligibilityDeadline time.Time `json:"membership_eligibility_deadline" validate:"required"`
	NominationsOpen               time.Time `json:"nominations_open" validate:"required"`
	NominationsClose              time.Time `json:"nominations_close" validate:"required"`
	VotingOpens                   time.Time `json:"voting_opens" validate:"required"`
	VotingCloses                  time.Time `json:"voting_closes" validate:"required"`
}

// Facets

type FacetRequest struct {
	Kind       string          `json:"kind" validate:"required,oneof=district zip_code state_house_district state_senate_district rco custom"`
	Name       string          `json:"name" validate:"required,max=255"`
	Geometry   json.RawMessage `json:"geometry" validate:"required"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// Membership

type DonationTierRequest struct {
	StripePrice string `json:"stripe_price" validate:"required,max=255"`
	Cost        string `json:"cost" validate:"required,numeric"`
	Recurrence  string `json:"recurrence" validate:"required,oneof=once monthly yearly"`
	Active      bool   `json:"active"`
}

type DonationTierActiveRequest struct {
	Active bool `json:"active"`
}

type MembershipRequest struct {
	UserID    string     `json:"user_id" validate:"required,uuid"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Kind      string     `json:"kind" validate:"required,oneof=regular comp"`
}

type DonationProductRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	StripeProductID *string `json:"stripe_product_id,omitempty" validate:"omitempty,max=255"`
	Active          bool    `json:"active"`
}

// Profiles

type UpdateProfileRequest struct {
	NewsletterOptIn *bool   `json:"newsletter_opt_in,omitempty"`
	StreetAddress   *string `json:"street_address,omitempty" validate:"omitempty,max=255"`
	ZipCode         *string `json:"zip_code,omitempty" validate:"omitempty,len=5,numeric"`
}

type ShirtOrderRequest struct {
	Fit        string `json:"fit" validate:"required,oneof=straight fitted"`
	PrintColor string `json:"print_color" validate:"required,oneof=black white"`
	Size       string `json:"size" validate:"required,oneof=xs s m l xl 2xl 3xl 4xl"`
}
