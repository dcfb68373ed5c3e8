package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signature form fields a petition can enable.
const (
	FieldFirstName          = "first_name"
	FieldLastName           = "last_name"
	FieldEmail              = "email"
	FieldPhoneNumber        = "phone_number"
	FieldPostalAddressLine1 = "postal_address_line_1"
	FieldPostalAddressLine2 = "postal_address_line_2"
	FieldCity               = "city"
	FieldState              = "state"
	FieldZipCode            = "zip_code"
	FieldComment            = "comment"
)

type FieldChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var SignatureFieldChoices = []FieldChoice{
	{ID: FieldFirstName, Label: "First Name"},
	{ID: FieldLastName, Label: "Last Name"},
	{ID: FieldEmail, Label: "E-mail"},
	{ID: FieldPhoneNumber, Label: "Phone Number"},
	{ID: FieldPostalAddressLine1, Label: "Street Address"},
	{ID: FieldPostalAddressLine2, Label: "Address Line 2"},
	{ID: FieldCity, Label: "City"},
	{ID: FieldState, Label: "State"},
	{ID: FieldZipCode, Label: "Zip Code"},
	{ID: FieldComment, Label: "Comment"},
}

// optionalSignatureFields may be left blank even when enabled.
var optionalSignatureFields = map[string]bool{
	FieldPhoneNumber:        true,
	FieldPostalAddressLine2: true,
	FieldComment:            true,
}

func IsValidSignatureField(field string) bool {
	for _, c := range SignatureFieldChoices {
		if c.ID == field {
			return true
		}
	}
	return false
}

func IsRequiredSignatureField(field string) bool {
	return !optionalSignatureFields[field]
}

type Petition struct {
	ID                    uuid.UUID `json:"id"`
	Title                 string    `json:"title"`
	Letter                *string   `json:"letter,omitempty"`
	CallToAction          *string   `json:"call_to_action,omitempty"`
	CallToActionHeader    bool      `json:"call_to_action_header"`
	DisplayOnCampaignPage bool      `json:"display_on_campaign_page"`
	Active                bool      `json:"active"`
	SignatureGoal         *int      `json:"signature_goal,omitempty"`
	ShowSubmissions       bool      `json:"show_submissions"`

	SendEmail           bool    `json:"send_email"`
	MailtoSend          bool    `json:"mailto_send"`
	EmailSubject        *string `json:"email_subject,omitempty"`
	EmailBody           *string `json:"email_body,omitempty"`
	EmailTo             *string `json:"email_to,omitempty"` // one address per line
	EmailCC             *string `json:"email_cc,omitempty"` // one address per line
	EmailIncludeComment bool    `json:"email_include_comment"`

	CreateAccountOptIn bool     `json:"create_account_opt_in"`
	RedirectAfter      *string  `json:"redirect_after,omitempty"`
	SignatureFields    []string `json:"signature_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChoiceLabel is the label shown in the petition chooser.
func (p *Petition) ChoiceLabel() string {
	if !p.Active {
		return p.Title + " (inactive)"
	}
	return p.Title
}

func (p *Petition) HasField(field string) bool {
	return contains(p.SignatureFields, field)
}

func (p *Petition) Recipients() []string {
	return splitLines(p.EmailTo)
}

func (p *Petition) CCRecipients() []string {
	return splitLines(p.EmailCC)
}

// Subject falls back to a generic subject line when none is configured.
func (p *Petition) Subject() string {
	if p.EmailSubject != nil && *p.EmailSubject != "" {
		return *p.EmailSubject
	}
	return "Petition Signature"
}

// ShouldDisplay applies a block-level display override on top of the petition's own setting.
func (p *Petition) ShouldDisplay(v PetitionBlockValue) bool {
	if v.OverrideDisplay {
		return v.DisplayOnCampaignPage
	}
	return p.DisplayOnCampaignPage
}

type PetitionSignature struct {
	ID                 uuid.UUID `json:"id"`
	PetitionID         uuid.UUID `json:"petition_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email,omitempty"`
	PhoneNumber        string    `json:"phone_number,omitempty"`
	PostalAddressLine1 string    `json:"postal_address_line_1,omitempty"`
	PostalAddressLine2 string    `json:"postal_address_line_2,omitempty"`
	City               string    `json:"city,omitempty"`
	State              string    `json:"state,omitempty"`
	ZipCode            string    `json:"zip_code,omitempty"`
	Comment            string    `json:"comment,omitempty"`
	Visible            bool      `json:"visible"`
	NewsletterOptIn    bool      `json:"newsletter_opt_in"`
	CreateAccountOptIn bool      `json:"create_account_opt_in"`
	CreatedAt          time.Time `json:"created_at"`
}

func splitLines(s *string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(*s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
