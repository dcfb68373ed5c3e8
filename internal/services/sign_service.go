package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/civic-action/platform/internal/blocks"
	"github.com/civic-action/platform/internal/events"
	"github.com/civic-action/platform/internal/mail"
	"github.com/civic-action/platform/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const latestSignaturesLimit = 10

type campaignFinder interface {
	PageBySlug(ctx context.Context, slug string) (*models.CampaignPage, error)
}

type signatureStore interface {
	Create(ctx context.Context, s *models.PetitionSignature) error
	ExistsByEmail(ctx context.Context, petitionID uuid.UUID, email string) (bool, error)
	Latest(ctx context.Context, petitionID uuid.UUID, visibleOnly bool, limit, offset int) ([]models.PetitionSignature, error)
}

type petitionEmailQueue interface {
	EnqueuePetitionEmail(ctx context.Context, msg mail.Message) error
}

// Sign outcomes
const (
	SignOutcomeCaptured    = "captured"
	SignOutcomeEmailQueued = "email_queued"
	SignOutcomeEmailFailed = "email_failed"
	SignOutcomeMailto      = "mailto"
)

type SignatureInput struct {
	FirstName          string
	LastName           string
	Email              string
	PhoneNumber        string
	PostalAddressLine1 string
	PostalAddressLine2 string
	City               string
	State              string
	ZipCode            string
	Comment            string
	SendEmail          bool
	NewsletterOptIn    bool
	CreateAccountOptIn bool
}

type SignResult struct {
	Outcome    string
	Flash      string
	FlashLevel string
	// MailtoURL is set for SignOutcomeMailto; the caller answers 303 to it.
	MailtoURL  string
	RedirectTo string
	Signature  *models.PetitionSignature
}

// SignatureValidationError lists the enabled fields that failed validation.
type SignatureValidationError struct {
	Fields map[string]string
}

func (e *SignatureValidationError) Error() string {
	return "Please correct the errors below."
}

var fieldValidator = validator.New()

type SignService struct {
	campaigns  campaignFinder
	resolver   *blocks.Resolver
	signatures signatureStore
	queue      petitionEmailQueue
	publisher  events.Publisher
	fromEmail  string
	log        *zap.Logger
}

func NewSignService(
	campaigns campaignFinder,
	resolver *blocks.Resolver,
	signatures signatureStore,
	queue petitionEmailQueue,
	publisher events.Publisher,
	fromEmail string,
	log *zap.Logger,
) *SignService {
	return &SignService{
		campaigns:  campaigns,
		resolver:   resolver,
		signatures: signatures,
		queue:      queue,
		publisher:  publisher,
		fromEmail:  fromEmail,
		log:        log,
	}
}

// findPetition resolves a petition among the petition blocks of a live campaign page.
func (s *SignService) findPetition(ctx context.Context, slug string, petitionID uuid.UUID) (*models.CampaignPage, *models.Petition, error) {
	cp, err := s.campaigns.PageBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.resolver.FindPetition(ctx, cp.Body, petitionID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, ErrPetitionNotFound
	}
	return cp, p, nil
}

func (s *SignService) Sign(ctx context.Context, slug string, petitionID uuid.UUID, in SignatureInput) (*SignResult, error) {
	cp, p, err := s.findPetition(ctx, slug, petitionID)
	if err != nil {
		return nil, err
	}

	sig, verr := buildSignature(p, in)
	if verr != nil {
		return &SignResult{RedirectTo: cp.URLPath, Flash: verr.Error(), FlashLevel: "error"}, verr
	}

	existing := false
	if sig.Email != "" {
		if existing, err = s.signatures.ExistsByEmail(ctx, p.ID, sig.Email); err != nil {
			return nil, fmt.Errorf("check existing signature: %w", err)
		}
	}

	if err := s.signatures.Create(ctx, sig); err != nil {
		return nil, fmt.Errorf("store signature: %w", err)
	}
	if sig.Visible {
		ev := events.PetitionSigned(p.ID.String(), sig.FirstName, sig.LastName, sig.Comment)
		if err := s.publisher.Publish(ctx, events.StreamPetitions, ev); err != nil {
			s.log.Warn("failed to publish signature", zap.Error(err))
		}
	}

	res := &SignResult{Outcome: SignOutcomeCaptured, Signature: sig, Flash: "Signature captured!", FlashLevel: "success"}
	body := emailBody(p, sig)

	switch {
	case p.SendEmail && in.SendEmail && !existing:
		msg := mail.Message{
			From:    fmt.Sprintf("%s %s <%s>", sig.FirstName, sig.LastName, s.fromEmail),
			To:      p.Recipients(),
			Cc:      p.CCRecipients(),
			ReplyTo: sig.Email,
			Subject: p.Subject(),
			Text:    body,
		}
		if err := s.queue.EnqueuePetitionEmail(ctx, msg); err != nil {
			s.log.Error("failed to queue petition email", zap.String("petition_id", p.ID.String()), zap.Error(err))
			res.Outcome = SignOutcomeEmailFailed
			res.Flash = fmt.Sprintf("Signature captured, but email failed: %v", err)
			res.FlashLevel = "warning"
		} else {
			res.Outcome = SignOutcomeEmailQueued
			res.Flash = "Signature captured! Email sent!"
		}
	case p.MailtoSend:
		res.Outcome = SignOutcomeMailto
		res.Flash = ""
		res.MailtoURL = mailtoURL(p, body)
		return res, nil
	}

	res.RedirectTo = cp.URLPath
	if p.RedirectAfter != nil && *p.RedirectAfter != "" {
		res.RedirectTo = *p.RedirectAfter
	}
	return res, nil
}

// RecentSignatures returns the latest visible signatures for the petition
// as shown on the campaign page.
func (s *SignService) RecentSignatures(ctx context.Context, slug string, petitionID uuid.UUID) (*models.Petition, []models.PetitionSignature, error) {
	_, p, err := s.findPetition(ctx, slug, petitionID)
	if err != nil {
		return nil, nil, err
	}
	sigs, err := s.signatures.Latest(ctx, p.ID, true, latestSignaturesLimit, 0)
	if err != nil {
		return nil, nil, err
	}
	return p, sigs, nil
}

// buildSignature keeps only the fields the petition collects and checks them.
func buildSignature(p *models.Petition, in SignatureInput) (*models.PetitionSignature, *SignatureValidationError) {
	values := map[string]*string{
		models.FieldFirstName:          &in.FirstName,
		models.FieldLastName:           &in.LastName,
		models.FieldEmail:              &in.Email,
		models.FieldPhoneNumber:        &in.PhoneNumber,
		models.FieldPostalAddressLine1: &in.PostalAddressLine1,
		models.FieldPostalAddressLine2: &in.PostalAddressLine2,
		models.FieldCity:               &in.City,
		models.FieldState:              &in.State,
		models.FieldZipCode:            &in.ZipCode,
		models.FieldComment:            &in.Comment,
	}

	errs := map[string]string{}
	for field, v := range values {
		if !p.HasField(field) {
			*v = ""
			continue
		}
		*v = strings.TrimSpace(*v)
		if *v == "" {
			if models.IsRequiredSignatureField(field) {
				errs[field] = "This field is required."
			}
			continue
		}
		if field == models.FieldEmail && fieldValidator.Var(*v, "email") != nil {
			errs[field] = "Enter a valid email address."
		}
	}
	if len(errs) > 0 {
		return nil, &SignatureValidationError{Fields: errs}
	}

	return &models.PetitionSignature{
		PetitionID:         p.ID,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		PostalAddressLine1: in.PostalAddressLine1,
		PostalAddressLine2: in.PostalAddressLine2,
		City:               in.City,
		State:              in.State,
		ZipCode:            in.ZipCode,
		Comment:            in.Comment,
		Visible:            true,
		NewsletterOptIn:    in.NewsletterOptIn,
		CreateAccountOptIn: in.CreateAccountOptIn,
	}, nil
}

// emailBody renders the letter followed by the signer block.
func emailBody(p *models.Petition, sig *models.PetitionSignature) string {
	var b strings.Builder
	if p.EmailBody != nil && *p.EmailBody != "" {
		b.WriteString(*p.EmailBody)
		b.WriteString("\n\n")
	}
	if p.EmailIncludeComment && sig.Comment != "" {
		b.WriteString(sig.Comment)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "- %s %s", sig.FirstName, sig.LastName)

	for _, line := range []string{sig.PhoneNumber, sig.PostalAddressLine1, sig.PostalAddressLine2} {
		if line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}

	last := sig.City
	if sig.State != "" {
		if sig.City != "" {
			last += ", "
		}
		last += sig.State
	}
	if sig.ZipCode != "" {
		if sig.City != "" || sig.State != "" {
			last += " "
		}
		last += sig.ZipCode
	}
	if last != "" {
		b.WriteString("\n")
		b.WriteString(last)
	}
	return b.String()
}

func mailtoURL(p *models.Petition, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(quote(strings.Join(p.Recipients(), ", "), "/"))
	b.WriteString("?")
	if cc := p.CCRecipients(); len(cc) > 0 {
		b.WriteString("cc=")
		b.WriteString(quote(strings.Join(cc, ", "), ""))
		b.WriteString("&")
	}
	b.WriteString("subject=")
	b.WriteString(quote(p.Subject(), ""))
	b.WriteString("&body=")
	b.WriteString(quote(body, ""))
	return b.String()
}

// quote percent-encodes everything outside the unreserved set and safe,
// with spaces as %20.
func quote(s, safe string) string {
	q := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	for _, r := range safe {
		q = strings.ReplaceAll(q, url.QueryEscape(string(r)), string(r))
	}
	return q
}
