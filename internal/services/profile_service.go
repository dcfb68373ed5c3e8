package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/payments"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrShirtOrdersClosed   = errors.New("T-Shirt orders are closed")
	ErrActiveSubscriptions = errors.New("You cannot delete your account while you have active subscriptions. Please cancel your subscriptions first.")
	ErrHasApplications     = errors.New("You cannot delete your account while you have project or organizer applications. Please contact apps@bikeaction.org for assistance.")
)

// districtKinds are the facets listed on a member's profile.
var districtKinds = []string{
	models.FacetKindDistrict,
	models.FacetKindZipCode,
	models.FacetKindStateHouseDistrict,
	models.FacetKindStateSenateDistrict,
	models.FacetKindRCO,
}

type profileStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	FacetsForUser(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Facet, error)
	ListShirtOrders(ctx context.Context, userID uuid.UUID) ([]models.ShirtOrder, error)
	CreateShirtOrder(ctx context.Context, o *models.ShirtOrder) error
	DeleteShirtOrder(ctx context.Context, userID, id uuid.UUID) error
	RecordDoNotEmail(ctx context.Context, email, reason string) error
	ListApplications(ctx context.Context, userID uuid.UUID) ([]models.Application, error)
}

type accountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type billingSource interface {
	ActiveSubscriptions(ctx context.Context, email string) ([]payments.Subscription, error)
	Charges(ctx context.Context, email string) ([]payments.Charge, error)
}

type contactList interface {
	IsSubscribed(ctx context.Context, email string) (bool, error)
	RemoveAndUnsubscribe(ctx context.Context, email string)
}

type newsletterQueue interface {
	EnqueueNewsletterSubscribe(ctx context.Context, email string) error
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Point, error)
}

type ProfileService struct {
	profiles   profileStore
	users      accountStore
	billing    billingSource
	contacts   contactList
	newsletter newsletterQueue
	geocoder   geocoder
	cache      *redis.Client
	cfg        *config.Config
	log        *zap.Logger
}

func NewProfileService(
	profiles profileStore,
	users accountStore,
	billing billingSource,
	contacts contactList,
	newsletter newsletterQueue,
	geocoder geocoder,
	cache *redis.Client,
	cfg *config.Config,
	log *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		users:      users,
		billing:    billing,
		contacts:   contacts,
		newsletter: newsletter,
		geocoder:   geocoder,
		cache:      cache,
		cfg:        cfg,
		log:        log,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profiles.GetOrCreate(ctx, userID)
}

type ProfileUpdate struct {
	NewsletterOptIn *bool
	StreetAddress   *string
	ZipCode         *string
}

// Update applies the changes, geocoding the address when it moved. Opting in
// to the newsletter queues a list subscription.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.Profile, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	optedIn := in.NewsletterOptIn != nil && *in.NewsletterOptIn && !p.NewsletterOptIn
	if in.NewsletterOptIn != nil {
		p.NewsletterOptIn = *in.NewsletterOptIn
	}

	moved := false
	if in.StreetAddress != nil && deref(in.StreetAddress) != deref(p.StreetAddress) {
		p.StreetAddress = optional(*in.StreetAddress)
		moved = true
	}
	if in.ZipCode != nil && deref(in.ZipCode) != deref(p.ZipCode) {
		p.ZipCode = optional(*in.ZipCode)
		moved = true
	}
	if moved {
		p.Location = s.locate(ctx, p)
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	if optedIn {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.newsletter.EnqueueNewsletterSubscribe(ctx, u.Email); err != nil {
			s.log.Warn("failed to queue newsletter subscription", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return p, nil
}

// locate geocodes the profile address. Failures clear the location.
func (s *ProfileService) locate(ctx context.Context, p *models.Profile) *models.Point {
	if p.StreetAddress == nil {
		return nil
	}
	address := *p.StreetAddress
	if p.ZipCode != nil {
		address += ", " + *p.ZipCode
	}
	pt, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.Info("profile address not geocoded", zap.String("user_id", p.UserID.String()), zap.Error(err))
		return nil
	}
	return pt
}

// Districts lists the districts and RCOs the profile location falls in.
func (s *ProfileService) Districts(ctx context.Context, userID uuid.UUID) (models.FacetSet, error) {
	facets, err := s.profiles.FacetsForUser(ctx, userID, districtKinds)
	if err != nil {
		return nil, err
	}
	return models.GroupFacets(facets), nil
}

type DonationsView struct {
	Subscriptions []payments.Subscription `json:"subscriptions"`
	Charges       []payments.Charge       `json:"charges"`
	FetchedAt     time.Time               `json:"fetched_at"`
}

// Donations reads the member's Stripe subscriptions and charges, cached in
// redis. Stripe failures yield an empty view.
func (s *ProfileService) Donations(ctx context.Context, userID uuid.UUID) (*DonationsView, error) {
	key := "stripe:donations:" + userID.String()
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var v DonationsView
			if json.Unmarshal(data, &v) == nil {
				return &v, nil
			}
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := &DonationsView{FetchedAt: time.Now().UTC()}
	if v.Subscriptions, err = s.billing.ActiveSubscriptions(ctx, u.Email); err != nil {
		s.logBillingError("subscriptions", err)
		return &DonationsView{FetchedAt: v.FetchedAt}, nil
	}
	if v.Charges, err = s.billing.Charges(ctx, u.Email); err != nil {
		s.logBillingError("charges", err)
		return &DonationsView{FetchedAt: v.FetchedAt}, nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cfg.StripeCacheTTL).Err()
		}
	}
	return v, nil
}

func (s *ProfileService) logBillingError(what string, err error) {
	if errors.Is(err, payments.ErrNotConfigured) {
		return
	}
	s.log.Warn("stripe lookup failed", zap.String("what", what), zap.Error(err))
}

func (s *ProfileService) ShirtOrders(ctx context.Context, userID uuid.UUID) ([]models.ShirtOrder, error) {
	return s.profiles.ListShirtOrders(ctx, userID)
}

func (s *ProfileService) CreateShirtOrder(ctx context.Context, o *models.ShirtOrder) error {
	if !s.cfg.ShirtOrdersOpen {
		return ErrShirtOrdersClosed
	}
	return s.profiles.CreateShirtOrder(ctx, o)
}

func (s *ProfileService) DeleteShirtOrder(ctx context.Context, userID, id uuid.UUID) error {
	if !s.cfg.ShirtOrdersOpen {
		return ErrShirtOrdersClosed
	}
	return s.profiles.DeleteShirtOrder(ctx, userID, id)
}

type DeletePreview struct {
	HasActiveSubscription    bool                    `json:"has_active_subscription"`
	ActiveSubscriptions      []payments.Subscription `json:"active_subscriptions"`
	HasProjectApplications   bool                    `json:"has_project_applications"`
	HasOrganizerApplications bool                    `json:"has_organizer_applications"`
	HasApplications          bool                    `json:"has_applications"`
	NewsletterSubscribed     bool                    `json:"newsletter_subscribed"`
	MailjetSubscribed        bool                    `json:"mailjet_subscribed"`
}

// DeletePreview reports what stands in the way of deleting the account and
// which lists the address is on.
func (s *ProfileService) DeletePreview(ctx context.Context, userID uuid.UUID) (*DeletePreview, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	preview := &DeletePreview{NewsletterSubscribed: profile.NewsletterOptIn}
	if preview.ActiveSubscriptions, err = s.activeSubscriptions(ctx, u.Email); err != nil {
		return nil, err
	}
	preview.HasActiveSubscription = len(preview.ActiveSubscriptions) > 0

	apps, err := s.profiles.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range apps {
		switch a.Kind {
		case "project":
			preview.HasProjectApplications = true
		case "organizer":
			preview.HasOrganizerApplications = true
		}
	}
	preview.HasApplications = preview.HasProjectApplications || preview.HasOrganizerApplications

	subscribed, err := s.contacts.IsSubscribed(ctx, u.Email)
	if err != nil {
		s.log.Warn("mailjet lookup failed", zap.Error(err))
	}
	preview.MailjetSubscribed = subscribed
	return preview, nil
}

// Delete removes the account unless a subscription is active or applications
// exist. The address is suppressed and taken off the mailing list first.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	subs, err := s.activeSubscriptions(ctx, u.Email)
	if err != nil {
		return err
	}
	if len(subs) > 0 {
		return ErrActiveSubscriptions
	}

	apps, err := s.profiles.ListApplications(ctx, userID)
	if err != nil {
		return err
	}
	if len(apps) > 0 {
		return ErrHasApplications
	}

	if err := s.profiles.RecordDoNotEmail(ctx, u.Email, models.DoNotEmailAccountDeletion); err != nil {
		return fmt.Errorf("record do-not-email: %w", err)
	}
	s.contacts.RemoveAndUnsubscribe(ctx, u.Email)

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "stripe:donations:"+userID.String()).Err()
	}
	s.log.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

// activeSubscriptions treats an unconfigured Stripe as having none.
func (s *ProfileService) activeSubscriptions(ctx context.Context, email string) ([]payments.Subscription, error) {
	subs, err := s.billing.ActiveSubscriptions(ctx, email)
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stripe subscriptions: %w", err)
	}
	return subs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
