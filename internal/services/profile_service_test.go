package services

import (
	"context"
	"errors"
	"testing"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/payments"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeProfiles struct {
	profile    *models.Profile
	apps       []models.Application
	doNotEmail []string
	orders     []*models.ShirtOrder
}

func (f *fakeProfiles) GetOrCreate(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if f.profile == nil {
		f.profile = &models.Profile{UserID: userID}
	}
	return f.profile, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	f.profile = p
	return nil
}

func (f *fakeProfiles) FacetsForUser(context.Context, uuid.UUID, []string) ([]models.Facet, error) {
	return nil, nil
}

func (f *fakeProfiles) ListShirtOrders(context.Context, uuid.UUID) ([]models.ShirtOrder, error) {
	return nil, nil
}

func (f *fakeProfiles) CreateShirtOrder(_ context.Context, o *models.ShirtOrder) error {
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeProfiles) DeleteShirtOrder(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeProfiles) RecordDoNotEmail(_ context.Context, email, _ string) error {
	f.doNotEmail = append(f.doNotEmail, email)
	return nil
}

func (f *fakeProfiles) ListApplications(context.Context, uuid.UUID) ([]models.Application, error) {
	return f.apps, nil
}

type fakeAccounts struct {
	user    *models.User
	deleted bool
}

func (f *fakeAccounts) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return f.user, nil
}

func (f *fakeAccounts) Delete(context.Context, uuid.UUID) error {
	f.deleted = true
	return nil
}

type fakeBilling struct {
	subs []payments.Subscription
	err  error
}

func (f *fakeBilling) ActiveSubscriptions(context.Context, string) ([]payments.Subscription, error) {
	return f.subs, f.err
}

func (f *fakeBilling) Charges(context.Context, string) ([]payments.Charge, error) {
	return nil, f.err
}

type fakeContacts struct {
	subscribed   bool
	unsubscribed []string
}

func (f *fakeContacts) IsSubscribed(context.Context, string) (bool, error) {
	return f.subscribed, nil
}

func (f *fakeContacts) RemoveAndUnsubscribe(_ context.Context, email string) {
	f.unsubscribed = append(f.unsubscribed, email)
}

type fakeNewsletter struct {
	queued []string
}

func (f *fakeNewsletter) EnqueueNewsletterSubscribe(_ context.Context, email string) error {
	f.queued = append(f.queued, email)
	return nil
}

type fakeGeocoder struct {
	calls []string
	err   error
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (*models.Point, error) {
	f.calls = append(f.calls, address)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Point{Lng: -75.16, Lat: 39.95}, nil
}

type profileFixture struct {
	svc        *ProfileService
	profiles   *fakeProfiles
	accounts   *fakeAccounts
	billing    *fakeBilling
	contacts   *fakeContacts
	newsletter *fakeNewsletter
	geocoder   *fakeGeocoder
}

func newProfileFixture(cfg *config.Config) *profileFixture {
	f := &profileFixture{
		profiles:   &fakeProfiles{},
		accounts:   &fakeAccounts{user: &models.User{ID: uuid.New(), Email: "member@example.org"}},
		billing:    &fakeBilling{},
		contacts:   &fakeContacts{},
		newsletter: &fakeNewsletter{},
		geocoder:   &fakeGeocoder{},
	}
	f.svc = NewProfileService(f.profiles, f.accounts, f.billing, f.contacts, f.newsletter, f.geocoder, nil, cfg, zap.NewNop())
	return f
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		subs    []payments.Subscription
		billErr error
		apps    []models.Application
		wantErr error
		deleted bool
	}{
		{name: "no blockers", deleted: true},
		{name: "stripe not configured", billErr: payments.ErrNotConfigured, deleted: true},
		{name: "active subscription", subs: []payments.Subscription{{ID: "sub_1", Status: "active"}}, wantErr: ErrActiveSubscriptions},
		{name: "applications", apps: []models.Application{{Kind: "project"}}, wantErr: ErrHasApplications},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProfileFixture(&config.Config{})
			f.billing.subs = tt.subs
			f.billing.err = tt.billErr
			f.profiles.apps = tt.apps

			err := f.svc.Delete(context.Background(), f.accounts.user.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			if f.accounts.deleted != tt.deleted {
				t.Errorf("deleted = %v, want %v", f.accounts.deleted, tt.deleted)
			}
			if tt.deleted {
				if len(f.profiles.doNotEmail) != 1 || len(f.contacts.unsubscribed) != 1 {
					t.Error("deleted address should be suppressed and unsubscribed")
				}
			} else if len(f.profiles.doNotEmail) != 0 {
				t.Error("refused deletion must not suppress the address")
			}
		})
	}
}

func TestDeleteAccountStripeError(t *testing.T) {
	f := newProfileFixture(&config.Config{})
	f.billing.err = errors.New("stripe unavailable")

	if err := f.svc.Delete(context.Background(), f.accounts.user.ID); err == nil {
		t.Fatal("expected an error when stripe cannot be reached")
	}
	if f.accounts.deleted {
		t.Error("account must not be deleted without checking subscriptions")
	}
}

func TestDeletePreview(t *testing.T) {
	f := newProfileFixture(&config.Config{})
	f.profiles.apps = []models.Application{{Kind: "organizer"}}
	f.contacts.subscribed = true
	f.profiles.profile = &models.Profile{NewsletterOptIn: true}

	p, err := f.svc.DeletePreview(context.Background(), f.accounts.user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HasActiveSubscription || p.HasProjectApplications {
		t.Errorf("unexpected blockers: %+v", p)
	}
	if !p.HasOrganizerApplications || !p.HasApplications {
		t.Errorf("organizer application not reported: %+v", p)
	}
	if !p.NewsletterSubscribed || !p.MailjetSubscribed {
		t.Errorf("subscriptions not reported: %+v", p)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newProfileFixture(&config.Config{})
	yes := true
	street := "1400 JFK Blvd"
	zip := "19107"

	p, err := f.svc.Update(context.Background(), f.accounts.user.ID, ProfileUpdate{
		NewsletterOptIn: &yes,
		StreetAddress:   &street,
		ZipCode:         &zip,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Location == nil {
		t.Error("address change should geocode the profile")
	}
	if len(f.geocoder.calls) != 1 || f.geocoder.calls[0] != "1400 JFK Blvd, 19107" {
		t.Errorf("geocoder calls = %v", f.geocoder.calls)
	}
	if len(f.newsletter.queued) != 1 || f.newsletter.queued[0] != "member@example.org" {
		t.Errorf("newsletter queue = %v", f.newsletter.queued)
	}

	// unchanged address and an existing opt-in trigger nothing
	if _, err := f.svc.Update(context.Background(), f.accounts.user.ID, ProfileUpdate{NewsletterOptIn: &yes, StreetAddress: &street}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.geocoder.calls) != 1 || len(f.newsletter.queued) != 1 {
		t.Errorf("repeat update should not geocode or subscribe again")
	}
}

func TestUpdateProfileGeocodeFailureClearsLocation(t *testing.T) {
	f := newProfileFixture(&config.Config{})
	f.profiles.profile = &models.Profile{Location: &models.Point{Lng: 1, Lat: 1}}
	f.geocoder.err = ErrAddressNotFound
	street := "nowhere"

	p, err := f.svc.Update(context.Background(), f.accounts.user.ID, ProfileUpdate{StreetAddress: &street})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Location != nil {
		t.Errorf("location should be cleared, got %+v", p.Location)
	}
}

func TestShirtOrdersClosed(t *testing.T) {
	f := newProfileFixture(&config.Config{ShirtOrdersOpen: false})
	order := &models.ShirtOrder{UserID: f.accounts.user.ID, Fit: models.ShirtFitFitted, Size: "m"}

	if err := f.svc.CreateShirtOrder(context.Background(), order); !errors.Is(err, ErrShirtOrdersClosed) {
		t.Fatalf("expected ErrShirtOrdersClosed, got %v", err)
	}

	f = newProfileFixture(&config.Config{ShirtOrdersOpen: true})
	if err := f.svc.CreateShirtOrder(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.profiles.orders) != 1 {
		t.Error("order not stored")
	}
}

func TestDonationsSwallowsStripeErrors(t *testing.T) {
	f := newProfileFixture(&config.Config{})
	f.billing.err = errors.New("boom")

	v, err := f.svc.Donations(context.Background(), f.accounts.user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Subscriptions) != 0 || len(v.Charges) != 0 {
		t.Errorf("expected an empty view, got %+v", v)
	}
}
