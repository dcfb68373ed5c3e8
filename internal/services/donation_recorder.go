package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civic-action/platform/internal/events"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/payments"
	"github.com/civic-action/platform/internal/repositories"
	"go.uber.org/zap"
)

type donationStore interface {
	GetProductByName(ctx context.Context, name string) (*models.DonationProduct, error)
	CreateDonation(ctx context.Context, d *models.Donation) (bool, error)
}

type checkoutSource interface {
	CompletedCheckouts(ctx context.Context, since time.Time) ([]payments.Checkout, error)
	ParseCheckoutCompleted(payload []byte, signature string) (*payments.Checkout, bool, error)
}

// DonationRecorder turns completed Stripe checkouts into donations, from the
// webhook as they happen and from periodic reconciliation for missed ones.
type DonationRecorder struct {
	donations donationStore
	checkouts checkoutSource
	publisher events.Publisher
	log       *zap.Logger
}

func NewDonationRecorder(donations donationStore, checkouts checkoutSource, publisher events.Publisher, log *zap.Logger) *DonationRecorder {
	return &DonationRecorder{donations: donations, checkouts: checkouts, publisher: publisher, log: log}
}

// HandleWebhook verifies and records a checkout.session.completed event.
// Other event types are accepted and ignored.
func (r *DonationRecorder) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	co, ok, err := r.checkouts.ParseCheckoutCompleted(payload, signature)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	_, err = r.Record(ctx, *co)
	return err
}

// Record stores the checkout as a donation. Replays of the same session are
// ignored and reported as not created.
func (r *DonationRecorder) Record(ctx context.Context, co payments.Checkout) (bool, error) {
	d := &models.Donation{
		Amount:           co.Amount,
		Comment:          optional(co.Comment),
		StripeCustomerID: optional(co.CustomerID),
		StripeReference:  optional(co.SessionID),
		Email:            optional(co.Email),
	}

	if co.ProductName != "" {
		p, err := r.donations.GetProductByName(ctx, co.ProductName)
		switch {
		case err == nil:
			d.DonationProductID = &p.ID
		case errors.Is(err, repositories.ErrNotFound):
			r.log.Warn("checkout names unknown donation product",
				zap.String("session_id", co.SessionID), zap.String("product", co.ProductName))
		default:
			return false, err
		}
	}

	created, err := r.donations.CreateDonation(ctx, d)
	if err != nil {
		return false, fmt.Errorf("record donation %s: %w", co.SessionID, err)
	}
	if created {
		r.log.Info("donation recorded", zap.String("session_id", co.SessionID), zap.String("amount", d.Amount.String()))
		if err := r.publisher.Publish(ctx, events.StreamDonations, events.DonationRecorded(d.ID.String(), d.Amount.String())); err != nil {
			r.log.Warn("failed to publish donation", zap.Error(err))
		}
	}
	return created, nil
}

// Reconcile records completed checkouts since the given time that the
// webhook missed. It returns how many donations were added.
func (r *DonationRecorder) Reconcile(ctx context.Context, since time.Time) (int, error) {
	checkouts, err := r.checkouts.CompletedCheckouts(ctx, since)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, co := range checkouts {
		created, err := r.Record(ctx, co)
		if err != nil {
			return added, err
		}
		if created {
			added++
		}
	}
	return added, nil
}
