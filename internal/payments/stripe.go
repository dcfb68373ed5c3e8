// Package payments reads subscriptions, charges and checkout sessions from
// Stripe and verifies webhook payloads.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured    = errors.New("stripe is not configured")
	ErrInvalidSignature = errors.New("invalid stripe signature")
)

type Subscription struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Interval         string          `json:"interval,omitempty"`
	CurrentPeriodEnd time.Time       `json:"current_period_end"`
}

type Charge struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Checkout is the part of a completed checkout session a donation is built from.
type Checkout struct {
	SessionID   string
	CustomerID  string
	Email       string
	Amount      decimal.Decimal
	ProductName string
	Comment     string
	CreatedAt   time.Time
}

type Client struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

// NewClient returns a client whose reads fail with ErrNotConfigured when no
// secret key is set.
func NewClient(secretKey, webhookSecret string, log *zap.Logger) *Client {
	c := &Client{webhookSecret: webhookSecret, log: log}
	if secretKey != "" {
		c.api = &client.API{}
		c.api.Init(secretKey, nil)
	}
	return c
}

func (c *Client) customerIDs(ctx context.Context, email string) ([]string, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	var ids []string
	it := c.api.Customers.List(params)
	for it.Next() {
		ids = append(ids, it.Customer().ID)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list stripe customers: %w", err)
	}
	return ids, nil
}

// ActiveSubscriptions lists active subscriptions of every customer that
// carries the email.
func (c *Client) ActiveSubscriptions(ctx context.Context, email string) ([]Subscription, error) {
	ids, err := c.customerIDs(ctx, email)
	if err != nil {
		return nil, err
	}
	var out []Subscription
	for _, id := range ids {
		params := &stripe.SubscriptionListParams{
			Customer: stripe.String(id),
			Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
		}
		params.Context = ctx
		it := c.api.Subscriptions.List(params)
		for it.Next() {
			out = append(out, toSubscription(it.Subscription()))
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("list stripe subscriptions: %w", err)
		}
	}
	return out, nil
}

func (c *Client) Charges(ctx context.Context, email string) ([]Charge, error) {
	ids, err := c.customerIDs(ctx, email)
	if err != nil {
		return nil, err
	}
	var out []Charge
	for _, id := range ids {
		params := &stripe.ChargeListParams{Customer: stripe.String(id)}
		params.Context = ctx
		it := c.api.Charges.List(params)
		for it.Next() {
			ch := it.Charge()
			out = append(out, Charge{
				ID:          ch.ID,
				Amount:      fromCents(ch.Amount),
				Description: ch.Description,
				Status:      string(ch.Status),
				CreatedAt:   time.Unix(ch.Created, 0).UTC(),
			})
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("list stripe charges: %w", err)
		}
	}
	return out, nil
}

// CompletedCheckouts walks completed checkout sessions newest first and
// stops at the first one created before since.
func (c *Client) CompletedCheckouts(ctx context.Context, since time.Time) ([]Checkout, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionListParams{Status: stripe.String(string(stripe.CheckoutSessionStatusComplete))}
	params.Context = ctx
	var out []Checkout
	it := c.api.CheckoutSessions.List(params)
	for it.Next() {
		s := it.CheckoutSession()
		if time.Unix(s.Created, 0).Before(since) {
			break
		}
		out = append(out, toCheckout(s))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list checkout sessions: %w", err)
	}
	return out, nil
}

// ParseCheckoutCompleted verifies a webhook payload. ok is false for events
// other than checkout.session.completed.
func (c *Client) ParseCheckoutCompleted(payload []byte, signature string) (*Checkout, bool, error) {
	if c.webhookSecret == "" {
		return nil, false, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Type != "checkout.session.completed" {
		c.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil, false, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode checkout session: %w", err)
	}
	co := toCheckout(&s)
	return &co, true, nil
}

func toSubscription(s *stripe.Subscription) Subscription {
	sub := Subscription{
		ID:               s.ID,
		Status:           string(s.Status),
		CurrentPeriodEnd: time.Unix(s.CurrentPeriodEnd, 0).UTC(),
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		p := s.Items.Data[0].Price
		sub.Amount = fromCents(p.UnitAmount)
		if p.Recurring != nil {
			sub.Interval = string(p.Recurring.Interval)
		}
	}
	return sub
}

func toCheckout(s *stripe.CheckoutSession) Checkout {
	co := Checkout{
		SessionID: s.ID,
		Amount:    fromCents(s.AmountTotal),
		CreatedAt: time.Unix(s.Created, 0).UTC(),
	}
	if s.Customer != nil {
		co.CustomerID = s.Customer.ID
	}
	if s.CustomerDetails != nil {
		co.Email = s.CustomerDetails.Email
	}
	if s.Metadata != nil {
		co.ProductName = s.Metadata["product"]
		co.Comment = s.Metadata["comment"]
	}
	return co
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
