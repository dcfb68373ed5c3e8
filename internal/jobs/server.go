package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/civic-action/platform/internal/mail"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type NewsletterSubscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// SuppressionList knows addresses that asked never to be emailed again.
type SuppressionList interface {
	IsDoNotEmail(ctx context.Context, email string) (bool, error)
}

type DonationReconciler interface {
	Reconcile(ctx context.Context, since time.Time) (int, error)
}

// Handlers holds the dependencies task handlers call into.
type Handlers struct {
	mailer     mail.Mailer
	newsletter NewsletterSubscriber
	suppressed SuppressionList
	reconciler DonationReconciler
	log        *zap.Logger
}

func NewHandlers(
	mailer mail.Mailer,
	newsletter NewsletterSubscriber,
	suppressed SuppressionList,
	reconciler DonationReconciler,
	log *zap.Logger,
) *Handlers {
	return &Handlers{mailer: mailer, newsletter: newsletter, suppressed: suppressed, reconciler: reconciler, log: log}
}

func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPetitionEmail, h.handlePetitionEmail)
	mux.HandleFunc(TaskNewsletterSubscribe, h.handleNewsletterSubscribe)
	mux.HandleFunc(TaskDonationReconcile, h.handleDonationReconcile)
	return mux
}

func (h *Handlers) handlePetitionEmail(ctx context.Context, t *asynq.Task) error {
	var msg mail.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal petition email: %w: %w", err, asynq.SkipRetry)
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		h.log.Error("petition email failed", zap.Strings("to", msg.To), zap.Error(err))
		return err
	}
	h.log.Info("petition email sent", zap.Strings("to", msg.To), zap.String("reply_to", msg.ReplyTo))
	return nil
}

func (h *Handlers) handleNewsletterSubscribe(ctx context.Context, t *asynq.Task) error {
	var p NewsletterPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal newsletter payload: %w: %w", err, asynq.SkipRetry)
	}
	blocked, err := h.suppressed.IsDoNotEmail(ctx, p.Email)
	if err != nil {
		return err
	}
	if blocked {
		h.log.Info("newsletter subscribe skipped, address is suppressed", zap.String("email", p.Email))
		return nil
	}
	if err := h.newsletter.Subscribe(ctx, p.Email); err != nil {
		h.log.Warn("newsletter subscribe failed", zap.String("email", p.Email), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handlers) handleDonationReconcile(ctx context.Context, t *asynq.Task) error {
	var p ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal reconcile payload: %w: %w", err, asynq.SkipRetry)
	}
	n, err := h.reconciler.Reconcile(ctx, p.Since)
	if err != nil {
		return err
	}
	h.log.Info("donations reconciled", zap.Time("since", p.Since), zap.Int("recorded", n))
	return nil
}

// NewServer builds the asynq worker server with weighted queues.
func NewServer(redisURL string, concurrency int, log *zap.Logger) (*asynq.Server, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	}), nil
}
