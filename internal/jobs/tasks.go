// Package jobs runs background work on the asynq queue.
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

const (
	TaskPetitionEmail       = "petition:email"
	TaskNewsletterSubscribe = "newsletter:subscribe"
	TaskDonationReconcile   = "donation:reconcile"
)

type NewsletterPayload struct {
	Email string `json:"email"`
}

type ReconcilePayload struct {
	Since time.Time `json:"since"`
}

func NewPetitionEmailTask(msg mail.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPetitionEmail, payload,
		asynq.MaxRetry(5),
		asynq.Queue("critical"),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewNewsletterSubscribeTask(email string) (*asynq.Task, error) {
	payload, err := json.Marshal(NewsletterPayload{Email: email})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNewsletterSubscribe, payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewDonationReconcileTask(since time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePayload{Since: since})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDonationReconcile, payload,
		asynq.MaxRetry(1),
		asynq.Queue("low"),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(time.Hour),
	), nil
}

// Queue enqueues tasks from the API and the scheduler.
type Queue struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewQueue(redisURL string, log *zap.Logger) (*Queue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Queue{client: asynq.NewClient(opt), log: log}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	q.log.Debug("task enqueued", zap.String("type", task.Type()), zap.String("id", info.ID))
	return nil
}

func (q *Queue) EnqueuePetitionEmail(ctx context.Context, msg mail.Message) error {
	task, err := NewPetitionEmailTask(msg)
	return q.enqueue(ctx, task, err)
}

func (q *Queue) EnqueueNewsletterSubscribe(ctx context.Context, email string) error {
	task, err := NewNewsletterSubscribeTask(email)
	return q.enqueue(ctx, task, err)
}

func (q *Queue) EnqueueDonationReconcile(ctx context.Context, since time.Time) error {
	task, err := NewDonationReconcileTask(since)
	return q.enqueue(ctx, task, err)
}
