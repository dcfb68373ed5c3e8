package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civic-action/platform/internal/mail"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeNewsletter struct{ emails []string }

func (f *fakeNewsletter) Subscribe(_ context.Context, email string) error {
	f.emails = append(f.emails, email)
	return nil
}

type fakeSuppressions map[string]bool

func (f fakeSuppressions) IsDoNotEmail(_ context.Context, email string) (bool, error) {
	return f[email], nil
}

type fakeReconciler struct{ since time.Time }

func (f *fakeReconciler) Reconcile(_ context.Context, since time.Time) (int, error) {
	f.since = since
	return 2, nil
}

func TestPetitionEmailTaskRoundTrip(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandlers(mailer, &fakeNewsletter{}, fakeSuppressions{}, &fakeReconciler{}, zap.NewNop())

	msg := mail.Message{
		From:    "Jane Doe <noreply@example.org>",
		To:      []string{"mayor@example.org"},
		ReplyTo: "jane@example.org",
		Subject: "Fix the lane",
		Text:    "Please.",
	}
	task, err := NewPetitionEmailTask(msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.handlePetitionEmail(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].ReplyTo != "jane@example.org" {
		t.Fatalf("unexpected sent messages: %+v", mailer.sent)
	}
}

func TestPetitionEmailBadPayloadSkipsRetry(t *testing.T) {
	h := NewHandlers(&fakeMailer{}, &fakeNewsletter{}, fakeSuppressions{}, &fakeReconciler{}, zap.NewNop())
	err := h.handlePetitionEmail(context.Background(), asynq.NewTask(TaskPetitionEmail, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestPetitionEmailSendErrorRetries(t *testing.T) {
	h := NewHandlers(&fakeMailer{err: errors.New("smtp down")}, &fakeNewsletter{}, fakeSuppressions{}, &fakeReconciler{}, zap.NewNop())
	task, _ := NewPetitionEmailTask(mail.Message{From: "a@example.org", To: []string{"b@example.org"}})
	err := h.handlePetitionEmail(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestNewsletterAndReconcileHandlers(t *testing.T) {
	nl := &fakeNewsletter{}
	rc := &fakeReconciler{}
	h := NewHandlers(&fakeMailer{}, nl, fakeSuppressions{"gone@example.org": true}, rc, zap.NewNop())

	task, _ := NewNewsletterSubscribeTask("member@example.org")
	if err := h.handleNewsletterSubscribe(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	task, _ = NewNewsletterSubscribeTask("gone@example.org")
	if err := h.handleNewsletterSubscribe(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if len(nl.emails) != 1 || nl.emails[0] != "member@example.org" {
		t.Errorf("unexpected subscriptions: %v", nl.emails)
	}

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task, _ = NewDonationReconcileTask(since)
	if err := h.handleDonationReconcile(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if !rc.since.Equal(since) {
		t.Errorf("since = %v, want %v", rc.since, since)
	}
}
