package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/db"
	"github.com/civic-action/platform/internal/events"
	"github.com/civic-action/platform/internal/jobs"
	"github.com/civic-action/platform/internal/mail"
	"github.com/civic-action/platform/internal/payments"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reconcileWindow overlaps consecutive syncs so a late checkout is never skipped.
const reconcileWindow = 48 * time.Hour

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	mailer, err := mail.New(cfg, log)
	if err != nil {
		log.Fatal("failed to configure mailer", zap.Error(err))
	}

	queue, err := jobs.NewQueue(cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to create task queue", zap.Error(err))
	}
	defer queue.Close()

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	stripeClient := payments.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, log)
	recorder := services.NewDonationRecorder(repositories.NewDonationRepo(pool), stripeClient, publisher, log)
	mailjet := services.NewMailjetClient(cfg, log)

	srv, err := jobs.NewServer(cfg.RedisURL, cfg.WorkerConcurrency, log)
	if err != nil {
		log.Fatal("failed to create worker server", zap.Error(err))
	}
	handlers := jobs.NewHandlers(mailer, mailjet, repositories.NewProfileRepo(pool), recorder, log)

	// Scheduler
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.StripeSyncSchedule, func() {
		since := time.Now().Add(-reconcileWindow)
		if err := queue.EnqueueDonationReconcile(ctx, since); err != nil {
			log.Error("failed to schedule donation reconcile", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatal("invalid stripe sync schedule", zap.String("schedule", cfg.StripeSyncSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	if err := srv.Start(handlers.Mux()); err != nil {
		log.Fatal("failed to start worker", zap.Error(err))
	}
	log.Info("worker started", zap.Int("concurrency", cfg.WorkerConcurrency))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	cancel()
	srv.Shutdown()
}
