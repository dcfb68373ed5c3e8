package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/civic-action/platform/internal/blocks"
	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/db"
	"github.com/civic-action/platform/internal/events"
	apphttp "github.com/civic-action/platform/internal/http"
	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/http/handlers"
	"github.com/civic-action/platform/internal/jobs"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/payments"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/civic-action/platform/internal/web"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	queue, err := jobs.NewQueue(cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to create task queue", zap.Error(err))
	}
	defer queue.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	pageRepo := repositories.NewPageRepo(pool)
	campaignRepo := repositories.NewCampaignPageRepo(pool)
	eventRepo := repositories.NewEventRepo(pool)
	redirectRepo := repositories.NewRedirectRepo(pool)
	imageRepo := repositories.NewImageRepo(pool)
	petitionRepo := repositories.NewPetitionRepo(pool)
	signatureRepo := repositories.NewSignatureRepo(pool)
	electionRepo := repositories.NewElectionRepo(pool)
	facetRepo := repositories.NewFacetRepo(pool)
	donationRepo := repositories.NewDonationRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// External clients
	stripeClient := payments.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, log)
	mailjet := services.NewMailjetClient(cfg, log)
	geocoder := services.NewGeocoderClient(cfg, log)

	// Services
	resolver := blocks.NewResolver(petitionRepo, imageRepo)
	authService := services.NewAuthService(userRepo, cfg, log)
	pageService := services.NewPageService(pageRepo, auditRepo, log)
	campaignService := services.NewCampaignService(pool, pageRepo, campaignRepo, eventRepo, redirectRepo, auditRepo, resolver, log)
	petitionService := services.NewPetitionService(petitionRepo, signatureRepo, auditRepo, log)
	signService := services.NewSignService(campaignService, resolver, signatureRepo, queue, publisher, cfg.DefaultFromEmail, log)
	electionService := services.NewElectionService(electionRepo, auditRepo, log)
	facetService := services.NewFacetService(facetRepo, auditRepo, geocoder, log)
	membershipService := services.NewMembershipService(pool, donationRepo, auditRepo, log)
	recorder := services.NewDonationRecorder(donationRepo, stripeClient, publisher, log)
	profileService := services.NewProfileService(profileRepo, userRepo, stripeClient, mailjet, queue, geocoder, rdb, cfg, log)

	wsHub := handlers.NewWSHub(subscriber, log)
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to start websocket hub", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		Views: web.NewEngine(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: middleware.GetRequestID(c)})
			}
			return c.Status(code).SendString(err.Error())
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, apphttp.Handlers{
		Auth:         handlers.NewAuthHandler(authService, log),
		Audit:        handlers.NewAuditHandler(auditRepo, log),
		CampaignPage: handlers.NewCampaignPageHandler(campaignService, signService, log),
		Campaign:     handlers.NewCampaignHandler(campaignService, log),
		Page:         handlers.NewPageHandler(pageService, log),
		Petition:     handlers.NewPetitionHandler(petitionService, log),
		Election:     handlers.NewElectionHandler(electionService, log),
		Facet:        handlers.NewFacetHandler(facetService, log),
		Membership:   handlers.NewMembershipHandler(membershipService, recorder, log),
		Profile:      handlers.NewProfileHandler(userRepo, profileService, membershipService, log),
		WSHub:        wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
