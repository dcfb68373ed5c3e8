package http

import (
	"strings"
	"time"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/http/handlers"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Audit        *handlers.AuditHandler
	CampaignPage *handlers.CampaignPageHandler
	Campaign     *handlers.CampaignHandler
	Page         *handlers.PageHandler
	Petition     *handlers.PetitionHandler
	Election     *handlers.ElectionHandler
	Facet        *handlers.FacetHandler
	Membership   *handlers.MembershipHandler
	Profile      *handlers.ProfileHandler
	WSHub        *handlers.WSHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Stripe calls back without a session; the signature is the auth.
	app.Post("/webhooks/stripe", h.Membership.StripeWebhook)

	// Public pages
	mountCampaignSite(app, h.CampaignPage,
		middleware.RateLimitMiddleware(rdb, "sign", cfg.RateLimitRPM, time.Minute))

	api := app.Group("/api/v1")

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, "api", cfg.RateLimitRPM, time.Minute))

	api.Post("/auth/register", h.Auth.Register)
	api.Post("/auth/login", h.Auth.Login)

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/campaign-statuses", metaHandler.GetCampaignStatuses)
	api.Get("/meta/signature-fields", metaHandler.GetSignatureFields)
	api.Get("/meta/facet-kinds", metaHandler.GetFacetKinds)

	api.Get("/elections", h.Election.ListElections)
	api.Get("/elections/:id", h.Election.GetElection)
	api.Get("/donation-tiers", h.Membership.ListActiveTiers)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Facets
	protected.Get("/facets/lookup", h.Facet.LookupPoint)
	protected.Get("/facets/search", h.Facet.SearchAddress)
	protected.Get("/facets/rcos", h.Facet.ListRCOs)
	protected.Get("/facets/rcos/:id", middleware.RequirePermission(rbac.PermViewRCODetail), h.Facet.GetRCO)
	protected.Get("/facets/custom", middleware.RequirePermission(rbac.PermViewCustomFacet), h.Facet.ListCustom)
	protected.Get("/facets/custom/:id", middleware.RequirePermission(rbac.PermViewCustomFacet), h.Facet.GetCustom)
	protected.Get("/facets/report", middleware.RequirePermission(rbac.PermViewReports), h.Facet.Report)
	protected.Get("/facets/profiles", middleware.RequirePermission(rbac.PermViewAllProfiles), h.Facet.AllProfiles)

	// Me
	me := protected.Group("/me", middleware.RequirePermission(rbac.PermEditOwnProfile))
	me.Get("", h.Profile.GetMe)
	me.Put("/profile", h.Profile.UpdateProfile)
	me.Get("/districts", h.Profile.GetDistricts)
	me.Get("/donations", h.Profile.GetDonations)
	me.Get("/shirt-orders", h.Profile.ListShirtOrders)
	me.Post("/shirt-orders", h.Profile.CreateShirtOrder)
	me.Delete("/shirt-orders/:id", h.Profile.DeleteShirtOrder)
	me.Get("/delete-preview", h.Profile.DeletePreview)
	me.Delete("", h.Profile.DeleteAccount)

	admin := protected.Group("/admin")

	// Pages
	pages := admin.Group("/pages", middleware.RequirePermission(rbac.PermManagePages))
	pages.Post("/campaigns-index", h.Page.CreateCampaignsIndex)
	pages.Get("/find", h.Page.FindByPath)
	pages.Get("/:id", h.Page.GetPage)
	pages.Get("/:id/children", h.Page.GetChildren)
	pages.Put("/:id/children/order", h.Page.ReorderChildren)
	pages.Put("/:id/live", h.Page.SetLive)
	pages.Put("/:id/meta", h.Page.UpdateMeta)

	// Campaigns
	campaigns := admin.Group("/campaigns", middleware.RequirePermission(rbac.PermManagePages))
	campaigns.Get("", h.Campaign.ListCampaigns)
	campaigns.Post("", h.Campaign.CreateCampaign)
	campaigns.Get("/:id", h.Campaign.GetCampaign)
	campaigns.Put("/:id", h.Campaign.UpdateCampaign)
	campaigns.Get("/:id/events", h.Campaign.GetCampaignEvents)
	campaigns.Put("/:id/events", h.Campaign.SetCampaignEvents)

	events := admin.Group("/events", middleware.RequirePermission(rbac.PermManagePages))
	events.Get("", h.Campaign.ListEvents)
	events.Post("", h.Campaign.CreateEvent)

	// Petitions
	petitions := admin.Group("/petitions", middleware.RequirePermission(rbac.PermManagePetitions))
	petitions.Get("", h.Petition.ListPetitions)
	petitions.Get("/choices", h.Petition.GetChoices)
	petitions.Post("", h.Petition.CreatePetition)
	petitions.Get("/:id", h.Petition.GetPetition)
	petitions.Put("/:id", h.Petition.UpdatePetition)
	petitions.Delete("/:id", h.Petition.DeletePetition)
	petitions.Get("/:id/signatures", h.Petition.ListSignatures)
	admin.Put("/signatures/:id/visible", middleware.RequirePermission(rbac.PermManagePetitions), h.Petition.SetSignatureVisible)

	// Elections
	elections := admin.Group("/elections", middleware.RequirePermission(rbac.PermManageElections))
	elections.Post("", h.Election.CreateElection)
	elections.Put("/:id", h.Election.UpdateElection)
	elections.Delete("/:id", h.Election.DeleteElection)

	// Facets
	facets := admin.Group("/facets", middleware.RequirePermission(rbac.PermManageFacets))
	facets.Get("/kind/:kind", h.Facet.ListByKind)
	facets.Put("", h.Facet.UpsertFacet)

	// Donations
	mountDonationAdmin(admin, h.Membership, middleware.RequirePermission(rbac.PermManageDonations))

	admin.Get("/audit/:entity/:id", middleware.RequirePermission(rbac.PermViewReports), h.Audit.History)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws/petitions/:id", websocket.New(h.WSHub.HandleWS))

	// Legacy URLs
	app.Use(h.CampaignPage.RedirectFallback)
}

type campaignSite interface {
	Index(c *fiber.Ctx) error
	Page(c *fiber.Ctx) error
	Sign(c *fiber.Ctx) error
	Signatures(c *fiber.Ctx) error
}

// mountCampaignSite serves the campaign pages at the url paths the page tree
// gives them: the index at models.CampaignsIndexPath, campaigns one level below.
func mountCampaignSite(app *fiber.App, h campaignSite, signLimit fiber.Handler) {
	site := app.Group(strings.TrimSuffix(models.CampaignsIndexPath, "/"))
	site.Get("/", h.Index)
	site.Get("/:slug/", h.Page)
	site.Post("/:slug/petition/:petitionID/sign/", signLimit, h.Sign)
	site.Get("/:slug/petition/:petitionID/_signatures/", h.Signatures)
}

type donationAdmin interface {
	ListTiers(c *fiber.Ctx) error
	CreateTier(c *fiber.Ctx) error
	SetTierActive(c *fiber.Ctx) error
	MoveTierUp(c *fiber.Ctx) error
	MoveTierDown(c *fiber.Ctx) error
	ListProducts(c *fiber.Ctx) error
	CreateProduct(c *fiber.Ctx) error
	UpdateProduct(c *fiber.Ctx) error
	ListDonations(c *fiber.Ctx) error
	GrantMembership(c *fiber.Ctx) error
}

// mountDonationAdmin registers the donation routes with perm attached per
// route; other /admin routes are left unaffected.
func mountDonationAdmin(admin fiber.Router, h donationAdmin, perm fiber.Handler) {
	admin.Get("/donation-tiers", perm, h.ListTiers)
	admin.Post("/donation-tiers", perm, h.CreateTier)
	admin.Put("/donation-tiers/:id/active", perm, h.SetTierActive)
	admin.Post("/donation-tiers/:id/up", perm, h.MoveTierUp)
	admin.Post("/donation-tiers/:id/down", perm, h.MoveTierDown)
	admin.Get("/donation-products", perm, h.ListProducts)
	admin.Post("/donation-products", perm, h.CreateProduct)
	admin.Put("/donation-products/:id", perm, h.UpdateProduct)
	admin.Get("/donations", perm, h.ListDonations)
	admin.Post("/memberships", perm, h.GrantMembership)
}
