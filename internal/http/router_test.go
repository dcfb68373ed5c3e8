package http

import (
	"bytes"
	"io"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/civic-action/platform/internal/blocks"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/services"
	"github.com/civic-action/platform/internal/web"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type markerSite struct{}

func (markerSite) Index(c *fiber.Ctx) error { return c.SendString("index") }
func (markerSite) Page(c *fiber.Ctx) error  { return c.SendString("page " + c.Params("slug")) }
func (markerSite) Sign(c *fiber.Ctx) error {
	return c.SendString("sign " + c.Params("slug") + " " + c.Params("petitionID"))
}
func (markerSite) Signatures(c *fiber.Ctx) error { return c.SendString("signatures") }

var (
	actionAttr  = regexp.MustCompile(`action="([^"]+)"`)
	dataSrcAttr = regexp.MustCompile(`data-src="([^"]+)"`)
)

func TestCampaignPageLinksHitMountedRoutes(t *testing.T) {
	home := &models.Page{PageType: models.PageTypeHome, URLPath: "/"}
	index := &models.Page{PageType: models.PageTypeCampaignsIndex, URLPath: home.ChildURLPath(models.CampaignsIndexSlug)}

	cp := models.NewCampaignPage("Safe Streets", "safe-streets")
	cp.URLPath = index.ChildURLPath(cp.Slug)
	petition := &models.Petition{
		ID:              uuid.New(),
		Title:           "Protect the lanes",
		Active:          true,
		ShowSubmissions: true,
		SignatureFields: []string{"first_name", "email"},
	}
	view := &services.PageView{
		Campaign: cp,
		Blocks: []blocks.Rendered{
			{ID: "b1", Type: models.BlockTypePetition, Petition: petition, Display: true},
		},
	}

	engine := web.NewEngine()
	if err := engine.Load(); err != nil {
		t.Fatalf("load templates: %v", err)
	}
	var buf bytes.Buffer
	if err := engine.Render(&buf, "campaigns/page", map[string]any{"Title": cp.Title, "View": view}, "layouts/main"); err != nil {
		t.Fatalf("render: %v", err)
	}
	action := actionAttr.FindStringSubmatch(buf.String())
	dataSrc := dataSrcAttr.FindStringSubmatch(buf.String())
	if action == nil || dataSrc == nil {
		t.Fatalf("form action or signatures source missing in %q", buf.String())
	}

	app := fiber.New()
	mountCampaignSite(app, markerSite{}, func(c *fiber.Ctx) error { return c.Next() })

	tests := []struct {
		name   string
		method string
		target string
		want   string
	}{
		{"index", fiber.MethodGet, index.URLPath, "index"},
		{"page", fiber.MethodGet, cp.URLPath, "page safe-streets"},
		{"sign form", fiber.MethodPost, action[1], "sign safe-streets " + petition.ID.String()},
		{"signatures", fiber.MethodGet, dataSrc[1], "signatures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			if err != nil {
				t.Fatalf("request %s: %v", tt.target, err)
			}
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != fiber.StatusOK || string(body) != tt.want {
				t.Errorf("%s %s = %d %q, want %q", tt.method, tt.target, resp.StatusCode, body, tt.want)
			}
		})
	}
}

type markerDonations struct{}

func (markerDonations) ListTiers(c *fiber.Ctx) error       { return c.SendString("tiers") }
func (markerDonations) CreateTier(c *fiber.Ctx) error      { return c.SendString("tier created") }
func (markerDonations) SetTierActive(c *fiber.Ctx) error   { return c.SendString("tier active") }
func (markerDonations) MoveTierUp(c *fiber.Ctx) error      { return c.SendString("tier up") }
func (markerDonations) MoveTierDown(c *fiber.Ctx) error    { return c.SendString("tier down") }
func (markerDonations) ListProducts(c *fiber.Ctx) error    { return c.SendString("products") }
func (markerDonations) CreateProduct(c *fiber.Ctx) error   { return c.SendString("product created") }
func (markerDonations) UpdateProduct(c *fiber.Ctx) error   { return c.SendString("product updated") }
func (markerDonations) ListDonations(c *fiber.Ctx) error   { return c.SendString("donations") }
func (markerDonations) GrantMembership(c *fiber.Ctx) error { return c.SendString("granted") }

func TestDonationPermissionStaysOnDonationRoutes(t *testing.T) {
	app := fiber.New()
	admin := app.Group("/admin")
	deny := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusForbidden) }
	mountDonationAdmin(admin, markerDonations{}, deny)
	admin.Get("/audit/:entity/:id", func(c *fiber.Ctx) error { return c.SendString("audit") })

	tests := []struct {
		method string
		target string
		status int
	}{
		{fiber.MethodGet, "/admin/audit/page/" + uuid.NewString(), fiber.StatusOK},
		{fiber.MethodGet, "/admin/donation-tiers", fiber.StatusForbidden},
		{fiber.MethodPost, "/admin/memberships", fiber.StatusForbidden},
		{fiber.MethodGet, "/admin/donations", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.target, err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, resp.StatusCode, tt.status)
		}
	}
}
