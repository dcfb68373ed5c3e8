package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/services"
	"github.com/google/uuid"
)

func TestRenderIndex(t *testing.T) {
	engine := NewEngine()
	if err := engine.Load(); err != nil {
		t.Fatalf("load templates: %v", err)
	}

	desc := "Paint the lanes"
	cp := models.NewCampaignPage("Protected lanes", "protected-lanes")
	cp.URLPath = "/campaigns/protected-lanes/"
	cp.Status = models.CampaignStatusActive
	cp.Description = &desc

	view := &services.IndexView{
		Index:     &models.Page{Title: "Campaigns", URLPath: "/campaigns/"},
		Campaigns: []models.CampaignPage{*cp},
		Statuses:  models.CampaignStatuses,
	}

	var buf bytes.Buffer
	err := engine.Render(&buf, "campaigns/index", map[string]any{
		"Title": "Campaigns",
		"View":  view,
	}, "layouts/main")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<title>Campaigns</title>", `href="/campaigns/protected-lanes/"`, "Paint the lanes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderSignaturesEscapes(t *testing.T) {
	engine := NewEngine()
	if err := engine.Load(); err != nil {
		t.Fatalf("load templates: %v", err)
	}

	var buf bytes.Buffer
	err := engine.Render(&buf, "petitions/_signatures", map[string]any{
		"Petition": &models.Petition{ID: uuid.New()},
		"Signatures": []models.PetitionSignature{
			{FirstName: "Ada", LastName: "L", Comment: "<script>x</script>"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("comment must be escaped")
	}
	if !strings.Contains(out, "Ada L") {
		t.Errorf("missing signer name in %q", out)
	}
}
