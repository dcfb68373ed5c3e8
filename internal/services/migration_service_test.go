package services

import (
	"context"
	"errors"
	"testing"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memPages struct {
	pages []*models.Page
}

func (m *memPages) FirstOfType(_ context.Context, pageType string) (*models.Page, error) {
	for _, p := range m.pages {
		if p.PageType == pageType {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memPages) AddChild(_ context.Context, parent *models.Page, p *models.Page) error {
	p.ID = uuid.New()
	p.ParentID = &parent.ID
	p.URLPath = parent.ChildURLPath(p.Slug)
	m.pages = append(m.pages, p)
	return nil
}

type memCampaigns struct {
	byLegacy map[uuid.UUID]*models.CampaignPage
	created  []*models.CampaignPage
	events   map[uuid.UUID][]uuid.UUID
}

func (m *memCampaigns) Create(_ context.Context, parent *models.Page, cp *models.CampaignPage) error {
	cp.ID = uuid.New()
	cp.ParentID = &parent.ID
	cp.URLPath = parent.ChildURLPath(cp.Slug)
	m.created = append(m.created, cp)
	return nil
}

func (m *memCampaigns) GetByLegacyID(_ context.Context, legacyID uuid.UUID) (*models.CampaignPage, error) {
	if cp, ok := m.byLegacy[legacyID]; ok {
		return cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memCampaigns) AddEvent(_ context.Context, pageID, eventID uuid.UUID, sortOrder int) error {
	if len(m.events[pageID]) != sortOrder {
		return errors.New("events added out of order")
	}
	m.events[pageID] = append(m.events[pageID], eventID)
	return nil
}

type memLegacy struct {
	campaigns []models.LegacyCampaign
	petitions map[uuid.UUID][]models.Petition
	events    map[uuid.UUID][]uuid.UUID
}

func (m *memLegacy) List(context.Context) ([]models.LegacyCampaign, error) {
	return m.campaigns, nil
}

func (m *memLegacy) Petitions(_ context.Context, id uuid.UUID) ([]models.Petition, error) {
	return m.petitions[id], nil
}

func (m *memLegacy) EventIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return m.events[id], nil
}

type memImages struct {
	err    error
	titles []string
}

func (m *memImages) GetOrCreateByTitle(_ context.Context, title, file string) (*models.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.titles = append(m.titles, title)
	return &models.Image{ID: uuid.New(), Title: title, File: file}, nil
}

type memRedirects struct {
	paths map[string]uuid.UUID
}

func (m *memRedirects) GetOrCreate(_ context.Context, oldPath string, pageID uuid.UUID) (*models.Redirect, bool, error) {
	if id, ok := m.paths[oldPath]; ok {
		return &models.Redirect{OldPath: oldPath, RedirectPageID: id}, false, nil
	}
	m.paths[oldPath] = pageID
	return &models.Redirect{OldPath: oldPath, RedirectPageID: pageID, IsPermanent: true}, true, nil
}

type migrationFixture struct {
	pages      *memPages
	campaigns  *memCampaigns
	legacy     *memLegacy
	images     *memImages
	redirects  *memRedirects
	rolledBack bool
}

func newMigrationFixture() *migrationFixture {
	root := &models.Page{ID: uuid.New(), PageType: models.PageTypeRoot, Slug: "root"}
	home := &models.Page{ID: uuid.New(), PageType: models.PageTypeHome, Slug: "home", URLPath: "/"}
	return &migrationFixture{
		pages:     &memPages{pages: []*models.Page{root, home}},
		campaigns: &memCampaigns{byLegacy: map[uuid.UUID]*models.CampaignPage{}, events: map[uuid.UUID][]uuid.UUID{}},
		legacy:    &memLegacy{petitions: map[uuid.UUID][]models.Petition{}, events: map[uuid.UUID][]uuid.UUID{}},
		images:    &memImages{},
		redirects: &memRedirects{paths: map[string]uuid.UUID{}},
	}
}

func (f *migrationFixture) runTx(ctx context.Context, fn func(MigrationStores) error) error {
	err := fn(MigrationStores{
		Pages:     f.pages,
		Campaigns: f.campaigns,
		Legacy:    f.legacy,
		Images:    f.images,
		Redirects: f.redirects,
	})
	f.rolledBack = err != nil
	return err
}

func TestMigrateCampaigns(t *testing.T) {
	f := newMigrationFixture()
	content := `<p>Philadelphia needs protected bike lanes on every arterial.</p><img src="/media/lanes.jpg" alt="lanes">`
	cover := "campaigns/cover.png"
	lc := models.LegacyCampaign{
		ID:              uuid.New(),
		Title:           "Safe Streets",
		Slug:            "safe-streets",
		Status:          models.CampaignStatusActive,
		Visible:         true,
		ContentRendered: &content,
		CoverPath:       &cover,
	}
	petition := models.Petition{ID: uuid.New(), DisplayOnCampaignPage: true}
	ev1, ev2 := uuid.New(), uuid.New()
	f.legacy.campaigns = []models.LegacyCampaign{lc}
	f.legacy.petitions[lc.ID] = []models.Petition{petition}
	f.legacy.events[lc.ID] = []uuid.UUID{ev1, ev2}

	svc := NewMigrationService(f.runTx, zap.NewNop())
	report, err := svc.MigrateCampaigns(context.Background(), false)
	if err != nil {
		t.Fatalf("MigrateCampaigns() error = %v", err)
	}
	if !report.IndexCreated || report.Found != 1 || len(report.Migrated) != 1 || report.Redirects != 1 {
		t.Errorf("unexpected report: %+v", report)
	}

	idx, _ := f.pages.FirstOfType(context.Background(), models.PageTypeCampaignsIndex)
	if idx == nil || idx.URLPath != "/campaigns/" || !idx.Live || !idx.ShowInMenus {
		t.Fatalf("campaigns index not created under home: %+v", idx)
	}

	cp := f.campaigns.created[0]
	if !cp.Live || cp.Status != models.CampaignStatusActive {
		t.Errorf("migrated page should be live and keep its status: %+v", cp)
	}
	if cp.LegacyCampaignID == nil || *cp.LegacyCampaignID != lc.ID {
		t.Error("legacy id not recorded")
	}
	if len(cp.Body) != 2 || cp.Body[0].Type != models.BlockTypeHTML || cp.Body[1].Type != models.BlockTypePetition {
		t.Errorf("unexpected body: %+v", cp.Body)
	}
	if cp.CoverImageID == nil || len(f.images.titles) != 1 || f.images.titles[0] != cover {
		t.Errorf("cover image not migrated: %v", f.images.titles)
	}
	if cp.Description == nil || *cp.Description == "" {
		t.Error("description should fall back to a content excerpt")
	}
	if got := f.campaigns.events[cp.ID]; len(got) != 2 || got[0] != ev1 || got[1] != ev2 {
		t.Errorf("events = %v", got)
	}
	if f.redirects.paths["/campaigns/safe-streets/"] != cp.ID {
		t.Error("redirect from the legacy url not created")
	}

	// second run skips what is already migrated
	f.campaigns.byLegacy[lc.ID] = cp
	report, err = svc.MigrateCampaigns(context.Background(), false)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if report.IndexCreated || len(report.Migrated) != 0 || len(report.Skipped) != 1 {
		t.Errorf("second run should skip: %+v", report)
	}
}

func TestMigrateCampaignsDryRun(t *testing.T) {
	f := newMigrationFixture()
	f.legacy.campaigns = []models.LegacyCampaign{{ID: uuid.New(), Title: "T", Slug: "t", Status: models.CampaignStatusDraft}}

	report, err := NewMigrationService(f.runTx, zap.NewNop()).MigrateCampaigns(context.Background(), true)
	if err != nil {
		t.Fatalf("dry run error = %v", err)
	}
	if !report.DryRun || len(report.Migrated) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if !f.rolledBack {
		t.Error("dry run must roll back")
	}
}

func TestMigrateCampaignsImageFailure(t *testing.T) {
	f := newMigrationFixture()
	f.images.err = errors.New("storage offline")
	content := `<p>Body</p><img src="/media/first.jpg">`
	f.legacy.campaigns = []models.LegacyCampaign{{ID: uuid.New(), Title: "T", Slug: "t", Status: models.CampaignStatusDraft, ContentRendered: &content}}

	report, err := NewMigrationService(f.runTx, zap.NewNop()).MigrateCampaigns(context.Background(), false)
	if err != nil {
		t.Fatalf("image failure should not abort: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("warnings = %v", report.Warnings)
	}
	if f.campaigns.created[0].CoverImageID != nil {
		t.Error("cover should be empty when the image fails")
	}
	if f.rolledBack {
		t.Error("run should commit")
	}
}

func TestMigrateCampaignsIndexUnderRoot(t *testing.T) {
	f := newMigrationFixture()
	f.pages.pages = f.pages.pages[:1]

	if _, err := NewMigrationService(f.runTx, zap.NewNop()).MigrateCampaigns(context.Background(), false); err != nil {
		t.Fatalf("MigrateCampaigns() error = %v", err)
	}
	idx, err := f.pages.FirstOfType(context.Background(), models.PageTypeCampaignsIndex)
	if err != nil || idx.URLPath != "/campaigns/" {
		t.Errorf("index should be created under the root page: %+v, %v", idx, err)
	}
}
