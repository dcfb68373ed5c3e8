package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestBuildPageView(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	goal := 1000
	total := decimal.NewFromInt(250)

	cp := models.NewCampaignPage("Safe Streets", "safe-streets")
	cp.DonationAction = true
	cp.DonationGoal = &goal

	links := []models.CampaignEvent{
		{EventID: uuid.New(), SortOrder: 0, Event: &models.ScheduledEvent{Title: "past", StartsAt: now.Add(-time.Hour)}},
		{EventID: uuid.New(), SortOrder: 1, Event: &models.ScheduledEvent{Title: "ride", StartsAt: now.Add(24 * time.Hour)}},
	}

	v := buildPageView(cp, nil, &total, links, now)
	if v.DonationProgress != 25 {
		t.Errorf("DonationProgress = %d, want 25", v.DonationProgress)
	}
	if len(v.FutureEvents) != 1 || v.FutureEvents[0].Event.Title != "ride" {
		t.Errorf("FutureEvents = %+v", v.FutureEvents)
	}
	if !v.HasActions {
		t.Error("donation action should count as an action")
	}
}

func TestBuildPageViewWithoutActions(t *testing.T) {
	cp := models.NewCampaignPage("Quiet", "quiet")
	v := buildPageView(cp, nil, nil, nil, time.Now())
	if v.HasActions {
		t.Error("page without petitions, events or donations has no actions")
	}
	if v.DonationProgress != 0 {
		t.Errorf("DonationProgress = %d, want 0", v.DonationProgress)
	}
}

func TestValidateCampaign(t *testing.T) {
	cp := models.NewCampaignPage("Title", "title")
	if err := validateCampaign(cp); err != nil {
		t.Fatalf("default campaign should be valid: %v", err)
	}

	cp.Status = "archived"
	if err := validateCampaign(cp); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestValidateCampaignKeepsUnknownBlocks(t *testing.T) {
	cp := models.NewCampaignPage("Title", "title")
	cp.Body = models.Stream{
		models.NewTextBlock(models.BlockTypeParagraph, "<p>hi</p>"),
		{ID: "v1", Type: "video", Value: json.RawMessage(`{"url":"https://example.org/v.mp4"}`)},
	}
	cp.Title = "Renamed"
	if err := validateCampaign(cp); err != nil {
		t.Fatalf("stored body with an unknown block should stay editable: %v", err)
	}

	cp.Body = append(cp.Body, models.Block{Type: models.BlockTypeParagraph, Value: json.RawMessage(`{}`)})
	if err := validateCampaign(cp); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody for a broken paragraph, got %v", err)
	}
}

func TestPublicFilter(t *testing.T) {
	indexID := uuid.New()
	tests := []struct {
		status     string
		wantOK     bool
		wantStatus string
	}{
		{"", true, ""},
		{models.CampaignStatusActive, true, models.CampaignStatusActive},
		{"archived", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f, ok := publicFilter(indexID, tt.status, 10, 0)
			if ok != tt.wantOK {
				t.Fatalf("publicFilter(%q) ok = %v, want %v", tt.status, ok, tt.wantOK)
			}
			if !f.LiveVisible || f.IndexID == nil || *f.IndexID != indexID {
				t.Errorf("listing must stay scoped to live, visible pages of the index: %+v", f)
			}
			if ok && tt.wantStatus == "" && f.Status != nil {
				t.Errorf("empty status should not filter, got %q", *f.Status)
			}
			if tt.wantStatus != "" && (f.Status == nil || *f.Status != tt.wantStatus) {
				t.Errorf("status filter = %v, want %q", f.Status, tt.wantStatus)
			}
		})
	}
}

func TestCheckGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"polygon", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, true},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`, true},
		{"point", `{"type":"Point","coordinates":[0,0]}`, false},
		{"no coordinates", `{"type":"Polygon"}`, false},
		{"not json", `polygon`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkGeometry(json.RawMessage(tt.raw))
			if (err == nil) != tt.ok {
				t.Errorf("checkGeometry() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

// valuesRow scans a fixed list of values into the destinations.
type valuesRow struct {
	vals []any
	err  error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan %d columns into %d destinations", len(r.vals), len(dest))
	}
	for i, v := range r.vals {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// stagedDB keeps writes pending until the surrounding transaction commits.
type stagedDB struct {
	index      *models.Page
	insertErr  error
	pending    []string
	committed  []string
	rolledBack bool
}

func (d *stagedDB) runTx(ctx context.Context, fn func(db repositories.DBTX) error) error {
	d.pending = nil
	if err := fn(d); err != nil {
		d.rolledBack = true
		return err
	}
	d.committed = append(d.committed, d.pending...)
	return nil
}

func (d *stagedDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "FROM pages WHERE page_type"):
		if d.index == nil {
			return valuesRow{err: pgx.ErrNoRows}
		}
		p := d.index
		return valuesRow{vals: []any{p.ID, p.ParentID, p.PageType, p.Title, p.Slug, p.URLPath,
			p.Depth, p.SortOrder, p.Live, p.ShowInMenus, p.FirstPublishedAt, p.CreatedAt, p.UpdatedAt}}
	case strings.Contains(sql, "INSERT INTO pages"):
		d.pending = append(d.pending, "pages")
		now := time.Now()
		return valuesRow{vals: []any{uuid.New(), 0, now, now}}
	}
	return valuesRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (d *stagedDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "INSERT INTO campaign_pages") {
		if d.insertErr != nil {
			return pgconn.CommandTag{}, d.insertErr
		}
		d.pending = append(d.pending, "campaign_pages")
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
}

func (d *stagedDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func newStagedCampaignService(d *stagedDB) *CampaignService {
	return &CampaignService{inTx: d.runTx, auditRepo: repositories.NewAuditRepo(d), log: zap.NewNop()}
}

func TestCreateCampaignWritesPageAndFieldsTogether(t *testing.T) {
	index := &models.Page{ID: uuid.New(), PageType: models.PageTypeCampaignsIndex, Slug: "campaigns", URLPath: "/campaigns/", Depth: 2}

	tests := []struct {
		name      string
		index     *models.Page
		insertErr error
		wantErr   error
		committed []string
	}{
		{"both rows", index, nil, nil, []string{"pages", "campaign_pages"}},
		{"unknown donation product", index,
			&pgconn.PgError{Code: "23503", ConstraintName: "campaign_pages_donation_product_id_fkey"},
			repositories.ErrInvalidReference, nil},
		{"connection lost", index, errors.New("conn closed"), nil, nil},
		{"no index", nil, nil, ErrCampaignsIndexMissing, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &stagedDB{index: tt.index, insertErr: tt.insertErr}
			cp := models.NewCampaignPage("Safe Streets", "safe-streets")

			err := newStagedCampaignService(d).Create(context.Background(), uuid.New(), cp)
			switch {
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			case tt.insertErr == nil && tt.wantErr == nil && err != nil:
				t.Fatalf("Create() error = %v", err)
			case tt.insertErr != nil && err == nil:
				t.Fatal("Create() should fail when the campaign insert fails")
			}
			if !reflect.DeepEqual(d.committed, tt.committed) {
				t.Errorf("committed = %v, want %v", d.committed, tt.committed)
			}
			if err != nil && !d.rolledBack {
				t.Error("failed create should roll back")
			}
			if err == nil && cp.URLPath != "/campaigns/safe-streets/" {
				t.Errorf("URLPath = %q", cp.URLPath)
			}
		})
	}
}
