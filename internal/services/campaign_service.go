package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civic-action/platform/internal/blocks"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCampaignsIndexMissing = errors.New("campaigns index page does not exist")
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrInvalidBody           = errors.New("invalid page body")
	ErrInvalidStatus         = errors.New("invalid campaign status")
	ErrInvalidEventWindow    = errors.New("event cannot end before it starts")
)

// txRunner runs fn inside one transaction, rolling back when fn fails.
type txRunner func(ctx context.Context, fn func(db repositories.DBTX) error) error

func poolTx(pool *pgxpool.Pool) txRunner {
	return func(ctx context.Context, fn func(db repositories.DBTX) error) error {
		return repositories.RunInTx(ctx, pool, func(tx pgx.Tx) error {
			return fn(tx)
		})
	}
}

type CampaignService struct {
	inTx         txRunner
	pageRepo     *repositories.PageRepo
	campaignRepo *repositories.CampaignPageRepo
	eventRepo    *repositories.EventRepo
	redirectRepo *repositories.RedirectRepo
	auditRepo    *repositories.AuditRepo
	resolver     *blocks.Resolver
	log          *zap.Logger
}

func NewCampaignService(
	pool *pgxpool.Pool,
	pageRepo *repositories.PageRepo,
	campaignRepo *repositories.CampaignPageRepo,
	eventRepo *repositories.EventRepo,
	redirectRepo *repositories.RedirectRepo,
	auditRepo *repositories.AuditRepo,
	resolver *blocks.Resolver,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		inTx:         poolTx(pool),
		pageRepo:     pageRepo,
		campaignRepo: campaignRepo,
		eventRepo:    eventRepo,
		redirectRepo: redirectRepo,
		auditRepo:    auditRepo,
		resolver:     resolver,
		log:          log,
	}
}

// IndexView is the public campaigns listing.
type IndexView struct {
	Index     *models.Page          `json:"index"`
	Campaigns []models.CampaignPage `json:"campaigns"`
	Status    string                `json:"status,omitempty"`
	Statuses  []string              `json:"statuses"`
}

// PageView carries everything the campaign page template renders.
type PageView struct {
	Campaign         *models.CampaignPage   `json:"campaign"`
	Blocks           []blocks.Rendered      `json:"-"`
	DonationTotal    *decimal.Decimal       `json:"donation_total,omitempty"`
	DonationProgress int                    `json:"donation_progress"`
	FutureEvents     []models.CampaignEvent `json:"future_events"`
	HasActions       bool                   `json:"has_actions"`
}

func (s *CampaignService) Index(ctx context.Context) (*models.Page, error) {
	idx, err := s.pageRepo.FirstOfType(ctx, models.PageTypeCampaignsIndex)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignsIndexMissing
	}
	return idx, err
}

// ListPublic lists live, visible campaigns under the index, newest first.
// An empty status lists every status; an unknown one lists nothing.
func (s *CampaignService) ListPublic(ctx context.Context, status string, limit, offset int) (*IndexView, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	view := &IndexView{Index: idx, Status: status, Statuses: models.CampaignStatuses}
	f, ok := publicFilter(idx.ID, status, limit, offset)
	if !ok {
		return view, nil
	}
	if view.Campaigns, err = s.campaignRepo.List(ctx, f); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return view, nil
}

// publicFilter builds the index listing filter. ok is false when the status
// can match no campaign.
func publicFilter(indexID uuid.UUID, status string, limit, offset int) (f repositories.CampaignPageFilter, ok bool) {
	f = repositories.CampaignPageFilter{IndexID: &indexID, LiveVisible: true, Limit: limit, Offset: offset}
	if status == "" {
		return f, true
	}
	if !models.IsValidCampaignStatus(status) {
		return f, false
	}
	f.Status = &status
	return f, true
}

// PageBySlug finds a live campaign under the index.
func (s *CampaignService) PageBySlug(ctx context.Context, slug string) (*models.CampaignPage, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	cp, err := s.campaignRepo.GetLiveBySlug(ctx, idx.ID, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	return cp, err
}

func (s *CampaignService) View(ctx context.Context, cp *models.CampaignPage) (*PageView, error) {
	rendered, err := s.resolver.Resolve(ctx, cp.Body)
	if err != nil {
		return nil, err
	}
	var total *decimal.Decimal
	if cp.DonationAction {
		if total, err = s.campaignRepo.DonationTotal(ctx, cp.DonationProductID); err != nil {
			return nil, fmt.Errorf("donation total: %w", err)
		}
	}
	events, err := s.campaignRepo.Events(ctx, cp.ID)
	if err != nil {
		return nil, fmt.Errorf("campaign events: %w", err)
	}
	return buildPageView(cp, rendered, total, events, time.Now()), nil
}

func buildPageView(cp *models.CampaignPage, rendered []blocks.Rendered, total *decimal.Decimal, events []models.CampaignEvent, now time.Time) *PageView {
	return &PageView{
		Campaign:         cp,
		Blocks:           rendered,
		DonationTotal:    total,
		DonationProgress: models.DonationProgress(cp.DonationGoal, total),
		FutureEvents:     models.FutureEvents(events, now),
		HasActions:       cp.HasActions(len(events)),
	}
}

// ResolveRedirect maps an old path to the url of the page it now lives at.
func (s *CampaignService) ResolveRedirect(ctx context.Context, path string) (string, bool, error) {
	r, err := s.redirectRepo.GetByOldPath(ctx, path)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	page, err := s.pageRepo.GetByID(ctx, r.RedirectPageID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !page.Live) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return page.URLPath, r.IsPermanent, nil
}

// Admin

func (s *CampaignService) List(ctx context.Context, status string, limit, offset int) ([]models.CampaignPage, error) {
	f := repositories.CampaignPageFilter{Limit: limit, Offset: offset}
	if status != "" {
		if !models.IsValidCampaignStatus(status) {
			return nil, ErrInvalidStatus
		}
		f.Status = &status
	}
	return s.campaignRepo.List(ctx, f)
}

func (s *CampaignService) Get(ctx context.Context, id uuid.UUID) (*models.CampaignPage, error) {
	cp, err := s.campaignRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	return cp, err
}

func validateCampaign(cp *models.CampaignPage) error {
	if !models.IsValidCampaignStatus(cp.Status) {
		return ErrInvalidStatus
	}
	if err := cp.Body.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// Create adds a campaign page under the campaigns index. The page row and its
// campaign fields are written in one transaction.
func (s *CampaignService) Create(ctx context.Context, actorID uuid.UUID, cp *models.CampaignPage) error {
	if err := validateCampaign(cp); err != nil {
		return err
	}
	err := s.inTx(ctx, func(db repositories.DBTX) error {
		idx, err := repositories.NewPageRepo(db).FirstOfType(ctx, models.PageTypeCampaignsIndex)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCampaignsIndexMissing
		}
		if err != nil {
			return err
		}
		return repositories.NewCampaignPageRepo(db).Create(ctx, idx, cp)
	})
	if err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "campaign_page_created",
		EntityType:  models.EntityPage,
		EntityID:    &cp.ID,
	})
	return nil
}

func (s *CampaignService) Update(ctx context.Context, actorID uuid.UUID, cp *models.CampaignPage) error {
	if err := validateCampaign(cp); err != nil {
		return err
	}
	err := s.inTx(ctx, func(db repositories.DBTX) error {
		return repositories.NewCampaignPageRepo(db).Update(ctx, cp)
	})
	if err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "campaign_page_updated",
		EntityType:  models.EntityPage,
		EntityID:    &cp.ID,
		Meta:        map[string]any{"status": cp.Status},
	})
	return nil
}

func (s *CampaignService) Events(ctx context.Context, pageID uuid.UUID) ([]models.CampaignEvent, error) {
	return s.campaignRepo.Events(ctx, pageID)
}

// SetEvents replaces the ordered event list of a campaign page.
func (s *CampaignService) SetEvents(ctx context.Context, actorID, pageID uuid.UUID, eventIDs []uuid.UUID) error {
	if _, err := s.Get(ctx, pageID); err != nil {
		return err
	}
	err := s.inTx(ctx, func(db repositories.DBTX) error {
		return repositories.NewCampaignPageRepo(db).ReplaceEvents(ctx, pageID, eventIDs)
	})
	if err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "campaign_events_replaced",
		EntityType:  models.EntityPage,
		EntityID:    &pageID,
		Meta:        map[string]any{"count": len(eventIDs)},
	})
	return nil
}

func (s *CampaignService) CreateEvent(ctx context.Context, actorID uuid.UUID, e *models.ScheduledEvent) error {
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return ErrInvalidEventWindow
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "event_created",
		EntityType:  models.EntityEvent,
		EntityID:    &e.ID,
	})
	return nil
}

func (s *CampaignService) ListEvents(ctx context.Context, limit, offset int) ([]models.ScheduledEvent, error) {
	return s.eventRepo.List(ctx, limit, offset)
}
