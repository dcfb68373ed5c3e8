package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrIndexPathFixed = errors.New("campaigns index must be served at " + models.CampaignsIndexPath)
)

// newCampaignsIndex builds the index page below parent. An empty slug means
// models.CampaignsIndexSlug; any slug must land the index on CampaignsIndexPath.
func newCampaignsIndex(parent *models.Page, title, slug string) (*models.Page, error) {
	if slug == "" {
		slug = models.CampaignsIndexSlug
	}
	if title == "" {
		title = "Campaigns"
	}
	if path := parent.ChildURLPath(slug); path != models.CampaignsIndexPath {
		return nil, fmt.Errorf("%w, got %s", ErrIndexPathFixed, path)
	}
	return &models.Page{
		PageType:    models.PageTypeCampaignsIndex,
		Title:       title,
		Slug:        slug,
		Live:        true,
		ShowInMenus: true,
	}, nil
}

// PageService exposes the page tree to administrators. Pages are never
// deleted; unpublishing hides them.
type PageService struct {
	pageRepo  *repositories.PageRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewPageService(pageRepo *repositories.PageRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *PageService {
	return &PageService{pageRepo: pageRepo, auditRepo: auditRepo, log: log}
}

func (s *PageService) Get(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	p, err := s.pageRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPageNotFound
	}
	return p, err
}

// GetByPath finds a page by its url path; a missing trailing slash is added.
func (s *PageService) GetByPath(ctx context.Context, path string) (*models.Page, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	p, err := s.pageRepo.GetByURLPath(ctx, path)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPageNotFound
	}
	return p, err
}

func (s *PageService) Children(ctx context.Context, parentID uuid.UUID) ([]models.Page, error) {
	if _, err := s.Get(ctx, parentID); err != nil {
		return nil, err
	}
	return s.pageRepo.ListChildren(ctx, parentID)
}

// CreateCampaignsIndex adds the single campaigns index under the home page,
// or under the root when there is no home page.
func (s *PageService) CreateCampaignsIndex(ctx context.Context, actorID uuid.UUID, title, slug string) (*models.Page, error) {
	parent, err := s.pageRepo.FirstOfType(ctx, models.PageTypeHome)
	if errors.Is(err, repositories.ErrNotFound) {
		parent, err = s.pageRepo.FirstOfType(ctx, models.PageTypeRoot)
	}
	if err != nil {
		return nil, err
	}

	idx, err := newCampaignsIndex(parent, title, slug)
	if err != nil {
		return nil, err
	}
	if err := s.pageRepo.AddChild(ctx, parent, idx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "page_created",
		EntityType:  models.EntityPage,
		EntityID:    &idx.ID,
		Meta:        map[string]any{"page_type": idx.PageType},
	})
	return idx, nil
}

func (s *PageService) Reorder(ctx context.Context, actorID, parentID uuid.UUID, ids []uuid.UUID) error {
	if err := s.pageRepo.Reorder(ctx, parentID, ids); err != nil {
		return err
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "pages_reordered",
		EntityType:  models.EntityPage,
		EntityID:    &parentID,
	})
	return nil
}

func (s *PageService) SetLive(ctx context.Context, actorID, id uuid.UUID, live bool) error {
	if err := s.pageRepo.SetLive(ctx, id, live); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPageNotFound
		}
		return err
	}
	action := "page_unpublished"
	if live {
		action = "page_published"
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      action,
		EntityType:  models.EntityPage,
		EntityID:    &id,
	})
	return nil
}

func (s *PageService) UpdateMeta(ctx context.Context, actorID, id uuid.UUID, title string, showInMenus bool) error {
	if err := s.pageRepo.UpdateMeta(ctx, id, title, showInMenus); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPageNotFound
		}
		return err
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "page_updated",
		EntityType:  models.EntityPage,
		EntityID:    &id,
	})
	return nil
}
