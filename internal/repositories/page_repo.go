package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidPageParent = errors.New("page type not allowed under this parent")
	ErrPageLimitReached  = errors.New("page type instance limit reached")
)

// singleInstanceIndex enforces the instance cap of page types limited to one
// when two inserts race past the count check.
const singleInstanceIndex = "pages_single_instance_type"

type PageRepo struct {
	db DBTX
}

func NewPageRepo(db DBTX) *PageRepo {
	return &PageRepo{db: db}
}

const pageColumns = `id, parent_id, page_type, title, slug, url_path, depth, sort_order,
	live, show_in_menus, first_published_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }, p *models.Page) error {
	return row.Scan(&p.ID, &p.ParentID, &p.PageType, &p.Title, &p.Slug, &p.URLPath,
		&p.Depth, &p.SortOrder, &p.Live, &p.ShowInMenus, &p.FirstPublishedAt,
		&p.CreatedAt, &p.UpdatedAt)
}

// AddChild inserts p below parent after checking the page tree rules.
// URL path, depth and sort order are derived from the parent.
func (r *PageRepo) AddChild(ctx context.Context, parent *models.Page, p *models.Page) error {
	if !models.CanCreateUnder(p.PageType, parent.PageType) {
		return fmt.Errorf("%w: %s under %s", ErrInvalidPageParent, p.PageType, parent.PageType)
	}
	if max := models.MaxPageCount(p.PageType); max > 0 {
		var n int
		if err := r.db.QueryRow(ctx, `SELECT count(*) FROM pages WHERE page_type = $1`, p.PageType).Scan(&n); err != nil {
			return err
		}
		if n >= max {
			return fmt.Errorf("%w: %s", ErrPageLimitReached, p.PageType)
		}
	}

	p.ParentID = &parent.ID
	p.URLPath = parent.ChildURLPath(p.Slug)
	p.Depth = parent.Depth + 1
	if p.Live && p.FirstPublishedAt == nil {
		now := time.Now()
		p.FirstPublishedAt = &now
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO pages (parent_id, page_type, title, slug, url_path, depth, sort_order, live, show_in_menus, first_published_at)
		VALUES ($1, $2, $3, $4, $5, $6,
		        (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM pages WHERE parent_id = $1),
		        $7, $8, $9)
		RETURNING id, sort_order, created_at, updated_at
	`, p.ParentID, p.PageType, p.Title, p.Slug, p.URLPath, p.Depth,
		p.Live, p.ShowInMenus, p.FirstPublishedAt,
	).Scan(&p.ID, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if violates(err, singleInstanceIndex) {
		return fmt.Errorf("%w: %s", ErrPageLimitReached, p.PageType)
	}
	return mapErr(err)
}

func (r *PageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	var p models.Page
	row := r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	if err := scanPage(row, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PageRepo) GetByURLPath(ctx context.Context, path string) (*models.Page, error) {
	var p models.Page
	row := r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE url_path = $1`, path)
	if err := scanPage(row, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// FirstOfType returns the oldest page of the given type.
func (r *PageRepo) FirstOfType(ctx context.Context, pageType string) (*models.Page, error) {
	var p models.Page
	row := r.db.QueryRow(ctx, `
		SELECT `+pageColumns+` FROM pages WHERE page_type = $1
		ORDER BY depth, created_at LIMIT 1
	`, pageType)
	if err := scanPage(row, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PageRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Page, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pageColumns+` FROM pages WHERE parent_id = $1 ORDER BY sort_order, title
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		if err := scanPage(rows, &p); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Reorder assigns sort positions following the order of ids. Ids that are not
// children of parentID are ignored.
func (r *PageRepo) Reorder(ctx context.Context, parentID uuid.UUID, ids []uuid.UUID) error {
	for i, id := range ids {
		if _, err := r.db.Exec(ctx, `
			UPDATE pages SET sort_order = $1, updated_at = now() WHERE id = $2 AND parent_id = $3
		`, i, id, parentID); err != nil {
			return err
		}
	}
	return nil
}

// SetLive publishes or unpublishes a page. The first publication time is kept.
func (r *PageRepo) SetLive(ctx context.Context, id uuid.UUID, live bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE pages SET live = $1,
		       first_published_at = CASE WHEN $1 AND first_published_at IS NULL THEN now() ELSE first_published_at END,
		       updated_at = now()
		WHERE id = $2
	`, live, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PageRepo) UpdateMeta(ctx context.Context, id uuid.UUID, title string, showInMenus bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE pages SET title = $1, show_in_menus = $2, updated_at = now() WHERE id = $3
	`, title, showInMenus, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
