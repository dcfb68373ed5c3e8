package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CampaignPageRepo struct {
	db DBTX
}

func NewCampaignPageRepo(db DBTX) *CampaignPageRepo {
	return &CampaignPageRepo{db: db}
}

const campaignPageColumns = `p.id, p.parent_id, p.page_type, p.title, p.slug, p.url_path, p.depth,
	p.sort_order, p.live, p.show_in_menus, p.first_published_at, p.created_at, p.updated_at,
	c.status, c.visible, c.description, c.call_to_action, c.call_to_action_header,
	c.donation_action, c.donation_product_id, c.donation_goal, c.donation_goal_show_numbers,
	c.subscription_action, c.social_shares, c.body, c.cover_image_id, c.legacy_campaign_id`

const campaignPageFrom = ` FROM pages p JOIN campaign_pages c ON c.page_id = p.id`

func scanCampaignPage(row interface{ Scan(...any) error }, cp *models.CampaignPage) error {
	var body []byte
	err := row.Scan(&cp.ID, &cp.ParentID, &cp.PageType, &cp.Title, &cp.Slug, &cp.URLPath,
		&cp.Depth, &cp.SortOrder, &cp.Live, &cp.ShowInMenus, &cp.FirstPublishedAt,
		&cp.CreatedAt, &cp.UpdatedAt,
		&cp.Status, &cp.Visible, &cp.Description, &cp.CallToAction, &cp.CallToActionHeader,
		&cp.DonationAction, &cp.DonationProductID, &cp.DonationGoal, &cp.DonationGoalShowNumbers,
		&cp.SubscriptionAction, &cp.SocialShares, &body, &cp.CoverImageID, &cp.LegacyCampaignID)
	if err != nil {
		return err
	}
	cp.Body = models.Stream{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &cp.Body); err != nil {
			return fmt.Errorf("decode body of page %s: %w", cp.ID, err)
		}
	}
	return nil
}

// Create adds the page to the tree under parent and stores its campaign fields.
func (r *CampaignPageRepo) Create(ctx context.Context, parent *models.Page, cp *models.CampaignPage) error {
	cp.PageType = models.PageTypeCampaign
	if err := NewPageRepo(r.db).AddChild(ctx, parent, &cp.Page); err != nil {
		return err
	}

	body, err := json.Marshal(cp.Body.Normalize())
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO campaign_pages (page_id, status, visible, description, call_to_action, call_to_action_header,
		       donation_action, donation_product_id, donation_goal, donation_goal_show_numbers,
		       subscription_action, social_shares, body, cover_image_id, legacy_campaign_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, cp.ID, cp.Status, cp.Visible, cp.Description, cp.CallToAction, cp.CallToActionHeader,
		cp.DonationAction, cp.DonationProductID, cp.DonationGoal, cp.DonationGoalShowNumbers,
		cp.SubscriptionAction, cp.SocialShares, body, cp.CoverImageID, cp.LegacyCampaignID)
	return mapErr(err)
}

func (r *CampaignPageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CampaignPage, error) {
	var cp models.CampaignPage
	row := r.db.QueryRow(ctx, `SELECT `+campaignPageColumns+campaignPageFrom+` WHERE p.id = $1`, id)
	if err := scanCampaignPage(row, &cp); err != nil {
		return nil, mapErr(err)
	}
	return &cp, nil
}

// GetLiveBySlug finds a published campaign page among the children of the index.
func (r *CampaignPageRepo) GetLiveBySlug(ctx context.Context, indexID uuid.UUID, slug string) (*models.CampaignPage, error) {
	var cp models.CampaignPage
	row := r.db.QueryRow(ctx, `SELECT `+campaignPageColumns+campaignPageFrom+`
		WHERE p.parent_id = $1 AND p.slug = $2 AND p.live
	`, indexID, slug)
	if err := scanCampaignPage(row, &cp); err != nil {
		return nil, mapErr(err)
	}
	return &cp, nil
}

func (r *CampaignPageRepo) GetByLegacyID(ctx context.Context, legacyID uuid.UUID) (*models.CampaignPage, error) {
	var cp models.CampaignPage
	row := r.db.QueryRow(ctx, `SELECT `+campaignPageColumns+campaignPageFrom+` WHERE c.legacy_campaign_id = $1`, legacyID)
	if err := scanCampaignPage(row, &cp); err != nil {
		return nil, mapErr(err)
	}
	return &cp, nil
}

func (r *CampaignPageRepo) Update(ctx context.Context, cp *models.CampaignPage) error {
	body, err := json.Marshal(cp.Body.Normalize())
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `
		UPDATE pages SET title = $1, show_in_menus = $2, updated_at = now() WHERE id = $3
	`, cp.Title, cp.ShowInMenus, cp.ID); err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE campaign_pages SET status = $1, visible = $2, description = $3, call_to_action = $4,
		       call_to_action_header = $5, donation_action = $6, donation_product_id = $7,
		       donation_goal = $8, donation_goal_show_numbers = $9, subscription_action = $10,
		       social_shares = $11, body = $12, cover_image_id = $13
		WHERE page_id = $14
	`, cp.Status, cp.Visible, cp.Description, cp.CallToAction, cp.CallToActionHeader,
		cp.DonationAction, cp.DonationProductID, cp.DonationGoal, cp.DonationGoalShowNumbers,
		cp.SubscriptionAction, cp.SocialShares, body, cp.CoverImageID, cp.ID)
	return mapErr(err)
}

type CampaignPageFilter struct {
	IndexID *uuid.UUID
	Status  *string
	// LiveVisible restricts to published pages flagged visible, newest first.
	LiveVisible bool
	Limit       int
	Offset      int
}

// List orders public listings by first publication, admin listings by status then sort order.
func (r *CampaignPageRepo) List(ctx context.Context, f CampaignPageFilter) ([]models.CampaignPage, error) {
	query := `SELECT ` + campaignPageColumns + campaignPageFrom
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.IndexID != nil {
		where = append(where, fmt.Sprintf("p.parent_id = $%d", argIdx))
		args = append(args, *f.IndexID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.LiveVisible {
		where = append(where, "p.live AND c.visible")
	}
	query += whereClause(where)

	if f.LiveVisible {
		query += " ORDER BY p.first_published_at DESC NULLS LAST"
	} else {
		query += ` ORDER BY array_position(ARRAY['draft','active','completed','canceled','suspended'], c.status), p.sort_order`
	}

	limit := clampLimit(f.Limit, 50, 200)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []models.CampaignPage
	for rows.Next() {
		var cp models.CampaignPage
		if err := scanCampaignPage(rows, &cp); err != nil {
			return nil, err
		}
		pages = append(pages, cp)
	}
	return pages, rows.Err()
}

// DonationTotal sums donations for a product; nil when productID is nil.
func (r *CampaignPageRepo) DonationTotal(ctx context.Context, productID *uuid.UUID) (*decimal.Decimal, error) {
	if productID == nil {
		return nil, nil
	}
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text FROM donations WHERE donation_product_id = $1
	`, *productID).Scan(&total)
	if err != nil {
		return nil, err
	}
	return &total, nil
}

// Events returns the linked events of a page in sort order.
func (r *CampaignPageRepo) Events(ctx context.Context, pageID uuid.UUID) ([]models.CampaignEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ce.id, ce.campaign_page_id, ce.event_id, ce.sort_order,
		       e.id, e.title, e.description, e.location, e.starts_at, e.ends_at, e.created_at
		FROM campaign_events ce JOIN scheduled_events e ON e.id = ce.event_id
		WHERE ce.campaign_page_id = $1
		ORDER BY ce.sort_order
	`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.CampaignEvent
	for rows.Next() {
		var l models.CampaignEvent
		var e models.ScheduledEvent
		if err := rows.Scan(&l.ID, &l.CampaignPageID, &l.EventID, &l.SortOrder,
			&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		l.Event = &e
		links = append(links, l)
	}
	return links, rows.Err()
}

// ReplaceEvents swaps the ordered event list of a page.
func (r *CampaignPageRepo) ReplaceEvents(ctx context.Context, pageID uuid.UUID, eventIDs []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM campaign_events WHERE campaign_page_id = $1`, pageID); err != nil {
		return err
	}
	for i, id := range eventIDs {
		if err := r.AddEvent(ctx, pageID, id, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignPageRepo) AddEvent(ctx context.Context, pageID, eventID uuid.UUID, sortOrder int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO campaign_events (campaign_page_id, event_id, sort_order) VALUES ($1, $2, $3)
	`, pageID, eventID, sortOrder)
	return mapErr(err)
}
