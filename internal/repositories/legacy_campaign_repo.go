package repositories

import (
	"context"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

// LegacyCampaignRepo reads the campaigns table that predates the page tree.
type LegacyCampaignRepo struct {
	db DBTX
}

func NewLegacyCampaignRepo(db DBTX) *LegacyCampaignRepo {
	return &LegacyCampaignRepo{db: db}
}

func (r *LegacyCampaignRepo) List(ctx context.Context) ([]models.LegacyCampaign, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, slug, status, visible, description, call_to_action, call_to_action_header,
		       donation_action, donation_product_id, donation_goal, donation_goal_show_numbers,
		       subscription_action, social_shares, content_rendered, cover_path, created_at
		FROM legacy_campaigns ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LegacyCampaign
	for rows.Next() {
		var c models.LegacyCampaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Status, &c.Visible, &c.Description,
			&c.CallToAction, &c.CallToActionHeader, &c.DonationAction, &c.DonationProductID,
			&c.DonationGoal, &c.DonationGoalShowNumbers, &c.SubscriptionAction, &c.SocialShares,
			&c.ContentRendered, &c.CoverPath, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *LegacyCampaignRepo) Petitions(ctx context.Context, campaignID uuid.UUID) ([]models.Petition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+petitionColumns+` FROM petitions
		WHERE id IN (SELECT petition_id FROM legacy_campaign_petitions WHERE campaign_id = $1)
		ORDER BY created_at
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Petition
	for rows.Next() {
		var p models.Petition
		if err := scanPetition(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *LegacyCampaignRepo) EventIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT lce.event_id FROM legacy_campaign_events lce
		JOIN scheduled_events e ON e.id = lce.event_id
		WHERE lce.campaign_id = $1 ORDER BY e.starts_at
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
