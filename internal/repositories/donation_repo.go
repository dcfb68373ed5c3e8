package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DonationRepo struct {
	db DBTX
}

func NewDonationRepo(db DBTX) *DonationRepo {
	return &DonationRepo{db: db}
}

// Tiers

func (r *DonationRepo) CreateTier(ctx context.Context, t *models.DonationTier) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO donation_tiers (stripe_price, cost, recurrence, active, sort_order)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM donation_tiers))
		RETURNING id, sort_order, created_at
	`, t.StripePrice, t.Cost, t.Recurrence, t.Active).Scan(&t.ID, &t.Order, &t.CreatedAt)
}

func (r *DonationRepo) GetTier(ctx context.Context, id uuid.UUID) (*models.DonationTier, error) {
	var t models.DonationTier
	err := r.db.QueryRow(ctx, `
		SELECT id, stripe_price, cost, recurrence, active, sort_order, created_at
		FROM donation_tiers WHERE id = $1
	`, id).Scan(&t.ID, &t.StripePrice, &t.Cost, &t.Recurrence, &t.Active, &t.Order, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// SetTierActive is the only tier mutation besides ordering; price, cost and recurrence are fixed.
func (r *DonationRepo) SetTierActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE donation_tiers SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTiers orders active tiers first, then by position.
func (r *DonationRepo) ListTiers(ctx context.Context, activeOnly bool) ([]models.DonationTier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, stripe_price, cost, recurrence, active, sort_order, created_at
		FROM donation_tiers WHERE active OR NOT $1
		ORDER BY active DESC, sort_order
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DonationTier
	for rows.Next() {
		var t models.DonationTier
		if err := rows.Scan(&t.ID, &t.StripePrice, &t.Cost, &t.Recurrence, &t.Active, &t.Order, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// NeighbourTier finds the tier directly above (up) or below a position.
func (r *DonationRepo) NeighbourTier(ctx context.Context, order int, up bool) (*models.DonationTier, error) {
	query := `SELECT id, stripe_price, cost, recurrence, active, sort_order, created_at FROM donation_tiers `
	if up {
		query += `WHERE sort_order < $1 ORDER BY sort_order DESC LIMIT 1`
	} else {
		query += `WHERE sort_order > $1 ORDER BY sort_order LIMIT 1`
	}
	var t models.DonationTier
	err := r.db.QueryRow(ctx, query, order).Scan(&t.ID, &t.StripePrice, &t.Cost, &t.Recurrence, &t.Active, &t.Order, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *DonationRepo) SetTierOrder(ctx context.Context, id uuid.UUID, order int) error {
	_, err := r.db.Exec(ctx, `UPDATE donation_tiers SET sort_order = $1 WHERE id = $2`, order, id)
	return err
}

// Products

func (r *DonationRepo) CreateProduct(ctx context.Context, p *models.DonationProduct) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO donation_products (name, stripe_product_id, active) VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.StripeProductID, p.Active).Scan(&p.ID, &p.CreatedAt)
	return mapErr(err)
}

func (r *DonationRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.DonationProduct, error) {
	var p models.DonationProduct
	err := r.db.QueryRow(ctx, `
		SELECT id, name, stripe_product_id, active, created_at FROM donation_products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.StripeProductID, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *DonationRepo) GetProductByName(ctx context.Context, name string) (*models.DonationProduct, error) {
	var p models.DonationProduct
	err := r.db.QueryRow(ctx, `
		SELECT id, name, stripe_product_id, active, created_at FROM donation_products WHERE name = $1
	`, name).Scan(&p.ID, &p.Name, &p.StripeProductID, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *DonationRepo) UpdateProduct(ctx context.Context, p *models.DonationProduct) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donation_products SET name = $1, stripe_product_id = $2, active = $3 WHERE id = $4
	`, p.Name, p.StripeProductID, p.Active, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DonationRepo) ListProducts(ctx context.Context) ([]models.DonationProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, stripe_product_id, active, created_at FROM donation_products ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DonationProduct
	for rows.Next() {
		var p models.DonationProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.StripeProductID, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Donations

// CreateDonation ignores replays of an already recorded Stripe reference.
func (r *DonationRepo) CreateDonation(ctx context.Context, d *models.Donation) (bool, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO donations (donation_product_id, amount, comment, stripe_customer_id, stripe_reference, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stripe_reference) WHERE stripe_reference IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`, d.DonationProductID, d.Amount, d.Comment, d.StripeCustomerID, d.StripeReference, d.Email,
	).Scan(&d.ID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type DonationFilter struct {
	ProductID *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

func (r *DonationRepo) ListDonations(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	query := `
		SELECT id, donation_product_id, amount, comment, stripe_customer_id, stripe_reference, email, created_at
		FROM donations`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ProductID != nil {
		where = append(where, fmt.Sprintf("donation_product_id = $%d", argIdx))
		args = append(args, *f.ProductID)
		argIdx++
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("comment ILIKE $%d", argIdx))
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	query += whereClause(where)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, clampLimit(f.Limit, 50, 500), f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.DonationProductID, &d.Amount, &d.Comment, &d.StripeCustomerID,
			&d.StripeReference, &d.Email, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Memberships

func (r *DonationRepo) CreateMembership(ctx context.Context, m *models.Membership) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO memberships (user_id, start_date, end_date, kind) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.UserID, m.StartDate, m.EndDate, m.Kind).Scan(&m.ID, &m.CreatedAt)
	return mapErr(err)
}

func (r *DonationRepo) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, start_date, end_date, kind, created_at
		FROM memberships WHERE user_id = $1 ORDER BY start_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.StartDate, &m.EndDate, &m.Kind, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
