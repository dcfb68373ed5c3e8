package repositories

import (
	"context"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetOrCreate returns the profile of a user, creating an empty one on first access.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}

	var p models.Profile
	var lng, lat *float64
	err := r.db.QueryRow(ctx, `
		SELECT user_id, newsletter_opt_in, street_address, zip_code, ST_X(location), ST_Y(location),
		       created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.NewsletterOptIn, &p.StreetAddress, &p.ZipCode, &lng, &lat,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if lng != nil && lat != nil {
		p.Location = &models.Point{Lng: *lng, Lat: *lat}
	}
	return &p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	var lng, lat *float64
	if p.Location != nil {
		lng, lat = &p.Location.Lng, &p.Location.Lat
	}
	_, err := r.db.Exec(ctx, `
		UPDATE profiles SET newsletter_opt_in = $1, street_address = $2, zip_code = $3,
		       location = CASE WHEN $4::float8 IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint($4, $5), 4326) END,
		       updated_at = now()
		WHERE user_id = $6
	`, p.NewsletterOptIn, p.StreetAddress, p.ZipCode, lng, lat, p.UserID)
	return err
}

// FacetsForUser matches the profile location against facets of the given kinds.
func (r *ProfileRepo) FacetsForUser(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Facet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.kind, f.name, f.properties, f.created_at, f.updated_at
		FROM facets f JOIN profiles p ON p.user_id = $1
		WHERE p.location IS NOT NULL AND f.kind = ANY($2) AND ST_Contains(f.mpoly, p.location)
		ORDER BY f.kind, f.name
	`, userID, kinds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Facet
	for rows.Next() {
		var f models.Facet
		var props []byte
		if err := rows.Scan(&f.ID, &f.Kind, &f.Name, &props, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Properties = props
		out = append(out, f)
	}
	return out, rows.Err()
}

// Shirt orders

func (r *ProfileRepo) ListShirtOrders(ctx context.Context, userID uuid.UUID) ([]models.ShirtOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, fit, print_color, size, paid, billing_details, shipping_details, created_at
		FROM shirt_orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ShirtOrder
	for rows.Next() {
		var o models.ShirtOrder
		var billing, shipping []byte
		if err := rows.Scan(&o.ID, &o.UserID, &o.Fit, &o.PrintColor, &o.Size, &o.Paid,
			&billing, &shipping, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.BillingDetails, o.ShippingDetails = billing, shipping
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) CreateShirtOrder(ctx context.Context, o *models.ShirtOrder) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO shirt_orders (user_id, fit, print_color, size) VALUES ($1, $2, $3, $4)
		RETURNING id, paid, created_at
	`, o.UserID, o.Fit, o.PrintColor, o.Size).Scan(&o.ID, &o.Paid, &o.CreatedAt)
}

func (r *ProfileRepo) DeleteShirtOrder(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shirt_orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Account deletion

// RecordDoNotEmail keeps the reason of an existing entry.
func (r *ProfileRepo) RecordDoNotEmail(ctx context.Context, email, reason string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO do_not_email (email, reason) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING
	`, email, reason)
	return err
}

func (r *ProfileRepo) IsDoNotEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM do_not_email WHERE lower(email) = lower($1))
	`, email).Scan(&exists)
	return exists, err
}

func (r *ProfileRepo) ListApplications(ctx context.Context, userID uuid.UUID) ([]models.Application, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, kind, created_at FROM applications WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
