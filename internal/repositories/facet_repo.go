package repositories

import (
	"context"
	"encoding/json"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

// FacetRepo leaves all geometry work to PostGIS.
type FacetRepo struct {
	db DBTX
}

func NewFacetRepo(db DBTX) *FacetRepo {
	return &FacetRepo{db: db}
}

// minZipOverlap is the share of a zip code's area an RCO must cover to list it.
const minZipOverlap = 0.01

// Upsert stores a facet from a GeoJSON geometry, promoting polygons to multipolygons.
func (r *FacetRepo) Upsert(ctx context.Context, f *models.Facet) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO facets (kind, name, mpoly, properties)
		VALUES ($1, $2, ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($3), 4326)), $4)
		ON CONFLICT (kind, name) DO UPDATE SET
			mpoly = EXCLUDED.mpoly,
			properties = EXCLUDED.properties,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`, f.Kind, f.Name, string(f.Geometry), nullableJSON(f.Properties)).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	return mapErr(err)
}

func (r *FacetRepo) GetByID(ctx context.Context, id uuid.UUID, withGeometry bool) (*models.Facet, error) {
	var f models.Facet
	var geom, props []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, name, CASE WHEN $2 THEN ST_AsGeoJSON(mpoly)::jsonb END, properties, created_at, updated_at
		FROM facets WHERE id = $1
	`, id, withGeometry).Scan(&f.ID, &f.Kind, &f.Name, &geom, &props, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	f.Geometry = geom
	f.Properties = props
	return &f, nil
}

func (r *FacetRepo) ListByKind(ctx context.Context, kind string) ([]models.Facet, error) {
	return r.query(ctx, `
		SELECT id, kind, name, properties, created_at, updated_at
		FROM facets WHERE kind = $1 ORDER BY name
	`, kind)
}

// ContainingPoint returns every facet whose polygon contains the point.
func (r *FacetRepo) ContainingPoint(ctx context.Context, pt models.Point) ([]models.Facet, error) {
	return r.query(ctx, `
		SELECT id, kind, name, properties, created_at, updated_at
		FROM facets WHERE ST_Contains(mpoly, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY kind, name
	`, pt.Lng, pt.Lat)
}

// IntersectingZips lists zip codes overlapping the facet by more than minZipOverlap of the zip's area.
func (r *FacetRepo) IntersectingZips(ctx context.Context, facetID uuid.UUID) ([]models.Facet, error) {
	return r.query(ctx, `
		SELECT z.id, z.kind, z.name, z.properties, z.created_at, z.updated_at
		FROM facets z JOIN facets f ON f.id = $1
		WHERE z.kind = $2 AND ST_Intersects(z.mpoly, f.mpoly)
		  AND ST_Area(ST_Intersection(z.mpoly, f.mpoly)) / NULLIF(ST_Area(z.mpoly), 0) > $3
		ORDER BY z.name
	`, facetID, models.FacetKindZipCode, minZipOverlap)
}

func (r *FacetRepo) query(ctx context.Context, query string, args ...any) ([]models.Facet, error) {
	rows, err := r.db.Query(ctx, query, args...)
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

// LocatedProfile is a member profile with its point, as listed to staff and organizers.
type LocatedProfile struct {
	UserID    uuid.UUID    `json:"user_id"`
	Email     string       `json:"email"`
	FirstName *string      `json:"first_name,omitempty"`
	LastName  *string      `json:"last_name,omitempty"`
	ZipCode   *string      `json:"zip_code,omitempty"`
	Location  models.Point `json:"location"`
}

// ProfilesWithin lists profiles located inside the facet's polygon.
func (r *FacetRepo) ProfilesWithin(ctx context.Context, facetID uuid.UUID) ([]LocatedProfile, error) {
	return r.queryProfiles(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, p.zip_code, ST_X(p.location), ST_Y(p.location)
		FROM profiles p JOIN users u ON u.id = p.user_id JOIN facets f ON f.id = $1
		WHERE p.location IS NOT NULL AND ST_Contains(f.mpoly, p.location)
		ORDER BY u.last_name, u.first_name
	`, facetID)
}

func (r *FacetRepo) ProfilesWithLocation(ctx context.Context) ([]LocatedProfile, error) {
	return r.queryProfiles(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, p.zip_code, ST_X(p.location), ST_Y(p.location)
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.location IS NOT NULL
		ORDER BY u.last_name, u.first_name
	`)
}

func (r *FacetRepo) queryProfiles(ctx context.Context, query string, args ...any) ([]LocatedProfile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LocatedProfile
	for rows.Next() {
		var p LocatedProfile
		if err := rows.Scan(&p.UserID, &p.Email, &p.FirstName, &p.LastName, &p.ZipCode,
			&p.Location.Lng, &p.Location.Lat); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Report counts located profiles per facet of the given kind.
func (r *FacetRepo) Report(ctx context.Context, kind string) ([]models.DistrictReportRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.name, count(p.user_id)
		FROM facets f LEFT JOIN profiles p ON p.location IS NOT NULL AND ST_Contains(f.mpoly, p.location)
		WHERE f.kind = $1
		GROUP BY f.id, f.name
		ORDER BY f.name
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DistrictReportRow
	for rows.Next() {
		var row models.DistrictReportRow
		if err := rows.Scan(&row.FacetID, &row.Name, &row.ProfileCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
