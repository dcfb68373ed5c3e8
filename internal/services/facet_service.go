package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrFacetNotFound   = errors.New("facet not found")
	ErrInvalidGeometry = errors.New("geometry must be a GeoJSON Polygon or MultiPolygon")
	ErrInvalidPoint    = errors.New("point out of range")
	ErrUnknownKind     = errors.New("unknown facet kind")
)

type FacetService struct {
	facetRepo *repositories.FacetRepo
	auditRepo *repositories.AuditRepo
	geocoder  *GeocoderClient
	log       *zap.Logger
}

func NewFacetService(facetRepo *repositories.FacetRepo, auditRepo *repositories.AuditRepo, geocoder *GeocoderClient, log *zap.Logger) *FacetService {
	return &FacetService{facetRepo: facetRepo, auditRepo: auditRepo, geocoder: geocoder, log: log}
}

type AddressLookup struct {
	Address string          `json:"address"`
	Point   models.Point    `json:"point"`
	Facets  models.FacetSet `json:"facets"`
}

type RCODetail struct {
	Facet    *models.Facet  `json:"facet"`
	ZipCodes []models.Facet `json:"zip_codes"`
}

type CustomFacetDetail struct {
	Facet    *models.Facet                 `json:"facet"`
	Profiles []repositories.LocatedProfile `json:"profiles"`
}

func (s *FacetService) LookupPoint(ctx context.Context, pt models.Point) (models.FacetSet, error) {
	if pt.Lat < -90 || pt.Lat > 90 || pt.Lng < -180 || pt.Lng > 180 {
		return nil, ErrInvalidPoint
	}
	facets, err := s.facetRepo.ContainingPoint(ctx, pt)
	if err != nil {
		return nil, err
	}
	return models.GroupFacets(facets), nil
}

// SearchAddress geocodes the address, then looks the point up.
func (s *FacetService) SearchAddress(ctx context.Context, address string) (*AddressLookup, error) {
	pt, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	set, err := s.LookupPoint(ctx, *pt)
	if err != nil {
		return nil, err
	}
	return &AddressLookup{Address: address, Point: *pt, Facets: set}, nil
}

func (s *FacetService) ListByKind(ctx context.Context, kind string) ([]models.Facet, error) {
	return s.facetRepo.ListByKind(ctx, kind)
}

func (s *FacetService) getOfKind(ctx context.Context, id uuid.UUID, kind string, withGeometry bool) (*models.Facet, error) {
	f, err := s.facetRepo.GetByID(ctx, id, withGeometry)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrFacetNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.Kind != kind {
		return nil, ErrFacetNotFound
	}
	return f, nil
}

// RCO returns a registered community organization with the zip codes it
// meaningfully overlaps.
func (s *FacetService) RCO(ctx context.Context, id uuid.UUID, withGeometry bool) (*RCODetail, error) {
	f, err := s.getOfKind(ctx, id, models.FacetKindRCO, withGeometry)
	if err != nil {
		return nil, err
	}
	zips, err := s.facetRepo.IntersectingZips(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RCODetail{Facet: f, ZipCodes: zips}, nil
}

func (s *FacetService) Custom(ctx context.Context, id uuid.UUID) (*CustomFacetDetail, error) {
	f, err := s.getOfKind(ctx, id, models.FacetKindCustom, true)
	if err != nil {
		return nil, err
	}
	profiles, err := s.facetRepo.ProfilesWithin(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomFacetDetail{Facet: f, Profiles: profiles}, nil
}

// Report counts located profiles per facet, per district by default.
func (s *FacetService) Report(ctx context.Context, kind string) ([]models.DistrictReportRow, error) {
	if kind == "" {
		kind = models.FacetKindDistrict
	}
	if !models.IsValidFacetKind(kind) {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return s.facetRepo.Report(ctx, kind)
}

func (s *FacetService) AllProfiles(ctx context.Context) ([]repositories.LocatedProfile, error) {
	return s.facetRepo.ProfilesWithLocation(ctx)
}

// Upsert stores a facet by kind and name, replacing the polygon of an existing one.
func (s *FacetService) Upsert(ctx context.Context, actorID uuid.UUID, f *models.Facet) error {
	if !models.IsValidFacetKind(f.Kind) {
		return fmt.Errorf("%w %q", ErrUnknownKind, f.Kind)
	}
	if err := checkGeometry(f.Geometry); err != nil {
		return err
	}
	if err := s.facetRepo.Upsert(ctx, f); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "facet_upserted",
		EntityType:  models.EntityFacet,
		EntityID:    &f.ID,
		Meta:        map[string]any{"kind": f.Kind, "name": f.Name},
	})
	return nil
}

func checkGeometry(raw json.RawMessage) error {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return ErrInvalidGeometry
	}
	if (g.Type != "Polygon" && g.Type != "MultiPolygon") || len(g.Coordinates) == 0 {
		return ErrInvalidGeometry
	}
	return nil
}
