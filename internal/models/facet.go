package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	FacetKindDistrict            = "district"
	FacetKindZipCode             = "zip_code"
	FacetKindStateHouseDistrict  = "state_house_district"
	FacetKindStateSenateDistrict = "state_senate_district"
	FacetKindRCO                 = "rco"
	FacetKindCustom              = "custom"
)

var FacetKinds = []string{
	FacetKindDistrict,
	FacetKindZipCode,
	FacetKindStateHouseDistrict,
	FacetKindStateSenateDistrict,
	FacetKindRCO,
	FacetKindCustom,
}

func IsValidFacetKind(kind string) bool {
	return contains(FacetKinds, kind)
}

// Facet is a named boundary. Geometry travels as GeoJSON; PostGIS owns the maths.
type Facet struct {
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind"`
	Name       string          `json:"name"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// FacetSet groups facets matched for a location by kind.
type FacetSet map[string][]Facet

func GroupFacets(facets []Facet) FacetSet {
	set := FacetSet{}
	for _, f := range facets {
		set[f.Kind] = append(set[f.Kind], f)
	}
	return set
}

type DistrictReportRow struct {
	FacetID      uuid.UUID `json:"facet_id"`
	Name         string    `json:"name"`
	ProfileCount int       `json:"profile_count"`
}
