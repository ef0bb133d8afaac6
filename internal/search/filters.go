// Package search holds the property search core: the validated FilterSet, its
// canonical cache-key serialization, the Mongo query composer and the
// in-memory matcher that mirrors the composer's predicate semantics.
package search

import (
	"fmt"
	"strings"

	"github.com/davidjirca/dreamhome/internal/entity"
)

type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortOldest    SortMode = "oldest"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortAreaDesc  SortMode = "area_desc"
	SortDistance  SortMode = "distance"
	SortRelevance SortMode = "relevance"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params is the flat, loosely-typed search parameter set as received from a
// request or stored on a saved search. All fields are optional; pointer fields
// distinguish "absent" from zero.
type Params struct {
	Query        string   `json:"query,omitempty"`
	Cities       []string `json:"cities,omitempty"`
	County       string   `json:"county,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  *float64 `json:"radius_km,omitempty"`
	NELat     *float64 `json:"ne_lat,omitempty"`
	NELng     *float64 `json:"ne_lng,omitempty"`
	SWLat     *float64 `json:"sw_lat,omitempty"`
	SWLng     *float64 `json:"sw_lng,omitempty"`

	PropertyType string `json:"property_type,omitempty"`
	ListingType  string `json:"listing_type,omitempty"`
	EnergyRating string `json:"energy_rating,omitempty"`

	MinPrice     *int64 `json:"min_price,omitempty"`
	MaxPrice     *int64 `json:"max_price,omitempty"`
	MinRooms     *int   `json:"min_rooms,omitempty"`
	MaxRooms     *int   `json:"max_rooms,omitempty"`
	MinBedrooms  *int   `json:"min_bedrooms,omitempty"`
	MaxBedrooms  *int   `json:"max_bedrooms,omitempty"`
	MinBathrooms *int   `json:"min_bathrooms,omitempty"`
	MaxBathrooms *int   `json:"max_bathrooms,omitempty"`
	MinArea      *int64 `json:"min_area,omitempty"`
	MaxArea      *int64 `json:"max_area,omitempty"`
	MinFloor     *int   `json:"min_floor,omitempty"`
	MaxFloor     *int   `json:"max_floor,omitempty"`
	MinYearBuilt *int   `json:"min_year_built,omitempty"`
	MaxYearBuilt *int   `json:"max_year_built,omitempty"`

	HasParking  *bool `json:"has_parking,omitempty"`
	HasGarage   *bool `json:"has_garage,omitempty"`
	HasBalcony  *bool `json:"has_balcony,omitempty"`
	HasTerrace  *bool `json:"has_terrace,omitempty"`
	HasGarden   *bool `json:"has_garden,omitempty"`
	IsFurnished *bool `json:"is_furnished,omitempty"`

	OwnerID          string `json:"owner_id,omitempty"`
	PostedWithinDays *int   `json:"posted_within_days,omitempty"`

	// IncludeInactive widens the visibility gate to unpublished listings.
	// It is intentionally not mapped from HTTP query parameters; only
	// internal callers and stored saved-search filters may set it.
	IncludeInactive bool `json:"include_inactive,omitempty"`

	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	SortBy   string `json:"sort_by,omitempty"`
}

// FilterSet is the validated, normalized form of Params. It is never mutated
// after construction; derived queries build new FilterSets.
type FilterSet struct {
	Query        string
	Cities       []string
	County       string
	Neighborhood string

	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
	NELat     *float64
	NELng     *float64
	SWLat     *float64
	SWLng     *float64

	PropertyType entity.PropertyType
	ListingType  entity.ListingType
	EnergyRating string

	MinPrice     *int64
	MaxPrice     *int64
	MinRooms     *int
	MaxRooms     *int
	MinBedrooms  *int
	MaxBedrooms  *int
	MinBathrooms *int
	MaxBathrooms *int
	MinArea      *int64
	MaxArea      *int64
	MinFloor     *int
	MaxFloor     *int
	MinYearBuilt *int
	MaxYearBuilt *int

	HasParking  *bool
	HasGarage   *bool
	HasBalcony  *bool
	HasTerrace  *bool
	HasGarden   *bool
	IsFurnished *bool

	OwnerID          string
	PostedWithinDays *int
	IncludeInactive  bool

	Page     int
	PageSize int
	SortBy   SortMode
}

func (f *FilterSet) HasRadius() bool {
	return f.RadiusKm != nil
}

func (f *FilterSet) HasBoundingBox() bool {
	return f.NELat != nil && f.NELng != nil && f.SWLat != nil && f.SWLng != nil
}

func (f *FilterSet) HasGeo() bool {
	return f.HasRadius() || f.HasBoundingBox()
}

// FieldViolation names one invalid field (or field pair) and why it failed.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found while building a FilterSet.
// Violations are reported in a fixed field order so the error is deterministic.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid search filters: " + strings.Join(parts, "; ")
}

type validator struct {
	violations []FieldViolation
}

func (v *validator) add(field, format string, args ...interface{}) {
	v.violations = append(v.violations, FieldViolation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) checkInt(field string, min, max *int) {
	if min != nil && max != nil && *min > *max {
		v.add(field, "min (%d) must not exceed max (%d)", *min, *max)
	}
}

func (v *validator) checkInt64(field string, min, max *int64) {
	if min != nil && max != nil && *min > *max {
		v.add(field, "min (%d) must not exceed max (%d)", *min, *max)
	}
}

// BuildFilterSet validates and normalizes raw parameters into a FilterSet.
// Construction is pure: no I/O, no side effects. On failure the returned
// error is a *ValidationError naming every offending field.
func BuildFilterSet(p Params) (*FilterSet, error) {
	v := &validator{}

	fs := &FilterSet{
		Query:            strings.TrimSpace(p.Query),
		County:           strings.TrimSpace(p.County),
		Neighborhood:     strings.TrimSpace(p.Neighborhood),
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		RadiusKm:         p.RadiusKm,
		NELat:            p.NELat,
		NELng:            p.NELng,
		SWLat:            p.SWLat,
		SWLng:            p.SWLng,
		EnergyRating:     strings.TrimSpace(p.EnergyRating),
		MinPrice:         p.MinPrice,
		MaxPrice:         p.MaxPrice,
		MinRooms:         p.MinRooms,
		MaxRooms:         p.MaxRooms,
		MinBedrooms:      p.MinBedrooms,
		MaxBedrooms:      p.MaxBedrooms,
		MinBathrooms:     p.MinBathrooms,
		MaxBathrooms:     p.MaxBathrooms,
		MinArea:          p.MinArea,
		MaxArea:          p.MaxArea,
		MinFloor:         p.MinFloor,
		MaxFloor:         p.MaxFloor,
		MinYearBuilt:     p.MinYearBuilt,
		MaxYearBuilt:     p.MaxYearBuilt,
		HasParking:       p.HasParking,
		HasGarage:        p.HasGarage,
		HasBalcony:       p.HasBalcony,
		HasTerrace:       p.HasTerrace,
		HasGarden:        p.HasGarden,
		IsFurnished:      p.IsFurnished,
		OwnerID:          strings.TrimSpace(p.OwnerID),
		PostedWithinDays: p.PostedWithinDays,
		IncludeInactive:  p.IncludeInactive,
	}

	for _, c := range p.Cities {
		if c = strings.TrimSpace(c); c != "" {
			fs.Cities = append(fs.Cities, c)
		}
	}

	if p.PropertyType != "" {
		pt, err := entity.ParsePropertyType(p.PropertyType)
		if err != nil {
			v.add("property_type", "%v", err)
		}
		fs.PropertyType = pt
	}
	if p.ListingType != "" {
		lt, err := entity.ParseListingType(p.ListingType)
		if err != nil {
			v.add("listing_type", "%v", err)
		}
		fs.ListingType = lt
	}

	v.checkInt64("min_price/max_price", p.MinPrice, p.MaxPrice)
	v.checkInt("min_rooms/max_rooms", p.MinRooms, p.MaxRooms)
	v.checkInt("min_bedrooms/max_bedrooms", p.MinBedrooms, p.MaxBedrooms)
	v.checkInt("min_bathrooms/max_bathrooms", p.MinBathrooms, p.MaxBathrooms)
	v.checkInt64("min_area/max_area", p.MinArea, p.MaxArea)
	v.checkInt("min_floor/max_floor", p.MinFloor, p.MaxFloor)
	v.checkInt("min_year_built/max_year_built", p.MinYearBuilt, p.MaxYearBuilt)

	if p.PostedWithinDays != nil && *p.PostedWithinDays < 1 {
		v.add("posted_within_days", "must be at least 1")
	}

	boxFields := 0
	for _, f := range []*float64{p.NELat, p.NELng, p.SWLat, p.SWLng} {
		if f != nil {
			boxFields++
		}
	}
	if boxFields > 0 && boxFields < 4 {
		v.add("ne_lat/ne_lng/sw_lat/sw_lng", "bounding box requires all four corners")
	}
	if p.RadiusKm != nil {
		if p.Latitude == nil || p.Longitude == nil {
			v.add("radius_km", "radius search requires latitude and longitude")
		} else if *p.RadiusKm <= 0 {
			v.add("radius_km", "must be positive")
		}
	}
	if p.RadiusKm != nil && boxFields == 4 {
		v.add("radius_km", "radius and bounding box filters are mutually exclusive")
	}

	switch p.SortBy {
	case "":
		fs.SortBy = SortNewest
	case string(SortNewest), string(SortOldest), string(SortPriceAsc),
		string(SortPriceDesc), string(SortAreaDesc):
		fs.SortBy = SortMode(p.SortBy)
	case string(SortDistance):
		fs.SortBy = SortDistance
		if !fs.HasGeo() {
			v.add("sort_by", "distance sort requires a geospatial filter")
		}
		// The store runs distance ordering as a $geoNear stage, whose filter
		// cannot carry a $text predicate.
		if fs.Query != "" {
			v.add("sort_by", "distance sort cannot be combined with a text query")
		}
	case string(SortRelevance):
		fs.SortBy = SortRelevance
		if fs.Query == "" {
			v.add("sort_by", "relevance sort requires a text query")
		}
	default:
		v.add("sort_by", "unknown sort mode %q", p.SortBy)
	}

	fs.Page = p.Page
	if fs.Page == 0 {
		fs.Page = 1
	}
	if fs.Page < 1 {
		v.add("page", "must be at least 1")
	}
	fs.PageSize = p.PageSize
	if fs.PageSize == 0 {
		fs.PageSize = DefaultPageSize
	}
	if fs.PageSize < 1 || fs.PageSize > MaxPageSize {
		v.add("page_size", "must be between 1 and %d", MaxPageSize)
	}

	if len(v.violations) > 0 {
		return nil, &ValidationError{Violations: v.violations}
	}
	return fs, nil
}
