package entity

import (
	"regexp"
	"strings"
	"time"
)

// GeoPoint is a GeoJSON point stored in the 2dsphere index.
// Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

func (p *GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p *GeoPoint) Lng() float64 { return p.Coordinates[0] }

// Property is a real-estate listing. Prices and areas are whole units
// (currency units and square meters respectively).
type Property struct {
	ID      string `bson:"_id,omitempty" json:"id"`
	OwnerID string `bson:"owner_id" json:"owner_id"`

	Title        string         `bson:"title" json:"title"`
	Description  string         `bson:"description,omitempty" json:"description,omitempty"`
	PropertyType PropertyType   `bson:"property_type" json:"property_type"`
	ListingType  ListingType    `bson:"listing_type" json:"listing_type"`
	Status       PropertyStatus `bson:"status" json:"status"`

	Price       int64   `bson:"price" json:"price"`
	PricePerSqm float64 `bson:"price_per_sqm,omitempty" json:"price_per_sqm,omitempty"`
	Currency    string  `bson:"currency" json:"currency"`
	Negotiable  bool    `bson:"negotiable" json:"negotiable"`

	TotalArea   int64 `bson:"total_area" json:"total_area"`
	UsableArea  int64 `bson:"usable_area,omitempty" json:"usable_area,omitempty"`
	Rooms       int   `bson:"rooms" json:"rooms"`
	Bedrooms    int   `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int   `bson:"bathrooms" json:"bathrooms"`
	Floor       *int  `bson:"floor,omitempty" json:"floor,omitempty"`
	TotalFloors *int  `bson:"total_floors,omitempty" json:"total_floors,omitempty"`

	YearBuilt    *int   `bson:"year_built,omitempty" json:"year_built,omitempty"`
	Balconies    int    `bson:"balconies" json:"balconies"`
	ParkingSpots int    `bson:"parking_spots" json:"parking_spots"`
	HasGarage    bool   `bson:"has_garage" json:"has_garage"`
	HasTerrace   bool   `bson:"has_terrace" json:"has_terrace"`
	HasGarden    bool   `bson:"has_garden" json:"has_garden"`
	IsFurnished  bool   `bson:"is_furnished" json:"is_furnished"`
	HeatingType  string `bson:"heating_type,omitempty" json:"heating_type,omitempty"`
	EnergyRating string `bson:"energy_rating,omitempty" json:"energy_rating,omitempty"`

	Address      string    `bson:"address" json:"address"`
	City         string    `bson:"city" json:"city"`
	County       string    `bson:"county" json:"county"`
	PostalCode   string    `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Neighborhood string    `bson:"neighborhood,omitempty" json:"neighborhood,omitempty"`
	Location     *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	Photos     []string `bson:"photos" json:"photos"`
	MainPhoto  string   `bson:"main_photo,omitempty" json:"main_photo,omitempty"`
	PhotoCount int      `bson:"photo_count" json:"photo_count"`

	Slug          string `bson:"slug" json:"slug"`
	ViewCount     int64  `bson:"view_count" json:"view_count"`
	FavoriteCount int64  `bson:"favorite_count" json:"favorite_count"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`

	// Distance from the query point, populated only on geo-sorted searches.
	Distance *float64 `bson:"distance,omitempty" json:"distance,omitempty"`
}

// Searchable reports whether the property may appear in search results.
func (p *Property) Searchable() bool {
	return p.Status == StatusActive && p.DeletedAt == nil && p.PublishedAt != nil
}

// SearchText is the text the full-text predicate runs against.
func (p *Property) SearchText() string {
	return strings.Join([]string{p.Title, p.Description, p.City, p.Neighborhood, p.Address}, " ")
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// MakeSlug builds a URL-friendly slug from a title, suffixed with the first
// eight characters of the property id for uniqueness.
func MakeSlug(title, id string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if s == "" {
		return suffix
	}
	return s + "-" + suffix
}

// PricePerSqm computes the derived price-per-square-meter figure.
func PricePerSqm(price, area int64) float64 {
	if area <= 0 {
		return 0
	}
	v := float64(price) / float64(area)
	return float64(int64(v*100+0.5)) / 100
}
