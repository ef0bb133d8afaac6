package search

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/davidjirca/dreamhome/internal/entity"
)

// Matches evaluates a single property against a FilterSet entirely in memory,
// field by field, with the same predicate semantics Compose puts into the
// store query. Pagination and ordering are ignored: this answers "would the
// listing appear in the result set at all".
func Matches(p *entity.Property, f *FilterSet) bool {
	if !f.IncludeInactive && !p.Searchable() {
		return false
	}
	if f.IncludeInactive && p.DeletedAt != nil {
		return false
	}

	if f.PropertyType != "" && p.PropertyType != f.PropertyType {
		return false
	}
	if f.ListingType != "" && p.ListingType != f.ListingType {
		return false
	}
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if f.EnergyRating != "" && !strings.EqualFold(p.EnergyRating, f.EnergyRating) {
		return false
	}

	if !inInt64Range(p.Price, f.MinPrice, f.MaxPrice) {
		return false
	}
	if !inIntRange(p.Rooms, f.MinRooms, f.MaxRooms) {
		return false
	}
	if !inIntRange(p.Bedrooms, f.MinBedrooms, f.MaxBedrooms) {
		return false
	}
	if !inIntRange(p.Bathrooms, f.MinBathrooms, f.MaxBathrooms) {
		return false
	}
	if !inInt64Range(p.TotalArea, f.MinArea, f.MaxArea) {
		return false
	}
	if f.MinFloor != nil || f.MaxFloor != nil {
		if p.Floor == nil || !inIntRange(*p.Floor, f.MinFloor, f.MaxFloor) {
			return false
		}
	}
	if f.MinYearBuilt != nil || f.MaxYearBuilt != nil {
		if p.YearBuilt == nil || !inIntRange(*p.YearBuilt, f.MinYearBuilt, f.MaxYearBuilt) {
			return false
		}
	}

	if f.HasParking != nil && (p.ParkingSpots >= 1) != *f.HasParking {
		return false
	}
	if f.HasBalcony != nil && (p.Balconies >= 1) != *f.HasBalcony {
		return false
	}
	if f.HasGarage != nil && p.HasGarage != *f.HasGarage {
		return false
	}
	if f.HasTerrace != nil && p.HasTerrace != *f.HasTerrace {
		return false
	}
	if f.HasGarden != nil && p.HasGarden != *f.HasGarden {
		return false
	}
	if f.IsFurnished != nil && p.IsFurnished != *f.IsFurnished {
		return false
	}

	if f.PostedWithinDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*f.PostedWithinDays)
		if p.PublishedAt == nil || p.PublishedAt.Before(cutoff) {
			return false
		}
	}

	if len(f.Cities) > 0 && !containsFold(f.Cities, p.City) {
		return false
	}
	if f.County != "" && !strings.EqualFold(p.County, f.County) {
		return false
	}
	if f.Neighborhood != "" && !strings.EqualFold(p.Neighborhood, f.Neighborhood) {
		return false
	}

	if !matchGeo(p, f) {
		return false
	}

	if f.Query != "" && !matchText(p, f.Query) {
		return false
	}

	return true
}

func inIntRange(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func inInt64Range(v int64, min, max *int64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func matchGeo(p *entity.Property, f *FilterSet) bool {
	if !f.HasGeo() {
		return true
	}
	if p.Location == nil {
		return false
	}
	if f.HasRadius() {
		d := HaversineKm(*f.Latitude, *f.Longitude, p.Location.Lat(), p.Location.Lng())
		return d <= *f.RadiusKm
	}
	lat, lng := p.Location.Lat(), p.Location.Lng()
	return lat >= *f.SWLat && lat <= *f.NELat && lng >= *f.SWLng && lng <= *f.NELng
}

// matchText approximates the store's full-text match: the query is split into
// terms and the listing matches when any term occurs as a whole word in its
// searchable text. The store's index also stems terms, so this is a slightly
// stricter approximation ("apartments" does not hit "apartment" here).
func matchText(p *entity.Property, query string) bool {
	words := splitWords(p.SearchText())
	for _, term := range splitWords(query) {
		for _, w := range words {
			if w == term {
				return true
			}
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// HaversineKm is the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const deg = math.Pi / 180
	dLat := (lat2 - lat1) * deg
	dLng := (lng2 - lng1) * deg
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
