package search

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// absent is the sentinel written for any filter that is not set, so that two
// FilterSets differing only in which optional fields were spelled out still
// canonicalize identically.
const absent = "-"

// coordPrecision bounds float noise out of cache keys.
const coordPrecision = 6

func canonText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func canonFloat(f *float64) string {
	if f == nil {
		return absent
	}
	return strconv.FormatFloat(*f, 'f', coordPrecision, 64)
}

func canonInt(i *int) string {
	if i == nil {
		return absent
	}
	return strconv.Itoa(*i)
}

func canonInt64(i *int64) string {
	if i == nil {
		return absent
	}
	return strconv.FormatInt(*i, 10)
}

func canonBool(b *bool) string {
	if b == nil {
		return absent
	}
	return strconv.FormatBool(*b)
}

func canonString(s string) string {
	if s == "" {
		return absent
	}
	return canonText(s)
}

func canonList(items []string) string {
	if len(items) == 0 {
		return absent
	}
	normalized := make([]string, len(items))
	for i, it := range items {
		normalized[i] = canonText(it)
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}

// Canonical renders a FilterSet in a stable byte form: every field present
// (absent ones as the sentinel), fixed field order, text lower-cased and
// whitespace-collapsed, lists sorted, coordinates rounded to six decimals.
// Two FilterSets that are logically equal always canonicalize identically,
// regardless of construction order or insignificant text differences.
func Canonical(f *FilterSet) string {
	var b strings.Builder
	write := func(name, value string) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteByte(';')
	}

	write("cities", canonList(f.Cities))
	write("county", canonString(f.County))
	write("energy_rating", canonString(f.EnergyRating))
	write("has_balcony", canonBool(f.HasBalcony))
	write("has_garage", canonBool(f.HasGarage))
	write("has_garden", canonBool(f.HasGarden))
	write("has_parking", canonBool(f.HasParking))
	write("has_terrace", canonBool(f.HasTerrace))
	write("include_inactive", strconv.FormatBool(f.IncludeInactive))
	write("is_furnished", canonBool(f.IsFurnished))
	write("latitude", canonFloat(f.Latitude))
	write("listing_type", canonString(string(f.ListingType)))
	write("longitude", canonFloat(f.Longitude))
	write("max_area", canonInt64(f.MaxArea))
	write("max_bathrooms", canonInt(f.MaxBathrooms))
	write("max_bedrooms", canonInt(f.MaxBedrooms))
	write("max_floor", canonInt(f.MaxFloor))
	write("max_price", canonInt64(f.MaxPrice))
	write("max_rooms", canonInt(f.MaxRooms))
	write("max_year_built", canonInt(f.MaxYearBuilt))
	write("min_area", canonInt64(f.MinArea))
	write("min_bathrooms", canonInt(f.MinBathrooms))
	write("min_bedrooms", canonInt(f.MinBedrooms))
	write("min_floor", canonInt(f.MinFloor))
	write("min_price", canonInt64(f.MinPrice))
	write("min_rooms", canonInt(f.MinRooms))
	write("min_year_built", canonInt(f.MinYearBuilt))
	write("ne_lat", canonFloat(f.NELat))
	write("ne_lng", canonFloat(f.NELng))
	write("neighborhood", canonString(f.Neighborhood))
	write("owner_id", canonString(f.OwnerID))
	write("page", strconv.Itoa(f.Page))
	write("page_size", strconv.Itoa(f.PageSize))
	write("posted_within_days", canonInt(f.PostedWithinDays))
	write("property_type", canonString(string(f.PropertyType)))
	write("query", canonString(f.Query))
	write("radius_km", canonFloat(f.RadiusKm))
	write("sort_by", string(f.SortBy))
	write("sw_lat", canonFloat(f.SWLat))
	write("sw_lng", canonFloat(f.SWLng))

	return b.String()
}

// Digest hashes the canonical form down to 16 hex characters, the cache-key
// suffix used for search result pages.
func Digest(f *FilterSet) string {
	sum := md5.Sum([]byte(Canonical(f)))
	return hex.EncodeToString(sum[:])[:16]
}

// NormalizeQueryText is the normal form used for trending-search counters
// (cache key "search_count:<text>").
func NormalizeQueryText(q string) string {
	return canonText(q)
}
