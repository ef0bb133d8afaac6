package search

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const earthRadiusKm = 6371.0

// GeoNearSpec asks the store to compute great-circle distance from the query
// point and order results by it (aggregation $geoNear path).
type GeoNearSpec struct {
	Lat, Lng  float64
	MaxMeters *float64
}

// Query is the composed, executable form of a FilterSet: a predicate document,
// an ordering with a deterministic tie-break, and pagination offsets. The
// total count runs over the same predicate, independent of Skip/Limit.
type Query struct {
	Filter bson.M
	Sort   bson.D
	Skip   int64
	Limit  int64

	// TextScore is set for relevance ordering; the store must project the
	// text score and sort on it.
	TextScore bool

	// GeoNear, when non-nil, replaces the geo predicate in Filter and
	// orders results by distance ascending.
	GeoNear *GeoNearSpec
}

// Compose translates a validated FilterSet into a single store query.
// Predicates are appended cheapest-first; correctness does not depend on the
// order. Malformed combinations are rejected at BuildFilterSet time, never
// here.
func Compose(f *FilterSet) *Query {
	q := &Query{
		Filter: bson.M{},
		Skip:   int64(f.Page-1) * int64(f.PageSize),
		Limit:  int64(f.PageSize),
	}

	// Visibility predicate: active, published, not soft-deleted. Applied
	// unless the caller explicitly opted into inactive listings.
	if !f.IncludeInactive {
		q.Filter["status"] = "active"
		q.Filter["deleted_at"] = nil
		q.Filter["published_at"] = bson.M{"$ne": nil}
	} else {
		q.Filter["deleted_at"] = nil
	}

	if f.PropertyType != "" {
		q.Filter["property_type"] = string(f.PropertyType)
	}
	if f.ListingType != "" {
		q.Filter["listing_type"] = string(f.ListingType)
	}
	if f.OwnerID != "" {
		q.Filter["owner_id"] = f.OwnerID
	}
	if f.EnergyRating != "" {
		q.Filter["energy_rating"] = foldEq(f.EnergyRating)
	}

	addInt64Range(q.Filter, "price", f.MinPrice, f.MaxPrice)
	addIntRange(q.Filter, "rooms", f.MinRooms, f.MaxRooms)
	addIntRange(q.Filter, "bedrooms", f.MinBedrooms, f.MaxBedrooms)
	addIntRange(q.Filter, "bathrooms", f.MinBathrooms, f.MaxBathrooms)
	addInt64Range(q.Filter, "total_area", f.MinArea, f.MaxArea)
	addIntRange(q.Filter, "floor", f.MinFloor, f.MaxFloor)
	addIntRange(q.Filter, "year_built", f.MinYearBuilt, f.MaxYearBuilt)

	if f.HasParking != nil {
		if *f.HasParking {
			q.Filter["parking_spots"] = bson.M{"$gte": 1}
		} else {
			q.Filter["parking_spots"] = 0
		}
	}
	if f.HasBalcony != nil {
		if *f.HasBalcony {
			q.Filter["balconies"] = bson.M{"$gte": 1}
		} else {
			q.Filter["balconies"] = 0
		}
	}
	if f.HasGarage != nil {
		q.Filter["has_garage"] = *f.HasGarage
	}
	if f.HasTerrace != nil {
		q.Filter["has_terrace"] = *f.HasTerrace
	}
	if f.HasGarden != nil {
		q.Filter["has_garden"] = *f.HasGarden
	}
	if f.IsFurnished != nil {
		q.Filter["is_furnished"] = *f.IsFurnished
	}

	if f.PostedWithinDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*f.PostedWithinDays)
		q.Filter["published_at"] = bson.M{"$gte": cutoff}
	}

	if len(f.Cities) == 1 {
		q.Filter["city"] = foldEq(f.Cities[0])
	} else if len(f.Cities) > 1 {
		patterns := make([]primitive.Regex, len(f.Cities))
		for i, c := range f.Cities {
			patterns[i] = foldEq(c)
		}
		q.Filter["city"] = bson.M{"$in": patterns}
	}
	if f.County != "" {
		q.Filter["county"] = foldEq(f.County)
	}
	if f.Neighborhood != "" {
		q.Filter["neighborhood"] = foldEq(f.Neighborhood)
	}

	composeGeo(f, q)

	if f.Query != "" {
		q.Filter["$text"] = bson.M{"$search": f.Query}
	}

	switch f.SortBy {
	case SortOldest:
		q.Sort = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceAsc:
		q.Sort = bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		q.Sort = bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case SortAreaDesc:
		q.Sort = bson.D{{Key: "total_area", Value: -1}, {Key: "_id", Value: 1}}
	case SortDistance:
		// $geoNear emits nearest-first; the secondary tie-break still
		// applies for equidistant rows.
		q.Sort = bson.D{{Key: "distance", Value: 1}, {Key: "_id", Value: 1}}
	case SortRelevance:
		q.TextScore = true
		q.Sort = bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "_id", Value: 1}}
	default: // SortNewest
		q.Sort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	}

	return q
}

func composeGeo(f *FilterSet, q *Query) {
	if f.SortBy == SortDistance {
		lat, lng := f.geoCenter()
		spec := &GeoNearSpec{Lat: lat, Lng: lng}
		if f.HasRadius() {
			m := *f.RadiusKm * 1000
			spec.MaxMeters = &m
		}
		q.GeoNear = spec
		if f.HasBoundingBox() {
			q.Filter["location"] = boxPredicate(f)
		}
		return
	}

	if f.HasRadius() {
		q.Filter["location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{*f.Longitude, *f.Latitude},
					*f.RadiusKm / earthRadiusKm,
				},
			},
		}
	} else if f.HasBoundingBox() {
		q.Filter["location"] = boxPredicate(f)
	}
}

func boxPredicate(f *FilterSet) bson.M {
	// Closed GeoJSON ring: SW -> SE -> NE -> NW -> SW.
	ring := bson.A{
		bson.A{*f.SWLng, *f.SWLat},
		bson.A{*f.NELng, *f.SWLat},
		bson.A{*f.NELng, *f.NELat},
		bson.A{*f.SWLng, *f.NELat},
		bson.A{*f.SWLng, *f.SWLat},
	}
	return bson.M{
		"$geoWithin": bson.M{
			"$geometry": bson.M{
				"type":        "Polygon",
				"coordinates": bson.A{ring},
			},
		},
	}
}

// geoCenter returns the query point: the radius center, or the bounding box
// midpoint when only a box was given.
func (f *FilterSet) geoCenter() (lat, lng float64) {
	if f.Latitude != nil && f.Longitude != nil {
		return *f.Latitude, *f.Longitude
	}
	return (*f.NELat + *f.SWLat) / 2, (*f.NELng + *f.SWLng) / 2
}

func addIntRange(filter bson.M, field string, min, max *int) {
	if min == nil && max == nil {
		return
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	filter[field] = r
}

func addInt64Range(filter bson.M, field string, min, max *int64) {
	if min == nil && max == nil {
		return
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	filter[field] = r
}

// foldEq builds a case-insensitive whole-value match. The matcher mirrors
// this with strings.EqualFold.
func foldEq(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}
