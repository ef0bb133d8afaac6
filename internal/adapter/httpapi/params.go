package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/davidjirca/dreamhome/internal/search"
)

// paramsFromQuery maps URL query values onto the flat search parameter set.
// Unknown keys are ignored; unparsable values fail the whole request.
func paramsFromQuery(values url.Values) (search.Params, error) {
	var p search.Params
	var err error

	p.Query = values.Get("query")
	p.County = values.Get("county")
	p.Neighborhood = values.Get("neighborhood")
	p.PropertyType = values.Get("property_type")
	p.ListingType = values.Get("listing_type")
	p.EnergyRating = values.Get("energy_rating")
	p.OwnerID = values.Get("owner_id")
	p.SortBy = values.Get("sort_by")

	if cities := values.Get("cities"); cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Cities = append(p.Cities, c)
			}
		}
	}

	if p.Latitude, err = floatParam(values, "latitude"); err != nil {
		return p, err
	}
	if p.Longitude, err = floatParam(values, "longitude"); err != nil {
		return p, err
	}
	if p.RadiusKm, err = floatParam(values, "radius_km"); err != nil {
		return p, err
	}
	if p.NELat, err = floatParam(values, "ne_lat"); err != nil {
		return p, err
	}
	if p.NELng, err = floatParam(values, "ne_lng"); err != nil {
		return p, err
	}
	if p.SWLat, err = floatParam(values, "sw_lat"); err != nil {
		return p, err
	}
	if p.SWLng, err = floatParam(values, "sw_lng"); err != nil {
		return p, err
	}

	if p.MinPrice, err = int64Param(values, "min_price"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = int64Param(values, "max_price"); err != nil {
		return p, err
	}
	if p.MinArea, err = int64Param(values, "min_area"); err != nil {
		return p, err
	}
	if p.MaxArea, err = int64Param(values, "max_area"); err != nil {
		return p, err
	}

	if p.MinRooms, err = intParam(values, "min_rooms"); err != nil {
		return p, err
	}
	if p.MaxRooms, err = intParam(values, "max_rooms"); err != nil {
		return p, err
	}
	if p.MinBedrooms, err = intParam(values, "min_bedrooms"); err != nil {
		return p, err
	}
	if p.MaxBedrooms, err = intParam(values, "max_bedrooms"); err != nil {
		return p, err
	}
	if p.MinBathrooms, err = intParam(values, "min_bathrooms"); err != nil {
		return p, err
	}
	if p.MaxBathrooms, err = intParam(values, "max_bathrooms"); err != nil {
		return p, err
	}
	if p.MinFloor, err = intParam(values, "min_floor"); err != nil {
		return p, err
	}
	if p.MaxFloor, err = intParam(values, "max_floor"); err != nil {
		return p, err
	}
	if p.MinYearBuilt, err = intParam(values, "min_year_built"); err != nil {
		return p, err
	}
	if p.MaxYearBuilt, err = intParam(values, "max_year_built"); err != nil {
		return p, err
	}
	if p.PostedWithinDays, err = intParam(values, "posted_within_days"); err != nil {
		return p, err
	}

	if p.HasParking, err = boolParam(values, "has_parking"); err != nil {
		return p, err
	}
	if p.HasGarage, err = boolParam(values, "has_garage"); err != nil {
		return p, err
	}
	if p.HasBalcony, err = boolParam(values, "has_balcony"); err != nil {
		return p, err
	}
	if p.HasTerrace, err = boolParam(values, "has_terrace"); err != nil {
		return p, err
	}
	if p.HasGarden, err = boolParam(values, "has_garden"); err != nil {
		return p, err
	}
	if p.IsFurnished, err = boolParam(values, "is_furnished"); err != nil {
		return p, err
	}

	if v, err := intParam(values, "page"); err != nil {
		return p, err
	} else if v != nil {
		p.Page = *v
	}
	if v, err := intParam(values, "page_size"); err != nil {
		return p, err
	} else if v != nil {
		p.PageSize = *v
	}

	return p, nil
}

func floatParam(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return &v, nil
}

func intParam(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return &v, nil
}

func int64Param(values url.Values, key string) (*int64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return &v, nil
}

func boolParam(values url.Values, key string) (*bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return &v, nil
}
