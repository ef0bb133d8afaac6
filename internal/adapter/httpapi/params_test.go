package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsFromQuery_MapsAllKinds(t *testing.T) {
	values := url.Values{
		"query":         {"near park"},
		"cities":        {"Bucharest, Cluj-Napoca , "},
		"property_type": {"apartment"},
		"min_price":     {"50000"},
		"max_price":     {"150000"},
		"min_rooms":     {"2"},
		"radius_km":     {"5"},
		"latitude":      {"44.4268"},
		"longitude":     {"26.1025"},
		"has_parking":   {"true"},
		"sort_by":       {"price_asc"},
		"page":          {"2"},
		"page_size":     {"50"},
	}

	p, err := paramsFromQuery(values)
	require.NoError(t, err)

	assert.Equal(t, "near park", p.Query)
	assert.Equal(t, []string{"Bucharest", "Cluj-Napoca"}, p.Cities)
	assert.Equal(t, "apartment", p.PropertyType)
	require.NotNil(t, p.MinPrice)
	assert.Equal(t, int64(50000), *p.MinPrice)
	require.NotNil(t, p.MinRooms)
	assert.Equal(t, 2, *p.MinRooms)
	require.NotNil(t, p.RadiusKm)
	assert.Equal(t, 5.0, *p.RadiusKm)
	require.NotNil(t, p.HasParking)
	assert.True(t, *p.HasParking)
	assert.Equal(t, "price_asc", p.SortBy)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 50, p.PageSize)
}

func TestParamsFromQuery_AbsentKeysStayNil(t *testing.T) {
	p, err := paramsFromQuery(url.Values{})
	require.NoError(t, err)

	assert.Nil(t, p.MinPrice)
	assert.Nil(t, p.HasParking)
	assert.Nil(t, p.RadiusKm)
	assert.Zero(t, p.Page)
	assert.Zero(t, p.PageSize)
}

func TestParamsFromQuery_UnparsableValuesFail(t *testing.T) {
	cases := map[string]url.Values{
		"float": {"latitude": {"north"}},
		"int":   {"min_rooms": {"two"}},
		"int64": {"min_price": {"cheap"}},
		"bool":  {"has_garden": {"maybe"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := paramsFromQuery(values)
			assert.Error(t, err)
		})
	}
}
