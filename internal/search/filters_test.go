package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestBuildFilterSet_Defaults(t *testing.T) {
	fs, err := BuildFilterSet(Params{})
	require.NoError(t, err)

	assert.Equal(t, 1, fs.Page)
	assert.Equal(t, DefaultPageSize, fs.PageSize)
	assert.Equal(t, SortNewest, fs.SortBy)
	assert.False(t, fs.IncludeInactive)
}

func TestBuildFilterSet_TrimsAndDropsEmptyCities(t *testing.T) {
	fs, err := BuildFilterSet(Params{
		Query:  "  cozy   apartment  ",
		Cities: []string{" Bucharest ", "", "  ", "Cluj-Napoca"},
	})
	require.NoError(t, err)

	assert.Equal(t, "cozy   apartment", fs.Query)
	assert.Equal(t, []string{"Bucharest", "Cluj-Napoca"}, fs.Cities)
}

func TestBuildFilterSet_CollectsAllViolations(t *testing.T) {
	_, err := BuildFilterSet(Params{
		PropertyType: "castle",
		MinPrice:     int64Ptr(500_000),
		MaxPrice:     int64Ptr(100_000),
		MinRooms:     intPtr(5),
		MaxRooms:     intPtr(2),
		PageSize:     500,
	})
	require.Error(t, err)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	fields := make([]string, len(validation.Violations))
	for i, v := range validation.Violations {
		fields[i] = v.Field
	}
	assert.Equal(t, []string{
		"property_type",
		"min_price/max_price",
		"min_rooms/max_rooms",
		"page_size",
	}, fields)
}

func TestBuildFilterSet_BoundingBoxRequiresAllCorners(t *testing.T) {
	_, err := BuildFilterSet(Params{
		NELat: floatPtr(44.5),
		NELng: floatPtr(26.2),
		SWLat: floatPtr(44.3),
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "ne_lat/ne_lng/sw_lat/sw_lng", validation.Violations[0].Field)
}

func TestBuildFilterSet_RadiusRequiresCenter(t *testing.T) {
	_, err := BuildFilterSet(Params{RadiusKm: floatPtr(5)})
	require.Error(t, err)

	_, err = BuildFilterSet(Params{
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(-1),
	})
	require.Error(t, err)

	_, err = BuildFilterSet(Params{
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(5),
	})
	assert.NoError(t, err)
}

func TestBuildFilterSet_RadiusAndBoxAreExclusive(t *testing.T) {
	_, err := BuildFilterSet(Params{
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(5),
		NELat:     floatPtr(44.5),
		NELng:     floatPtr(26.2),
		SWLat:     floatPtr(44.3),
		SWLng:     floatPtr(26.0),
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Error(), "mutually exclusive")
}

func TestBuildFilterSet_DistanceSortNeedsGeo(t *testing.T) {
	_, err := BuildFilterSet(Params{SortBy: "distance"})
	require.Error(t, err)

	fs, err := BuildFilterSet(Params{
		SortBy:    "distance",
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, SortDistance, fs.SortBy)
}

func TestBuildFilterSet_DistanceSortRejectsTextQuery(t *testing.T) {
	_, err := BuildFilterSet(Params{
		Query:     "sunny apartment",
		SortBy:    "distance",
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(10),
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "sort_by", validation.Violations[0].Field)
	assert.Contains(t, validation.Error(), "text query")

	// Text plus geo filter stays valid under any other ordering.
	fs, err := BuildFilterSet(Params{
		Query:     "sunny apartment",
		Latitude:  floatPtr(44.43),
		Longitude: floatPtr(26.10),
		RadiusKm:  floatPtr(10),
	})
	require.NoError(t, err)
	q := Compose(fs)
	assert.Nil(t, q.GeoNear)
	assert.Contains(t, q.Filter, "$text")
	assert.Contains(t, q.Filter, "location")
}

func TestBuildFilterSet_RelevanceSortNeedsQuery(t *testing.T) {
	_, err := BuildFilterSet(Params{SortBy: "relevance"})
	require.Error(t, err)

	fs, err := BuildFilterSet(Params{SortBy: "relevance", Query: "garden"})
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, fs.SortBy)
}

func TestBuildFilterSet_UnknownSortMode(t *testing.T) {
	_, err := BuildFilterSet(Params{SortBy: "cheapest_first"})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "sort_by", validation.Violations[0].Field)
}

func TestBuildFilterSet_PageBounds(t *testing.T) {
	_, err := BuildFilterSet(Params{Page: -1})
	require.Error(t, err)

	_, err = BuildFilterSet(Params{PageSize: MaxPageSize + 1})
	require.Error(t, err)

	fs, err := BuildFilterSet(Params{Page: 3, PageSize: MaxPageSize})
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Page)
	assert.Equal(t, MaxPageSize, fs.PageSize)
}

func TestBuildFilterSet_PostedWithinDays(t *testing.T) {
	_, err := BuildFilterSet(Params{PostedWithinDays: intPtr(0)})
	require.Error(t, err)

	fs, err := BuildFilterSet(Params{PostedWithinDays: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, *fs.PostedWithinDays)
}
