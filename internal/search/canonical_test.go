package search

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_StableAcrossEquivalentInputs(t *testing.T) {
	a, err := BuildFilterSet(Params{
		Query:    "  Cozy   APARTMENT ",
		Cities:   []string{"Cluj-Napoca", "bucharest"},
		MinPrice: int64Ptr(50_000),
	})
	require.NoError(t, err)

	b, err := BuildFilterSet(Params{
		Query:    "cozy apartment",
		Cities:   []string{"Bucharest", "cluj-napoca"},
		MinPrice: int64Ptr(50_000),
	})
	require.NoError(t, err)

	assert.Equal(t, Canonical(a), Canonical(b))
	assert.Equal(t, Digest(a), Digest(b))
}

func TestCanonical_CoordinatesRoundedToSixDecimals(t *testing.T) {
	a, err := BuildFilterSet(Params{
		Latitude:  floatPtr(44.4267998),
		Longitude: floatPtr(26.1024999),
		RadiusKm:  floatPtr(5),
	})
	require.NoError(t, err)

	b, err := BuildFilterSet(Params{
		Latitude:  floatPtr(44.42679984),
		Longitude: floatPtr(26.10249988),
		RadiusKm:  floatPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, Digest(a), Digest(b))
}

func TestCanonical_DifferentFiltersDiffer(t *testing.T) {
	a, err := BuildFilterSet(Params{MinPrice: int64Ptr(100)})
	require.NoError(t, err)
	b, err := BuildFilterSet(Params{MinPrice: int64Ptr(101)})
	require.NoError(t, err)

	assert.NotEqual(t, Canonical(a), Canonical(b))
	assert.NotEqual(t, Digest(a), Digest(b))
}

func TestCanonical_PaginationIsPartOfTheKey(t *testing.T) {
	a, err := BuildFilterSet(Params{Page: 1})
	require.NoError(t, err)
	b, err := BuildFilterSet(Params{Page: 2})
	require.NoError(t, err)

	assert.NotEqual(t, Digest(a), Digest(b))
}

func TestDigest_Format(t *testing.T) {
	fs, err := BuildFilterSet(Params{})
	require.NoError(t, err)

	d := Digest(fs)
	assert.Len(t, d, 16)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), d)
}

func TestNormalizeQueryText(t *testing.T) {
	assert.Equal(t, "two rooms center", NormalizeQueryText("  Two   ROOMS\tcenter "))
	assert.Equal(t, "", NormalizeQueryText("   "))
}
