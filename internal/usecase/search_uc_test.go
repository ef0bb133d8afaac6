package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/cache"
	"github.com/davidjirca/dreamhome/internal/resultcache"
	"github.com/davidjirca/dreamhome/internal/search"
)

func newTestCache(store cache.Store) *resultcache.ResultCache {
	return resultcache.New(store, resultcache.Config{
		SearchTTL:  5 * time.Minute,
		EntityTTL:  30 * time.Minute,
		PopularTTL: time.Hour,
	}, zap.NewNop())
}

func activeListing(id string) *entity.Property {
	published := time.Now().Add(-48 * time.Hour)
	return &entity.Property{
		ID:           id,
		OwnerID:      "owner-1",
		Title:        "Two-room apartment near Herastrau",
		PropertyType: entity.PropertyTypeApartment,
		ListingType:  entity.ListingTypeSale,
		Status:       entity.StatusActive,
		Price:        120000,
		Currency:     "EUR",
		TotalArea:    54,
		Rooms:        2,
		City:         "Bucharest",
		Location:     entity.NewGeoPoint(44.4672, 26.0817),
		Photos:       []string{"https://cdn.example.com/p/1.jpg"},
		PublishedAt:  &published,
	}
}

func TestSearch_SecondIdenticalQueryServedFromCache(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Second, zap.NewNop())

	items := []*entity.Property{activeListing("p1")}
	repo.On("ExecuteSearch", mock.Anything, mock.Anything).Return(items, int64(1), nil).Once()

	params := search.Params{Cities: []string{"Bucharest"}, MinRooms: intPtr(2)}
	first, err := uc.Search(context.Background(), params, SearchMeta{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total)

	second, err := uc.Search(context.Background(), params, SearchMeta{})
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)

	repo.AssertNumberOfCalls(t, "ExecuteSearch", 1)
}

func TestSearch_InvalidParamsRejectedBeforeStore(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Second, zap.NewNop())

	_, err := uc.Search(context.Background(), search.Params{SortBy: "cheapest"}, SearchMeta{})

	var verr *search.ValidationError
	require.ErrorAs(t, err, &verr)
	repo.AssertNotCalled(t, "ExecuteSearch", mock.Anything, mock.Anything)
}

func TestSearch_FailedQueriesAreNotCached(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Second, zap.NewNop())

	repo.On("ExecuteSearch", mock.Anything, mock.Anything).
		Return(nil, int64(0), assert.AnError).Once()
	repo.On("ExecuteSearch", mock.Anything, mock.Anything).
		Return([]*entity.Property{}, int64(0), nil).Once()

	params := search.Params{Cities: []string{"Cluj-Napoca"}}
	_, err := uc.Search(context.Background(), params, SearchMeta{})
	require.Error(t, err)

	_, err = uc.Search(context.Background(), params, SearchMeta{})
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "ExecuteSearch", 2)
}

func TestSearch_DeadlineMapsToQueryTimeout(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Millisecond, zap.NewNop())

	repo.On("ExecuteSearch", mock.Anything, mock.Anything).
		Return(nil, int64(0), context.DeadlineExceeded)

	_, err := uc.Search(context.Background(), search.Params{}, SearchMeta{})
	assert.ErrorIs(t, err, entity.ErrQueryTimeout)
}

func TestSearch_WorksWithCacheDisabled(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(nil), nil, time.Second, zap.NewNop())

	repo.On("ExecuteSearch", mock.Anything, mock.Anything).
		Return([]*entity.Property{}, int64(0), nil).Twice()

	params := search.Params{Cities: []string{"Bucharest"}}
	_, err := uc.Search(context.Background(), params, SearchMeta{})
	require.NoError(t, err)
	_, err = uc.Search(context.Background(), params, SearchMeta{})
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "ExecuteSearch", 2)
}

func TestGetProperty_CachesEntityAndBumpsViews(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Second, zap.NewNop())

	p := activeListing("p1")
	repo.On("FindByID", mock.Anything, "p1").Return(p, nil).Once()
	repo.On("IncrementViewCount", mock.Anything, "p1").Return(nil).Once()

	got, err := uc.GetProperty(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	// Second read comes from the entity cache; no store round-trip, no bump.
	got, err = uc.GetProperty(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	repo.AssertNumberOfCalls(t, "FindByID", 1)
	repo.AssertNumberOfCalls(t, "IncrementViewCount", 1)
}

func TestGetProperty_NotFound(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := NewSearchUseCase(repo, newTestCache(newFakeStore()), nil, time.Second, zap.NewNop())

	repo.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrPropertyNotFound)

	_, err := uc.GetProperty(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrPropertyNotFound)
}

func intPtr(v int) *int { return &v }
