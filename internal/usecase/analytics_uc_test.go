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
	"github.com/davidjirca/dreamhome/internal/search"
)

// syncSubmitter runs submitted tasks inline so tests stay deterministic.
type syncSubmitter struct{}

func (syncSubmitter) Submit(task func()) bool {
	task()
	return true
}

func TestRecordAsync_PersistsNormalizedRecord(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	store := newFakeStore()
	uc := NewAnalyticsUseCase(repo, newTestCache(store), syncSubmitter{}, 7*24*time.Hour, zap.NewNop())

	fs, err := search.BuildFilterSet(search.Params{Query: "  Two   Rooms ", Cities: []string{"Bucharest"}})
	require.NoError(t, err)

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(r *entity.SearchRecord) bool {
		return r.SearchText == "two rooms" && r.ResultCount == 12 && r.Filters == search.Canonical(fs)
	})).Return(nil).Once()

	uc.RecordAsync(fs, 12, 35*time.Millisecond, SearchMeta{UserID: "u1", SessionID: "sess-1"})

	repo.AssertExpectations(t)
	assert.Equal(t, int64(1), store.counts["search_count:two rooms"])
}

func TestRecordAsync_InsertFailureStaysInternal(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	uc := NewAnalyticsUseCase(repo, newTestCache(newFakeStore()), syncSubmitter{}, time.Hour, zap.NewNop())

	fs, err := search.BuildFilterSet(search.Params{})
	require.NoError(t, err)

	repo.On("Insert", mock.Anything, mock.Anything).Return(assert.AnError)

	// Must not panic or surface the error anywhere.
	uc.RecordAsync(fs, 0, time.Millisecond, SearchMeta{})
}

func TestPopularSearches_CacheFirst(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	uc := NewAnalyticsUseCase(repo, newTestCache(newFakeStore()), syncSubmitter{}, time.Hour, zap.NewNop())

	trending := []entity.PopularSearch{{Query: "garden", Count: 40}, {Query: "garage", Count: 12}}
	repo.On("TopSearches", mock.Anything, mock.Anything, 10).Return(trending, nil).Once()

	first, err := uc.PopularSearches(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, trending, first)

	second, err := uc.PopularSearches(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, trending, second)

	repo.AssertNumberOfCalls(t, "TopSearches", 1)
}

func TestPopularSearches_CachedListIsTrimmedToLimit(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	uc := NewAnalyticsUseCase(repo, newTestCache(newFakeStore()), syncSubmitter{}, time.Hour, zap.NewNop())

	trending := []entity.PopularSearch{{Query: "garden", Count: 40}, {Query: "garage", Count: 12}}
	repo.On("TopSearches", mock.Anything, mock.Anything, 10).Return(trending, nil).Once()

	_, err := uc.PopularSearches(context.Background(), 10)
	require.NoError(t, err)

	short, err := uc.PopularSearches(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, "garden", short[0].Query)
}
