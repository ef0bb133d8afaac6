package resultcache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/cache"
	"github.com/davidjirca/dreamhome/internal/search"
)

// memStore is an in-memory cache.Store. failing flips every operation into
// an error to exercise degradation.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	counts  map[string]int64
	failing bool
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, counts: map[string]int64{}}
}

var errStoreDown = errors.New("store down")

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errStoreDown
	}
	var n int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func (s *memStore) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errStoreDown
	}
	s.counts[key]++
	return s.counts[key], nil
}

func testCache(store cache.Store) *ResultCache {
	return New(store, Config{
		SearchTTL:  5 * time.Minute,
		EntityTTL:  30 * time.Minute,
		PopularTTL: time.Hour,
	}, zap.NewNop())
}

func testFilterSet(t *testing.T) *search.FilterSet {
	t.Helper()
	fs, err := search.BuildFilterSet(search.Params{Query: "garden"})
	require.NoError(t, err)
	return fs
}

func TestResultCache_SearchRoundTrip(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	fs := testFilterSet(t)
	ctx := context.Background()

	_, ok := c.GetSearch(ctx, fs)
	assert.False(t, ok)

	res := &search.Result{Total: 3, Page: 1, PageSize: 20, TotalPages: 1}
	c.PutSearch(ctx, fs, res)

	got, ok := c.GetSearch(ctx, fs)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Total)
}

func TestResultCache_KeysAreContentAddressed(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	fs := testFilterSet(t)

	c.PutSearch(context.Background(), fs, &search.Result{})

	require.Len(t, store.data, 1)
	for k := range store.data {
		assert.Equal(t, "search:"+search.Digest(fs), k)
	}
}

func TestResultCache_NilStoreIsDisabled(t *testing.T) {
	c := testCache(nil)
	fs := testFilterSet(t)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	c.PutSearch(ctx, fs, &search.Result{Total: 1})
	_, ok := c.GetSearch(ctx, fs)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateProperty(ctx, "p1"))
	assert.NoError(t, c.InvalidateSearches(ctx))
	c.BumpSearchCount(ctx, "garden")
}

func TestResultCache_StoreFailureDegradesToMiss(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	fs := testFilterSet(t)
	ctx := context.Background()

	c.PutSearch(ctx, fs, &search.Result{Total: 1})
	store.failing = true

	_, ok := c.GetSearch(ctx, fs)
	assert.False(t, ok)

	// Puts swallow errors too.
	c.PutSearch(ctx, fs, &search.Result{Total: 2})
}

func TestResultCache_CorruptedEntryIsDroppedAndMissed(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	fs := testFilterSet(t)
	ctx := context.Background()

	key := "search:" + search.Digest(fs)
	store.data[key] = []byte("{not json")

	_, ok := c.GetSearch(ctx, fs)
	assert.False(t, ok)
	_, stillThere := store.data[key]
	assert.False(t, stillThere)
}

func TestResultCache_InvalidateSearchesClearsOnlySearchNamespace(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	fs := testFilterSet(t)
	ctx := context.Background()

	c.PutSearch(ctx, fs, &search.Result{})
	c.PutProperty(ctx, &entity.Property{ID: "p1"})

	require.NoError(t, c.InvalidateSearches(ctx))

	_, searchHit := c.GetSearch(ctx, fs)
	assert.False(t, searchHit)
	_, propertyHit := c.GetProperty(ctx, "p1")
	assert.True(t, propertyHit)
}

func TestResultCache_InvalidatePropertyEvictsEntityKey(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	ctx := context.Background()

	c.PutProperty(ctx, &entity.Property{ID: "p1"})
	require.NoError(t, c.InvalidateProperty(ctx, "p1"))

	_, ok := c.GetProperty(ctx, "p1")
	assert.False(t, ok)
}

func TestResultCache_InvalidationFailureIsReported(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	store.failing = true

	assert.Error(t, c.InvalidateProperty(context.Background(), "p1"))
	assert.Error(t, c.InvalidateSearches(context.Background()))
}

func TestResultCache_BumpSearchCountNormalizes(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	ctx := context.Background()

	c.BumpSearchCount(ctx, "  Two   Rooms ")
	c.BumpSearchCount(ctx, "two rooms")
	c.BumpSearchCount(ctx, "")

	assert.Equal(t, int64(2), store.counts["search_count:two rooms"])
	assert.Len(t, store.counts, 1)
}

func TestResultCache_PopularRoundTrip(t *testing.T) {
	store := newMemStore()
	c := testCache(store)
	ctx := context.Background()

	_, ok := c.GetPopular(ctx)
	assert.False(t, ok)

	c.PutPopular(ctx, []entity.PopularSearch{{Query: "garden", Count: 9}})
	got, ok := c.GetPopular(ctx)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "garden", got[0].Query)
}
