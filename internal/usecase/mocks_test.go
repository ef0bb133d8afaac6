package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/cache"
	"github.com/davidjirca/dreamhome/internal/port/notifier"
	"github.com/davidjirca/dreamhome/internal/search"
)

type MockPropertyRepository struct{ mock.Mock }

func (m *MockPropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPropertyRepository) Update(ctx context.Context, p *entity.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPropertyRepository) FindByID(ctx context.Context, id string) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}
func (m *MockPropertyRepository) FindBySlug(ctx context.Context, slug string) (*entity.Property, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}
func (m *MockPropertyRepository) ExecuteSearch(ctx context.Context, q *search.Query) ([]*entity.Property, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entity.Property), args.Get(1).(int64), args.Error(2)
}
func (m *MockPropertyRepository) IncrementViewCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPropertyRepository) IncrementFavoriteCount(ctx context.Context, id string, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

type MockSavedSearchRepository struct{ mock.Mock }

func (m *MockSavedSearchRepository) Create(ctx context.Context, s *entity.SavedSearch) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSavedSearchRepository) Update(ctx context.Context, s *entity.SavedSearch) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSavedSearchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSavedSearchRepository) FindByID(ctx context.Context, id string) (*entity.SavedSearch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SavedSearch), args.Error(1)
}
func (m *MockSavedSearchRepository) FindByUserAndName(ctx context.Context, userID, name string) (*entity.SavedSearch, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SavedSearch), args.Error(1)
}
func (m *MockSavedSearchRepository) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]*entity.SavedSearch, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.SavedSearch), args.Error(1)
}
func (m *MockSavedSearchRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSavedSearchRepository) ForEachAlertable(ctx context.Context, freq entity.NotificationFrequency, chunkSize int, fn func([]*entity.SavedSearch) error) error {
	args := m.Called(ctx, freq, chunkSize, fn)
	return args.Error(0)
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) Add(ctx context.Context, f *entity.Favorite) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, propertyID string) error {
	args := m.Called(ctx, userID, propertyID)
	return args.Error(0)
}
func (m *MockFavoriteRepository) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	args := m.Called(ctx, userID, propertyID)
	return args.Bool(0), args.Error(1)
}
func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Favorite), args.Error(1)
}
func (m *MockFavoriteRepository) ListFavoriters(ctx context.Context, propertyID string) ([]string, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPriceHistoryRepository struct{ mock.Mock }

func (m *MockPriceHistoryRepository) Insert(ctx context.Context, c *entity.PriceChange) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockPriceHistoryRepository) ListDropsSince(ctx context.Context, propertyIDs []string, since time.Time) ([]*entity.PriceChange, error) {
	args := m.Called(ctx, propertyIDs, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PriceChange), args.Error(1)
}

type MockAnalyticsRepository struct{ mock.Mock }

func (m *MockAnalyticsRepository) Insert(ctx context.Context, r *entity.SearchRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockAnalyticsRepository) TopSearches(ctx context.Context, since time.Time, limit int) ([]entity.PopularSearch, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PopularSearch), args.Error(1)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Enqueue(ctx context.Context, kind notifier.AlertKind, userID string, payload interface{}) error {
	args := m.Called(ctx, kind, userID, payload)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishPropertyEvent(ctx context.Context, ev *entity.PropertyEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory cache.Store for wiring a real ResultCache into
// usecase tests without Redis.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	counts  map[string]int64
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, counts: map[string]int64{}}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
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

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, keys ...string) error {
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

func (s *fakeStore) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
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

func (s *fakeStore) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errStoreDown
	}
	s.counts[key]++
	return s.counts[key], nil
}
