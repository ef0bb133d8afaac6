package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/search"
)

func newPropertyUseCase(repo *MockPropertyRepository, prices *MockPriceHistoryRepository, publisher *MockPublisher, store *fakeStore) *PropertyUseCase {
	logger := zap.NewNop()
	invalidator := NewInvalidator(newTestCache(store), logger)
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewPropertyUseCase(repo, prices, invalidator, pub, nil, 90, logger)
}

func TestCreateProperty_DerivesFields(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), nil, newFakeStore())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	lat, lng := 44.4268, 26.1025
	p, err := uc.CreateProperty(context.Background(), "owner-1", CreatePropertyInput{
		Title:        "Sunny Studio in Centru",
		PropertyType: entity.PropertyTypeStudio,
		ListingType:  entity.ListingTypeRent,
		Price:        50000,
		Currency:     "EUR",
		TotalArea:    40,
		Latitude:     &lat,
		Longitude:    &lng,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, p.Status)
	assert.Equal(t, "owner-1", p.OwnerID)
	assert.Equal(t, 1250.0, p.PricePerSqm)
	assert.Contains(t, p.Slug, "sunny-studio-in-centru-")
	require.NotNil(t, p.Location)
	assert.Equal(t, lat, p.Location.Lat())
	assert.Equal(t, lng, p.Location.Lng())
}

func TestCreateProperty_EvictsSearchCacheBeforeReturn(t *testing.T) {
	repo := new(MockPropertyRepository)
	store := newFakeStore()
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), nil, store)

	// Seed a cached search page that the mutation must invalidate.
	rc := newTestCache(store)
	fs, err := search.BuildFilterSet(search.Params{Cities: []string{"Bucharest"}})
	require.NoError(t, err)
	rc.PutSearch(context.Background(), fs, &search.Result{Total: 7})

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err = uc.CreateProperty(context.Background(), "owner-1", CreatePropertyInput{Title: "New flat"})
	require.NoError(t, err)

	_, hit := rc.GetSearch(context.Background(), fs)
	assert.False(t, hit)
}

func TestCreateProperty_EvictionFailureIsNotFatal(t *testing.T) {
	repo := new(MockPropertyRepository)
	store := newFakeStore()
	store.failing = true
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), nil, store)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.CreateProperty(context.Background(), "owner-1", CreatePropertyInput{Title: "New flat"})
	assert.NoError(t, err)
}

func TestUpdateProperty_PriceChangeRecordsHistoryAndEvent(t *testing.T) {
	repo := new(MockPropertyRepository)
	prices := new(MockPriceHistoryRepository)
	publisher := new(MockPublisher)
	uc := newPropertyUseCase(repo, prices, publisher, newFakeStore())

	existing := activeListing("p1")
	existing.Price = 200000
	repo.On("FindByID", mock.Anything, "p1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishPropertyEvent", mock.Anything, mock.Anything).Return(nil)

	prices.On("Insert", mock.Anything, mock.MatchedBy(func(c *entity.PriceChange) bool {
		return c.PropertyID == "p1" && c.OldPrice == 200000 && c.NewPrice == 165000 &&
			math.Abs(c.ChangePercent+17.5) < 1e-9
	})).Return(nil).Once()

	newPrice := int64(165000)
	p, err := uc.UpdateProperty(context.Background(), "p1", "owner-1", UpdatePropertyInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, p.Price)

	prices.AssertExpectations(t)
	publisher.AssertCalled(t, "PublishPropertyEvent", mock.Anything, mock.MatchedBy(func(ev *entity.PropertyEvent) bool {
		return ev.Kind == entity.EventPriceChanged && ev.OldPrice == 200000 && ev.NewPrice == 165000
	}))
}

func TestUpdateProperty_UnchangedPriceSkipsHistory(t *testing.T) {
	repo := new(MockPropertyRepository)
	prices := new(MockPriceHistoryRepository)
	uc := newPropertyUseCase(repo, prices, nil, newFakeStore())

	existing := activeListing("p1")
	repo.On("FindByID", mock.Anything, "p1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	title := "Renovated two-room apartment"
	_, err := uc.UpdateProperty(context.Background(), "p1", "owner-1", UpdatePropertyInput{Title: &title})
	require.NoError(t, err)

	prices.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUpdateProperty_Forbidden(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), nil, newFakeStore())

	existing := activeListing("p1")
	repo.On("FindByID", mock.Anything, "p1").Return(existing, nil)

	title := "Hijacked"
	_, err := uc.UpdateProperty(context.Background(), "p1", "intruder", UpdatePropertyInput{Title: &title})
	assert.ErrorIs(t, err, entity.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPublishProperty_RequiresPhotos(t *testing.T) {
	repo := new(MockPropertyRepository)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), nil, newFakeStore())

	draft := activeListing("p1")
	draft.Status = entity.StatusDraft
	draft.Photos = nil
	repo.On("FindByID", mock.Anything, "p1").Return(draft, nil)

	_, err := uc.PublishProperty(context.Background(), "p1", "owner-1")
	assert.ErrorIs(t, err, entity.ErrNoPhotos)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPublishProperty_ActivatesWithExpiry(t *testing.T) {
	repo := new(MockPropertyRepository)
	publisher := new(MockPublisher)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), publisher, newFakeStore())

	draft := activeListing("p1")
	draft.Status = entity.StatusDraft
	draft.PublishedAt = nil
	repo.On("FindByID", mock.Anything, "p1").Return(draft, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishPropertyEvent", mock.Anything, mock.Anything).Return(nil)

	p, err := uc.PublishProperty(context.Background(), "p1", "owner-1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusActive, p.Status)
	require.NotNil(t, p.PublishedAt)
	require.NotNil(t, p.ExpiresAt)
	assert.WithinDuration(t, p.PublishedAt.AddDate(0, 0, 90), *p.ExpiresAt, time.Second)

	publisher.AssertCalled(t, "PublishPropertyEvent", mock.Anything, mock.MatchedBy(func(ev *entity.PropertyEvent) bool {
		return ev.Kind == entity.EventPublished && ev.PropertyID == "p1"
	}))
}

func TestDeleteProperty_SoftDeletes(t *testing.T) {
	repo := new(MockPropertyRepository)
	publisher := new(MockPublisher)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), publisher, newFakeStore())

	existing := activeListing("p1")
	repo.On("FindByID", mock.Anything, "p1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *entity.Property) bool {
		return p.DeletedAt != nil && p.Status == entity.StatusExpired
	})).Return(nil)
	publisher.On("PublishPropertyEvent", mock.Anything, mock.Anything).Return(nil)

	err := uc.DeleteProperty(context.Background(), "p1", "owner-1")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	publisher.AssertCalled(t, "PublishPropertyEvent", mock.Anything, mock.MatchedBy(func(ev *entity.PropertyEvent) bool {
		return ev.Kind == entity.EventDeleted
	}))
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	repo := new(MockPropertyRepository)
	publisher := new(MockPublisher)
	uc := newPropertyUseCase(repo, new(MockPriceHistoryRepository), publisher, newFakeStore())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishPropertyEvent", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := uc.CreateProperty(context.Background(), "owner-1", CreatePropertyInput{Title: "New flat"})
	assert.NoError(t, err)
}
