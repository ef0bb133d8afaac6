// Package repository defines the persistence ports consumed by the usecases.
package repository

import (
	"context"
	"time"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/search"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *entity.Property) error
	Update(ctx context.Context, p *entity.Property) error
	FindByID(ctx context.Context, id string) (*entity.Property, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Property, error)

	// ExecuteSearch runs a composed query and returns the matching page
	// together with the total count over the same predicate set.
	ExecuteSearch(ctx context.Context, q *search.Query) ([]*entity.Property, int64, error)

	IncrementViewCount(ctx context.Context, id string) error
	IncrementFavoriteCount(ctx context.Context, id string, delta int) error
}

type SavedSearchRepository interface {
	Create(ctx context.Context, s *entity.SavedSearch) error
	Update(ctx context.Context, s *entity.SavedSearch) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.SavedSearch, error)
	FindByUserAndName(ctx context.Context, userID, name string) (*entity.SavedSearch, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]*entity.SavedSearch, error)
	CountByUser(ctx context.Context, userID string) (int64, error)

	// ForEachAlertable streams active saved searches with alerts enabled and
	// the given frequency in chunks, bounding memory for large datasets. A
	// callback error aborts the iteration.
	ForEachAlertable(ctx context.Context, freq entity.NotificationFrequency, chunkSize int, fn func([]*entity.SavedSearch) error) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, f *entity.Favorite) error
	Remove(ctx context.Context, userID, propertyID string) error
	Exists(ctx context.Context, userID, propertyID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error)

	// ListFavoriters returns the ids of users who favorited the property.
	ListFavoriters(ctx context.Context, propertyID string) ([]string, error)
}

type PriceHistoryRepository interface {
	Insert(ctx context.Context, c *entity.PriceChange) error
	ListDropsSince(ctx context.Context, propertyIDs []string, since time.Time) ([]*entity.PriceChange, error)
}

type AnalyticsRepository interface {
	Insert(ctx context.Context, r *entity.SearchRecord) error

	// TopSearches aggregates recorded search texts over a trailing window.
	TopSearches(ctx context.Context, since time.Time, limit int) ([]entity.PopularSearch, error)
}
