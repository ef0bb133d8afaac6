package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/resultcache"
)

// Invalidator is the cache invalidation coordinator. It reacts to listing
// mutation events by evicting the mutated entity's key and the entire
// search-result namespace.
type Invalidator struct {
	cache  *resultcache.ResultCache
	logger *zap.Logger
}

func NewInvalidator(cache *resultcache.ResultCache, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// OnMutation applies evictions for one mutation event. Eviction failures are
// consistency warnings, never fatal: the worst case is stale cached data
// until TTL expiry, which does not compromise the primary store.
func (i *Invalidator) OnMutation(ctx context.Context, ev *entity.PropertyEvent) {
	if err := i.cache.InvalidateProperty(ctx, ev.PropertyID); err != nil {
		i.logger.Warn("entity cache eviction failed, cache may serve stale data until TTL",
			zap.String("property_id", ev.PropertyID),
			zap.String("event", string(ev.Kind)),
			zap.Error(err),
		)
	}
	if err := i.cache.InvalidateSearches(ctx); err != nil {
		i.logger.Warn("search cache eviction failed, cache may serve stale data until TTL",
			zap.String("property_id", ev.PropertyID),
			zap.String("event", string(ev.Kind)),
			zap.Error(err),
		)
	}
}
