// Package resultcache is the content-addressed cache in front of the search
// path. Every operation degrades to a miss or a no-op when the backing store
// is absent or failing: cache trouble must never fail a request.
package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/cache"
	"github.com/davidjirca/dreamhome/internal/search"
)

const (
	searchKeyPrefix   = "search:"
	propertyKeyPrefix = "property:"
	popularKey        = "popular_searches"
	countKeyPrefix    = "search_count:"

	searchCountTTL = 7 * 24 * time.Hour
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamhome_cache_hits_total",
		Help: "Cache hits by namespace.",
	}, []string{"namespace"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamhome_cache_misses_total",
		Help: "Cache misses by namespace.",
	}, []string{"namespace"})
)

type Config struct {
	SearchTTL  time.Duration
	EntityTTL  time.Duration
	PopularTTL time.Duration
}

type ResultCache struct {
	store  cache.Store
	cfg    Config
	logger *zap.Logger
}

// New builds a ResultCache. A nil store is a valid, permanently disabled
// cache: every get is a miss and every put or eviction a no-op.
func New(store cache.Store, cfg Config, logger *zap.Logger) *ResultCache {
	return &ResultCache{store: store, cfg: cfg, logger: logger}
}

// Enabled reports whether a backing store was configured at all. A reachable
// store is not guaranteed; individual operations still degrade on error.
func (c *ResultCache) Enabled() bool { return c.store != nil }

func searchKey(f *search.FilterSet) string {
	return searchKeyPrefix + search.Digest(f)
}

func propertyKey(id string) string {
	return propertyKeyPrefix + id
}

func (c *ResultCache) GetSearch(ctx context.Context, f *search.FilterSet) (*search.Result, bool) {
	var res search.Result
	if !c.get(ctx, searchKey(f), "search", &res) {
		return nil, false
	}
	return &res, true
}

func (c *ResultCache) PutSearch(ctx context.Context, f *search.FilterSet, res *search.Result) {
	c.put(ctx, searchKey(f), res, c.cfg.SearchTTL)
}

func (c *ResultCache) GetProperty(ctx context.Context, id string) (*entity.Property, bool) {
	var p entity.Property
	if !c.get(ctx, propertyKey(id), "property", &p) {
		return nil, false
	}
	return &p, true
}

func (c *ResultCache) PutProperty(ctx context.Context, p *entity.Property) {
	c.put(ctx, propertyKey(p.ID), p, c.cfg.EntityTTL)
}

// InvalidateProperty evicts a single entity key.
func (c *ResultCache) InvalidateProperty(ctx context.Context, id string) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, propertyKey(id)); err != nil {
		c.logger.Warn("cache eviction failed", zap.String("key", propertyKey(id)), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateSearches evicts the entire search-result namespace. Deliberately
// coarse: one mutated listing can affect an unbounded number of cached pages.
func (c *ResultCache) InvalidateSearches(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	deleted, err := c.store.DeleteByPrefix(ctx, searchKeyPrefix)
	if err != nil {
		c.logger.Warn("search cache eviction failed", zap.Error(err))
		return err
	}
	c.logger.Debug("search cache evicted", zap.Int64("keys", deleted))
	return nil
}

func (c *ResultCache) GetPopular(ctx context.Context) ([]entity.PopularSearch, bool) {
	var list []entity.PopularSearch
	if !c.get(ctx, popularKey, "popular", &list) {
		return nil, false
	}
	return list, true
}

func (c *ResultCache) PutPopular(ctx context.Context, list []entity.PopularSearch) {
	c.put(ctx, popularKey, list, c.cfg.PopularTTL)
}

// BumpSearchCount increments the trending counter for a query text.
func (c *ResultCache) BumpSearchCount(ctx context.Context, text string) {
	normalized := search.NormalizeQueryText(text)
	if c.store == nil || normalized == "" {
		return
	}
	if _, err := c.store.Increment(ctx, countKeyPrefix+normalized, searchCountTTL); err != nil {
		c.logger.Warn("search count increment failed", zap.String("query", normalized), zap.Error(err))
	}
}

func (c *ResultCache) get(ctx context.Context, key, namespace string, out interface{}) bool {
	if c.store == nil {
		return false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		cacheMisses.WithLabelValues(namespace).Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupted", zap.String("key", key), zap.Error(err))
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.logger.Warn("failed to drop corrupted cache entry", zap.String("key", key), zap.Error(delErr))
		}
		cacheMisses.WithLabelValues(namespace).Inc()
		return false
	}
	cacheHits.WithLabelValues(namespace).Inc()
	return true
}

func (c *ResultCache) put(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
