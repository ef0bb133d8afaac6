package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/repository"
	"github.com/davidjirca/dreamhome/internal/resultcache"
	"github.com/davidjirca/dreamhome/internal/search"
)

const recordTimeout = 5 * time.Second

// TaskSubmitter is the fire-and-forget execution surface the recorder runs
// on; failures stay inside the submitted task.
type TaskSubmitter interface {
	Submit(task func()) bool
}

type AnalyticsUseCase struct {
	repo   repository.AnalyticsRepository
	cache  *resultcache.ResultCache
	pool   TaskSubmitter
	window time.Duration
	logger *zap.Logger
}

func NewAnalyticsUseCase(
	repo repository.AnalyticsRepository,
	cache *resultcache.ResultCache,
	pool TaskSubmitter,
	window time.Duration,
	logger *zap.Logger,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{repo: repo, cache: cache, pool: pool, window: window, logger: logger}
}

// RecordAsync persists one search-analytics row in the background. The
// caller never waits and never observes a failure.
func (uc *AnalyticsUseCase) RecordAsync(fs *search.FilterSet, resultCount int64, elapsed time.Duration, meta SearchMeta) {
	record := &entity.SearchRecord{
		ID:              uuid.NewString(),
		UserID:          meta.UserID,
		SessionID:       meta.SessionID,
		SearchText:      search.NormalizeQueryText(fs.Query),
		Filters:         search.Canonical(fs),
		ResultCount:     resultCount,
		ExecutionTimeMs: elapsed.Milliseconds(),
		IPAddress:       meta.IPAddress,
		UserAgent:       meta.UserAgent,
		CreatedAt:       time.Now(),
	}
	query := fs.Query

	uc.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := uc.repo.Insert(ctx, record); err != nil {
			uc.logger.Warn("search analytics insert failed", zap.Error(err))
		}
		uc.cache.BumpSearchCount(ctx, query)
	})
}

// PopularSearches returns the trending queries over the trailing window,
// cached under its own namespace.
func (uc *AnalyticsUseCase) PopularSearches(ctx context.Context, limit int) ([]entity.PopularSearch, error) {
	if list, ok := uc.cache.GetPopular(ctx); ok {
		if len(list) > limit {
			list = list[:limit]
		}
		return list, nil
	}

	list, err := uc.repo.TopSearches(ctx, time.Now().Add(-uc.window), limit)
	if err != nil {
		return nil, err
	}
	uc.cache.PutPopular(ctx, list)
	return list, nil
}
