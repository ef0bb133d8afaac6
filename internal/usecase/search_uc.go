package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/repository"
	"github.com/davidjirca/dreamhome/internal/resultcache"
	"github.com/davidjirca/dreamhome/internal/search"
)

var searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "dreamhome_search_duration_seconds",
	Help:    "End-to-end property search latency.",
	Buckets: prometheus.DefBuckets,
})

// SearchMeta carries optional request metadata recorded with analytics.
type SearchMeta struct {
	UserID    string
	SessionID string
	IPAddress string
	UserAgent string
}

type SearchUseCase struct {
	properties repository.PropertyRepository
	cache      *resultcache.ResultCache
	analytics  *AnalyticsUseCase
	group      singleflight.Group

	queryTimeout time.Duration
	logger       *zap.Logger
}

func NewSearchUseCase(
	properties repository.PropertyRepository,
	cache *resultcache.ResultCache,
	analytics *AnalyticsUseCase,
	queryTimeout time.Duration,
	logger *zap.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		properties:   properties,
		cache:        cache,
		analytics:    analytics,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// Search validates raw parameters and serves the result page, from cache when
// possible. Analytics recording happens off the request path and can never
// fail the response.
func (uc *SearchUseCase) Search(ctx context.Context, params search.Params, meta SearchMeta) (*search.Result, error) {
	fs, err := search.BuildFilterSet(params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := uc.SearchFilterSet(ctx, fs)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	searchDuration.Observe(elapsed.Seconds())

	if uc.analytics != nil {
		uc.analytics.RecordAsync(fs, res.Total, elapsed, meta)
	}
	return res, nil
}

// SearchFilterSet runs an already validated FilterSet: cache lookup keyed by
// the canonical digest, then on miss one composed store query, deduplicated
// across concurrent identical requests.
func (uc *SearchUseCase) SearchFilterSet(ctx context.Context, fs *search.FilterSet) (*search.Result, error) {
	ctx, span := otel.Tracer("usecase/search").Start(ctx, "search.execute")
	defer span.End()

	if res, ok := uc.cache.GetSearch(ctx, fs); ok {
		return res, nil
	}

	key := search.Digest(fs)
	val, err, _ := uc.group.Do(key, func() (interface{}, error) {
		if res, ok := uc.cache.GetSearch(ctx, fs); ok {
			return res, nil
		}
		res, err := uc.execute(ctx, fs)
		if err != nil {
			return nil, err
		}
		// Only fully successful executions are cached.
		uc.cache.PutSearch(ctx, fs, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*search.Result), nil
}

func (uc *SearchUseCase) execute(ctx context.Context, fs *search.FilterSet) (*search.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
	defer cancel()

	q := search.Compose(fs)
	items, total, err := uc.properties.ExecuteSearch(queryCtx, q)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			uc.logger.Warn("search query timed out",
				zap.String("digest", search.Digest(fs)),
				zap.Duration("timeout", uc.queryTimeout),
			)
			return nil, entity.ErrQueryTimeout
		}
		return nil, err
	}
	return search.NewResult(items, total, fs), nil
}

// GetProperty serves a single listing through the entity cache and bumps its
// view counter off the request path.
func (uc *SearchUseCase) GetProperty(ctx context.Context, id string) (*entity.Property, error) {
	if p, ok := uc.cache.GetProperty(ctx, id); ok {
		return p, nil
	}
	p, err := uc.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.PutProperty(ctx, p)
	if err := uc.properties.IncrementViewCount(ctx, id); err != nil {
		uc.logger.Warn("view count increment failed", zap.String("property_id", id), zap.Error(err))
	}
	return p, nil
}

func (uc *SearchUseCase) GetPropertyBySlug(ctx context.Context, slug string) (*entity.Property, error) {
	p, err := uc.properties.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	uc.cache.PutProperty(ctx, p)
	return p, nil
}
