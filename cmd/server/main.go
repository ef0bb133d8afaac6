package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	redisAdapter "github.com/davidjirca/dreamhome/internal/adapter/cache/redis"
	"github.com/davidjirca/dreamhome/internal/adapter/email"
	"github.com/davidjirca/dreamhome/internal/adapter/httpapi"
	mongoAdapter "github.com/davidjirca/dreamhome/internal/adapter/mongo"
	natsAdapter "github.com/davidjirca/dreamhome/internal/adapter/nats"
	s3Adapter "github.com/davidjirca/dreamhome/internal/adapter/storage/s3"
	"github.com/davidjirca/dreamhome/internal/config"
	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/platform/tracer"
	"github.com/davidjirca/dreamhome/internal/port/cache"
	"github.com/davidjirca/dreamhome/internal/port/notifier"
	"github.com/davidjirca/dreamhome/internal/resultcache"
	"github.com/davidjirca/dreamhome/internal/usecase"
	"github.com/davidjirca/dreamhome/internal/worker"
)

func main() {
	_ = godotenv.Load()

	configPath := "config.yaml"
	if cp := os.Getenv("CONFIG_PATH"); cp != "" {
		configPath = cp
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
	)

	if cfg.Tracing.Enabled {
		tp, err := tracer.InitTracer(&cfg.Tracing)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down tracer", zap.Error(err))
			}
		}()
	}

	mongoClient, err := mongoAdapter.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoAdapter.EnsureIndexes(indexCtx, mongoClient.Database(cfg.Mongo.Database)); err != nil {
		indexCancel()
		logger.Fatal("Failed to ensure MongoDB indexes", zap.Error(err))
	}
	indexCancel()

	// Redis is an optimization, not a dependency: without it every search
	// goes straight to MongoDB.
	var store cache.Store
	if redisClient, err := redisAdapter.NewRedisClient(&cfg.Redis, logger); err != nil {
		logger.Warn("Redis unavailable, running without result cache", zap.Error(err))
	} else {
		store = redisAdapter.NewRedisStore(redisClient, logger)
		defer redisClient.Close()
	}

	resultCache := resultcache.New(store, resultcache.Config{
		SearchTTL:  cfg.Cache.SearchTTL,
		EntityTTL:  cfg.Cache.EntityTTL,
		PopularTTL: cfg.Cache.PopularTTL,
	}, logger)

	pool := worker.NewPool(cfg.Worker.PoolSize, cfg.Worker.QueueDepth, logger)
	defer pool.Shutdown()

	propertyRepo := mongoAdapter.NewPropertyMongoRepository(mongoClient, cfg.Mongo.Database)
	savedSearchRepo := mongoAdapter.NewSavedSearchMongoRepository(mongoClient, cfg.Mongo.Database)
	favoriteRepo := mongoAdapter.NewFavoriteMongoRepository(mongoClient, cfg.Mongo.Database)
	priceHistoryRepo := mongoAdapter.NewPriceHistoryMongoRepository(mongoClient, cfg.Mongo.Database)
	analyticsRepo := mongoAdapter.NewAnalyticsMongoRepository(mongoClient, cfg.Mongo.Database)
	userDirectory := mongoAdapter.NewUserDirectory(mongoClient, cfg.Mongo.Database)

	var publisher usecase.EventPublisher
	var natsConn *natsAdapter.Publisher
	nc, err := natsAdapter.Connect(&cfg.NATS, logger)
	if err != nil {
		logger.Warn("NATS unavailable, property events will not be published", zap.Error(err))
	} else {
		natsConn = natsAdapter.NewPublisher(nc, logger)
		publisher = natsConn
		defer natsConn.Close()
	}

	var photos usecase.PhotoStorage
	if s3Storage, err := s3Adapter.NewPhotoStorage(&cfg.S3, logger); err != nil {
		logger.Warn("Photo storage unavailable, uploads will fail", zap.Error(err))
	} else {
		photos = s3Storage
	}

	var dispatcher notifier.Dispatcher
	if d, err := email.NewDispatcher(cfg.SMTP, userDirectory, pool, logger); err != nil {
		logger.Warn("SMTP not configured, alerts will be dropped", zap.Error(err))
		dispatcher = noopDispatcher{logger: logger}
	} else {
		dispatcher = d
	}

	invalidator := usecase.NewInvalidator(resultCache, logger)
	analyticsUC := usecase.NewAnalyticsUseCase(analyticsRepo, resultCache, pool, cfg.Search.AnalyticsWindow, logger)
	searchUC := usecase.NewSearchUseCase(propertyRepo, resultCache, analyticsUC, cfg.Search.QueryTimeout, logger)
	propertyUC := usecase.NewPropertyUseCase(propertyRepo, priceHistoryRepo, invalidator, publisher, photos, cfg.Search.ExpiryDays, logger)
	savedSearchUC := usecase.NewSavedSearchUseCase(savedSearchRepo, searchUC, logger)
	favoriteUC := usecase.NewFavoriteUseCase(favoriteRepo, propertyRepo, logger)
	alertUC := usecase.NewAlertUseCase(savedSearchRepo, favoriteRepo, propertyRepo, priceHistoryRepo, dispatcher, cfg.Alerts.ChunkSize, logger)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if nc != nil {
		subscriber := natsAdapter.NewSubscriber(nc, alertUC, logger)
		if err := subscriber.Start(rootCtx); err != nil {
			logger.Error("Failed to start event subscriber", zap.Error(err))
		} else {
			defer subscriber.Stop()
		}
	}

	go runDigestLoop(rootCtx, alertUC, entity.FrequencyDaily, 24*time.Hour, logger)
	go runDigestLoop(rootCtx, alertUC, entity.FrequencyWeekly, 7*24*time.Hour, logger)

	searchHandler := httpapi.NewSearchHandler(searchUC, analyticsUC, logger)
	propertyHandler := httpapi.NewPropertyHandler(propertyUC, logger)
	favoriteHandler := httpapi.NewFavoriteHandler(favoriteUC, logger)
	savedSearchHandler := httpapi.NewSavedSearchHandler(savedSearchUC, logger)
	router := httpapi.NewRouter(searchHandler, propertyHandler, favoriteHandler, savedSearchHandler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	rootCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapConfig.Build()
}

func runDigestLoop(ctx context.Context, alerts *usecase.AlertUseCase, freq entity.NotificationFrequency, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := alerts.RunDigest(ctx, freq); err != nil {
				logger.Error("Digest run failed", zap.String("frequency", string(freq)), zap.Error(err))
			}
		}
	}
}

// noopDispatcher drops alerts when no delivery channel is configured.
type noopDispatcher struct {
	logger *zap.Logger
}

func (d noopDispatcher) Enqueue(_ context.Context, kind notifier.AlertKind, userID string, _ interface{}) error {
	d.logger.Debug("Dropping alert, no dispatcher configured",
		zap.String("kind", string(kind)), zap.String("user_id", userID))
	return nil
}
