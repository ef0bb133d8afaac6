package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires all handlers under /api/v1 and exposes the Prometheus
// endpoint.
func NewRouter(
	searchHandler *SearchHandler,
	propertyHandler *PropertyHandler,
	favoriteHandler *FavoriteHandler,
	savedSearchHandler *SavedSearchHandler,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", searchHandler.HandleSearch)
		r.Get("/searches/popular", searchHandler.HandlePopularSearches)

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", propertyHandler.HandleCreate)
			r.Get("/slug/{slug}", searchHandler.HandleGetPropertyBySlug)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", searchHandler.HandleGetProperty)
				r.Patch("/", propertyHandler.HandleUpdate)
				r.Delete("/", propertyHandler.HandleDelete)
				r.Post("/publish", propertyHandler.HandlePublish)
				r.Post("/unpublish", propertyHandler.HandleUnpublish)
				r.Post("/photos", propertyHandler.HandleUploadPhoto)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.HandleList)
			r.Post("/", favoriteHandler.HandleAdd)
			r.Delete("/{propertyId}", favoriteHandler.HandleRemove)
		})

		r.Route("/saved-searches", func(r chi.Router) {
			r.Get("/", savedSearchHandler.HandleList)
			r.Post("/", savedSearchHandler.HandleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", savedSearchHandler.HandleGet)
				r.Patch("/", savedSearchHandler.HandleUpdate)
				r.Delete("/", savedSearchHandler.HandleDelete)
				r.Post("/execute", savedSearchHandler.HandleExecute)
			})
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
