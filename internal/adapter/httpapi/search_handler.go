package httpapi

import (
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/usecase"
)

type SearchHandler struct {
	searcher  *usecase.SearchUseCase
	analytics *usecase.AnalyticsUseCase
	logger    *zap.Logger
}

func NewSearchHandler(searcher *usecase.SearchUseCase, analytics *usecase.AnalyticsUseCase, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, analytics: analytics, logger: logger}
}

func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := paramsFromQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	meta := usecase.SearchMeta{
		UserID:    userID(r),
		SessionID: r.Header.Get("X-Session-ID"),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}

	result, err := h.searcher.Search(r.Context(), params, meta)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *SearchHandler) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.searcher.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *SearchHandler) HandleGetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.searcher.GetPropertyBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *SearchHandler) HandlePopularSearches(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "limit must be an integer between 1 and 100"})
			return
		}
		limit = v
	}

	top, err := h.analytics.PopularSearches(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, top)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
