package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/search"
	"github.com/davidjirca/dreamhome/internal/usecase"
)

type SavedSearchHandler struct {
	searches *usecase.SavedSearchUseCase
	logger   *zap.Logger
}

func NewSavedSearchHandler(searches *usecase.SavedSearchUseCase, logger *zap.Logger) *SavedSearchHandler {
	return &SavedSearchHandler{searches: searches, logger: logger}
}

type createSavedSearchRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Filters     search.Params `json:"filters"`

	AlertEnabled     bool   `json:"alert_enabled"`
	AlertFrequency   string `json:"alert_frequency,omitempty"`
	AlertNewListings bool   `json:"alert_new_listings"`
	AlertPriceDrops  bool   `json:"alert_price_drops"`
}

func (h *SavedSearchHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req createSavedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	s, err := h.searches.Create(r.Context(), usecase.CreateSavedSearchInput{
		UserID:           user,
		Name:             req.Name,
		Description:      req.Description,
		Filters:          req.Filters,
		AlertEnabled:     req.AlertEnabled,
		AlertFrequency:   req.AlertFrequency,
		AlertNewListings: req.AlertNewListings,
		AlertPriceDrops:  req.AlertPriceDrops,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SavedSearchHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("active_only") == "true"
	searches, err := h.searches.List(r.Context(), user, activeOnly)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, searches)
}

func (h *SavedSearchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	s, err := h.searches.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

type updateSavedSearchRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Filters     *search.Params `json:"filters,omitempty"`

	AlertEnabled     *bool   `json:"alert_enabled,omitempty"`
	AlertFrequency   *string `json:"alert_frequency,omitempty"`
	AlertNewListings *bool   `json:"alert_new_listings,omitempty"`
	AlertPriceDrops  *bool   `json:"alert_price_drops,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

func (h *SavedSearchHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req updateSavedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	s, err := h.searches.Update(r.Context(), user, chi.URLParam(r, "id"), usecase.UpdateSavedSearchInput{
		Name:             req.Name,
		Description:      req.Description,
		Filters:          req.Filters,
		AlertEnabled:     req.AlertEnabled,
		AlertFrequency:   req.AlertFrequency,
		AlertNewListings: req.AlertNewListings,
		AlertPriceDrops:  req.AlertPriceDrops,
		IsActive:         req.IsActive,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SavedSearchHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.searches.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedSearchHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	page, pageSize := 0, 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "page must be an integer"})
			return
		}
		page = v
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "page_size must be an integer"})
			return
		}
		pageSize = v
	}

	result, err := h.searches.Execute(r.Context(), user, chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}
