package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/usecase"
)

type FavoriteHandler struct {
	favorites *usecase.FavoriteUseCase
	logger    *zap.Logger
}

func NewFavoriteHandler(favorites *usecase.FavoriteUseCase, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req struct {
		PropertyID string `json:"property_id"`
		Notes      string `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PropertyID == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "property_id is required"})
		return
	}

	f, err := h.favorites.Add(r.Context(), user, req.PropertyID, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, f)
}

func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), user, chi.URLParam(r, "propertyId")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	favorites, err := h.favorites.List(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, favorites)
}
