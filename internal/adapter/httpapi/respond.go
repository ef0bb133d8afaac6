package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/search"
)

type errorResponse struct {
	Error      string                  `json:"error"`
	Violations []search.FieldViolation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var validation *search.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{
			Error:      "invalid search parameters",
			Violations: validation.Violations,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrPropertyNotFound),
		errors.Is(err, entity.ErrSavedSearchNotFound),
		errors.Is(err, entity.ErrFavoriteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrDuplicateFavorite),
		errors.Is(err, entity.ErrDuplicateSearchName):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrSavedSearchLimit),
		errors.Is(err, entity.ErrNoPhotos):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrQueryTimeout):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, logger, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, logger, status, errorResponse{Error: err.Error()})
}

// userID reads the identity set by the gateway. Authentication itself happens
// upstream.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func requireUser(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	id := userID(r)
	if id == "" {
		writeJSON(w, logger, http.StatusUnauthorized, errorResponse{Error: "missing X-User-ID header"})
		return "", false
	}
	return id, true
}
