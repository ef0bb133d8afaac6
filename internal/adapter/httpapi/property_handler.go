package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/usecase"
)

// maxPhotoSize bounds one uploaded photo.
const maxPhotoSize = 10 << 20

type PropertyHandler struct {
	properties *usecase.PropertyUseCase
	logger     *zap.Logger
}

func NewPropertyHandler(properties *usecase.PropertyUseCase, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: logger}
}

type createPropertyRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PropertyType string `json:"property_type"`
	ListingType  string `json:"listing_type"`

	Price      int64  `json:"price"`
	Currency   string `json:"currency"`
	Negotiable bool   `json:"negotiable"`

	TotalArea   int64 `json:"total_area"`
	UsableArea  int64 `json:"usable_area"`
	Rooms       int   `json:"rooms"`
	Bedrooms    int   `json:"bedrooms"`
	Bathrooms   int   `json:"bathrooms"`
	Floor       *int  `json:"floor,omitempty"`
	TotalFloors *int  `json:"total_floors,omitempty"`
	YearBuilt   *int  `json:"year_built,omitempty"`

	Balconies    int    `json:"balconies"`
	ParkingSpots int    `json:"parking_spots"`
	HasGarage    bool   `json:"has_garage"`
	HasTerrace   bool   `json:"has_terrace"`
	HasGarden    bool   `json:"has_garden"`
	IsFurnished  bool   `json:"is_furnished"`
	HeatingType  string `json:"heating_type"`
	EnergyRating string `json:"energy_rating"`

	Address      string   `json:"address"`
	City         string   `json:"city"`
	County       string   `json:"county"`
	PostalCode   string   `json:"postal_code"`
	Neighborhood string   `json:"neighborhood"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

func (h *PropertyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Title == "" || req.Price <= 0 || req.TotalArea <= 0 {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "title, price and total_area are required"})
		return
	}

	propertyType, err := entity.ParsePropertyType(req.PropertyType)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	listingType, err := entity.ParseListingType(req.ListingType)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := h.properties.CreateProperty(r.Context(), owner, usecase.CreatePropertyInput{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: propertyType,
		ListingType:  listingType,
		Price:        req.Price,
		Currency:     req.Currency,
		Negotiable:   req.Negotiable,
		TotalArea:    req.TotalArea,
		UsableArea:   req.UsableArea,
		Rooms:        req.Rooms,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Floor:        req.Floor,
		TotalFloors:  req.TotalFloors,
		YearBuilt:    req.YearBuilt,
		Balconies:    req.Balconies,
		ParkingSpots: req.ParkingSpots,
		HasGarage:    req.HasGarage,
		HasTerrace:   req.HasTerrace,
		HasGarden:    req.HasGarden,
		IsFurnished:  req.IsFurnished,
		HeatingType:  req.HeatingType,
		EnergyRating: req.EnergyRating,
		Address:      req.Address,
		City:         req.City,
		County:       req.County,
		PostalCode:   req.PostalCode,
		Neighborhood: req.Neighborhood,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, p)
}

type updatePropertyRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Negotiable  *bool   `json:"negotiable,omitempty"`
	TotalArea   *int64  `json:"total_area,omitempty"`
	Rooms       *int    `json:"rooms,omitempty"`
	Bedrooms    *int    `json:"bedrooms,omitempty"`
	Bathrooms   *int    `json:"bathrooms,omitempty"`
	HeatingType *string `json:"heating_type,omitempty"`
	IsFurnished *bool   `json:"is_furnished,omitempty"`
}

func (h *PropertyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req updatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "price must be positive"})
		return
	}

	p, err := h.properties.UpdateProperty(r.Context(), chi.URLParam(r, "id"), user, usecase.UpdatePropertyInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Negotiable:  req.Negotiable,
		TotalArea:   req.TotalArea,
		Rooms:       req.Rooms,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		HeatingType: req.HeatingType,
		IsFurnished: req.IsFurnished,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *PropertyHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	p, err := h.properties.PublishProperty(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *PropertyHandler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	status, err := entity.ParsePropertyStatus(req.Status)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if status != entity.StatusSold && status != entity.StatusRented && status != entity.StatusExpired {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "status must be sold, rented or expired"})
		return
	}

	p, err := h.properties.UnpublishProperty(r.Context(), chi.URLParam(r, "id"), user, status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}

func (h *PropertyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.properties.DeleteProperty(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "photo file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "failed to read photo"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	p, err := h.properties.UploadPhoto(r.Context(), chi.URLParam(r, "id"), user, header.Filename, data, contentType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, p)
}
