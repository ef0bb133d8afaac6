package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/repository"
	"github.com/davidjirca/dreamhome/internal/search"
)

// MaxSavedSearchesPerUser caps how many saved searches one user may keep.
const MaxSavedSearchesPerUser = 20

type CreateSavedSearchInput struct {
	UserID      string
	Name        string
	Description string
	Filters     search.Params

	AlertEnabled     bool
	AlertFrequency   string
	AlertNewListings bool
	AlertPriceDrops  bool
}

type UpdateSavedSearchInput struct {
	Name        *string
	Description *string
	Filters     *search.Params

	AlertEnabled     *bool
	AlertFrequency   *string
	AlertNewListings *bool
	AlertPriceDrops  *bool
	IsActive         *bool
}

type SavedSearchUseCase struct {
	searches repository.SavedSearchRepository
	searcher *SearchUseCase
	logger   *zap.Logger
}

func NewSavedSearchUseCase(searches repository.SavedSearchRepository, searcher *SearchUseCase, logger *zap.Logger) *SavedSearchUseCase {
	return &SavedSearchUseCase{searches: searches, searcher: searcher, logger: logger}
}

// Create validates the filter payload, enforces the per-user cap and the
// per-user name uniqueness, and stores the raw parameters verbatim.
func (uc *SavedSearchUseCase) Create(ctx context.Context, in CreateSavedSearchInput) (*entity.SavedSearch, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("saved search name is required")
	}

	// Filters must form a valid set even though we persist the raw params.
	if _, err := search.BuildFilterSet(in.Filters); err != nil {
		return nil, err
	}

	count, err := uc.searches.CountByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("counting saved searches: %w", err)
	}
	if count >= MaxSavedSearchesPerUser {
		return nil, entity.ErrSavedSearchLimit
	}

	if _, err := uc.searches.FindByUserAndName(ctx, in.UserID, in.Name); err == nil {
		return nil, entity.ErrDuplicateSearchName
	} else if !errors.Is(err, entity.ErrSavedSearchNotFound) {
		return nil, fmt.Errorf("checking name uniqueness: %w", err)
	}

	freq := entity.FrequencyInstant
	if in.AlertFrequency != "" {
		freq, err = entity.ParseNotificationFrequency(in.AlertFrequency)
		if err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(in.Filters)
	if err != nil {
		return nil, fmt.Errorf("encoding filters: %w", err)
	}

	now := time.Now()
	s := &entity.SavedSearch{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		Name:             in.Name,
		Description:      in.Description,
		Filters:          raw,
		AlertEnabled:     in.AlertEnabled,
		AlertFrequency:   freq,
		AlertNewListings: in.AlertNewListings,
		AlertPriceDrops:  in.AlertPriceDrops,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.searches.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("creating saved search: %w", err)
	}
	return s, nil
}

func (uc *SavedSearchUseCase) Get(ctx context.Context, userID, id string) (*entity.SavedSearch, error) {
	return uc.owned(ctx, userID, id)
}

func (uc *SavedSearchUseCase) List(ctx context.Context, userID string, activeOnly bool) ([]*entity.SavedSearch, error) {
	return uc.searches.ListByUser(ctx, userID, activeOnly)
}

func (uc *SavedSearchUseCase) Update(ctx context.Context, userID, id string, in UpdateSavedSearchInput) (*entity.SavedSearch, error) {
	s, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != s.Name {
		if *in.Name == "" {
			return nil, fmt.Errorf("saved search name is required")
		}
		if _, err := uc.searches.FindByUserAndName(ctx, userID, *in.Name); err == nil {
			return nil, entity.ErrDuplicateSearchName
		} else if !errors.Is(err, entity.ErrSavedSearchNotFound) {
			return nil, fmt.Errorf("checking name uniqueness: %w", err)
		}
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Filters != nil {
		if _, err := search.BuildFilterSet(*in.Filters); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(*in.Filters)
		if err != nil {
			return nil, fmt.Errorf("encoding filters: %w", err)
		}
		s.Filters = raw
	}
	if in.AlertEnabled != nil {
		s.AlertEnabled = *in.AlertEnabled
	}
	if in.AlertFrequency != nil {
		freq, err := entity.ParseNotificationFrequency(*in.AlertFrequency)
		if err != nil {
			return nil, err
		}
		s.AlertFrequency = freq
	}
	if in.AlertNewListings != nil {
		s.AlertNewListings = *in.AlertNewListings
	}
	if in.AlertPriceDrops != nil {
		s.AlertPriceDrops = *in.AlertPriceDrops
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}

	s.UpdatedAt = time.Now()
	if err := uc.searches.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("updating saved search: %w", err)
	}
	return s, nil
}

func (uc *SavedSearchUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return err
	}
	return uc.searches.Delete(ctx, id)
}

// Execute re-runs a saved search through the regular search path, so results
// are cached and counted like any interactive query, then refreshes the
// stored result count.
func (uc *SavedSearchUseCase) Execute(ctx context.Context, userID, id string, page, pageSize int) (*search.Result, error) {
	s, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var params search.Params
	if err := json.Unmarshal(s.Filters, &params); err != nil {
		return nil, fmt.Errorf("decoding stored filters: %w", err)
	}
	if page > 0 {
		params.Page = page
	}
	if pageSize > 0 {
		params.PageSize = pageSize
	}

	fs, err := search.BuildFilterSet(params)
	if err != nil {
		return nil, err
	}
	res, err := uc.searcher.SearchFilterSet(ctx, fs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.LastCheckedAt = &now
	s.ResultCount = res.Total
	if err := uc.searches.Update(ctx, s); err != nil {
		uc.logger.Warn("failed to refresh saved search result count",
			zap.String("search_id", s.ID), zap.Error(err))
	}
	return res, nil
}

func (uc *SavedSearchUseCase) owned(ctx context.Context, userID, id string) (*entity.SavedSearch, error) {
	s, err := uc.searches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, entity.ErrForbidden
	}
	return s, nil
}
