package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/notifier"
	"github.com/davidjirca/dreamhome/internal/port/repository"
	"github.com/davidjirca/dreamhome/internal/search"
)

const digestPageSize = 5

// AlertUseCase re-evaluates saved searches against mutated listings and fans
// alerts out through the dispatcher.
type AlertUseCase struct {
	searches   repository.SavedSearchRepository
	favorites  repository.FavoriteRepository
	properties repository.PropertyRepository
	prices     repository.PriceHistoryRepository
	dispatcher notifier.Dispatcher
	chunkSize  int
	logger     *zap.Logger
}

func NewAlertUseCase(
	searches repository.SavedSearchRepository,
	favorites repository.FavoriteRepository,
	properties repository.PropertyRepository,
	prices repository.PriceHistoryRepository,
	dispatcher notifier.Dispatcher,
	chunkSize int,
	logger *zap.Logger,
) *AlertUseCase {
	if chunkSize < 1 {
		chunkSize = 100
	}
	return &AlertUseCase{
		searches:   searches,
		favorites:  favorites,
		properties: properties,
		prices:     prices,
		dispatcher: dispatcher,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// HandleEvent routes one mutation event into the alert pipeline. Failures
// here never propagate back to the mutation's caller.
func (uc *AlertUseCase) HandleEvent(ctx context.Context, ev *entity.PropertyEvent) {
	switch ev.Kind {
	case entity.EventPublished:
		if err := uc.MatchNewListing(ctx, ev.Property); err != nil {
			uc.logger.Error("new-listing alert matching failed",
				zap.String("property_id", ev.PropertyID), zap.Error(err))
		}
	case entity.EventPriceChanged:
		if ev.NewPrice < ev.OldPrice {
			if err := uc.NotifyPriceDrop(ctx, ev.Property, ev.OldPrice, ev.NewPrice); err != nil {
				uc.logger.Error("price-drop alert fan-out failed",
					zap.String("property_id", ev.PropertyID), zap.Error(err))
			}
		}
	}
}

// MatchNewListing evaluates one newly active listing against every active
// instant-alert saved search, entirely in memory. A saved search whose stored
// filters fail to parse is skipped and logged; it never aborts the batch.
func (uc *AlertUseCase) MatchNewListing(ctx context.Context, p *entity.Property) error {
	if p == nil || !p.Searchable() {
		return nil
	}

	return uc.searches.ForEachAlertable(ctx, entity.FrequencyInstant, uc.chunkSize, func(chunk []*entity.SavedSearch) error {
		for _, s := range chunk {
			if !s.AlertNewListings {
				continue
			}
			fs, err := decodeFilters(s)
			if err != nil {
				uc.logger.Warn("skipping saved search with malformed filters",
					zap.String("search_id", s.ID), zap.String("user_id", s.UserID), zap.Error(err))
				continue
			}
			if !search.Matches(p, fs) {
				continue
			}

			payload := notifier.NewListingPayload{
				SearchID:   s.ID,
				SearchName: s.Name,
				Property:   p,
			}
			if err := uc.dispatcher.Enqueue(ctx, notifier.AlertNewListing, s.UserID, payload); err != nil {
				uc.logger.Warn("failed to enqueue new-listing alert",
					zap.String("search_id", s.ID), zap.String("user_id", s.UserID), zap.Error(err))
				continue
			}

			now := time.Now()
			s.LastAlertedAt = &now
			if err := uc.searches.Update(ctx, s); err != nil {
				uc.logger.Warn("failed to stamp last_alerted_at",
					zap.String("search_id", s.ID), zap.Error(err))
			}
		}
		return nil
	})
}

// NotifyPriceDrop alerts every user who favorited the listing.
func (uc *AlertUseCase) NotifyPriceDrop(ctx context.Context, p *entity.Property, oldPrice, newPrice int64) error {
	if p == nil {
		return nil
	}
	userIDs, err := uc.favorites.ListFavoriters(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("listing favoriters of %s: %w", p.ID, err)
	}

	payload := notifier.PriceDropPayload{
		Property:         p,
		OldPrice:         oldPrice,
		NewPrice:         newPrice,
		PriceDropPercent: entity.PriceChangePercent(oldPrice, newPrice),
	}
	for _, uid := range userIDs {
		if err := uc.dispatcher.Enqueue(ctx, notifier.AlertPriceDrop, uid, payload); err != nil {
			uc.logger.Warn("failed to enqueue price-drop alert",
				zap.String("property_id", p.ID), zap.String("user_id", uid), zap.Error(err))
		}
	}
	return nil
}

// RunDigest is the periodic daily/weekly sweep. Unlike the instant path it
// re-runs the full composer, scoped to listings posted since the last cycle,
// and batches everything into one digest notification per user.
func (uc *AlertUseCase) RunDigest(ctx context.Context, freq entity.NotificationFrequency) error {
	days := 1
	if freq == entity.FrequencyWeekly {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	sectionsByUser := make(map[string][]notifier.DigestSection)

	err := uc.searches.ForEachAlertable(ctx, freq, uc.chunkSize, func(chunk []*entity.SavedSearch) error {
		for _, s := range chunk {
			section, err := uc.digestSection(ctx, s, days)
			if err != nil {
				uc.logger.Warn("skipping saved search in digest",
					zap.String("search_id", s.ID), zap.Error(err))
				continue
			}
			if section != nil {
				sectionsByUser[s.UserID] = append(sectionsByUser[s.UserID], *section)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for uid, sections := range sectionsByUser {
		payload := notifier.DigestPayload{
			Frequency:  freq,
			Sections:   sections,
			PriceDrops: uc.recentDropsForUser(ctx, uid, since),
		}
		if err := uc.dispatcher.Enqueue(ctx, notifier.AlertDigest, uid, payload); err != nil {
			uc.logger.Warn("failed to enqueue digest", zap.String("user_id", uid), zap.Error(err))
		}
	}
	return nil
}

// digestSection runs one saved search scoped to the digest window. Returns
// nil when nothing new matched.
func (uc *AlertUseCase) digestSection(ctx context.Context, s *entity.SavedSearch, days int) (*notifier.DigestSection, error) {
	var params search.Params
	if err := json.Unmarshal(s.Filters, &params); err != nil {
		return nil, fmt.Errorf("decoding stored filters: %w", err)
	}
	params.PostedWithinDays = &days
	params.Page = 1
	params.PageSize = digestPageSize

	fs, err := search.BuildFilterSet(params)
	if err != nil {
		return nil, fmt.Errorf("building filter set: %w", err)
	}

	items, total, err := uc.properties.ExecuteSearch(ctx, search.Compose(fs))
	if err != nil {
		return nil, fmt.Errorf("executing digest search: %w", err)
	}

	now := time.Now()
	s.LastCheckedAt = &now
	s.ResultCount = total
	if total > 0 {
		s.LastAlertedAt = &now
	}
	if err := uc.searches.Update(ctx, s); err != nil {
		uc.logger.Warn("failed to update saved search after digest run",
			zap.String("search_id", s.ID), zap.Error(err))
	}

	if total == 0 {
		return nil, nil
	}
	return &notifier.DigestSection{
		SearchID:   s.ID,
		SearchName: s.Name,
		NewCount:   total,
		Properties: items,
	}, nil
}

func (uc *AlertUseCase) recentDropsForUser(ctx context.Context, userID string, since time.Time) []notifier.PriceDropPayload {
	favs, err := uc.favorites.ListByUser(ctx, userID)
	if err != nil {
		uc.logger.Warn("failed to list favorites for digest", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if len(favs) == 0 {
		return nil
	}

	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID
	}
	drops, err := uc.prices.ListDropsSince(ctx, ids, since)
	if err != nil {
		uc.logger.Warn("failed to list price drops for digest", zap.String("user_id", userID), zap.Error(err))
		return nil
	}

	payloads := make([]notifier.PriceDropPayload, 0, len(drops))
	for _, d := range drops {
		p, err := uc.properties.FindByID(ctx, d.PropertyID)
		if err != nil {
			continue
		}
		payloads = append(payloads, notifier.PriceDropPayload{
			Property:         p,
			OldPrice:         d.OldPrice,
			NewPrice:         d.NewPrice,
			PriceDropPercent: d.ChangePercent,
		})
	}
	return payloads
}

func decodeFilters(s *entity.SavedSearch) (*search.FilterSet, error) {
	var params search.Params
	if err := json.Unmarshal(s.Filters, &params); err != nil {
		return nil, fmt.Errorf("decoding stored filters: %w", err)
	}
	fs, err := search.BuildFilterSet(params)
	if err != nil {
		return nil, fmt.Errorf("building filter set: %w", err)
	}
	return fs, nil
}
