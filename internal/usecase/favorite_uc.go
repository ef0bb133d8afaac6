package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/repository"
)

type FavoriteUseCase struct {
	favorites  repository.FavoriteRepository
	properties repository.PropertyRepository
	logger     *zap.Logger
}

func NewFavoriteUseCase(favorites repository.FavoriteRepository, properties repository.PropertyRepository, logger *zap.Logger) *FavoriteUseCase {
	return &FavoriteUseCase{favorites: favorites, properties: properties, logger: logger}
}

// Add favorites a property for a user. Duplicates are rejected rather than
// silently absorbed so the client can distinguish the two.
func (uc *FavoriteUseCase) Add(ctx context.Context, userID, propertyID, notes string) (*entity.Favorite, error) {
	if _, err := uc.properties.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	exists, err := uc.favorites.Exists(ctx, userID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("checking existing favorite: %w", err)
	}
	if exists {
		return nil, entity.ErrDuplicateFavorite
	}

	f := &entity.Favorite{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: propertyID,
		Notes:      notes,
		CreatedAt:  time.Now(),
	}
	if err := uc.favorites.Add(ctx, f); err != nil {
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	// Counter drift here is tolerable, the favorite itself is the record.
	if err := uc.properties.IncrementFavoriteCount(ctx, propertyID, 1); err != nil {
		uc.logger.Warn("failed to bump favorite count",
			zap.String("property_id", propertyID), zap.Error(err))
	}
	return f, nil
}

func (uc *FavoriteUseCase) Remove(ctx context.Context, userID, propertyID string) error {
	if err := uc.favorites.Remove(ctx, userID, propertyID); err != nil {
		return err
	}
	if err := uc.properties.IncrementFavoriteCount(ctx, propertyID, -1); err != nil {
		uc.logger.Warn("failed to decrement favorite count",
			zap.String("property_id", propertyID), zap.Error(err))
	}
	return nil
}

func (uc *FavoriteUseCase) List(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	return uc.favorites.ListByUser(ctx, userID)
}
