package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/repository"
)

// EventPublisher fans mutation events out to other interested processes.
// Publishing is best-effort: events are not durably queued or retried.
type EventPublisher interface {
	PublishPropertyEvent(ctx context.Context, ev *entity.PropertyEvent) error
}

// PhotoStorage uploads listing photos and returns their public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

type CreatePropertyInput struct {
	Title        string
	Description  string
	PropertyType entity.PropertyType
	ListingType  entity.ListingType

	Price      int64
	Currency   string
	Negotiable bool

	TotalArea   int64
	UsableArea  int64
	Rooms       int
	Bedrooms    int
	Bathrooms   int
	Floor       *int
	TotalFloors *int
	YearBuilt   *int

	Balconies    int
	ParkingSpots int
	HasGarage    bool
	HasTerrace   bool
	HasGarden    bool
	IsFurnished  bool
	HeatingType  string
	EnergyRating string

	Address      string
	City         string
	County       string
	PostalCode   string
	Neighborhood string
	Latitude     *float64
	Longitude    *float64
}

// UpdatePropertyInput carries partial updates; nil fields are left untouched.
type UpdatePropertyInput struct {
	Title       *string
	Description *string
	Price       *int64
	Negotiable  *bool
	TotalArea   *int64
	Rooms       *int
	Bedrooms    *int
	Bathrooms   *int
	HeatingType *string
	IsFurnished *bool
}

type PropertyUseCase struct {
	repo        repository.PropertyRepository
	prices      repository.PriceHistoryRepository
	invalidator *Invalidator
	publisher   EventPublisher
	photos      PhotoStorage
	expiryDays  int
	logger      *zap.Logger
}

func NewPropertyUseCase(
	repo repository.PropertyRepository,
	prices repository.PriceHistoryRepository,
	invalidator *Invalidator,
	publisher EventPublisher,
	photos PhotoStorage,
	expiryDays int,
	logger *zap.Logger,
) *PropertyUseCase {
	return &PropertyUseCase{
		repo:        repo,
		prices:      prices,
		invalidator: invalidator,
		publisher:   publisher,
		photos:      photos,
		expiryDays:  expiryDays,
		logger:      logger,
	}
}

func (uc *PropertyUseCase) CreateProperty(ctx context.Context, ownerID string, in CreatePropertyInput) (*entity.Property, error) {
	now := time.Now()
	id := uuid.NewString()

	p := &entity.Property{
		ID:           id,
		OwnerID:      ownerID,
		Title:        in.Title,
		Description:  in.Description,
		PropertyType: in.PropertyType,
		ListingType:  in.ListingType,
		Status:       entity.StatusDraft,
		Price:        in.Price,
		PricePerSqm:  entity.PricePerSqm(in.Price, in.TotalArea),
		Currency:     in.Currency,
		Negotiable:   in.Negotiable,
		TotalArea:    in.TotalArea,
		UsableArea:   in.UsableArea,
		Rooms:        in.Rooms,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Floor:        in.Floor,
		TotalFloors:  in.TotalFloors,
		YearBuilt:    in.YearBuilt,
		Balconies:    in.Balconies,
		ParkingSpots: in.ParkingSpots,
		HasGarage:    in.HasGarage,
		HasTerrace:   in.HasTerrace,
		HasGarden:    in.HasGarden,
		IsFurnished:  in.IsFurnished,
		HeatingType:  in.HeatingType,
		EnergyRating: in.EnergyRating,
		Address:      in.Address,
		City:         in.City,
		County:       in.County,
		PostalCode:   in.PostalCode,
		Neighborhood: in.Neighborhood,
		Photos:       []string{},
		Slug:         entity.MakeSlug(in.Title, id),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Latitude != nil && in.Longitude != nil {
		p.Location = entity.NewGeoPoint(*in.Latitude, *in.Longitude)
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Error("failed to create property", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventCreated,
		PropertyID: p.ID,
		Property:   p,
		OccurredAt: now,
	})
	return p, nil
}

func (uc *PropertyUseCase) UpdateProperty(ctx context.Context, id, userID string, in UpdatePropertyInput) (*entity.Property, error) {
	p, err := uc.ownedProperty(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	oldPrice := p.Price
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Negotiable != nil {
		p.Negotiable = *in.Negotiable
	}
	if in.TotalArea != nil {
		p.TotalArea = *in.TotalArea
	}
	if in.Rooms != nil {
		p.Rooms = *in.Rooms
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.HeatingType != nil {
		p.HeatingType = *in.HeatingType
	}
	if in.IsFurnished != nil {
		p.IsFurnished = *in.IsFurnished
	}
	if in.Price != nil || in.TotalArea != nil {
		p.PricePerSqm = entity.PricePerSqm(p.Price, p.TotalArea)
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		uc.logger.Error("failed to update property", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}

	if p.Price != oldPrice {
		uc.recordPriceChange(ctx, p, oldPrice)
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventUpdated,
		PropertyID: p.ID,
		Property:   p,
		OccurredAt: p.UpdatedAt,
	})
	return p, nil
}

func (uc *PropertyUseCase) recordPriceChange(ctx context.Context, p *entity.Property, oldPrice int64) {
	change := &entity.PriceChange{
		ID:            uuid.NewString(),
		PropertyID:    p.ID,
		OldPrice:      oldPrice,
		NewPrice:      p.Price,
		ChangePercent: entity.PriceChangePercent(oldPrice, p.Price),
		ChangedAt:     time.Now(),
	}
	if err := uc.prices.Insert(ctx, change); err != nil {
		uc.logger.Warn("failed to record price change", zap.String("property_id", p.ID), zap.Error(err))
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventPriceChanged,
		PropertyID: p.ID,
		Property:   p,
		OldPrice:   oldPrice,
		NewPrice:   p.Price,
		OccurredAt: change.ChangedAt,
	})
}

// PublishProperty activates a draft listing. A listing without photos cannot
// go live.
func (uc *PropertyUseCase) PublishProperty(ctx context.Context, id, userID string) (*entity.Property, error) {
	p, err := uc.ownedProperty(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if len(p.Photos) == 0 {
		return nil, entity.ErrNoPhotos
	}

	now := time.Now()
	expires := now.AddDate(0, 0, uc.expiryDays)
	p.Status = entity.StatusActive
	p.PublishedAt = &now
	p.ExpiresAt = &expires
	p.UpdatedAt = now

	if err := uc.repo.Update(ctx, p); err != nil {
		uc.logger.Error("failed to publish property", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventPublished,
		PropertyID: p.ID,
		Property:   p,
		OccurredAt: now,
	})
	return p, nil
}

// UnpublishProperty takes a listing off the market with a terminal status
// (sold, rented or expired).
func (uc *PropertyUseCase) UnpublishProperty(ctx context.Context, id, userID string, status entity.PropertyStatus) (*entity.Property, error) {
	p, err := uc.ownedProperty(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	p.Status = status
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		uc.logger.Error("failed to unpublish property", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventUnpublished,
		PropertyID: p.ID,
		Property:   p,
		OccurredAt: p.UpdatedAt,
	})
	return p, nil
}

// DeleteProperty soft-deletes: the row survives with deleted_at set.
func (uc *PropertyUseCase) DeleteProperty(ctx context.Context, id, userID string) error {
	p, err := uc.ownedProperty(ctx, id, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	p.DeletedAt = &now
	p.Status = entity.StatusExpired
	p.UpdatedAt = now
	if err := uc.repo.Update(ctx, p); err != nil {
		uc.logger.Error("failed to delete property", zap.String("property_id", id), zap.Error(err))
		return err
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventDeleted,
		PropertyID: p.ID,
		OccurredAt: now,
	})
	return nil
}

func (uc *PropertyUseCase) UploadPhoto(ctx context.Context, id, userID, filename string, data []byte, contentType string) (*entity.Property, error) {
	if uc.photos == nil {
		return nil, errors.New("photo storage is not configured")
	}
	p, err := uc.ownedProperty(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	objectName := p.ID + "/" + uuid.NewString() + "-" + filename
	url, err := uc.photos.Upload(ctx, objectName, data, contentType)
	if err != nil {
		uc.logger.Error("photo upload failed", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}

	p.Photos = append(p.Photos, url)
	p.PhotoCount = len(p.Photos)
	if p.MainPhoto == "" {
		p.MainPhoto = url
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.emit(ctx, &entity.PropertyEvent{
		Kind:       entity.EventUpdated,
		PropertyID: p.ID,
		Property:   p,
		OccurredAt: p.UpdatedAt,
	})
	return p, nil
}

func (uc *PropertyUseCase) ownedProperty(ctx context.Context, id, userID string) (*entity.Property, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		uc.logger.Warn("forbidden property mutation",
			zap.String("property_id", id),
			zap.String("owner_id", p.OwnerID),
			zap.String("user_id", userID),
		)
		return nil, entity.ErrForbidden
	}
	return p, nil
}

// emit applies cache invalidation synchronously, before the mutation's caller
// sees success, then fans the event out to other processes best-effort.
func (uc *PropertyUseCase) emit(ctx context.Context, ev *entity.PropertyEvent) {
	uc.invalidator.OnMutation(ctx, ev)

	if uc.publisher != nil {
		if err := uc.publisher.PublishPropertyEvent(ctx, ev); err != nil {
			uc.logger.Warn("failed to publish property event",
				zap.String("property_id", ev.PropertyID),
				zap.String("event", string(ev.Kind)),
				zap.Error(err),
			)
		}
	}
}
