package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidjirca/dreamhome/internal/entity"
)

const savedSearchesCollection = "saved_searches"

type SavedSearchMongoRepository struct {
	db *mongo.Database
}

func NewSavedSearchMongoRepository(client *mongo.Client, dbName string) *SavedSearchMongoRepository {
	return &SavedSearchMongoRepository{db: client.Database(dbName)}
}

func (r *SavedSearchMongoRepository) coll() *mongo.Collection {
	return r.db.Collection(savedSearchesCollection)
}

func (r *SavedSearchMongoRepository) Create(ctx context.Context, s *entity.SavedSearch) error {
	if _, err := r.coll().InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrDuplicateSearchName
		}
		return fmt.Errorf("failed to create saved search in mongo: %w", err)
	}
	return nil
}

func (r *SavedSearchMongoRepository) Update(ctx context.Context, s *entity.SavedSearch) error {
	res, err := r.coll().ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrDuplicateSearchName
		}
		return fmt.Errorf("failed to update saved search in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrSavedSearchNotFound
	}
	return nil
}

func (r *SavedSearchMongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete saved search from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrSavedSearchNotFound
	}
	return nil
}

func (r *SavedSearchMongoRepository) FindByID(ctx context.Context, id string) (*entity.SavedSearch, error) {
	var s entity.SavedSearch
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrSavedSearchNotFound
		}
		return nil, fmt.Errorf("failed to get saved search by id from mongo: %w", err)
	}
	return &s, nil
}

func (r *SavedSearchMongoRepository) FindByUserAndName(ctx context.Context, userID, name string) (*entity.SavedSearch, error) {
	var s entity.SavedSearch
	err := r.coll().FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrSavedSearchNotFound
		}
		return nil, fmt.Errorf("failed to get saved search by name from mongo: %w", err)
	}
	return &s, nil
}

func (r *SavedSearchMongoRepository) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]*entity.SavedSearch, error) {
	filter := bson.M{"user_id": userID}
	if activeOnly {
		filter["is_active"] = true
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var searches []*entity.SavedSearch
	if err := cursor.All(ctx, &searches); err != nil {
		return nil, fmt.Errorf("failed to decode saved searches from mongo: %w", err)
	}
	return searches, nil
}

func (r *SavedSearchMongoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := r.coll().CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count saved searches in mongo: %w", err)
	}
	return count, nil
}

// ForEachAlertable streams matching searches through a cursor, handing them
// to the callback in chunks so alert sweeps never load the whole collection.
func (r *SavedSearchMongoRepository) ForEachAlertable(ctx context.Context, freq entity.NotificationFrequency, chunkSize int, fn func([]*entity.SavedSearch) error) error {
	filter := bson.M{
		"is_active":       true,
		"alert_enabled":   true,
		"alert_frequency": string(freq),
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetBatchSize(int32(chunkSize))

	cursor, err := r.coll().Find(ctx, filter, findOptions)
	if err != nil {
		return fmt.Errorf("failed to stream alertable searches from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	chunk := make([]*entity.SavedSearch, 0, chunkSize)
	for cursor.Next(ctx) {
		var s entity.SavedSearch
		if err := cursor.Decode(&s); err != nil {
			return fmt.Errorf("failed to decode saved search from mongo: %w", err)
		}
		chunk = append(chunk, &s)
		if len(chunk) == chunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error while streaming saved searches: %w", err)
	}
	if len(chunk) > 0 {
		return fn(chunk)
	}
	return nil
}
