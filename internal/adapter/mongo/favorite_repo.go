package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidjirca/dreamhome/internal/entity"
)

const favoritesCollection = "favorites"

type FavoriteMongoRepository struct {
	db *mongo.Database
}

func NewFavoriteMongoRepository(client *mongo.Client, dbName string) *FavoriteMongoRepository {
	return &FavoriteMongoRepository{db: client.Database(dbName)}
}

func (r *FavoriteMongoRepository) coll() *mongo.Collection {
	return r.db.Collection(favoritesCollection)
}

func (r *FavoriteMongoRepository) Add(ctx context.Context, f *entity.Favorite) error {
	if _, err := r.coll().InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrDuplicateFavorite
		}
		return fmt.Errorf("failed to add favorite in mongo: %w", err)
	}
	return nil
}

func (r *FavoriteMongoRepository) Remove(ctx context.Context, userID, propertyID string) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"user_id": userID, "property_id": propertyID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteMongoRepository) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	count, err := r.coll().CountDocuments(ctx, bson.M{"user_id": userID, "property_id": propertyID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check favorite in mongo: %w", err)
	}
	return count > 0, nil
}

func (r *FavoriteMongoRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll().Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var favorites []*entity.Favorite
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites from mongo: %w", err)
	}
	return favorites, nil
}

func (r *FavoriteMongoRepository) ListFavoriters(ctx context.Context, propertyID string) ([]string, error) {
	values, err := r.coll().Distinct(ctx, "user_id", bson.M{"property_id": propertyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list favoriters from mongo: %w", err)
	}

	userIDs := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			userIDs = append(userIDs, id)
		}
	}
	return userIDs, nil
}
