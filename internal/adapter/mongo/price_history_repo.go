package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidjirca/dreamhome/internal/entity"
)

const priceHistoryCollection = "price_history"

type PriceHistoryMongoRepository struct {
	db *mongo.Database
}

func NewPriceHistoryMongoRepository(client *mongo.Client, dbName string) *PriceHistoryMongoRepository {
	return &PriceHistoryMongoRepository{db: client.Database(dbName)}
}

func (r *PriceHistoryMongoRepository) coll() *mongo.Collection {
	return r.db.Collection(priceHistoryCollection)
}

func (r *PriceHistoryMongoRepository) Insert(ctx context.Context, c *entity.PriceChange) error {
	if _, err := r.coll().InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert price change in mongo: %w", err)
	}
	return nil
}

func (r *PriceHistoryMongoRepository) ListDropsSince(ctx context.Context, propertyIDs []string, since time.Time) ([]*entity.PriceChange, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"property_id":    bson.M{"$in": propertyIDs},
		"changed_at":     bson.M{"$gte": since},
		"change_percent": bson.M{"$lt": 0},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "changed_at", Value: -1}})

	cursor, err := r.coll().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list price drops from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var drops []*entity.PriceChange
	if err := cursor.All(ctx, &drops); err != nil {
		return nil, fmt.Errorf("failed to decode price drops from mongo: %w", err)
	}
	return drops, nil
}
