package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/davidjirca/dreamhome/internal/entity"
)

const analyticsCollection = "search_analytics"

type AnalyticsMongoRepository struct {
	db *mongo.Database
}

func NewAnalyticsMongoRepository(client *mongo.Client, dbName string) *AnalyticsMongoRepository {
	return &AnalyticsMongoRepository{db: client.Database(dbName)}
}

func (r *AnalyticsMongoRepository) coll() *mongo.Collection {
	return r.db.Collection(analyticsCollection)
}

func (r *AnalyticsMongoRepository) Insert(ctx context.Context, rec *entity.SearchRecord) error {
	if _, err := r.coll().InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert search record in mongo: %w", err)
	}
	return nil
}

// TopSearches groups recorded search texts over the trailing window. Records
// without a text query are excluded, they carry no trending signal.
func (r *AnalyticsMongoRepository) TopSearches(ctx context.Context, since time.Time, limit int) ([]entity.PopularSearch, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"created_at":  bson.M{"$gte": since},
			"search_text": bson.M{"$ne": ""},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$search_text",
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top searches in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var top []entity.PopularSearch
	if err := cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top searches from mongo: %w", err)
	}
	return top, nil
}
