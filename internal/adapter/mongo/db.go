package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davidjirca/dreamhome/internal/config"
)

func NewMongoDBConnection(cfg *config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)

	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	if cfg.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the search path depends on: the compound
// text index, the 2dsphere index for geo predicates, and lookup indexes for
// saved searches and favorites.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	propertyIndexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "city", Value: "text"},
			{Key: "neighborhood", Value: "text"},
			{Key: "address", Value: "text"},
		}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "price", Value: 1}}},
	}
	if _, err := db.Collection(propertiesCollection).Indexes().CreateMany(ctx, propertyIndexes); err != nil {
		return fmt.Errorf("creating property indexes: %w", err)
	}

	savedSearchIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "alert_enabled", Value: 1}, {Key: "alert_frequency", Value: 1}}},
	}
	if _, err := db.Collection(savedSearchesCollection).Indexes().CreateMany(ctx, savedSearchIndexes); err != nil {
		return fmt.Errorf("creating saved search indexes: %w", err)
	}

	favoriteIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "property_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "property_id", Value: 1}}},
	}
	if _, err := db.Collection(favoritesCollection).Indexes().CreateMany(ctx, favoriteIndexes); err != nil {
		return fmt.Errorf("creating favorite indexes: %w", err)
	}

	historyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "changed_at", Value: -1}}},
	}
	if _, err := db.Collection(priceHistoryCollection).Indexes().CreateMany(ctx, historyIndexes); err != nil {
		return fmt.Errorf("creating price history indexes: %w", err)
	}

	analyticsIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "search_text", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection(analyticsCollection).Indexes().CreateMany(ctx, analyticsIndexes); err != nil {
		return fmt.Errorf("creating analytics indexes: %w", err)
	}

	return nil
}
