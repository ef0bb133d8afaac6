package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/search"
)

const propertiesCollection = "properties"

type PropertyMongoRepository struct {
	db *mongo.Database
}

func NewPropertyMongoRepository(client *mongo.Client, dbName string) *PropertyMongoRepository {
	return &PropertyMongoRepository{db: client.Database(dbName)}
}

func (r *PropertyMongoRepository) coll() *mongo.Collection {
	return r.db.Collection(propertiesCollection)
}

func (r *PropertyMongoRepository) Create(ctx context.Context, p *entity.Property) error {
	if _, err := r.coll().InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create property in mongo: %w", err)
	}
	return nil
}

func (r *PropertyMongoRepository) Update(ctx context.Context, p *entity.Property) error {
	res, err := r.coll().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update property in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyMongoRepository) FindByID(ctx context.Context, id string) (*entity.Property, error) {
	var p entity.Property
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property by id from mongo: %w", err)
	}
	return &p, nil
}

func (r *PropertyMongoRepository) FindBySlug(ctx context.Context, slug string) (*entity.Property, error) {
	var p entity.Property
	err := r.coll().FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property by slug from mongo: %w", err)
	}
	return &p, nil
}

// ExecuteSearch runs the composed query. Plain queries use Find plus
// CountDocuments over the same predicate; distance ordering needs the
// aggregation pipeline because $geoNear must be the first stage.
func (r *PropertyMongoRepository) ExecuteSearch(ctx context.Context, q *search.Query) ([]*entity.Property, int64, error) {
	if q.GeoNear != nil {
		return r.executeGeoNear(ctx, q)
	}

	findOptions := options.Find().
		SetSkip(q.Skip).
		SetLimit(q.Limit).
		SetSort(q.Sort)
	if q.TextScore {
		findOptions.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := r.coll().Find(ctx, q.Filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute search in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*entity.Property
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search results from mongo: %w", err)
	}

	total, err := r.coll().CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results in mongo: %w", err)
	}

	return items, total, nil
}

func (r *PropertyMongoRepository) executeGeoNear(ctx context.Context, q *search.Query) ([]*entity.Property, int64, error) {
	geoNear := bson.M{
		"near": bson.M{
			"type":        "Point",
			"coordinates": []float64{q.GeoNear.Lng, q.GeoNear.Lat},
		},
		"key":           "location",
		"distanceField": "distance",
		// Query distances are kept in kilometers.
		"distanceMultiplier": 0.001,
		"spherical":          true,
		"query":              q.Filter,
	}
	if q.GeoNear.MaxMeters != nil {
		geoNear["maxDistance"] = *q.GeoNear.MaxMeters
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$geoNear", Value: geoNear}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "distance", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.D{{Key: "$skip", Value: q.Skip}},
				bson.D{{Key: "$limit", Value: q.Limit}},
			},
			"total": bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			},
		}}},
	}

	cursor, err := r.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute geo search in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var pages []struct {
		Items []*entity.Property `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, 0, fmt.Errorf("failed to decode geo search results from mongo: %w", err)
	}
	if len(pages) == 0 {
		return nil, 0, nil
	}

	var total int64
	if len(pages[0].Total) > 0 {
		total = pages[0].Total[0].Count
	}
	return pages[0].Items, total, nil
}

func (r *PropertyMongoRepository) IncrementViewCount(ctx context.Context, id string) error {
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment view count in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyMongoRepository) IncrementFavoriteCount(ctx context.Context, id string, delta int) error {
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"favorite_count": delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust favorite count in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrPropertyNotFound
	}
	return nil
}
