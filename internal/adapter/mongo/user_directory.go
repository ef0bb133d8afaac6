package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves user ids to contact emails. User accounts are owned
// by another service; this reads the replicated projection only.
type UserDirectory struct {
	db *mongo.Database
}

func NewUserDirectory(client *mongo.Client, dbName string) *UserDirectory {
	return &UserDirectory{db: client.Database(dbName)}
}

func (d *UserDirectory) EmailFor(ctx context.Context, userID string) (string, error) {
	var doc struct {
		Email string `bson:"email"`
	}
	err := d.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user email in mongo: %w", err)
	}
	if doc.Email == "" {
		return "", ErrUserNotFound
	}
	return doc.Email, nil
}
