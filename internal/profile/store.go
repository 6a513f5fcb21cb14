package profile

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ridematcher/internal/models"
)

// Store is the user-profile provider consumed by the matching service.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	SetStations(ctx context.Context, userID, baseID, baseLabel, destID, destLabel string) error
	SetIdentity(ctx context.Context, userID, username, firstName, lastName string) error
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
}

// MongoStore implements Store on a MongoDB collection keyed by user id.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a profile store over the given collection.
func NewMongoStore(db *mongo.Database, collectionName string) *MongoStore {
	return &MongoStore{collection: db.Collection(collectionName)}
}

// Get returns the user's profile, or nil when none exists.
func (s *MongoStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// SetStations stores the user's commute route endpoints, creating the
// profile if needed.
func (s *MongoStore) SetStations(ctx context.Context, userID, baseID, baseLabel, destID, destLabel string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"base_stop_id":      baseID,
			"base_stop_label":   baseLabel,
			"destination_id":    destID,
			"destination_label": destLabel,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

// SetIdentity refreshes the display fields from the chat platform.
func (s *MongoStore) SetIdentity(ctx context.Context, userID, username, firstName, lastName string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":   username,
			"first_name": firstName,
			"last_name":  lastName,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

// SetAdmin toggles the admin flag on an existing profile.
func (s *MongoStore) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	update := bson.M{"$set": bson.M{"is_admin": isAdmin, "updated_at": time.Now()}}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}
