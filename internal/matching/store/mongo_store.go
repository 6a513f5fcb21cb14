package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ridematcher/internal/models"
)

// MongoCandidateStore implements CandidateStore on a MongoDB collection.
// Documents are keyed by user id; a TTL index on expires_at is the
// background reaper, and every read filters expires_at > now so a lagging
// TTL monitor can never surface a stale record.
type MongoCandidateStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoCandidateStore creates a store over the given collection.
func NewMongoCandidateStore(db *mongo.Database, collectionName string) *MongoCandidateStore {
	return &MongoCandidateStore{
		collection: db.Collection(collectionName),
		now:        time.Now,
	}
}

// EnsureIndexes creates the TTL index on expires_at and the multikey index
// on candidates.thread_id. Call once at startup; creation is idempotent.
func (s *MongoCandidateStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "candidates.thread_id", Value: 1}},
		},
	})
	return err
}

func (s *MongoCandidateStore) liveFilter() bson.M {
	return bson.M{"expires_at": bson.M{"$gt": s.now()}}
}

// Upsert atomically replaces the user's record (last writer wins).
func (s *MongoCandidateStore) Upsert(ctx context.Context, set *models.CandidateSet) error {
	_, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"_id": set.UserID},
		set,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes the user's record if present.
func (s *MongoCandidateStore) Delete(ctx context.Context, userID string) (bool, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Get returns the user's live record, or nil when absent or expired.
func (s *MongoCandidateStore) Get(ctx context.Context, userID string) (*models.CandidateSet, error) {
	filter := s.liveFilter()
	filter["_id"] = userID

	var set models.CandidateSet
	err := s.collection.FindOne(ctx, filter).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// FindByThreadIDs returns every other user's live record holding at least
// one of the given thread identifiers. The multikey index on
// candidates.thread_id bounds each lookup by index fan-out instead of
// collection size.
func (s *MongoCandidateStore) FindByThreadIDs(ctx context.Context, threadIDs []string, excludeUserID string) ([]*models.CandidateSet, error) {
	if len(threadIDs) == 0 {
		return nil, nil
	}

	filter := s.liveFilter()
	filter["candidates.thread_id"] = bson.M{"$in": threadIDs}
	filter["_id"] = bson.M{"$ne": excludeUserID}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []*models.CandidateSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// CountActive counts live records.
func (s *MongoCandidateStore) CountActive(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, s.liveFilter())
}
