package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentabook/pkg/config"
	"rentabook/pkg/model"
)

const PropertyLocksCollectionName = "Property_locks"

// PropertyLockRepository stores advisory lease documents, one per locked key.
// It satisfies lock.Store.
type PropertyLockRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewPropertyLockRepository(cfg *config.Config) *PropertyLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &PropertyLockRepository{
		collection: db.Collection(PropertyLocksCollectionName),
		now:        time.Now,
	}
}

// TryAcquire inserts the lease, or takes over one whose holder let it expire.
// The unique _id index makes concurrent inserts race safely.
func (r *PropertyLockRepository) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	now := r.now().UTC()
	lease := &model.PropertyLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lease)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to insert lock %s: %w", key, err)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{
			"owner":      owner,
			"expires_at": lease.ExpiresAt,
			"created_at": now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to take over lock %s: %w", key, err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *PropertyLockRepository) Release(ctx context.Context, key, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
