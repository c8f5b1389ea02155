package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentabook/internal/reservations/repository"
	"rentabook/pkg/model"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "rentabook"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper seeds the listings the service reads and clears what it writes.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanReservations removes reservations and stale locks. Validators and
// indexes created by the migration job are kept.
func (m *MongoHelper) CleanReservations(t *testing.T) {
	t.Helper()
	for _, name := range []string{repository.CollectionName, repository.PropertyLocksCollectionName} {
		m.CleanCollection(t, name)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).DeleteMany(ctx, bson.M{}); err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
}

// SeedProperty upserts a listing. A nil capacity leaves it unknown.
func (m *MongoHelper) SeedProperty(t *testing.T, p model.Property) {
	t.Helper()
	m.upsert(t, repository.PropertiesCollectionName, p.ID, p)
}

func (m *MongoHelper) SeedClient(t *testing.T, id string) {
	t.Helper()
	m.upsert(t, repository.ClientsCollectionName, id, bson.M{"_id": id, "name": "Integration Client"})
}

func (m *MongoHelper) upsert(t *testing.T, collectionName, id string, doc any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.Database.Collection(collectionName).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		t.Fatalf("failed to seed %s/%s: %v", collectionName, id, err)
	}
}
