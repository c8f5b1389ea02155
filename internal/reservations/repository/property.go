package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/config"
	"rentabook/pkg/model"
)

const (
	PropertiesCollectionName = "Properties"
	ClientsCollectionName    = "Clients"
)

// PropertyRepository reads listings owned by the CRUD layer.
type PropertyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

// ClientRepository checks client references owned by the CRUD layer.
type ClientRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(PropertiesCollectionName),
	}
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"active":           1,
		"temporary_rental": 1,
		"capacity":         1,
	})

	var property model.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": idFilter(id)}, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

type mongoClientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoClientRepository(cfg *config.Config) ClientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClientRepository{
		cfg:        cfg,
		collection: db.Collection(ClientsCollectionName),
	}
}

func (r *mongoClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": idFilter(id)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up client: %w", err)
	}
	return count > 0, nil
}
