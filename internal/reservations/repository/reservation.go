package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/config"
	mongotx "rentabook/pkg/db/mongo"
	"rentabook/pkg/model"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// Save replaces the mutable fields of an existing reservation if its stored
	// version still matches reservation.Version, then bumps the version.
	Save(ctx context.Context, reservation *model.Reservation) error
	ListNonCancelledByProperty(ctx context.Context, propertyID string) ([]*model.Reservation, error)
	FindByProperty(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, error)
	CountByProperty(ctx context.Context, propertyID string, from, to *time.Time) (int64, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	reservation.Version = 1

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) Save(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(reservation.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, reservation.ID)
	}

	reservation.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": objectID, "version": reservation.Version}
	result, err := r.collection.UpdateOne(ctx, filter, saveUpdate(reservation))
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to check reservation: %w", err)
		}
		if exists == 0 {
			return reservationserrors.ErrNotFound
		}
		return reservationserrors.ErrVersionConflict
	}

	reservation.Version++
	return nil
}

// saveUpdate sets the mutable fields and bumps the version. The ledger is
// always written as an array.
func saveUpdate(reservation *model.Reservation) bson.M {
	payments := reservation.Payments
	if payments == nil {
		payments = []model.Payment{}
	}
	return bson.M{
		"$set": bson.M{
			"start_date":     reservation.StartDate,
			"end_date":       reservation.EndDate,
			"guest_count":    reservation.GuestCount,
			"state":          reservation.State,
			"deposit_paid":   reservation.DepositPaid,
			"payments":       payments,
			"notes":          reservation.Notes,
			"confirmed_at":   reservation.ConfirmedAt,
			"cancelled_at":   reservation.CancelledAt,
			"checked_out_at": reservation.CheckedOutAt,
			"updated_at":     reservation.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
}

func (r *mongoReservationRepository) ListNonCancelledByProperty(ctx context.Context, propertyID string) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"property_id": propertyID,
		"state":       bson.M{"$ne": model.StateCancelled},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoReservationRepository) FindByProperty(
	ctx context.Context,
	propertyID string,
	from, to *time.Time,
	limit int, offset int64,
) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_date", Value: 1}})

	return r.find(ctx, buildPropertyFilter(propertyID, from, to), opts)
}

func (r *mongoReservationRepository) CountByProperty(ctx context.Context, propertyID string, from, to *time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildPropertyFilter(propertyID, from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by property: %w", err)
	}
	return count, nil
}

// buildPropertyFilter matches stays overlapping [from, to). Either bound may be open.
func buildPropertyFilter(propertyID string, from, to *time.Time) bson.M {
	filter := bson.M{"property_id": propertyID}

	if to != nil {
		filter["start_date"] = bson.M{"$lt": *to}
	}
	if from != nil {
		filter["end_date"] = bson.M{"$gt": *from}
	}

	return filter
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*model.Reservation{}
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
