package repository

import (
	"context"
	"errors"
	"fmt"
	rideserrors "seatwise/internal/rides/errors"
	"seatwise/pkg/config"
	"seatwise/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Rides"
)

type mongoRideRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RideRepository interface {
	Create(ctx context.Context, ride *model.Ride) error
	FindByID(ctx context.Context, id string) (*model.Ride, error)
	FindAll(ctx context.Context, status model.RideStatus, limit int, offset int64) ([]*model.Ride, error)
	Count(ctx context.Context, status model.RideStatus) (int64, error)
	UpdateStatus(ctx context.Context, id string, from []model.RideStatus, to model.RideStatus) error
}

func NewMongoRideRepository(cfg *config.Config) RideRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRideRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRideRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRideRepository) Create(ctx context.Context, ride *model.Ride) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ride.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

func (r *mongoRideRepository) FindByID(ctx context.Context, id string) (*model.Ride, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ride model.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rideserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ride: %w", err)
	}
	return &ride, nil
}

func (r *mongoRideRepository) FindAll(ctx context.Context, status model.RideStatus, limit int, offset int64) ([]*model.Ride, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "departure_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*model.Ride
	if err = cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}
	return rides, nil
}

func (r *mongoRideRepository) Count(ctx context.Context, status model.RideStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}
	return count, nil
}

func (r *mongoRideRepository) UpdateStatus(ctx context.Context, id string, from []model.RideStatus, to model.RideStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}
	update := bson.M{"$set": bson.M{"status": to}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update ride status: %w", err)
	}
	if result.MatchedCount == 0 {
		return rideserrors.ErrNotFound
	}
	return nil
}
