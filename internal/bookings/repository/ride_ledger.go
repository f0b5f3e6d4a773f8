package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "seatwise/internal/bookings/errors"
	"seatwise/pkg/config"
	"seatwise/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RideCollection = "Rides"

// RideLedgerRepository is the booking side's view of rides. It reads rides
// and adjusts available seats through conditional writes; ride creation and
// lifecycle belong to the rides service.
type RideLedgerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Ride, error)
	DecrementAvailable(ctx context.Context, rideID string, n int) error
	IncrementAvailable(ctx context.Context, rideID string, n int) error
}

type mongoRideLedgerRepository struct {
	collection *mongo.Collection
}

func NewMongoRideLedgerRepository(cfg *config.Config) RideLedgerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRideLedgerRepository{
		collection: db.Collection(RideCollection),
	}
}

func (r *mongoRideLedgerRepository) FindByID(ctx context.Context, id string) (*model.Ride, error) {
	var ride model.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to find ride: %w", err)
	}
	return &ride, nil
}

// DecrementAvailable takes n seats off the ride's availability. The filter
// requires an active ride with at least n seats left, so overselling loses
// at the match rather than after a read.
func (r *mongoRideLedgerRepository) DecrementAvailable(ctx context.Context, rideID string, n int) error {
	filter := bson.M{
		"_id":             rideID,
		"status":          model.RideActive,
		"available_seats": bson.M{"$gte": n},
	}
	update := bson.M{"$inc": bson.M{"available_seats": -n}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement available seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrInsufficientCapacity
	}
	return nil
}

// IncrementAvailable returns n seats to the ride. Cancellations release
// capacity on completed or cancelled rides too, so only existence is checked.
func (r *mongoRideLedgerRepository) IncrementAvailable(ctx context.Context, rideID string, n int) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": rideID},
		bson.M{"$inc": bson.M{"available_seats": n}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment available seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrRideNotFound
	}
	return nil
}
