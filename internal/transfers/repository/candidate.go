package repository

import (
	"context"
	"errors"
	"fmt"
	transferserrors "seatwise/internal/transfers/errors"
	"seatwise/pkg/config"
	"seatwise/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RideCollection = "Rides"

// CandidateRepository is the matcher's read-only view of rides.
type CandidateRepository interface {
	FindRide(ctx context.Context, id string) (*model.Ride, error)
	FindCandidateRides(ctx context.Context, criteria *model.TransferCriteria, tolerance time.Duration) ([]*model.Ride, error)
}

type mongoCandidateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCandidateRepository(cfg *config.Config) CandidateRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCandidateRepository{
		cfg:        cfg,
		collection: db.Collection(RideCollection),
	}
}

func (r *mongoCandidateRepository) FindRide(ctx context.Context, id string) (*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ride model.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transferserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ride: %w", err)
	}
	return &ride, nil
}

// FindCandidateRides filters to active rides on the same route with at least
// one free seat departing within the tolerance window. Scoring and ordering
// happen in the service.
func (r *mongoCandidateRepository) FindCandidateRides(ctx context.Context, criteria *model.TransferCriteria, tolerance time.Duration) ([]*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":          model.RideActive,
		"origin":          criteria.Origin,
		"destination":     criteria.Destination,
		"available_seats": bson.M{"$gte": 1},
		"departure_time": bson.M{
			"$gte": criteria.DepartureTime.Add(-tolerance),
			"$lte": criteria.DepartureTime.Add(tolerance),
		},
	}
	if criteria.ExcludeRideID != "" {
		filter["_id"] = bson.M{"$ne": criteria.ExcludeRideID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "departure_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*model.Ride
	if err = cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode candidate rides: %w", err)
	}
	return rides, nil
}
