package repository

import (
	"context"
	"fmt"
	bookingserrors "seatwise/internal/bookings/errors"
	"seatwise/pkg/config"
	"seatwise/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SeatClaimCollection      = "Seat_claims"
	PassengerClaimCollection = "Passenger_claims"
)

// ClaimRepository arbitrates seat and passenger uniqueness. Each claim's _id
// is deterministic, so a concurrent double insert loses on the primary key
// rather than on a racy read. Inserts must run inside the reservation
// transaction so a lost race aborts the whole reservation.
type ClaimRepository interface {
	InsertSeatClaim(ctx context.Context, claim *model.SeatClaim) error
	InsertPassengerClaim(ctx context.Context, claim *model.PassengerClaim) error
	DeleteSeatClaim(ctx context.Context, rideID string, seatID string) error
	DeletePassengerClaim(ctx context.Context, rideID string, passengerID string) error
	FindSeatClaims(ctx context.Context, rideID string) ([]*model.SeatClaim, error)
}

type mongoClaimRepository struct {
	seatClaims      *mongo.Collection
	passengerClaims *mongo.Collection
}

func NewMongoClaimRepository(cfg *config.Config) ClaimRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClaimRepository{
		seatClaims:      db.Collection(SeatClaimCollection),
		passengerClaims: db.Collection(PassengerClaimCollection),
	}
}

func (r *mongoClaimRepository) InsertSeatClaim(ctx context.Context, claim *model.SeatClaim) error {
	claim.ID = model.SeatClaimID(claim.RideID, claim.SeatID)
	claim.CreatedAt = time.Now().UTC()

	if _, err := r.seatClaims.InsertOne(ctx, claim); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrSeatClaimed
		}
		return fmt.Errorf("failed to insert seat claim: %w", err)
	}
	return nil
}

func (r *mongoClaimRepository) InsertPassengerClaim(ctx context.Context, claim *model.PassengerClaim) error {
	claim.ID = model.PassengerClaimID(claim.RideID, claim.PassengerID)
	claim.CreatedAt = time.Now().UTC()

	if _, err := r.passengerClaims.InsertOne(ctx, claim); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrPassengerClaimed
		}
		return fmt.Errorf("failed to insert passenger claim: %w", err)
	}
	return nil
}

func (r *mongoClaimRepository) DeleteSeatClaim(ctx context.Context, rideID string, seatID string) error {
	_, err := r.seatClaims.DeleteOne(ctx, bson.M{"_id": model.SeatClaimID(rideID, seatID)})
	if err != nil {
		return fmt.Errorf("failed to delete seat claim: %w", err)
	}
	return nil
}

func (r *mongoClaimRepository) DeletePassengerClaim(ctx context.Context, rideID string, passengerID string) error {
	_, err := r.passengerClaims.DeleteOne(ctx, bson.M{"_id": model.PassengerClaimID(rideID, passengerID)})
	if err != nil {
		return fmt.Errorf("failed to delete passenger claim: %w", err)
	}
	return nil
}

func (r *mongoClaimRepository) FindSeatClaims(ctx context.Context, rideID string) ([]*model.SeatClaim, error) {
	cursor, err := r.seatClaims.Find(ctx, bson.M{"ride_id": rideID})
	if err != nil {
		return nil, fmt.Errorf("failed to find seat claims: %w", err)
	}
	defer cursor.Close(ctx)

	var claims []*model.SeatClaim
	if err = cursor.All(ctx, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode seat claims: %w", err)
	}
	return claims, nil
}
