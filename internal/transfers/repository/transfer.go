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

const (
	CollectionName = "Transfer_requests"
)

type mongoTransferRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type TransferRepository interface {
	Create(ctx context.Context, request *model.TransferRequest) error
	FindByID(ctx context.Context, id string) (*model.TransferRequest, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.TransferRequest, error)
	UpdateStatus(ctx context.Context, id string, from model.TransferStatus, to model.TransferStatus) error
}

func NewMongoTransferRepository(cfg *config.Config) TransferRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransferRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTransferRepository) Create(ctx context.Context, request *model.TransferRequest) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create transfer request: %w", err)
	}
	return nil
}

func (r *mongoTransferRepository) FindByID(ctx context.Context, id string) (*model.TransferRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var request model.TransferRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transferserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer request: %w", err)
	}
	return &request, nil
}

func (r *mongoTransferRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.TransferRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"original_booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.TransferRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode transfer requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus transitions a request only out of the expected current status,
// so a response and an expiry racing each other resolve to exactly one
// terminal state.
func (r *mongoTransferRepository) UpdateStatus(ctx context.Context, id string, from model.TransferStatus, to model.TransferStatus) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}
	if result.MatchedCount == 0 {
		return transferserrors.ErrNotFound
	}
	return nil
}
