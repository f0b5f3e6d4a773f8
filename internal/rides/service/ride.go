package service

import (
	"context"
	"errors"
	"fmt"
	"seatwise/internal/events"
	"seatwise/internal/layout"
	"seatwise/internal/pricing"
	rideserrors "seatwise/internal/rides/errors"
	"seatwise/internal/rides/repository"
	"seatwise/internal/rides/validator"
	"seatwise/pkg/config"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/model"
	"sync"

	"github.com/google/uuid"
)

// RideService manages the ride lifecycle and exposes the derived views other
// services and clients read: the seat layout and the live seat pricing.
type RideService interface {
	Create(ctx context.Context, ride *model.Ride) error
	GetByID(ctx context.Context, id string) (*model.Ride, error)
	GetAll(ctx context.Context, status model.RideStatus, limit int, offset int64) ([]*model.Ride, int64, error)
	Cancel(ctx context.Context, id string) (*model.Ride, error)
	Complete(ctx context.Context, id string) (*model.Ride, error)
	Layout(ctx context.Context, id string) (*model.VehicleLayout, error)
	SeatPricing(ctx context.Context, id string) (map[string]float64, error)
}

type rideService struct {
	repo      repository.RideRepository
	validator *validator.RideValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewRideService(
	repo repository.RideRepository,
	validator *validator.RideValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RideService {
	return &rideService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create opens a ride for booking. Availability starts at the bookable seat
// count (the driver seat is never sold) and is owned by the booking ledger
// from then on.
func (s *rideService) Create(ctx context.Context, ride *model.Ride) error {
	ride.ID = uuid.New().String()
	ride.Status = model.RideActive

	l, err := layout.Get(ride.TotalSeats)
	if err != nil {
		return err
	}
	ride.AvailableSeats = l.BookableSeats

	if err := s.validator.Validate(ride); err != nil {
		s.cfg.Log.Warn("Ride validation failed", "error", err)
		return apperrors.Validation("Ride validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, ride); err != nil {
		s.cfg.Log.Error("Failed to create ride", "error", err)
		return apperrors.Internal("Failed to create ride", err)
	}

	s.cfg.Log.Info("Ride created",
		"id", ride.ID,
		"origin", ride.Origin,
		"destination", ride.Destination,
		"total_seats", ride.TotalSeats,
		"available_seats", ride.AvailableSeats,
		"seat_assignment", ride.SeatAssignment,
	)
	s.publisher.RideCreated(ctx, ride)
	return nil
}

func (s *rideService) GetByID(ctx context.Context, id string) (*model.Ride, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Ride ID cannot be empty")
	}

	ride, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rideserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ride", id)
		}
		return nil, apperrors.Internal("Failed to retrieve ride", err)
	}
	return ride, nil
}

func (s *rideService) GetAll(ctx context.Context, status model.RideStatus, limit int, offset int64) ([]*model.Ride, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rides []*model.Ride
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rides", "error", errCount)
			errCount = apperrors.Internal("Failed to count rides", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rides, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rides", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rides", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rides, count, nil
}

func (s *rideService) Cancel(ctx context.Context, id string) (*model.Ride, error) {
	return s.transition(ctx, id, model.RideCancelled)
}

func (s *rideService) Complete(ctx context.Context, id string) (*model.Ride, error) {
	return s.transition(ctx, id, model.RideCompleted)
}

func (s *rideService) transition(ctx context.Context, id string, to model.RideStatus) (*model.Ride, error) {
	ride, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ride.Status == to {
		return ride, nil
	}
	if ride.Status != model.RideActive {
		return nil, apperrors.State(fmt.Sprintf("Ride is %s and cannot become %s", ride.Status, to))
	}

	if err := s.repo.UpdateStatus(ctx, id, []model.RideStatus{model.RideActive}, to); err != nil {
		if errors.Is(err, rideserrors.ErrNotFound) {
			return nil, apperrors.State("Ride changed state, please retry")
		}
		return nil, apperrors.Internal("Failed to update ride status", err)
	}

	ride.Status = to
	s.cfg.Log.Info("Ride status changed", "id", id, "status", to)
	return ride, nil
}

func (s *rideService) Layout(ctx context.Context, id string) (*model.VehicleLayout, error) {
	ride, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l, err := layout.Get(ride.TotalSeats)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve ride layout", err)
	}
	return l, nil
}

// SeatPricing returns the current price of every bookable seat, derived from
// the ride's availability at read time. Prices are a quote, not a hold: the
// booking ledger fixes the final price when the reservation commits.
func (s *rideService) SeatPricing(ctx context.Context, id string) (map[string]float64, error) {
	ride, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ride.SeatAssignment {
		return nil, apperrors.InvalidInput("This ride does not assign seats")
	}

	l, err := layout.Get(ride.TotalSeats)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve ride layout", err)
	}

	pricingCfg := pricing.DefaultConfig()
	pricingCfg.MinPrice = s.cfg.PricingMinPrice
	pricingCfg.MaxPrice = s.cfg.PricingMaxPrice

	return pricing.PriceSeats(l, ride.BasePrice, ride.OccupancyRatio(), pricingCfg)
}
