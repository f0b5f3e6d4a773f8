package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "seatwise/internal/bookings/errors"
	"seatwise/internal/bookings/repository"
	"seatwise/internal/bookings/validator"
	"seatwise/internal/events"
	"seatwise/internal/layout"
	"seatwise/internal/notify"
	"seatwise/internal/pricing"
	"seatwise/pkg/config"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/model"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// LedgerService owns the booking lifecycle. A reservation commits the claim
// inserts, the capacity decrement and the booking insert as one transaction;
// there is no point where a booking exists without its seats being held.
type LedgerService interface {
	Reserve(ctx context.Context, req *model.ReserveRequest) (*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByRide(ctx context.Context, rideID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ClaimedSeats(ctx context.Context, rideID string) ([]string, error)
}

type ledgerService struct {
	repo       repository.BookingRepository
	claimRepo  repository.ClaimRepository
	rideRepo   repository.RideLedgerRepository
	validator  *validator.ReserveValidator
	publisher  events.Publisher
	dispatcher notify.Dispatcher
	cfg        *config.Config
}

func NewLedgerService(
	repo repository.BookingRepository,
	claimRepo repository.ClaimRepository,
	rideRepo repository.RideLedgerRepository,
	validator *validator.ReserveValidator,
	publisher events.Publisher,
	dispatcher notify.Dispatcher,
	cfg *config.Config,
) LedgerService {
	return &ledgerService{
		repo:       repo,
		claimRepo:  claimRepo,
		rideRepo:   rideRepo,
		validator:  validator,
		publisher:  publisher,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

func (s *ledgerService) Reserve(ctx context.Context, req *model.ReserveRequest) (*model.Booking, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	ride, err := s.loadBookableRide(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	count, price, err := s.resolveSeatAndPrice(ride, req)
	if err != nil {
		return nil, err
	}

	// Fast path for retries and duplicates. The passenger claim inside the
	// transaction is the real arbiter; this only avoids burning a transaction
	// on a request that will certainly lose.
	if existing, replayErr := s.replayOrConflict(ctx, req); existing != nil || replayErr != nil {
		return existing, replayErr
	}

	booking := &model.Booking{
		ID:             uuid.New().String(),
		RideID:         req.RideID,
		PassengerID:    req.PassengerID,
		SeatID:         req.SeatID,
		SeatsBooked:    count,
		TotalPrice:     price,
		Status:         model.BookingPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.claimRepo.InsertPassengerClaim(sessCtx, &model.PassengerClaim{
			RideID:      req.RideID,
			PassengerID: req.PassengerID,
			BookingID:   booking.ID,
		}); err != nil {
			return err
		}

		if req.SeatID != "" {
			if err := s.claimRepo.InsertSeatClaim(sessCtx, &model.SeatClaim{
				RideID:    req.RideID,
				SeatID:    req.SeatID,
				BookingID: booking.ID,
			}); err != nil {
				return err
			}
		}

		if err := s.rideRepo.DecrementAvailable(sessCtx, req.RideID, count); err != nil {
			return err
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		return s.reserveFailure(ctx, req, ride, err)
	}

	s.cfg.Log.Info("Booking reserved",
		"id", booking.ID,
		"ride_id", booking.RideID,
		"passenger_id", booking.PassengerID,
		"seat_id", booking.SeatID,
		"seats_booked", booking.SeatsBooked,
		"total_price", booking.TotalPrice,
	)
	s.publisher.BookingEvent(ctx, events.EventBookingReserved, booking)
	s.dispatcher.BookingReserved(booking)
	return booking, nil
}

func (s *ledgerService) loadBookableRide(ctx context.Context, rideID string) (*model.Ride, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRideNotFound) {
			return nil, apperrors.NotFoundWithID("Ride", rideID)
		}
		return nil, apperrors.Internal("Failed to retrieve ride", err)
	}
	if ride.Status != model.RideActive {
		return nil, apperrors.State(fmt.Sprintf("Ride is %s and cannot be booked", ride.Status))
	}
	if !ride.DepartureTime.After(time.Now()) {
		return nil, apperrors.State("Ride has already departed")
	}
	return ride, nil
}

// resolveSeatAndPrice fixes the held seat count and the total price before
// the reservation runs. The price is computed from availability as seen now
// and is never recomputed afterwards.
func (s *ledgerService) resolveSeatAndPrice(ride *model.Ride, req *model.ReserveRequest) (int, float64, error) {
	pricingCfg := s.pricingConfig()

	if ride.SeatAssignment {
		if req.SeatID == "" {
			return 0, 0, apperrors.InvalidInput("This ride requires a seat selection")
		}

		l, err := layout.Get(ride.TotalSeats)
		if err != nil {
			return 0, 0, apperrors.Internal("Failed to resolve ride layout", err)
		}
		seat, ok := l.Seat(req.SeatID)
		if !ok {
			return 0, 0, apperrors.Validation("Unknown seat for this ride", map[string]any{"seat_id": req.SeatID})
		}
		if !seat.Bookable {
			return 0, 0, apperrors.Validation("Seat is not bookable", map[string]any{"seat_id": req.SeatID})
		}

		prices, err := pricing.PriceSeats(l, ride.BasePrice, ride.OccupancyRatio(), pricingCfg)
		if err != nil {
			return 0, 0, err
		}
		return 1, prices[req.SeatID], nil
	}

	if req.SeatID != "" {
		return 0, 0, apperrors.InvalidInput("This ride does not assign seats")
	}

	price, err := pricing.PriceCount(ride.BasePrice, req.SeatsBooked, ride.OccupancyRatio(), pricingCfg)
	if err != nil {
		return 0, 0, err
	}
	return req.SeatsBooked, price, nil
}

// replayOrConflict resolves a passenger who already holds an active booking
// on the ride: same idempotency key means the request is a retry and gets the
// original booking back; anything else is a duplicate and conflicts.
func (s *ledgerService) replayOrConflict(ctx context.Context, req *model.ReserveRequest) (*model.Booking, error) {
	existing, err := s.repo.FindActiveByRideAndPassenger(ctx, req.RideID, req.PassengerID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	if req.IdempotencyKey != "" && existing.IdempotencyKey == req.IdempotencyKey {
		s.cfg.Log.Info("Reservation replayed",
			"id", existing.ID,
			"ride_id", req.RideID,
			"passenger_id", req.PassengerID,
		)
		return existing, nil
	}
	return nil, apperrors.Conflict("Passenger already holds a booking on this ride", apperrors.ReasonAlreadyBooked)
}

// reserveFailure translates transaction failures into caller-facing results.
// A lost passenger claim race goes back through the replay path so a
// concurrent retry with the same idempotency key still gets its booking.
func (s *ledgerService) reserveFailure(ctx context.Context, req *model.ReserveRequest, ride *model.Ride, err error) (*model.Booking, error) {
	switch {
	case errors.Is(err, bookingserrors.ErrPassengerClaimed):
		if existing, replayErr := s.replayOrConflict(ctx, req); existing != nil || replayErr != nil {
			return existing, replayErr
		}
		return nil, apperrors.Conflict("Passenger already holds a booking on this ride", apperrors.ReasonAlreadyBooked)

	case errors.Is(err, bookingserrors.ErrSeatClaimed):
		return nil, apperrors.Conflict("Seat is already booked on this ride", apperrors.ReasonSeatUnavailable)

	case errors.Is(err, bookingserrors.ErrInsufficientCapacity):
		return nil, apperrors.Capacity("Ride has insufficient available seats", ride.AvailableSeats)

	case apperrors.IsAppError(err):
		return nil, err
	}

	s.cfg.Log.Error("Failed to reserve booking",
		"ride_id", req.RideID,
		"passenger_id", req.PassengerID,
		"error", err,
	)
	return nil, apperrors.Internal("Failed to reserve booking", err)
}

func (s *ledgerService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.BookingConfirmed:
		return booking, nil
	case model.BookingPending:
	default:
		return nil, apperrors.State(fmt.Sprintf("Booking is %s and cannot be confirmed", booking.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, []model.BookingStatus{model.BookingPending}, model.BookingConfirmed); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.State("Booking changed state, please retry")
		}
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}

	booking.Status = model.BookingConfirmed
	s.cfg.Log.Info("Booking confirmed", "id", id)
	s.publisher.BookingEvent(ctx, events.EventBookingConfirmed, booking)
	return booking, nil
}

// Cancel releases everything the booking holds: the seats go back to the
// ride's availability and the claims are removed, all in one transaction.
// Cancelling an already cancelled booking is a no-op.
func (s *ledgerService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.BookingCancelled:
		return booking, nil
	case model.BookingCompleted:
		return nil, apperrors.State("Completed bookings cannot be cancelled")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		holding := []model.BookingStatus{model.BookingPending, model.BookingConfirmed}
		if err := s.repo.UpdateStatus(sessCtx, id, holding, model.BookingCancelled); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.State("Booking changed state, please retry")
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}

		if err := s.rideRepo.IncrementAvailable(sessCtx, booking.RideID, booking.SeatsBooked); err != nil {
			return apperrors.Internal("Failed to release ride capacity", err)
		}

		return s.releaseClaims(sessCtx, booking)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.BookingCancelled
	s.cfg.Log.Info("Booking cancelled", "id", id, "ride_id", booking.RideID, "seats_released", booking.SeatsBooked)
	s.publisher.BookingEvent(ctx, events.EventBookingCancelled, booking)
	s.dispatcher.BookingCancelled(booking)
	return booking, nil
}

// Complete marks the booking as ridden. The ride has departed, so capacity is
// not returned; the claims are released since the ride's seat map is done.
func (s *ledgerService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.BookingCompleted:
		return booking, nil
	case model.BookingCancelled:
		return nil, apperrors.State("Cancelled bookings cannot be completed")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		holding := []model.BookingStatus{model.BookingPending, model.BookingConfirmed}
		if err := s.repo.UpdateStatus(sessCtx, id, holding, model.BookingCompleted); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.State("Booking changed state, please retry")
			}
			return apperrors.Internal("Failed to complete booking", err)
		}
		return s.releaseClaims(sessCtx, booking)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to complete booking", err)
	}

	booking.Status = model.BookingCompleted
	s.cfg.Log.Info("Booking completed", "id", id)
	s.publisher.BookingEvent(ctx, events.EventBookingCompleted, booking)
	return booking, nil
}

func (s *ledgerService) releaseClaims(ctx context.Context, booking *model.Booking) error {
	if booking.SeatID != "" {
		if err := s.claimRepo.DeleteSeatClaim(ctx, booking.RideID, booking.SeatID); err != nil {
			return apperrors.Internal("Failed to release seat claim", err)
		}
	}
	if err := s.claimRepo.DeletePassengerClaim(ctx, booking.RideID, booking.PassengerID); err != nil {
		return apperrors.Internal("Failed to release passenger claim", err)
	}
	return nil
}

func (s *ledgerService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *ledgerService) ListByRide(ctx context.Context, rideID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if rideID == "" {
		return nil, 0, apperrors.InvalidInput("Ride ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRide(ctx, rideID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "ride_id", rideID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByRide(ctx, rideID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "ride_id", rideID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// ClaimedSeats lists the seat ids currently held on a ride, sorted for stable
// output.
func (s *ledgerService) ClaimedSeats(ctx context.Context, rideID string) ([]string, error) {
	if rideID == "" {
		return nil, apperrors.InvalidInput("Ride ID cannot be empty")
	}

	claims, err := s.claimRepo.FindSeatClaims(ctx, rideID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve seat claims", err)
	}

	seats := make([]string, 0, len(claims))
	for _, c := range claims {
		seats = append(seats, c.SeatID)
	}
	sort.Strings(seats)
	return seats, nil
}

func (s *ledgerService) pricingConfig() pricing.Config {
	cfg := pricing.DefaultConfig()
	cfg.MinPrice = s.cfg.PricingMinPrice
	cfg.MaxPrice = s.cfg.PricingMaxPrice
	return cfg
}
