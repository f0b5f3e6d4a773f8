package service

import (
	"context"
	"errors"
	"fmt"
	bookingsvc "seatwise/internal/bookings/service"
	"seatwise/internal/events"
	"seatwise/internal/layout"
	"seatwise/internal/notify"
	transferserrors "seatwise/internal/transfers/errors"
	"seatwise/internal/transfers/repository"
	"seatwise/pkg/config"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/model"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MatcherService finds alternate rides for a booking that must move and
// drives the offer/response protocol. An accepted transfer reserves on the
// new ride before touching the old booking; it is never applied partially.
type MatcherService interface {
	FindCandidates(ctx context.Context, criteria *model.TransferCriteria) ([]*model.TransferCandidate, error)
	Offer(ctx context.Context, originalBookingID string, candidateRideID string, reason string) (*model.TransferRequest, error)
	Respond(ctx context.Context, id string, decision model.TransferDecision) (*model.TransferRequest, *model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.TransferRequest, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*model.TransferRequest, error)
}

type matcherService struct {
	repo       repository.TransferRepository
	rides      repository.CandidateRepository
	ledger     bookingsvc.LedgerService
	publisher  events.Publisher
	dispatcher notify.Dispatcher
	cfg        *config.Config
}

func NewMatcherService(
	repo repository.TransferRepository,
	rides repository.CandidateRepository,
	ledger bookingsvc.LedgerService,
	publisher events.Publisher,
	dispatcher notify.Dispatcher,
	cfg *config.Config,
) MatcherService {
	return &matcherService{
		repo:       repo,
		rides:      rides,
		ledger:     ledger,
		publisher:  publisher,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// FindCandidates filters rides to the same route within the tolerance window
// and ranks them by a weighted score of time proximity, vehicle similarity
// and seat-type availability. Ties break toward the earlier departure.
func (s *matcherService) FindCandidates(ctx context.Context, criteria *model.TransferCriteria) ([]*model.TransferCandidate, error) {
	if criteria == nil || criteria.Origin == "" || criteria.Destination == "" || criteria.DepartureTime.IsZero() {
		return nil, apperrors.InvalidInput("Origin, destination and departure time are required")
	}

	rides, err := s.rides.FindCandidateRides(ctx, criteria, s.cfg.TransferTimeTolerance)
	if err != nil {
		s.cfg.Log.Error("Failed to query candidate rides", "error", err)
		return nil, apperrors.Internal("Failed to find candidate rides", err)
	}

	candidates := make([]*model.TransferCandidate, 0, len(rides))
	for _, ride := range rides {
		score, reason := s.scoreCandidate(ctx, criteria, ride)
		candidates = append(candidates, &model.TransferCandidate{
			RideID:             ride.ID,
			CompatibilityScore: score,
			Reason:             reason,
			DepartureTime:      ride.DepartureTime,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CompatibilityScore != candidates[j].CompatibilityScore {
			return candidates[i].CompatibilityScore > candidates[j].CompatibilityScore
		}
		return candidates[i].DepartureTime.Before(candidates[j].DepartureTime)
	})
	for i, c := range candidates {
		c.Priority = i + 1
	}

	s.cfg.Log.Debug("Transfer candidates ranked",
		"origin", criteria.Origin,
		"destination", criteria.Destination,
		"count", len(candidates),
	)
	return candidates, nil
}

func (s *matcherService) scoreCandidate(ctx context.Context, criteria *model.TransferCriteria, ride *model.Ride) (float64, string) {
	var reasons []string

	delta := ride.DepartureTime.Sub(criteria.DepartureTime)
	timeScore := 1 - float64(absDuration(delta))/float64(s.cfg.TransferTimeTolerance)
	if timeScore < 0 {
		timeScore = 0
	}
	switch {
	case delta == 0:
		reasons = append(reasons, "same departure time")
	case delta > 0:
		reasons = append(reasons, fmt.Sprintf("departs %s later", delta.Round(time.Minute)))
	default:
		reasons = append(reasons, fmt.Sprintf("departs %s earlier", (-delta).Round(time.Minute)))
	}

	vehicleScore := s.vehicleSimilarity(criteria, ride, &reasons)
	seatScore := s.seatTypeAvailability(ctx, criteria, ride, &reasons)

	weightSum := s.cfg.MatcherTimeWeight + s.cfg.MatcherVehicleWeight + s.cfg.MatcherSeatWeight
	score := (s.cfg.MatcherTimeWeight*timeScore +
		s.cfg.MatcherVehicleWeight*vehicleScore +
		s.cfg.MatcherSeatWeight*seatScore) / weightSum

	return score, strings.Join(reasons, ", ")
}

// vehicleSimilarity compares brand and segment against the original ride's.
// A criterion the caller did not specify counts as satisfied.
func (s *matcherService) vehicleSimilarity(criteria *model.TransferCriteria, ride *model.Ride, reasons *[]string) float64 {
	score := 0.0
	if criteria.VehicleBrand == "" || strings.EqualFold(criteria.VehicleBrand, ride.VehicleBrand) {
		score += 0.5
		if criteria.VehicleBrand != "" {
			*reasons = append(*reasons, "same vehicle brand")
		}
	}
	if criteria.VehicleSegment == "" || strings.EqualFold(criteria.VehicleSegment, ride.VehicleSegment) {
		score += 0.5
		if criteria.VehicleSegment != "" {
			*reasons = append(*reasons, "same vehicle segment")
		}
	}
	return score
}

// seatTypeAvailability checks whether the candidate still has a free seat of
// the passenger's original seat type. Count-only rides cannot honor a seat
// type and score zero when one is requested.
func (s *matcherService) seatTypeAvailability(ctx context.Context, criteria *model.TransferCriteria, ride *model.Ride, reasons *[]string) float64 {
	if criteria.SeatType == "" {
		return 1
	}
	if !ride.SeatAssignment {
		return 0
	}

	_, exact, err := s.pickSeat(ctx, ride, criteria.SeatType)
	if err != nil || !exact {
		return 0
	}

	*reasons = append(*reasons, fmt.Sprintf("%s seat available", criteria.SeatType))
	return 1
}

// pickSeat returns a free bookable seat on the ride, preferring the given
// type; exact reports whether the preference was honored. An empty seat id
// means the ride has no free seat at all.
func (s *matcherService) pickSeat(ctx context.Context, ride *model.Ride, preferred model.SeatType) (seatID string, exact bool, err error) {
	l, err := layout.Get(ride.TotalSeats)
	if err != nil {
		return "", false, err
	}
	claimed, err := s.ledger.ClaimedSeats(ctx, ride.ID)
	if err != nil {
		return "", false, err
	}
	taken := make(map[string]bool, len(claimed))
	for _, id := range claimed {
		taken[id] = true
	}

	fallback := ""
	for _, seat := range l.Seats() {
		if !seat.Bookable || taken[seat.ID] {
			continue
		}
		if preferred != "" && seat.Type == preferred {
			return seat.ID, true, nil
		}
		if fallback == "" {
			fallback = seat.ID
		}
	}
	return fallback, preferred == "" && fallback != "", nil
}

func (s *matcherService) Offer(ctx context.Context, originalBookingID string, candidateRideID string, reason string) (*model.TransferRequest, error) {
	if originalBookingID == "" || candidateRideID == "" {
		return nil, apperrors.InvalidInput("Booking ID and candidate ride ID are required")
	}
	if reason == "" {
		reason = "alternate ride available"
	}

	booking, err := s.ledger.GetByID(ctx, originalBookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.HoldsCapacity() {
		return nil, apperrors.State(fmt.Sprintf("Booking is %s and cannot be transferred", booking.Status))
	}
	if booking.RideID == candidateRideID {
		return nil, apperrors.InvalidInput("Candidate ride is the booking's own ride")
	}

	ride, err := s.rides.FindRide(ctx, candidateRideID)
	if err != nil {
		if errors.Is(err, transferserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ride", candidateRideID)
		}
		return nil, apperrors.Internal("Failed to retrieve candidate ride", err)
	}
	if ride.Status != model.RideActive || ride.AvailableSeats < booking.SeatsBooked {
		return nil, apperrors.State("Candidate ride cannot take this booking")
	}

	request := &model.TransferRequest{
		ID:                uuid.New().String(),
		OriginalBookingID: originalBookingID,
		CandidateRideID:   candidateRideID,
		Reason:            reason,
		Status:            model.TransferOffered,
		ExpiresAt:         time.Now().UTC().Add(s.cfg.TransferOfferTTL).Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to create transfer request", "booking_id", originalBookingID, "error", err)
		return nil, apperrors.Internal("Failed to create transfer request", err)
	}

	s.cfg.Log.Info("Transfer offered",
		"id", request.ID,
		"booking_id", originalBookingID,
		"candidate_ride_id", candidateRideID,
		"expires_at", request.ExpiresAt,
	)
	s.publisher.TransferEvent(ctx, events.EventTransferOffered, candidateRideID, request)
	s.dispatcher.TransferOffered(request, booking.PassengerID)
	return request, nil
}

// Respond resolves an offer. Expiry is enforced here, at response time: a
// late accept expires the request and changes nothing else. An accept first
// reserves on the candidate ride and only then cancels the original; if the
// reservation fails the request returns to Offered and the original booking
// is untouched.
func (s *matcherService) Respond(ctx context.Context, id string, decision model.TransferDecision) (*model.TransferRequest, *model.Booking, error) {
	if decision != model.DecisionAccept && decision != model.DecisionDecline {
		return nil, nil, apperrors.InvalidInput("Decision must be accept or decline")
	}

	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != model.TransferOffered {
		return nil, nil, apperrors.State(fmt.Sprintf("Transfer request is already %s", request.Status))
	}

	if time.Now().After(request.ExpiresAt) {
		if err := s.transition(ctx, id, model.TransferOffered, model.TransferExpired); err != nil {
			return nil, nil, err
		}
		request.Status = model.TransferExpired
		s.publisher.TransferEvent(ctx, events.EventTransferResolved, request.CandidateRideID, request)
		return nil, nil, apperrors.ExpiredOffer("Transfer offer has expired")
	}

	if decision == model.DecisionDecline {
		if err := s.transition(ctx, id, model.TransferOffered, model.TransferDeclined); err != nil {
			return nil, nil, err
		}
		request.Status = model.TransferDeclined
		s.cfg.Log.Info("Transfer declined", "id", id)
		s.publisher.TransferEvent(ctx, events.EventTransferResolved, request.CandidateRideID, request)
		return request, nil, nil
	}

	return s.accept(ctx, request)
}

// accept claims the request first so concurrent responses serialize on the
// status CAS, then moves the booking. Every failure path puts the request
// back to Offered.
func (s *matcherService) accept(ctx context.Context, request *model.TransferRequest) (*model.TransferRequest, *model.Booking, error) {
	if err := s.transition(ctx, request.ID, model.TransferOffered, model.TransferAccepted); err != nil {
		return nil, nil, err
	}

	revert := func() {
		if err := s.repo.UpdateStatus(ctx, request.ID, model.TransferAccepted, model.TransferOffered); err != nil {
			s.cfg.Log.Error("Failed to revert transfer request", "id", request.ID, "error", err)
		}
	}

	original, err := s.ledger.GetByID(ctx, request.OriginalBookingID)
	if err != nil {
		revert()
		return nil, nil, err
	}
	if !original.Status.HoldsCapacity() {
		revert()
		return nil, nil, apperrors.State(fmt.Sprintf("Original booking is %s and cannot be transferred", original.Status))
	}

	reserveReq, err := s.buildReserveRequest(ctx, request, original)
	if err != nil {
		revert()
		return nil, nil, err
	}

	newBooking, err := s.ledger.Reserve(ctx, reserveReq)
	if err != nil {
		revert()
		return nil, nil, err
	}

	if _, err := s.ledger.Cancel(ctx, original.ID); err != nil {
		// Roll the move back so the transfer is all or nothing.
		if _, cancelErr := s.ledger.Cancel(ctx, newBooking.ID); cancelErr != nil {
			s.cfg.Log.Error("Failed to compensate transfer reservation",
				"id", request.ID,
				"new_booking_id", newBooking.ID,
				"error", cancelErr,
			)
		}
		revert()
		return nil, nil, err
	}

	request.Status = model.TransferAccepted
	s.cfg.Log.Info("Transfer accepted",
		"id", request.ID,
		"original_booking_id", original.ID,
		"new_booking_id", newBooking.ID,
		"candidate_ride_id", request.CandidateRideID,
	)
	s.publisher.TransferEvent(ctx, events.EventTransferResolved, request.CandidateRideID, request)
	return request, newBooking, nil
}

// buildReserveRequest shapes the reservation for the candidate ride. On a
// seated ride the passenger keeps their seat type when a matching seat is
// still free, otherwise gets any free seat.
func (s *matcherService) buildReserveRequest(ctx context.Context, request *model.TransferRequest, original *model.Booking) (*model.ReserveRequest, error) {
	candidate, err := s.rides.FindRide(ctx, request.CandidateRideID)
	if err != nil {
		if errors.Is(err, transferserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ride", request.CandidateRideID)
		}
		return nil, apperrors.Internal("Failed to retrieve candidate ride", err)
	}

	reserveReq := &model.ReserveRequest{
		RideID:         candidate.ID,
		PassengerID:    original.PassengerID,
		IdempotencyKey: "transfer-" + request.ID,
	}

	if !candidate.SeatAssignment {
		reserveReq.SeatsBooked = original.SeatsBooked
		return reserveReq, nil
	}

	seatID, _, err := s.pickSeat(ctx, candidate, s.originalSeatType(ctx, original))
	if err != nil {
		return nil, apperrors.Internal("Failed to pick a seat on the candidate ride", err)
	}
	if seatID == "" {
		return nil, apperrors.Conflict("Candidate ride has no free seats", apperrors.ReasonSeatUnavailable)
	}
	reserveReq.SeatID = seatID
	return reserveReq, nil
}

func (s *matcherService) originalSeatType(ctx context.Context, original *model.Booking) model.SeatType {
	if original.SeatID == "" {
		return ""
	}
	ride, err := s.rides.FindRide(ctx, original.RideID)
	if err != nil {
		return ""
	}
	l, err := layout.Get(ride.TotalSeats)
	if err != nil {
		return ""
	}
	if seat, ok := l.Seat(original.SeatID); ok {
		return seat.Type
	}
	return ""
}

func (s *matcherService) transition(ctx context.Context, id string, from model.TransferStatus, to model.TransferStatus) error {
	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, transferserrors.ErrNotFound) {
			return apperrors.State("Transfer request changed state, please retry")
		}
		return apperrors.Internal("Failed to update transfer request", err)
	}
	return nil
}

func (s *matcherService) GetByID(ctx context.Context, id string) (*model.TransferRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Transfer request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, transferserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Transfer request", id)
		}
		return nil, apperrors.Internal("Failed to retrieve transfer request", err)
	}
	return request, nil
}

func (s *matcherService) ListByBooking(ctx context.Context, bookingID string) ([]*model.TransferRequest, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	requests, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve transfer requests", err)
	}
	return requests, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
