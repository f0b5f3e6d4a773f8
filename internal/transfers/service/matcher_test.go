package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"seatwise/internal/events"
	"seatwise/internal/layout"
	"seatwise/internal/notify"
	transferserrors "seatwise/internal/transfers/errors"
	"seatwise/pkg/config"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"

	"github.com/google/uuid"
)

// fakeLedger is a minimal in-memory booking ledger with the same conflict and
// capacity behavior the real one exposes.
type fakeLedger struct {
	mu         sync.Mutex
	rides      map[string]*model.Ride
	bookings   map[string]*model.Booking
	seatClaims map[string]string // rideID:seatID -> bookingID
}

func newFakeLedger(rides map[string]*model.Ride) *fakeLedger {
	return &fakeLedger{
		rides:      rides,
		bookings:   make(map[string]*model.Booking),
		seatClaims: make(map[string]string),
	}
}

func (f *fakeLedger) Reserve(_ context.Context, req *model.ReserveRequest) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[req.RideID]
	if !ok {
		return nil, apperrors.NotFoundWithID("Ride", req.RideID)
	}
	if ride.Status != model.RideActive {
		return nil, apperrors.State("Ride cannot be booked")
	}

	count := req.SeatsBooked
	if req.SeatID != "" {
		count = 1
		if _, taken := f.seatClaims[model.SeatClaimID(req.RideID, req.SeatID)]; taken {
			return nil, apperrors.Conflict("Seat is already booked on this ride", apperrors.ReasonSeatUnavailable)
		}
	}
	if ride.AvailableSeats < count {
		return nil, apperrors.Capacity("Ride has insufficient available seats", ride.AvailableSeats)
	}

	booking := &model.Booking{
		ID:             uuid.New().String(),
		RideID:         req.RideID,
		PassengerID:    req.PassengerID,
		SeatID:         req.SeatID,
		SeatsBooked:    count,
		Status:         model.BookingPending,
		IdempotencyKey: req.IdempotencyKey,
	}
	f.bookings[booking.ID] = booking
	if req.SeatID != "" {
		f.seatClaims[model.SeatClaimID(req.RideID, req.SeatID)] = booking.ID
	}
	ride.AvailableSeats -= count
	return booking, nil
}

func (f *fakeLedger) Confirm(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	b.Status = model.BookingConfirmed
	return b, nil
}

func (f *fakeLedger) Cancel(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	if b.Status == model.BookingCompleted {
		return nil, apperrors.State("Completed bookings cannot be cancelled")
	}
	if b.Status.HoldsCapacity() {
		f.rides[b.RideID].AvailableSeats += b.SeatsBooked
		if b.SeatID != "" {
			delete(f.seatClaims, model.SeatClaimID(b.RideID, b.SeatID))
		}
	}
	b.Status = model.BookingCancelled
	return b, nil
}

func (f *fakeLedger) Complete(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	b.Status = model.BookingCompleted
	return b, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	stored := *b
	return &stored, nil
}

func (f *fakeLedger) ListByRide(_ context.Context, rideID string, _ int, _ int64) ([]*model.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.RideID == rideID {
			stored := *b
			out = append(out, &stored)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLedger) ClaimedSeats(_ context.Context, rideID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var seats []string
	for _, b := range f.bookings {
		if b.RideID == rideID && b.SeatID != "" && b.Status.HoldsCapacity() {
			seats = append(seats, b.SeatID)
		}
	}
	return seats, nil
}

// --- repositories ---

type fakeTransferRepo struct {
	mu       sync.Mutex
	requests map[string]*model.TransferRequest
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{requests: make(map[string]*model.TransferRequest)}
}

func (f *fakeTransferRepo) Create(_ context.Context, request *model.TransferRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *request
	f.requests[request.ID] = &stored
	return nil
}

func (f *fakeTransferRepo) FindByID(_ context.Context, id string) (*model.TransferRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, transferserrors.ErrNotFound
	}
	stored := *r
	return &stored, nil
}

func (f *fakeTransferRepo) FindByBooking(_ context.Context, bookingID string) ([]*model.TransferRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.TransferRequest
	for _, r := range f.requests {
		if r.OriginalBookingID == bookingID {
			stored := *r
			out = append(out, &stored)
		}
	}
	return out, nil
}

func (f *fakeTransferRepo) UpdateStatus(_ context.Context, id string, from model.TransferStatus, to model.TransferStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.Status != from {
		return transferserrors.ErrNotFound
	}
	r.Status = to
	return nil
}

type fakeCandidateRepo struct {
	ledger *fakeLedger
}

func (f *fakeCandidateRepo) FindRide(_ context.Context, id string) (*model.Ride, error) {
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()
	r, ok := f.ledger.rides[id]
	if !ok {
		return nil, transferserrors.ErrNotFound
	}
	stored := *r
	return &stored, nil
}

func (f *fakeCandidateRepo) FindCandidateRides(_ context.Context, criteria *model.TransferCriteria, tolerance time.Duration) ([]*model.Ride, error) {
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()
	var out []*model.Ride
	for _, r := range f.ledger.rides {
		if r.Status != model.RideActive || r.AvailableSeats < 1 {
			continue
		}
		if r.Origin != criteria.Origin || r.Destination != criteria.Destination {
			continue
		}
		if r.ID == criteria.ExcludeRideID {
			continue
		}
		delta := r.DepartureTime.Sub(criteria.DepartureTime)
		if delta < -tolerance || delta > tolerance {
			continue
		}
		stored := *r
		out = append(out, &stored)
	}
	return out, nil
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		PricingMinPrice:       50,
		PricingMaxPrice:       10000,
		TransferOfferTTL:      5 * time.Minute,
		TransferTimeTolerance: 2 * time.Hour,
		MatcherTimeWeight:     0.5,
		MatcherVehicleWeight:  0.3,
		MatcherSeatWeight:     0.2,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.JSON,
			Output: io.Discard,
		}),
	}
}

type fixture struct {
	svc    MatcherService
	ledger *fakeLedger
	repo   *fakeTransferRepo
	cfg    *config.Config
}

func newFixture() *fixture {
	cfg := testConfig()
	ledger := newFakeLedger(make(map[string]*model.Ride))
	repo := newFakeTransferRepo()
	svc := NewMatcherService(
		repo,
		&fakeCandidateRepo{ledger: ledger},
		ledger,
		events.NoopPublisher{},
		notify.NoopDispatcher{},
		cfg,
	)
	return &fixture{svc: svc, ledger: ledger, repo: repo, cfg: cfg}
}

func (fx *fixture) addRide(departure time.Time, available int, brand string, seatAssignment bool) *model.Ride {
	ride := &model.Ride{
		ID:             uuid.New().String(),
		Origin:         "Tel Aviv",
		Destination:    "Haifa",
		TotalSeats:     5,
		AvailableSeats: available,
		BasePrice:      100,
		Status:         model.RideActive,
		DepartureTime:  departure,
		VehicleBrand:   brand,
		SeatAssignment: seatAssignment,
	}
	fx.ledger.rides[ride.ID] = ride
	return ride
}

func (fx *fixture) book(t *testing.T, rideID, passengerID, seatID string) *model.Booking {
	t.Helper()
	booking, err := fx.ledger.Reserve(context.Background(), &model.ReserveRequest{
		RideID:      rideID,
		PassengerID: passengerID,
		SeatID:      seatID,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	return booking
}

// --- tests ---

func TestFindCandidates_FilterAndRank(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)

	original := fx.addRide(departure, 3, "Toyota", true)
	near := fx.addRide(departure.Add(15*time.Minute), 3, "Toyota", true)
	far := fx.addRide(departure.Add(90*time.Minute), 3, "Honda", true)
	fx.addRide(departure.Add(6*time.Hour), 3, "Toyota", true) // outside window
	full := fx.addRide(departure, 0, "Toyota", true)          // no seats

	candidates, err := fx.svc.FindCandidates(context.Background(), &model.TransferCriteria{
		Origin:        "Tel Aviv",
		Destination:   "Haifa",
		DepartureTime: departure,
		VehicleBrand:  "Toyota",
		ExcludeRideID: original.ID,
	})
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].RideID != near.ID {
		t.Errorf("top candidate = %s, want the near Toyota ride %s", candidates[0].RideID, near.ID)
	}
	if candidates[1].RideID != far.ID {
		t.Errorf("second candidate = %s, want %s", candidates[1].RideID, far.ID)
	}
	if candidates[0].CompatibilityScore <= candidates[1].CompatibilityScore {
		t.Errorf("scores not descending: %g <= %g", candidates[0].CompatibilityScore, candidates[1].CompatibilityScore)
	}
	for i, c := range candidates {
		if c.Priority != i+1 {
			t.Errorf("candidate %d priority = %d", i, c.Priority)
		}
		if c.RideID == original.ID || c.RideID == full.ID {
			t.Errorf("filtered ride %s leaked into candidates", c.RideID)
		}
	}
}

func TestFindCandidates_TieBreakEarlierDeparture(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)

	later := fx.addRide(departure.Add(30*time.Minute), 3, "", true)
	earlier := fx.addRide(departure.Add(-30*time.Minute), 3, "", true)

	candidates, err := fx.svc.FindCandidates(context.Background(), &model.TransferCriteria{
		Origin:        "Tel Aviv",
		Destination:   "Haifa",
		DepartureTime: departure,
	})
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].RideID != earlier.ID {
		t.Errorf("tie should break toward the earlier departure, got %s want %s", candidates[0].RideID, earlier.ID)
	}
	_ = later
}

func TestOffer(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)
	original := fx.addRide(departure, 3, "", true)
	candidate := fx.addRide(departure.Add(time.Hour), 3, "", true)
	booking := fx.book(t, original.ID, "alice", "F1")

	before := time.Now()
	request, err := fx.svc.Offer(context.Background(), booking.ID, candidate.ID, "ride consolidation")
	if err != nil {
		t.Fatalf("Offer failed: %v", err)
	}

	if request.Status != model.TransferOffered {
		t.Errorf("status = %s, want offered", request.Status)
	}
	ttl := request.ExpiresAt.Sub(before)
	if ttl < 4*time.Minute || ttl > 6*time.Minute {
		t.Errorf("expires_at %s from now, want about %s", ttl, fx.cfg.TransferOfferTTL)
	}

	if _, err := fx.svc.Offer(context.Background(), booking.ID, original.ID, ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input offering the booking's own ride, got %v", err)
	}
}

func TestRespond_Decline(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)
	original := fx.addRide(departure, 3, "", true)
	candidate := fx.addRide(departure.Add(time.Hour), 3, "", true)
	booking := fx.book(t, original.ID, "alice", "F1")

	request, err := fx.svc.Offer(context.Background(), booking.ID, candidate.ID, "")
	if err != nil {
		t.Fatalf("Offer failed: %v", err)
	}

	declined, newBooking, err := fx.svc.Respond(context.Background(), request.ID, model.DecisionDecline)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if declined.Status != model.TransferDeclined {
		t.Errorf("status = %s, want declined", declined.Status)
	}
	if newBooking != nil {
		t.Error("decline must not create a booking")
	}

	got, _ := fx.ledger.GetByID(context.Background(), booking.ID)
	if got.Status != model.BookingPending {
		t.Errorf("original booking changed on decline: %s", got.Status)
	}

	// A resolved request cannot be answered again.
	if _, _, err := fx.svc.Respond(context.Background(), request.ID, model.DecisionAccept); !apperrors.IsCode(err, apperrors.CodeState) {
		t.Errorf("expected state error on second response, got %v", err)
	}
}

func TestRespond_ExpiredOffer(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)
	original := fx.addRide(departure, 3, "", true)
	candidate := fx.addRide(departure.Add(time.Hour), 3, "", true)
	booking := fx.book(t, original.ID, "alice", "F1")

	request, err := fx.svc.Offer(context.Background(), booking.ID, candidate.ID, "")
	if err != nil {
		t.Fatalf("Offer failed: %v", err)
	}

	// Move the deadline into the past, as if six minutes elapsed.
	fx.repo.mu.Lock()
	fx.repo.requests[request.ID].ExpiresAt = time.Now().Add(-time.Minute)
	fx.repo.mu.Unlock()

	_, _, err = fx.svc.Respond(context.Background(), request.ID, model.DecisionAccept)
	if !apperrors.IsCode(err, apperrors.CodeExpiredOffer) {
		t.Fatalf("expected expired offer error, got %v", err)
	}

	stored, _ := fx.repo.FindByID(context.Background(), request.ID)
	if stored.Status != model.TransferExpired {
		t.Errorf("request status = %s, want expired", stored.Status)
	}
	got, _ := fx.ledger.GetByID(context.Background(), booking.ID)
	if got.Status != model.BookingPending {
		t.Errorf("original booking changed on expiry: %s", got.Status)
	}
	if fx.ledger.rides[candidate.ID].AvailableSeats != 3 {
		t.Errorf("candidate availability changed on expiry: %d", fx.ledger.rides[candidate.ID].AvailableSeats)
	}
}

func TestRespond_AcceptMovesBooking(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)
	original := fx.addRide(departure, 4, "", true)
	candidate := fx.addRide(departure.Add(time.Hour), 4, "", true)
	booking := fx.book(t, original.ID, "alice", "F1")

	request, err := fx.svc.Offer(context.Background(), booking.ID, candidate.ID, "")
	if err != nil {
		t.Fatalf("Offer failed: %v", err)
	}

	accepted, newBooking, err := fx.svc.Respond(context.Background(), request.ID, model.DecisionAccept)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if accepted.Status != model.TransferAccepted {
		t.Errorf("request status = %s, want accepted", accepted.Status)
	}
	if newBooking == nil || newBooking.RideID != candidate.ID {
		t.Fatalf("new booking not on candidate ride: %+v", newBooking)
	}
	// The passenger kept their seat type.
	if seat, ok := mustLayoutSeat(t, candidate.TotalSeats, newBooking.SeatID); !ok || seat.Type != model.SeatFront {
		t.Errorf("new seat %s is not a front seat", newBooking.SeatID)
	}

	old, _ := fx.ledger.GetByID(context.Background(), booking.ID)
	if old.Status != model.BookingCancelled {
		t.Errorf("original booking status = %s, want cancelled", old.Status)
	}
	if fx.ledger.rides[original.ID].AvailableSeats != 4 {
		t.Errorf("original ride availability = %d, want 4", fx.ledger.rides[original.ID].AvailableSeats)
	}
	if fx.ledger.rides[candidate.ID].AvailableSeats != 3 {
		t.Errorf("candidate ride availability = %d, want 3", fx.ledger.rides[candidate.ID].AvailableSeats)
	}
}

func TestRespond_AcceptFailureLeavesEverything(t *testing.T) {
	fx := newFixture()
	departure := time.Now().Add(24 * time.Hour)
	original := fx.addRide(departure, 4, "", true)
	candidate := fx.addRide(departure.Add(time.Hour), 4, "", true)
	booking := fx.book(t, original.ID, "alice", "F1")

	request, err := fx.svc.Offer(context.Background(), booking.ID, candidate.ID, "")
	if err != nil {
		t.Fatalf("Offer failed: %v", err)
	}

	// Fill the candidate ride completely before the passenger accepts.
	for _, seat := range []string{"F1", "W1", "M1", "W2"} {
		fx.book(t, candidate.ID, uuid.New().String(), seat)
	}

	_, _, err = fx.svc.Respond(context.Background(), request.ID, model.DecisionAccept)
	if err == nil {
		t.Fatal("expected accept to fail on a full candidate ride")
	}

	stored, _ := fx.repo.FindByID(context.Background(), request.ID)
	if stored.Status != model.TransferOffered {
		t.Errorf("request status = %s, want offered after failed accept", stored.Status)
	}
	got, _ := fx.ledger.GetByID(context.Background(), booking.ID)
	if got.Status != model.BookingPending {
		t.Errorf("original booking changed on failed accept: %s", got.Status)
	}
	if fx.ledger.rides[original.ID].AvailableSeats != 3 {
		t.Errorf("original ride availability changed: %d", fx.ledger.rides[original.ID].AvailableSeats)
	}
}

func TestRespond_InvalidDecision(t *testing.T) {
	fx := newFixture()
	if _, _, err := fx.svc.Respond(context.Background(), uuid.New().String(), model.TransferDecision("maybe")); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func mustLayoutSeat(t *testing.T, totalSeats int, seatID string) (model.Seat, bool) {
	t.Helper()
	l, err := layout.Get(totalSeats)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	return l.Seat(seatID)
}
