package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"seatwise/internal/events"
	rideserrors "seatwise/internal/rides/errors"
	"seatwise/internal/rides/validator"
	"seatwise/pkg/config"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"

	"github.com/google/uuid"
)

type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[string]*model.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[string]*model.Ride)}
}

func (f *fakeRideRepo) Create(_ context.Context, ride *model.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *ride
	f.rides[ride.ID] = &stored
	return nil
}

func (f *fakeRideRepo) FindByID(_ context.Context, id string) (*model.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return nil, rideserrors.ErrNotFound
	}
	stored := *r
	return &stored, nil
}

func (f *fakeRideRepo) FindAll(_ context.Context, status model.RideStatus, _ int, _ int64) ([]*model.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Ride
	for _, r := range f.rides {
		if status == "" || r.Status == status {
			stored := *r
			out = append(out, &stored)
		}
	}
	return out, nil
}

func (f *fakeRideRepo) Count(_ context.Context, status model.RideStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rides {
		if status == "" || r.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRideRepo) UpdateStatus(_ context.Context, id string, from []model.RideStatus, to model.RideStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return rideserrors.ErrNotFound
	}
	for _, s := range from {
		if r.Status == s {
			r.Status = to
			return nil
		}
	}
	return rideserrors.ErrNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		PricingMinPrice: 50,
		PricingMaxPrice: 10000,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.JSON,
			Output: io.Discard,
		}),
	}
}

func newTestService(repo *fakeRideRepo) RideService {
	cfg := testConfig()
	return NewRideService(repo, validator.NewRideValidator(cfg.Log), events.NoopPublisher{}, cfg)
}

func validRide() *model.Ride {
	return &model.Ride{
		Origin:         "Tel Aviv",
		Destination:    "Haifa",
		TotalSeats:     5,
		BasePrice:      100,
		DepartureTime:  time.Now().Add(24 * time.Hour),
		SeatAssignment: true,
	}
}

func TestCreate_InitializesAvailability(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	ride := validRide()
	if err := svc.Create(context.Background(), ride); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if ride.ID == "" {
		t.Error("ride was not assigned an id")
	}
	if ride.Status != model.RideActive {
		t.Errorf("status = %s, want active", ride.Status)
	}
	// The driver seat is never sold.
	if ride.AvailableSeats != 4 {
		t.Errorf("available seats = %d, want 4", ride.AvailableSeats)
	}
}

func TestCreate_Invalid(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	tests := []struct {
		name   string
		mutate func(*model.Ride)
	}{
		{name: "missing origin", mutate: func(r *model.Ride) { r.Origin = "" }},
		{name: "past departure", mutate: func(r *model.Ride) { r.DepartureTime = time.Now().Add(-time.Hour) }},
		{name: "driver only", mutate: func(r *model.Ride) { r.TotalSeats = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := validRide()
			tt.mutate(ride)
			if err := svc.Create(context.Background(), ride); !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	ride := validRide()
	if err := svc.Create(context.Background(), ride); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != ride.ID {
		t.Errorf("got ride %s, want %s", got.ID, ride.ID)
	}

	if _, err := svc.GetByID(context.Background(), uuid.New().String()); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for empty id, got %v", err)
	}
}

func TestTransitions(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	ride := validRide()
	if err := svc.Create(context.Background(), ride); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != model.RideCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancel is idempotent; completing a cancelled ride is not allowed.
	if _, err := svc.Cancel(context.Background(), ride.ID); err != nil {
		t.Errorf("second cancel failed: %v", err)
	}
	if _, err := svc.Complete(context.Background(), ride.ID); !apperrors.IsCode(err, apperrors.CodeState) {
		t.Errorf("expected state error, got %v", err)
	}
}

func TestLayoutAndPricing(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	ride := validRide()
	if err := svc.Create(context.Background(), ride); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	l, err := svc.Layout(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if l.TotalSeats != 5 || l.BookableSeats != 4 {
		t.Errorf("layout counts %d/%d, want 5/4", l.TotalSeats, l.BookableSeats)
	}

	prices, err := svc.SeatPricing(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("SeatPricing failed: %v", err)
	}
	// 4 of 5 seats free keeps the demand multiplier flat.
	if prices["F1"] != 200 || prices["W1"] != 150 || prices["M1"] != 100 {
		t.Errorf("unexpected prices: %v", prices)
	}
	if _, ok := prices["D1"]; ok {
		t.Error("driver seat must not be priced")
	}
}

func TestSeatPricing_CountModeRide(t *testing.T) {
	repo := newFakeRideRepo()
	svc := newTestService(repo)

	ride := validRide()
	ride.SeatAssignment = false
	if err := svc.Create(context.Background(), ride); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.SeatPricing(context.Background(), ride.ID); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for count-mode ride, got %v", err)
	}
}
