package layout

import (
	"reflect"
	"testing"

	"seatwise/pkg/model"
	apperrors "seatwise/pkg/errors"
)

func TestGet_InvalidTotal(t *testing.T) {
	for _, total := range []int{0, -1, -5} {
		_, err := Get(total)
		if err == nil {
			t.Fatalf("Get(%d) expected error, got nil", total)
		}
		if !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Errorf("Get(%d) expected validation error, got %v", total, err)
		}
	}
}

func TestGet_Deterministic(t *testing.T) {
	for _, total := range []int{2, 4, 5, 6, 7, 8, 9, 12, 30} {
		first, err := Get(total)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", total, err)
		}
		second, err := Get(total)
		if err != nil {
			t.Fatalf("Get(%d) failed on repeat: %v", total, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Get(%d) is not deterministic", total)
		}
	}
}

func TestGet_DriverInvariant(t *testing.T) {
	for _, total := range []int{1, 2, 4, 5, 6, 7, 8, 9, 10, 25} {
		l, err := Get(total)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", total, err)
		}

		drivers := 0
		for _, s := range l.Seats() {
			if s.Type == model.SeatDriver {
				drivers++
				if s.Bookable {
					t.Errorf("Get(%d): driver seat %q is bookable", total, s.ID)
				}
			}
		}
		if drivers != 1 {
			t.Errorf("Get(%d): expected exactly one driver seat, got %d", total, drivers)
		}
		if l.BookableSeats != total-1 {
			t.Errorf("Get(%d): expected %d bookable seats, got %d", total, total-1, l.BookableSeats)
		}
	}
}

func TestGet_FiveSeatLayout(t *testing.T) {
	l, err := Get(5)
	if err != nil {
		t.Fatalf("Get(5) failed: %v", err)
	}

	want := map[string]model.SeatType{
		"D1": model.SeatDriver,
		"F1": model.SeatFront,
		"W1": model.SeatWindow,
		"M1": model.SeatMiddle,
		"W2": model.SeatWindow,
	}
	seats := l.Seats()
	if len(seats) != len(want) {
		t.Fatalf("Get(5): expected %d seats, got %d", len(want), len(seats))
	}
	for _, s := range seats {
		wantType, ok := want[s.ID]
		if !ok {
			t.Errorf("Get(5): unexpected seat %q", s.ID)
			continue
		}
		if s.Type != wantType {
			t.Errorf("Get(5): seat %q expected type %q, got %q", s.ID, wantType, s.Type)
		}
	}
}

func TestGet_FallbackShape(t *testing.T) {
	l, err := Get(11)
	if err != nil {
		t.Fatalf("Get(11) failed: %v", err)
	}
	if l.TotalSeats != 11 || l.BookableSeats != 10 {
		t.Fatalf("Get(11): unexpected counts %d/%d", l.TotalSeats, l.BookableSeats)
	}

	if _, ok := l.Seat("S2"); !ok {
		t.Error("Get(11): fallback layout missing seat S2")
	}
	if _, ok := l.Seat("S11"); !ok {
		t.Error("Get(11): fallback layout missing seat S11")
	}
	for _, s := range l.Seats() {
		if s.Type == model.SeatDriver {
			continue
		}
		if s.Type != model.SeatMiddle {
			t.Errorf("Get(11): fallback seat %q expected middle type, got %q", s.ID, s.Type)
		}
	}
}

func TestGet_ValidatesClean(t *testing.T) {
	for _, total := range []int{1, 2, 4, 5, 6, 7, 8, 9, 13, 42} {
		l, err := Get(total)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", total, err)
		}
		if violations := Validate(l); len(violations) != 0 {
			t.Errorf("Get(%d) produced invalid layout: %v", total, violations)
		}
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		layout *model.VehicleLayout
	}{
		{name: "nil layout", layout: nil},
		{
			name: "duplicate seat ids",
			layout: &model.VehicleLayout{
				TotalSeats:    3,
				BookableSeats: 2,
				Rows: []model.SeatRow{
					row(1, driver(), seat("F1", model.SeatFront), seat("F1", model.SeatFront)),
				},
			},
		},
		{
			name: "bookable driver",
			layout: &model.VehicleLayout{
				TotalSeats:    2,
				BookableSeats: 2,
				Rows: []model.SeatRow{
					{Row: 1, Seats: []model.Seat{
						{ID: "D1", Type: model.SeatDriver, Bookable: true},
						{ID: "F1", Type: model.SeatFront, Bookable: true},
					}},
				},
			},
		},
		{
			name: "no driver seat",
			layout: &model.VehicleLayout{
				TotalSeats:    2,
				BookableSeats: 2,
				Rows: []model.SeatRow{
					row(1, seat("F1", model.SeatFront), seat("F2", model.SeatFront)),
				},
			},
		},
		{
			name: "count mismatch",
			layout: &model.VehicleLayout{
				TotalSeats:    5,
				BookableSeats: 4,
				Rows: []model.SeatRow{
					row(1, driver(), seat("F1", model.SeatFront)),
				},
			},
		},
		{
			name: "unknown seat type",
			layout: &model.VehicleLayout{
				TotalSeats:    2,
				BookableSeats: 1,
				Rows: []model.SeatRow{
					{Row: 1, Seats: []model.Seat{
						{ID: "D1", Type: model.SeatDriver, Bookable: false},
						{ID: "X1", Type: model.SeatType("aisle"), Bookable: true},
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if violations := Validate(tt.layout); len(violations) == 0 {
				t.Error("expected violations, got none")
			}
		})
	}
}
