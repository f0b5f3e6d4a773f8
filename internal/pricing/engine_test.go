package pricing

import (
	"reflect"
	"testing"

	"seatwise/internal/layout"
)

func TestPriceSeats_FiveSeaterFullAvailability(t *testing.T) {
	l, err := layout.Get(5)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	prices, err := PriceSeats(l, 100, 1.0, DefaultConfig())
	if err != nil {
		t.Fatalf("PriceSeats failed: %v", err)
	}

	want := map[string]float64{
		"F1": 200,
		"W1": 150,
		"W2": 150,
		"M1": 100,
	}
	if !reflect.DeepEqual(prices, want) {
		t.Errorf("prices = %v, want %v", prices, want)
	}
	if _, ok := prices["D1"]; ok {
		t.Error("driver seat must never be priced")
	}
}

func TestPriceSeats_MinimumFloor(t *testing.T) {
	l, err := layout.Get(9)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	// Base 60 puts the economy seat at 10 before the floor.
	prices, err := PriceSeats(l, 60, 1.0, DefaultConfig())
	if err != nil {
		t.Fatalf("PriceSeats failed: %v", err)
	}

	if got := prices["E1"]; got != 50 {
		t.Errorf("economy seat priced %g, want floor 50", got)
	}
	for id, p := range prices {
		if p < 50 {
			t.Errorf("seat %q priced %g below minimum", id, p)
		}
	}
}

func TestPriceSeats_DemandMultipliers(t *testing.T) {
	l, err := layout.Get(5)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		ratio  float64
		wantF1 float64
	}{
		{name: "scarce", ratio: 0.2, wantF1: 300},
		{name: "boundary low", ratio: 0.30, wantF1: 240},
		{name: "moderate", ratio: 0.5, wantF1: 240},
		{name: "boundary mid", ratio: 0.60, wantF1: 200},
		{name: "plentiful", ratio: 0.9, wantF1: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices, err := PriceSeats(l, 100, tt.ratio, cfg)
			if err != nil {
				t.Fatalf("PriceSeats failed: %v", err)
			}
			if prices["F1"] != tt.wantF1 {
				t.Errorf("F1 priced %g at ratio %g, want %g", prices["F1"], tt.ratio, tt.wantF1)
			}
		})
	}
}

func TestPriceSeats_Deterministic(t *testing.T) {
	l, err := layout.Get(7)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	cfg := DefaultConfig()

	first, err := PriceSeats(l, 120, 0.45, cfg)
	if err != nil {
		t.Fatalf("PriceSeats failed: %v", err)
	}
	second, err := PriceSeats(l, 120, 0.45, cfg)
	if err != nil {
		t.Fatalf("PriceSeats failed on repeat: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("pricing is not deterministic for identical inputs")
	}
}

func TestPriceSeats_WholeUnits(t *testing.T) {
	l, err := layout.Get(9)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	prices, err := PriceSeats(l, 99.99, 0.5, DefaultConfig())
	if err != nil {
		t.Fatalf("PriceSeats failed: %v", err)
	}
	for id, p := range prices {
		if p != float64(int64(p)) {
			t.Errorf("seat %q priced %g, want a whole unit", id, p)
		}
	}
}

func TestPriceSeats_NegativeBase(t *testing.T) {
	l, err := layout.Get(5)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	if _, err := PriceSeats(l, -1, 1.0, DefaultConfig()); err == nil {
		t.Error("expected error for negative base price")
	}
}

func TestPriceCount(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		base  float64
		count int
		ratio float64
		want  float64
	}{
		{name: "flat demand", base: 100, count: 2, ratio: 1.0, want: 200},
		{name: "scarce demand", base: 100, count: 3, ratio: 0.1, want: 450},
		{name: "floor applies", base: 10, count: 2, ratio: 1.0, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceCount(tt.base, tt.count, tt.ratio, cfg)
			if err != nil {
				t.Fatalf("PriceCount failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("PriceCount = %g, want %g", got, tt.want)
			}
		})
	}

	if _, err := PriceCount(100, 0, 1.0, cfg); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestValidatePricing(t *testing.T) {
	l, err := layout.Get(5)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	cfg := DefaultConfig()

	prices, err := PriceSeats(l, 100, 1.0, cfg)
	if err != nil {
		t.Fatalf("PriceSeats failed: %v", err)
	}
	if violations := ValidatePricing(prices, l, cfg); len(violations) != 0 {
		t.Errorf("valid pricing flagged: %v", violations)
	}

	missing := map[string]float64{"F1": 200}
	if violations := ValidatePricing(missing, l, cfg); len(violations) == 0 {
		t.Error("expected violations for unpriced bookable seats")
	}

	withDriver := map[string]float64{"D1": 100, "F1": 200, "W1": 150, "W2": 150, "M1": 100}
	if violations := ValidatePricing(withDriver, l, cfg); len(violations) == 0 {
		t.Error("expected violation for priced driver seat")
	}

	outOfRange := map[string]float64{"F1": 20000, "W1": 150, "W2": 150, "M1": 100}
	if violations := ValidatePricing(outOfRange, l, cfg); len(violations) == 0 {
		t.Error("expected violation for price above maximum")
	}

	unknown := map[string]float64{"F1": 200, "W1": 150, "W2": 150, "M1": 100, "Z9": 75}
	if violations := ValidatePricing(unknown, l, cfg); len(violations) == 0 {
		t.Error("expected violation for unknown seat id")
	}
}
