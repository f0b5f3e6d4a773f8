package pricing

import (
	"math"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/model"
)

// Config carries every pricing rule as explicit data so the engine stays a
// pure function and rules can differ per deployment.
type Config struct {
	Premiums map[model.SeatType]float64
	MinPrice float64
	MaxPrice float64

	// Demand multiplier thresholds over the occupancy ratio
	// (available seats / total seats).
	LowAvailability float64 // below this: HighDemandMultiplier
	MidAvailability float64 // below this: MidDemandMultiplier

	HighDemandMultiplier float64
	MidDemandMultiplier  float64
}

// DefaultConfig returns the standard premium table and demand curve.
func DefaultConfig() Config {
	return Config{
		Premiums: map[model.SeatType]float64{
			model.SeatPremium: 200,
			model.SeatFront:   100,
			model.SeatWindow:  50,
			model.SeatMiddle:  0,
			model.SeatEconomy: -50,
		},
		MinPrice:             50,
		MaxPrice:             10000,
		LowAvailability:      0.30,
		MidAvailability:      0.60,
		HighDemandMultiplier: 1.5,
		MidDemandMultiplier:  1.2,
	}
}

// PriceSeats prices every bookable seat of the layout:
// base price plus the seat-type premium, floored at the minimum, scaled by
// the demand multiplier, rounded to the nearest whole currency unit. Driver
// seats are never priced and are absent from the map.
func PriceSeats(l *model.VehicleLayout, basePrice float64, occupancyRatio float64, cfg Config) (map[string]float64, error) {
	if l == nil {
		return nil, apperrors.InvalidInput("layout is required")
	}
	if basePrice < 0 {
		return nil, apperrors.Validation("base price cannot be negative", map[string]any{
			"base_price": basePrice,
		})
	}

	multiplier := DemandMultiplier(occupancyRatio, cfg)
	prices := make(map[string]float64, l.BookableSeats)

	for _, seat := range l.Seats() {
		if !seat.Bookable || seat.Type == model.SeatDriver {
			continue
		}

		premium, ok := cfg.Premiums[seat.Type]
		if !ok {
			return nil, apperrors.Validation("no premium configured for seat type", map[string]any{
				"seat_id":   seat.ID,
				"seat_type": string(seat.Type),
			})
		}

		price := basePrice + premium
		if price < cfg.MinPrice {
			price = cfg.MinPrice
		}
		prices[seat.ID] = math.Round(price * multiplier)
	}

	return prices, nil
}

// PriceCount prices an aggregate reservation of count seats on a ride without
// seat assignment: the base price floored at the minimum, demand-scaled and
// rounded per seat, times the count.
func PriceCount(basePrice float64, count int, occupancyRatio float64, cfg Config) (float64, error) {
	if count < 1 {
		return 0, apperrors.InvalidInput("seat count must be at least 1")
	}
	if basePrice < 0 {
		return 0, apperrors.Validation("base price cannot be negative", map[string]any{
			"base_price": basePrice,
		})
	}

	price := basePrice
	if price < cfg.MinPrice {
		price = cfg.MinPrice
	}
	perSeat := math.Round(price * DemandMultiplier(occupancyRatio, cfg))
	return perSeat * float64(count), nil
}

// DemandMultiplier maps an occupancy ratio onto the demand curve. Scarce
// rides price up; half-full rides price up less; everything else is flat.
func DemandMultiplier(occupancyRatio float64, cfg Config) float64 {
	switch {
	case occupancyRatio < cfg.LowAvailability:
		return cfg.HighDemandMultiplier
	case occupancyRatio < cfg.MidAvailability:
		return cfg.MidDemandMultiplier
	default:
		return 1.0
	}
}
