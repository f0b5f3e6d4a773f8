package pricing

import (
	"fmt"
	"math"
	"seatwise/pkg/model"
)

// ValidatePricing checks a price map against its layout and returns every
// violation: each bookable seat must carry a finite price inside
// [MinPrice, MaxPrice], and nothing else may be priced.
func ValidatePricing(prices map[string]float64, l *model.VehicleLayout, cfg Config) []string {
	var violations []string

	if l == nil {
		return []string{"layout is nil"}
	}

	priced := make(map[string]bool, len(prices))
	for id := range prices {
		priced[id] = true
	}

	for _, seat := range l.Seats() {
		if !seat.Bookable {
			if _, ok := prices[seat.ID]; ok {
				violations = append(violations, fmt.Sprintf("non-bookable seat %q must not be priced", seat.ID))
			}
			continue
		}

		price, ok := prices[seat.ID]
		if !ok {
			violations = append(violations, fmt.Sprintf("bookable seat %q has no price", seat.ID))
			continue
		}
		delete(priced, seat.ID)

		if math.IsNaN(price) || math.IsInf(price, 0) {
			violations = append(violations, fmt.Sprintf("seat %q has a non-finite price", seat.ID))
			continue
		}
		if price <= 0 {
			violations = append(violations, fmt.Sprintf("seat %q has non-positive price %g", seat.ID, price))
			continue
		}
		if price < cfg.MinPrice || price > cfg.MaxPrice {
			violations = append(violations, fmt.Sprintf("seat %q price %g outside [%g, %g]", seat.ID, price, cfg.MinPrice, cfg.MaxPrice))
		}
	}

	for id, stillPriced := range priced {
		if stillPriced {
			if _, ok := l.Seat(id); !ok {
				violations = append(violations, fmt.Sprintf("price map contains unknown seat %q", id))
			}
		}
	}

	return violations
}
