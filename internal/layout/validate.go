package layout

import (
	"fmt"
	"seatwise/pkg/model"
)

// Validate checks the structural invariants of a layout and returns every
// violation found. A layout produced by Get must validate clean.
func Validate(l *model.VehicleLayout) []string {
	var violations []string

	if l == nil {
		return []string{"layout is nil"}
	}

	seen := make(map[string]bool)
	drivers := 0
	bookable := 0
	total := 0

	for _, r := range l.Rows {
		if len(r.Seats) == 0 {
			violations = append(violations, fmt.Sprintf("row %d is empty", r.Row))
		}
		for _, s := range r.Seats {
			total++
			if s.ID == "" {
				violations = append(violations, fmt.Sprintf("row %d contains a seat with no id", r.Row))
				continue
			}
			if seen[s.ID] {
				violations = append(violations, fmt.Sprintf("duplicate seat id %q", s.ID))
			}
			seen[s.ID] = true

			if !s.Type.Valid() {
				violations = append(violations, fmt.Sprintf("seat %q has unknown type %q", s.ID, s.Type))
			}
			if s.Type == model.SeatDriver {
				drivers++
				if s.Bookable {
					violations = append(violations, fmt.Sprintf("driver seat %q must not be bookable", s.ID))
				}
			}
			if s.Bookable {
				bookable++
			}
		}
	}

	if drivers != 1 {
		violations = append(violations, fmt.Sprintf("layout must have exactly one driver seat, found %d", drivers))
	}
	if total != l.TotalSeats {
		violations = append(violations, fmt.Sprintf("layout declares %d seats but contains %d", l.TotalSeats, total))
	}
	if bookable != l.BookableSeats {
		violations = append(violations, fmt.Sprintf("layout declares %d bookable seats but contains %d", l.BookableSeats, bookable))
	}

	return violations
}
