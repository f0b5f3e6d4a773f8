package layout

import (
	"fmt"
	apperrors "seatwise/pkg/errors"
	"seatwise/pkg/model"
)

// Get returns the canonical layout for a vehicle of totalSeats seats. It is
// pure and deterministic: the same count always yields the same layout.
// Known capacities get a hand-designed layout; anything else gets the generic
// fallback of one driver seat plus totalSeats-1 bookable seats.
func Get(totalSeats int) (*model.VehicleLayout, error) {
	if totalSeats < 1 {
		return nil, apperrors.Validation("total seats must be at least 1", map[string]any{
			"total_seats": totalSeats,
		})
	}

	var rows []model.SeatRow
	switch totalSeats {
	case 2:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
		}
	case 4:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("W1", model.SeatWindow), seat("W2", model.SeatWindow)),
		}
	case 5:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("W1", model.SeatWindow), seat("M1", model.SeatMiddle), seat("W2", model.SeatWindow)),
		}
	case 6:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("P1", model.SeatPremium), seat("P2", model.SeatPremium)),
			row(3, seat("W1", model.SeatWindow), seat("W2", model.SeatWindow)),
		}
	case 7:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("P1", model.SeatPremium), seat("P2", model.SeatPremium)),
			row(3, seat("W1", model.SeatWindow), seat("M1", model.SeatMiddle), seat("W2", model.SeatWindow)),
		}
	case 8:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("W1", model.SeatWindow), seat("M1", model.SeatMiddle), seat("W2", model.SeatWindow)),
			row(3, seat("W3", model.SeatWindow), seat("M2", model.SeatMiddle), seat("W4", model.SeatWindow)),
		}
	case 9:
		rows = []model.SeatRow{
			row(1, driver(), seat("F1", model.SeatFront)),
			row(2, seat("W1", model.SeatWindow), seat("M1", model.SeatMiddle), seat("W2", model.SeatWindow)),
			row(3, seat("W3", model.SeatWindow), seat("M2", model.SeatMiddle), seat("W4", model.SeatWindow)),
			row(4, seat("E1", model.SeatEconomy)),
		}
	default:
		rows = fallbackRows(totalSeats)
	}

	return &model.VehicleLayout{
		TotalSeats:    totalSeats,
		Rows:          rows,
		BookableSeats: totalSeats - 1,
	}, nil
}

// fallbackRows builds the generic layout: the driver seat, then bookable
// seats S2..SN in rows of three.
func fallbackRows(totalSeats int) []model.SeatRow {
	rows := []model.SeatRow{row(1, driver())}
	current := model.SeatRow{Row: 2}

	for i := 2; i <= totalSeats; i++ {
		current.Seats = append(current.Seats, seat(fmt.Sprintf("S%d", i), model.SeatMiddle))
		if len(current.Seats) == 3 {
			rows = append(rows, current)
			current = model.SeatRow{Row: current.Row + 1}
		}
	}
	if len(current.Seats) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func driver() model.Seat {
	return model.Seat{ID: "D1", Type: model.SeatDriver, Bookable: false, Label: "Driver"}
}

func seat(id string, t model.SeatType) model.Seat {
	return model.Seat{ID: id, Type: t, Bookable: true, Label: label(id, t)}
}

func label(id string, t model.SeatType) string {
	switch t {
	case model.SeatFront:
		return "Front " + id
	case model.SeatWindow:
		return "Window " + id
	case model.SeatMiddle:
		return "Middle " + id
	case model.SeatPremium:
		return "Premium " + id
	case model.SeatEconomy:
		return "Economy " + id
	case model.SeatDriver:
		return "Driver"
	}
	return id
}

func row(n int, seats ...model.Seat) model.SeatRow {
	return model.SeatRow{Row: n, Seats: seats}
}
