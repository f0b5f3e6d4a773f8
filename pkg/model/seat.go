package model

// SeatType is the closed set of seat classifications. Pricing and layout
// validation switch exhaustively over these values; an unknown type is a
// layout violation, never a silent default.
type SeatType string

const (
	SeatDriver  SeatType = "driver"
	SeatFront   SeatType = "front"
	SeatWindow  SeatType = "window"
	SeatMiddle  SeatType = "middle"
	SeatPremium SeatType = "premium"
	SeatEconomy SeatType = "economy"
)

func (t SeatType) Valid() bool {
	switch t {
	case SeatDriver, SeatFront, SeatWindow, SeatMiddle, SeatPremium, SeatEconomy:
		return true
	}
	return false
}

type Seat struct {
	ID       string   `json:"id" bson:"id"`
	Type     SeatType `json:"type" bson:"type"`
	Bookable bool     `json:"bookable" bson:"bookable"`
	Label    string   `json:"label" bson:"label"`
}

type SeatRow struct {
	Row   int    `json:"row" bson:"row"`
	Seats []Seat `json:"seats" bson:"seats"`
}

// VehicleLayout is immutable once generated. A ride whose seat count changes
// gets a freshly generated layout; rows are never mutated in place.
type VehicleLayout struct {
	TotalSeats    int       `json:"total_seats" bson:"total_seats"`
	Rows          []SeatRow `json:"rows" bson:"rows"`
	BookableSeats int       `json:"bookable_seats" bson:"bookable_seats"`
}

// Seats flattens the rows in order.
func (l *VehicleLayout) Seats() []Seat {
	seats := make([]Seat, 0, l.TotalSeats)
	for _, row := range l.Rows {
		seats = append(seats, row.Seats...)
	}
	return seats
}

// Seat looks up a seat by id.
func (l *VehicleLayout) Seat(id string) (Seat, bool) {
	for _, row := range l.Rows {
		for _, seat := range row.Seats {
			if seat.ID == id {
				return seat, true
			}
		}
	}
	return Seat{}, false
}
