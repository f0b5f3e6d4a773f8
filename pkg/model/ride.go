package model

import (
	"time"
)

type RideStatus string

const (
	RideActive    RideStatus = "active"
	RideCancelled RideStatus = "cancelled"
	RideCompleted RideStatus = "completed"
)

// Ride is the capacity ledger row. AvailableSeats always equals TotalSeats
// minus the seats held by pending/confirmed bookings; only the booking ledger
// mutates it after creation, and only through conditional writes.
type Ride struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Origin         string     `json:"origin" bson:"origin" validate:"required,min=2,max=100"`
	Destination    string     `json:"destination" bson:"destination" validate:"required,min=2,max=100"`
	TotalSeats     int        `json:"total_seats" bson:"total_seats" validate:"required,min=1,max=200"`
	AvailableSeats int        `json:"available_seats" bson:"available_seats" validate:"min=0"`
	BasePrice      float64    `json:"base_price" bson:"base_price" validate:"min=0"`
	Status         RideStatus `json:"status" bson:"status" validate:"required,oneof=active cancelled completed"`
	DepartureTime  time.Time  `json:"departure_time" bson:"departure_time" validate:"required"`
	VehicleBrand   string     `json:"vehicle_brand,omitempty" bson:"vehicle_brand,omitempty"`
	VehicleSegment string     `json:"vehicle_segment,omitempty" bson:"vehicle_segment,omitempty"`
	// SeatAssignment selects the booking mode for the whole ride: seat-level
	// reservations when true, aggregate seat counts when false. The two modes
	// never mix on one ride.
	SeatAssignment bool      `json:"seat_assignment" bson:"seat_assignment"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// OccupancyRatio is available seats over total seats, used to scale demand
// pricing.
func (r *Ride) OccupancyRatio() float64 {
	if r.TotalSeats == 0 {
		return 0
	}
	return float64(r.AvailableSeats) / float64(r.TotalSeats)
}
