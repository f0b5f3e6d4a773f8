package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// HoldsCapacity reports whether a booking in this status counts against the
// ride's available seats.
func (s BookingStatus) HoldsCapacity() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// ReserveRequest is the inbound shape of a reservation. Exactly one of SeatID
// or SeatsBooked applies, depending on the ride's booking mode. The
// idempotency key lets a retried request replay its original booking instead
// of conflicting with it.
type ReserveRequest struct {
	RideID         string `json:"ride_id" validate:"required,uuid4"`
	PassengerID    string `json:"passenger_id" validate:"required,min=1,max=100"`
	SeatID         string `json:"seat_id,omitempty" validate:"omitempty,min=1,max=20"`
	SeatsBooked    int    `json:"seats_booked,omitempty" validate:"omitempty,min=1,max=200"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,max=128"`
}

// Booking is a claim on seats of one ride. SeatID is set in seat-level mode;
// SeatsBooked is always the held count (1 in seat-level mode). TotalPrice is
// the price at the moment of booking and is never recomputed. A booking never
// moves to another ride: a transfer creates a new booking and cancels this one.
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	RideID         string        `json:"ride_id" bson:"ride_id" validate:"required,uuid4"`
	PassengerID    string        `json:"passenger_id" bson:"passenger_id" validate:"required,min=1,max=100"`
	SeatID         string        `json:"seat_id,omitempty" bson:"seat_id,omitempty"`
	SeatsBooked    int           `json:"seats_booked" bson:"seats_booked" validate:"required,min=1,max=200"`
	TotalPrice     float64       `json:"total_price" bson:"total_price" validate:"min=0"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	IdempotencyKey string        `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty" validate:"omitempty,max=128"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}
