package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrRideNotFound = errors.New("ride not found")

	ErrSeatClaimed = errors.New("seat already claimed on this ride")

	ErrPassengerClaimed = errors.New("passenger already holds a booking on this ride")

	ErrInsufficientCapacity = errors.New("ride has insufficient available seats")
)
