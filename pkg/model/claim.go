package model

import "time"

// Claims are the uniqueness arbiters behind the booking ledger. Each claim is
// inserted with a deterministic _id so that the collection's primary-key
// constraint, not a check-then-write pair, decides which concurrent caller
// wins. Claims are released by the ledger when a booking stops holding
// capacity; they never expire on their own.

// SeatClaim marks one physical seat of a ride as held.
type SeatClaim struct {
	ID        string    `bson:"_id" json:"id"`
	RideID    string    `bson:"ride_id" json:"ride_id"`
	SeatID    string    `bson:"seat_id" json:"seat_id"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// PassengerClaim enforces at most one active booking per passenger per ride.
type PassengerClaim struct {
	ID          string    `bson:"_id" json:"id"`
	RideID      string    `bson:"ride_id" json:"ride_id"`
	PassengerID string    `bson:"passenger_id" json:"passenger_id"`
	BookingID   string    `bson:"booking_id" json:"booking_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func SeatClaimID(rideID, seatID string) string {
	return rideID + ":" + seatID
}

func PassengerClaimID(rideID, passengerID string) string {
	return rideID + ":" + passengerID
}
