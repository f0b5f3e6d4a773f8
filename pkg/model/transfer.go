package model

import "time"

type TransferStatus string

const (
	TransferOffered  TransferStatus = "offered"
	TransferAccepted TransferStatus = "accepted"
	TransferDeclined TransferStatus = "declined"
	TransferExpired  TransferStatus = "expired"
)

type TransferDecision string

const (
	DecisionAccept  TransferDecision = "accept"
	DecisionDecline TransferDecision = "decline"
)

// TransferRequest is a time-bounded offer to move an existing booking to a
// different ride. It is terminated by the passenger's response or by deadline
// expiry and is never reopened.
type TransferRequest struct {
	ID                 string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	OriginalBookingID  string         `json:"original_booking_id" bson:"original_booking_id" validate:"required,uuid4"`
	CandidateRideID    string         `json:"candidate_ride_id" bson:"candidate_ride_id" validate:"required,uuid4"`
	CompatibilityScore float64        `json:"compatibility_score" bson:"compatibility_score"`
	Reason             string         `json:"reason" bson:"reason" validate:"required,min=2,max=200"`
	Status             TransferStatus `json:"status" bson:"status" validate:"required,oneof=offered accepted declined expired"`
	ExpiresAt          time.Time      `json:"expires_at" bson:"expires_at" validate:"required"`
	CreatedAt          time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// TransferCriteria describes what an alternate ride must match.
type TransferCriteria struct {
	Origin         string    `json:"origin" validate:"required,min=2,max=100"`
	Destination    string    `json:"destination" validate:"required,min=2,max=100"`
	DepartureTime  time.Time `json:"departure_time" validate:"required"`
	VehicleBrand   string    `json:"vehicle_brand,omitempty"`
	VehicleSegment string    `json:"vehicle_segment,omitempty"`
	SeatType       SeatType  `json:"seat_type,omitempty"`
	ExcludeRideID  string    `json:"exclude_ride_id,omitempty"`
}

// TransferCandidate is a scored, ranked alternate ride.
type TransferCandidate struct {
	RideID             string    `json:"ride_id"`
	CompatibilityScore float64   `json:"compatibility_score"`
	Priority           int       `json:"priority"`
	Reason             string    `json:"reason"`
	DepartureTime      time.Time `json:"departure_time"`
}
