package notify

import (
	"context"
	"net/http"
	"seatwise/pkg/client"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"
	"time"
)

// Dispatcher pushes passenger-facing notifications to the gateway. Delivery is
// fire and forget: the booking and transfer flows never block or fail on a
// notification.
type Dispatcher interface {
	BookingReserved(booking *model.Booking)
	BookingCancelled(booking *model.Booking)
	TransferOffered(request *model.TransferRequest, passengerID string)
}

type gatewayDispatcher struct {
	client  *client.HttpClient
	timeout time.Duration
	log     *logger.Logger
}

// NewGatewayDispatcher sends notifications over HTTP to the configured
// gateway. An empty gatewayURL yields a no-op dispatcher.
func NewGatewayDispatcher(gatewayURL string, timeout time.Duration, log *logger.Logger) Dispatcher {
	if gatewayURL == "" {
		log.Info("Notification gateway not configured, notifications disabled")
		return NoopDispatcher{}
	}
	return &gatewayDispatcher{
		client:  client.NewHttpClient(gatewayURL, timeout),
		timeout: timeout,
		log:     log,
	}
}

type notification struct {
	Kind        string `json:"kind"`
	PassengerID string `json:"passenger_id"`
	RideID      string `json:"ride_id,omitempty"`
	BookingID   string `json:"booking_id,omitempty"`
	TransferID  string `json:"transfer_id,omitempty"`
}

func (d *gatewayDispatcher) BookingReserved(booking *model.Booking) {
	d.send(notification{
		Kind:        "booking_reserved",
		PassengerID: booking.PassengerID,
		RideID:      booking.RideID,
		BookingID:   booking.ID,
	})
}

func (d *gatewayDispatcher) BookingCancelled(booking *model.Booking) {
	d.send(notification{
		Kind:        "booking_cancelled",
		PassengerID: booking.PassengerID,
		RideID:      booking.RideID,
		BookingID:   booking.ID,
	})
}

func (d *gatewayDispatcher) TransferOffered(request *model.TransferRequest, passengerID string) {
	d.send(notification{
		Kind:        "transfer_offered",
		PassengerID: passengerID,
		RideID:      request.CandidateRideID,
		TransferID:  request.ID,
	})
}

// send runs in its own goroutine with its own deadline so a slow gateway
// cannot hold up a request in flight.
func (d *gatewayDispatcher) send(n notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		resp, err := d.client.POST(ctx, "/notifications", n)
		if err != nil {
			d.log.Warn("Failed to deliver notification",
				"kind", n.Kind,
				"passenger_id", n.PassengerID,
				"error", err,
			)
			return
		}
		if resp.StatusCode >= http.StatusBadRequest {
			d.log.Warn("Notification gateway rejected notification",
				"kind", n.Kind,
				"passenger_id", n.PassengerID,
				"status", resp.StatusCode,
			)
		}
	}()
}

// NoopDispatcher drops all notifications.
type NoopDispatcher struct{}

func (NoopDispatcher) BookingReserved(*model.Booking) {}

func (NoopDispatcher) BookingCancelled(*model.Booking) {}

func (NoopDispatcher) TransferOffered(*model.TransferRequest, string) {}
