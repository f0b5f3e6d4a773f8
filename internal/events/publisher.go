package events

import (
	"context"
	"os"
	"seatwise/pkg/kafka"
	kafka_config "seatwise/pkg/kafka/config"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"
)

// Event types carried on the ride events topic. Every event is keyed by ride
// id so consumers see each ride's history in order.
const (
	EventRideCreated      = "ride.created"
	EventBookingReserved  = "booking.reserved"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventTransferOffered  = "transfer.offered"
	EventTransferResolved = "transfer.resolved"
)

// Publisher emits advisory domain events. Publishing is best effort: the
// ledger is the source of truth and a failed publish never fails the
// operation that produced it.
type Publisher interface {
	RideCreated(ctx context.Context, ride *model.Ride)
	BookingEvent(ctx context.Context, eventType string, booking *model.Booking)
	TransferEvent(ctx context.Context, eventType string, rideID string, request *model.TransferRequest)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// NewKafkaPublisher builds a publisher on the given topic. The source tags
// every event with the emitting service.
func NewKafkaPublisher(kafkaCfg *kafka_config.Config, topic string, source string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(kafkaCfg, topic)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) RideCreated(ctx context.Context, ride *model.Ride) {
	p.publish(ctx, EventRideCreated, ride.ID, ride)
}

func (p *kafkaPublisher) BookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	p.publish(ctx, eventType, booking.RideID, booking)
}

func (p *kafkaPublisher) TransferEvent(ctx context.Context, eventType string, rideID string, request *model.TransferRequest) {
	p.publish(ctx, eventType, rideID, request)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
		return
	}

	p.log.Debug("Event published", "event_type", eventType, "key", key)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NewPublisherFromEnv builds a Kafka publisher when brokers are configured
// and a noop otherwise. Events are advisory, so a service can run without
// Kafka at all.
func NewPublisherFromEnv(topic string, source string, log *logger.Logger) (Publisher, error) {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		log.Info("No Kafka brokers configured, events disabled")
		return NoopPublisher{}, nil
	}
	return NewKafkaPublisher(kafka_config.Load(), topic, source, log)
}

// NoopPublisher drops all events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) RideCreated(context.Context, *model.Ride) {}

func (NoopPublisher) BookingEvent(context.Context, string, *model.Booking) {}

func (NoopPublisher) TransferEvent(context.Context, string, string, *model.TransferRequest) {}

func (NoopPublisher) Close() error { return nil }
