package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "seatwise"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPricingMinPrice = 50.0
	DefaultPricingMaxPrice = 10000.0

	DefaultTransferOfferTTL      = 5 * time.Minute
	DefaultTransferTimeTolerance = 2 * time.Hour
	DefaultMatcherTimeWeight     = 0.5
	DefaultMatcherVehicleWeight  = 0.3
	DefaultMatcherSeatWeight     = 0.2

	DefaultNotifyTimeout = 5 * time.Second

	DefaultRideEventsTopic = "ride-events"

	DefaultPaginationLimit = 100
)
