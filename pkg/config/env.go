package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPricingMinPrice = "PRICING_MIN_PRICE"
	EnvPricingMaxPrice = "PRICING_MAX_PRICE"

	EnvTransferOfferTTL      = "TRANSFER_OFFER_TTL"
	EnvTransferTimeTolerance = "TRANSFER_TIME_TOLERANCE"
	EnvMatcherTimeWeight     = "MATCHER_TIME_WEIGHT"
	EnvMatcherVehicleWeight  = "MATCHER_VEHICLE_WEIGHT"
	EnvMatcherSeatWeight     = "MATCHER_SEAT_WEIGHT"

	EnvNotifyGatewayURL = "NOTIFY_GATEWAY_URL"
	EnvNotifyTimeout    = "NOTIFY_TIMEOUT"

	EnvRideEventsTopic = "RIDE_EVENTS_TOPIC"
)
