package config

import (
	"fmt"
	"os"
	"regexp"
	"seatwise/pkg/client"
	"seatwise/pkg/logger"
	"strconv"
	"time"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	PricingMinPrice float64
	PricingMaxPrice float64

	TransferOfferTTL      time.Duration
	TransferTimeTolerance time.Duration
	MatcherTimeWeight     float64
	MatcherVehicleWeight  float64
	MatcherSeatWeight     float64

	NotifyGatewayURL string
	NotifyTimeout    time.Duration

	RideEventsTopic string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		PricingMinPrice: getEnvFloat(EnvPricingMinPrice, DefaultPricingMinPrice),
		PricingMaxPrice: getEnvFloat(EnvPricingMaxPrice, DefaultPricingMaxPrice),

		TransferOfferTTL:      getEnvDuration(EnvTransferOfferTTL, DefaultTransferOfferTTL),
		TransferTimeTolerance: getEnvDuration(EnvTransferTimeTolerance, DefaultTransferTimeTolerance),
		MatcherTimeWeight:     getEnvFloat(EnvMatcherTimeWeight, DefaultMatcherTimeWeight),
		MatcherVehicleWeight:  getEnvFloat(EnvMatcherVehicleWeight, DefaultMatcherVehicleWeight),
		MatcherSeatWeight:     getEnvFloat(EnvMatcherSeatWeight, DefaultMatcherSeatWeight),

		NotifyGatewayURL: getEnvStr(EnvNotifyGatewayURL, ""),
		NotifyTimeout:    getEnvDuration(EnvNotifyTimeout, DefaultNotifyTimeout),

		RideEventsTopic: getEnvStr(EnvRideEventsTopic, DefaultRideEventsTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	for name, d := range map[string]time.Duration{
		"RequestTimeout":        cfg.RequestTimeout,
		"ReadTimeout":           cfg.ReadTimeout,
		"WriteTimeout":          cfg.WriteTimeout,
		"IdleTimeout":           cfg.IdleTimeout,
		"ShutdownTimeout":       cfg.ShutdownTimeout,
		"TransferOfferTTL":      cfg.TransferOfferTTL,
		"TransferTimeTolerance": cfg.TransferTimeTolerance,
		"NotifyTimeout":         cfg.NotifyTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.PricingMinPrice < 0 {
		errs = append(errs, fmt.Sprintf("PricingMinPrice cannot be negative, got: %g", cfg.PricingMinPrice))
	}
	if cfg.PricingMaxPrice <= cfg.PricingMinPrice {
		errs = append(errs, fmt.Sprintf("PricingMaxPrice (%g) must be greater than PricingMinPrice (%g)", cfg.PricingMaxPrice, cfg.PricingMinPrice))
	}

	weightSum := cfg.MatcherTimeWeight + cfg.MatcherVehicleWeight + cfg.MatcherSeatWeight
	if cfg.MatcherTimeWeight < 0 || cfg.MatcherVehicleWeight < 0 || cfg.MatcherSeatWeight < 0 || weightSum <= 0 {
		errs = append(errs, fmt.Sprintf("matcher weights must be non-negative and sum to a positive value, got: %g/%g/%g",
			cfg.MatcherTimeWeight, cfg.MatcherVehicleWeight, cfg.MatcherSeatWeight))
	}

	if cfg.RideEventsTopic == "" {
		errs = append(errs, "RideEventsTopic cannot be empty")
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"pricing_min_price", cfg.PricingMinPrice,
		"pricing_max_price", cfg.PricingMaxPrice,
		"transfer_offer_ttl", cfg.TransferOfferTTL,
		"transfer_time_tolerance", cfg.TransferTimeTolerance,
		"matcher_time_weight", cfg.MatcherTimeWeight,
		"matcher_vehicle_weight", cfg.MatcherVehicleWeight,
		"matcher_seat_weight", cfg.MatcherSeatWeight,
		"notify_gateway_set", cfg.NotifyGatewayURL != "",
		"notify_timeout", cfg.NotifyTimeout,
		"ride_events_topic", cfg.RideEventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
