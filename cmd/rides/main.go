package main

import (
	"seatwise/internal/events"
	"seatwise/internal/rides/handler"
	"seatwise/internal/rides/repository"
	"seatwise/internal/rides/service"
	"seatwise/internal/rides/validator"
	"seatwise/pkg/app"
	"seatwise/pkg/config"
)

const ServiceName = "rides"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Rides service")
	rideService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRideHandler(rideService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RideService {
	publisher, err := events.NewPublisherFromEnv(cfg.RideEventsTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	rideValidator := validator.NewRideValidator(cfg.Log)
	rideRepo := repository.NewMongoRideRepository(cfg)
	rideService := service.NewRideService(
		rideRepo,
		rideValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Ride service initialized", "database", cfg.MongoDatabaseName)
	return rideService
}
