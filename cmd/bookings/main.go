package main

import (
	"seatwise/internal/bookings/handler"
	"seatwise/internal/bookings/repository"
	"seatwise/internal/bookings/service"
	"seatwise/internal/bookings/validator"
	"seatwise/internal/events"
	"seatwise/internal/notify"
	"seatwise/pkg/app"
	"seatwise/pkg/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	ledgerService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(ledgerService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.LedgerService {
	publisher, err := events.NewPublisherFromEnv(cfg.RideEventsTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	dispatcher := notify.NewGatewayDispatcher(cfg.NotifyGatewayURL, cfg.NotifyTimeout, cfg.Log)

	reserveValidator := validator.NewReserveValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	claimRepo := repository.NewMongoClaimRepository(cfg)
	rideRepo := repository.NewMongoRideLedgerRepository(cfg)

	ledgerService := service.NewLedgerService(
		bookingRepo,
		claimRepo,
		rideRepo,
		reserveValidator,
		publisher,
		dispatcher,
		cfg,
	)

	cfg.Log.Info("Ledger service initialized", "database", cfg.MongoDatabaseName)
	return ledgerService
}
