package main

import (
	bookingrepo "seatwise/internal/bookings/repository"
	bookingsvc "seatwise/internal/bookings/service"
	bookingvalidator "seatwise/internal/bookings/validator"
	"seatwise/internal/events"
	"seatwise/internal/notify"
	"seatwise/internal/transfers/handler"
	"seatwise/internal/transfers/repository"
	"seatwise/internal/transfers/service"
	"seatwise/pkg/app"
	"seatwise/pkg/config"
)

const ServiceName = "transfers"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Transfers service")
	matcherService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTransferHandler(matcherService, cfg.Log))
	serverApp.Run()
}

// The matcher moves bookings through the ledger, so the transfers service
// carries its own ledger wired to the same collections the bookings service
// uses.
func initServices(cfg *config.Config) service.MatcherService {
	publisher, err := events.NewPublisherFromEnv(cfg.RideEventsTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	dispatcher := notify.NewGatewayDispatcher(cfg.NotifyGatewayURL, cfg.NotifyTimeout, cfg.Log)

	ledger := bookingsvc.NewLedgerService(
		bookingrepo.NewMongoBookingRepository(cfg),
		bookingrepo.NewMongoClaimRepository(cfg),
		bookingrepo.NewMongoRideLedgerRepository(cfg),
		bookingvalidator.NewReserveValidator(cfg.Log),
		publisher,
		dispatcher,
		cfg,
	)

	matcherService := service.NewMatcherService(
		repository.NewMongoTransferRepository(cfg),
		repository.NewMongoCandidateRepository(cfg),
		ledger,
		publisher,
		dispatcher,
		cfg,
	)

	cfg.Log.Info("Matcher service initialized", "database", cfg.MongoDatabaseName)
	return matcherService
}
