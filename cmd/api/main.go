package main

import (
	bookinghandler "github.com/MNhat168/sport-zone-sub002/internal/bookings/handler"
	bookingrepo "github.com/MNhat168/sport-zone-sub002/internal/bookings/repository"
	bookingservice "github.com/MNhat168/sport-zone-sub002/internal/bookings/service"
	"github.com/MNhat168/sport-zone-sub002/internal/bookings/validator"
	catalogrepo "github.com/MNhat168/sport-zone-sub002/internal/catalog/repository"
	healthhandler "github.com/MNhat168/sport-zone-sub002/internal/health/handler"
	"github.com/MNhat168/sport-zone-sub002/internal/payments/gateway"
	paymenthandler "github.com/MNhat168/sport-zone-sub002/internal/payments/handler"
	paymentrepo "github.com/MNhat168/sport-zone-sub002/internal/payments/repository"
	paymentservice "github.com/MNhat168/sport-zone-sub002/internal/payments/service"
	schedulehandler "github.com/MNhat168/sport-zone-sub002/internal/schedules/handler"
	schedulerepo "github.com/MNhat168/sport-zone-sub002/internal/schedules/repository"
	scheduleservice "github.com/MNhat168/sport-zone-sub002/internal/schedules/service"
	wallethandler "github.com/MNhat168/sport-zone-sub002/internal/wallets/handler"
	walletrepo "github.com/MNhat168/sport-zone-sub002/internal/wallets/repository"
	walletservice "github.com/MNhat168/sport-zone-sub002/internal/wallets/service"
	"github.com/MNhat168/sport-zone-sub002/pkg/app"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	"github.com/MNhat168/sport-zone-sub002/pkg/kafka"

	"github.com/joho/godotenv"
)

const ServiceName = "api"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	publisher, producer := newPublisher(cfg)
	if producer != nil {
		defer producer.Close()
	}

	scheduleRepo := schedulerepo.NewMongoScheduleRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	paymentRepo := paymentrepo.NewMongoPaymentRepository(cfg)
	walletRepo := walletrepo.NewMongoWalletRepository(cfg)
	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)

	allocator := scheduleservice.NewAllocator(scheduleRepo, cfg)
	payGateway := gateway.NewPayOSGateway(cfg)

	ledger := walletservice.NewLedgerService(walletRepo, bookingRepo, paymentRepo, payGateway, publisher, cfg)
	orchestrator := bookingservice.NewBookingOrchestrator(
		bookingRepo,
		paymentRepo,
		catalogRepo,
		allocator,
		validator.NewBookingValidator(cfg.Log),
		payGateway,
		publisher,
		cfg,
	)
	processor := paymentservice.NewPaymentEventProcessor(
		paymentRepo,
		bookingRepo,
		ledger,
		orchestrator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		healthhandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		bookinghandler.NewBookingHandler(orchestrator, cfg.Log),
		schedulehandler.NewScheduleHandler(allocator, orchestrator, cfg.Log),
		paymenthandler.NewPaymentHandler(processor, payGateway, publisher, cfg.Log),
		wallethandler.NewWalletHandler(ledger, cfg.Log),
	)
	serverApp.Run()
}

func newPublisher(cfg *config.Config) (events.Publisher, *kafka.Producer) {
	if !cfg.KafkaEnabled {
		cfg.Log.Warn("Kafka disabled, events will be dropped")
		return events.NewNoopPublisher(), nil
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log), producer
}
