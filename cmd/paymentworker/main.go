package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	bookingrepo "github.com/MNhat168/sport-zone-sub002/internal/bookings/repository"
	bookingservice "github.com/MNhat168/sport-zone-sub002/internal/bookings/service"
	"github.com/MNhat168/sport-zone-sub002/internal/bookings/validator"
	catalogrepo "github.com/MNhat168/sport-zone-sub002/internal/catalog/repository"
	"github.com/MNhat168/sport-zone-sub002/internal/payments/gateway"
	paymentrepo "github.com/MNhat168/sport-zone-sub002/internal/payments/repository"
	paymentservice "github.com/MNhat168/sport-zone-sub002/internal/payments/service"
	schedulerepo "github.com/MNhat168/sport-zone-sub002/internal/schedules/repository"
	scheduleservice "github.com/MNhat168/sport-zone-sub002/internal/schedules/service"
	walletrepo "github.com/MNhat168/sport-zone-sub002/internal/wallets/repository"
	walletservice "github.com/MNhat168/sport-zone-sub002/internal/wallets/service"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	"github.com/MNhat168/sport-zone-sub002/pkg/kafka"

	"github.com/joho/godotenv"
)

const (
	ServiceName   = "paymentworker"
	consumerGroup = "paymentworker"
)

// The worker replays payment events off the bus through the same processor
// the webhook drives. Processing is idempotent, so webhook and worker can
// both observe the same event safely.
func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled {
		cfg.Log.Fatal("Payment worker requires Kafka to be enabled")
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()
	publisher := events.NewKafkaPublisher(producer, ServiceName, cfg.Log)

	processor := initProcessor(cfg, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	successConsumer := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, events.TopicPaymentSuccess)
	expiredConsumer := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, events.TopicPaymentExpired)
	defer successConsumer.Close()
	defer expiredConsumer.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		cfg.Log.Info("Consuming", "topic", events.TopicPaymentSuccess)
		err := successConsumer.Run(ctx, func(ctx context.Context, msg kafka.Message) error {
			var event events.PaymentEvent
			if err := msg.DecodeValue(&event); err != nil {
				cfg.Log.Error("Dropping undecodable payment event",
					"topic", msg.Topic,
					"event_id", msg.GetEventID(),
					"error", err,
				)
				return nil
			}
			return processor.OnPaymentSuccess(ctx, &event)
		})
		if err != nil && ctx.Err() == nil {
			cfg.Log.Error("Success consumer stopped", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		cfg.Log.Info("Consuming", "topic", events.TopicPaymentExpired)
		err := expiredConsumer.Run(ctx, func(ctx context.Context, msg kafka.Message) error {
			var event events.PaymentEvent
			if err := msg.DecodeValue(&event); err != nil {
				cfg.Log.Error("Dropping undecodable payment event",
					"topic", msg.Topic,
					"event_id", msg.GetEventID(),
					"error", err,
				)
				return nil
			}
			return processor.OnPaymentFailedOrExpired(ctx, &event)
		})
		if err != nil && ctx.Err() == nil {
			cfg.Log.Error("Expired consumer stopped", "error", err)
		}
	}()

	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received")
	wg.Wait()
	cfg.Log.Info("Payment worker stopped")
}

func initProcessor(cfg *config.Config, publisher events.Publisher) paymentservice.PaymentEventProcessor {
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

	return paymentservice.NewPaymentEventProcessor(
		paymentRepo,
		bookingRepo,
		ledger,
		orchestrator,
		publisher,
		cfg,
	)
}
