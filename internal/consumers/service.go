package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gotrip/internal/auth"
	"gotrip/internal/config"
	"gotrip/internal/database"
	"gotrip/internal/external"
	"gotrip/internal/mailer"
	"gotrip/internal/messaging"
	"gotrip/internal/models"
	"gotrip/internal/notify"
	"gotrip/internal/repository"
	"gotrip/internal/service"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

// ConsumerService runs the NATS subscribers that send mail and process refunds.
type ConsumerService struct {
	db         *database.DB
	nats       *messaging.NATSClient
	dispatcher *notify.Dispatcher
	services   *service.Services
	handlers   *Handlers
	subs       []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	mail, err := mailer.New(cfg.Mail)
	if err != nil {
		natsClient.Close()
		db.Close()
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}
	if !mail.Configured() {
		slog.Warn("SMTP not configured, notifications will be acknowledged without sending")
	}

	// Notifications raised here, e.g. by the completion job, go back through
	// NATS so the notification subscriber below sends them.
	dispatcher := notify.NewDispatcher(cfg.Notify, notify.PublisherSink(natsClient))

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, auth.NewManager(cfg.Auth), service.Deps{
		Notifier:  dispatcher,
		Publisher: natsClient,
	})

	paymentClient := external.NewPaymentClient(cfg.Payment)

	return &ConsumerService{
		db:         db,
		nats:       natsClient,
		dispatcher: dispatcher,
		services:   services,
		handlers:   NewHandlers(mail, paymentClient, services.Bookings),
	}, nil
}

// Bookings exposes the booking service for the background jobs.
func (cs *ConsumerService) Bookings() *service.BookingService {
	return cs.services.Bookings
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")
	cs.dispatcher.Start()

	for _, subject := range models.NotificationSubjects {
		sub, err := cs.nats.SubscribeQueue(subject, queueGroup, cs.handlers.HandleNotification)
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	sub, err := cs.nats.SubscribeQueue(models.EventBookingRefundRequested, queueGroup, cs.handlers.HandleRefundRequested)
	if err != nil {
		return err
	}
	cs.subs = append(cs.subs, sub)

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close keeps the durable subscriptions registered, unlike Unsubscribe.
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Warn("Error closing subscription", "error", err)
		}
	}

	if err := cs.dispatcher.Stop(ctx); err != nil {
		slog.Warn("Notification queue not drained", "error", err)
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
