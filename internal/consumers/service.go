package consumers

import (
	"context"
	"log/slog"

	"sunbird/internal/cache"
	"sunbird/internal/config"
	"sunbird/internal/database"
	"sunbird/internal/external"
	"sunbird/internal/lifecycle"
	"sunbird/internal/messaging"
	"sunbird/internal/models"
	"sunbird/internal/repository"
)

// ConsumerService owns the event subscriptions and the shared plumbing the
// background jobs run on.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	locker   *cache.BookingLocker
	repos    *repository.Repositories
	machine  *lifecycle.Machine
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	locker, err := cache.NewBookingLocker(cfg.Redis)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)

	paymentClient := external.NewPaymentClient(cfg.Payment)
	notifyClient := external.NewNotifyClient(cfg.Notify)

	machine := lifecycle.NewMachine(repos.Bookings, repos.Occurrences, paymentClient, locker, natsClient)
	handlers := NewHandlers(repos, notifyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		locker:   locker,
		repos:    repos,
		machine:  machine,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	_, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated)
	if err != nil {
		return err
	}

	for _, subject := range []string{
		models.EventBookingConfirmed,
		models.EventBookingDeclined,
		models.EventBookingCancelled,
		models.EventBookingCompleted,
	} {
		if _, err := cs.nats.SubscribeQueue(subject, "consumers", cs.handlers.HandleBookingStatus); err != nil {
			return err
		}
	}

	_, err = cs.nats.SubscribeQueue(models.EventPaymentCaptured, "consumers", cs.handlers.HandlePaymentCaptured)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventPaymentRefunded, "consumers", cs.handlers.HandlePaymentRefunded)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// Machine exposes the state machine for the sweep jobs.
func (cs *ConsumerService) Machine() *lifecycle.Machine {
	return cs.machine
}

// Bookings exposes the booking repository for the sweep jobs.
func (cs *ConsumerService) Bookings() *repository.BookingRepository {
	return cs.repos.Bookings
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.locker != nil {
		if err := cs.locker.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
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
