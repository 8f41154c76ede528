package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sunbird/cmd/consumers/jobs"
	"sunbird/internal/config"
	"sunbird/internal/consumers"
	"sunbird/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log := logger.Get()
	log.Info("Starting consumers service...")

	// Отдельный client ID, иначе NATS выкинет API-инстанс
	cfg.NATS.ClientID = "sunbird-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	captureJob := jobs.NewPaymentCaptureJob(
		consumerService.Bookings(),
		consumerService.Machine(),
		cfg.CaptureWindow,
		cfg.SweepInterval,
	)
	captureJob.Start(ctx)

	completionJob := jobs.NewCompletionJob(
		consumerService.Bookings(),
		consumerService.Machine(),
		cfg.SweepInterval,
	)
	completionJob.Start(ctx)

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	captureJob.Stop()
	completionJob.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
