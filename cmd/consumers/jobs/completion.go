package jobs

import (
	"context"
	"log/slog"
	"time"

	"sunbird/internal/lifecycle"
	"sunbird/internal/repository"
)

const completionBatchSize = 100

// CompletionJob settles confirmed, captured bookings whose occurrence date
// has passed. Completion unlocks rebooking for the tourist and closes the
// lifecycle.
type CompletionJob struct {
	bookingRepo *repository.BookingRepository
	machine     *lifecycle.Machine
	interval    time.Duration
	ticker      *time.Ticker
	done        chan bool
}

func NewCompletionJob(bookingRepo *repository.BookingRepository, machine *lifecycle.Machine, interval time.Duration) *CompletionJob {
	return &CompletionJob{
		bookingRepo: bookingRepo,
		machine:     machine,
		interval:    interval,
		done:        make(chan bool),
	}
}

func (j *CompletionJob) Start(ctx context.Context) {
	slog.Info("Starting completion job", "check_interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Completion job stopped")
				return
			}
		}
	}()
}

func (j *CompletionJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *CompletionJob) sweep(ctx context.Context) {
	bookings, err := j.bookingRepo.GetCompletable(ctx, completionBatchSize)
	if err != nil {
		slog.Error("Failed to get completable bookings", "error", err)
		return
	}

	if len(bookings) == 0 {
		return
	}

	slog.Info("Found bookings to complete", "count", len(bookings))

	for _, booking := range bookings {
		if err := j.machine.Complete(ctx, booking.ID); err != nil {
			slog.Error("Failed to complete booking",
				"error", err,
				"booking_id", booking.ID,
				"reference", booking.Reference)
			continue
		}
		slog.Info("Completed booking",
			"booking_id", booking.ID,
			"reference", booking.Reference)
	}
}
