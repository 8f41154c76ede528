package jobs

import (
	"context"
	"log/slog"
	"time"

	"sunbird/internal/lifecycle"
	"sunbird/internal/repository"
)

const captureBatchSize = 100

// PaymentCaptureJob converts uncaptured holds into transfers once the
// occurrence date gets close enough. Capture is deliberately deferred so an
// operator decline or a tourist cancellation before the trip only ever voids
// a hold.
type PaymentCaptureJob struct {
	bookingRepo   *repository.BookingRepository
	machine       *lifecycle.Machine
	captureWindow time.Duration
	interval      time.Duration
	ticker        *time.Ticker
	done          chan bool
}

func NewPaymentCaptureJob(bookingRepo *repository.BookingRepository, machine *lifecycle.Machine, captureWindow, interval time.Duration) *PaymentCaptureJob {
	return &PaymentCaptureJob{
		bookingRepo:   bookingRepo,
		machine:       machine,
		captureWindow: captureWindow,
		interval:      interval,
		done:          make(chan bool),
	}
}

func (j *PaymentCaptureJob) Start(ctx context.Context) {
	slog.Info("Starting payment capture job",
		"capture_window", j.captureWindow,
		"check_interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Payment capture job stopped")
				return
			}
		}
	}()
}

func (j *PaymentCaptureJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *PaymentCaptureJob) sweep(ctx context.Context) {
	bookings, err := j.bookingRepo.GetCapturable(ctx, j.captureWindow, captureBatchSize)
	if err != nil {
		slog.Error("Failed to get capturable bookings", "error", err)
		return
	}

	if len(bookings) == 0 {
		return
	}

	slog.Info("Found bookings to capture", "count", len(bookings))

	for _, booking := range bookings {
		if err := j.machine.Capture(ctx, booking.ID); err != nil {
			// A lost lock just means the webhook or another replica got here
			// first; the next sweep re-checks.
			slog.Error("Failed to capture booking payment",
				"error", err,
				"booking_id", booking.ID,
				"reference", booking.Reference)
			continue
		}
		slog.Info("Captured booking payment",
			"booking_id", booking.ID,
			"reference", booking.Reference,
			"amount", booking.TotalAmount)
	}
}
