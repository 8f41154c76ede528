package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"sunbird/internal/external"
	"sunbird/internal/models"
	"sunbird/internal/repository"
)

type Handlers struct {
	repos        *repository.Repositories
	notifyClient *external.NotifyClient
}

func NewHandlers(repos *repository.Repositories, notifyClient *external.NotifyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		notifyClient: notifyClient,
	}
}

// HandleBookingCreated sends the intake confirmation to the tourist.
func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Processing booking created event",
		"booking_id", event.BookingID,
		"reference", event.Reference)

	notification := external.Notification{
		Recipient: event.TouristEmail,
		Subject:   "Booking request received",
		Reference: event.Reference,
		Status:    event.Status,
		Body:      fmt.Sprintf("Your booking %s is awaiting operator confirmation.", event.Reference),
	}
	if err := h.notifyClient.Send(context.Background(), notification); err != nil {
		slog.Error("Failed to send booking created notification",
			"error", err,
			"booking_id", event.BookingID)
		// Best effort: ack anyway, a redelivery would just duplicate email
	}

	m.Ack()
}

// HandleBookingStatus notifies the tourist about any lifecycle transition.
func (h *Handlers) HandleBookingStatus(m *stan.Msg) {
	var event models.BookingStatusEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking status event", "error", err)
		return
	}

	slog.Info("Processing booking status event",
		"booking_id", event.BookingID,
		"status", event.Status,
		"payment_status", event.PaymentStatus)

	ctx := context.Background()
	tourist, err := h.repos.Tourists.GetByID(ctx, event.TouristID)
	if err != nil || tourist == nil {
		slog.Error("Failed to resolve tourist for notification",
			"error", err,
			"tourist_id", event.TouristID)
		m.Ack()
		return
	}

	notification := external.Notification{
		Recipient: tourist.Email,
		Subject:   subjectFor(event.Status),
		Reference: event.Reference,
		Status:    event.Status,
		Body:      bodyFor(&event),
	}
	if err := h.notifyClient.Send(ctx, notification); err != nil {
		slog.Error("Failed to send booking status notification",
			"error", err,
			"booking_id", event.BookingID)
	}

	m.Ack()
}

// HandlePaymentCaptured records the settlement split in the log trail.
func (h *Handlers) HandlePaymentCaptured(m *stan.Msg) {
	var event models.PaymentCapturedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment captured event", "error", err)
		return
	}

	slog.Info("Payment captured",
		"booking_id", event.BookingID,
		"reference", event.Reference,
		"total_amount", event.TotalAmount,
		"operator_amount", event.OperatorAmount,
		"platform_fee", event.PlatformFee)

	m.Ack()
}

// HandlePaymentRefunded tells the tourist their money is on the way back.
func (h *Handlers) HandlePaymentRefunded(m *stan.Msg) {
	var event models.PaymentRefundedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment refunded event", "error", err)
		return
	}

	slog.Info("Processing payment refunded event",
		"booking_id", event.BookingID,
		"voided", event.Voided)

	ctx := context.Background()
	booking, err := h.repos.Bookings.GetByID(ctx, event.BookingID)
	if err != nil || booking == nil {
		slog.Error("Failed to load booking for refund notification",
			"error", err,
			"booking_id", event.BookingID)
		m.Ack()
		return
	}

	tourist, err := h.repos.Tourists.GetByID(ctx, booking.TouristID)
	if err != nil || tourist == nil {
		slog.Error("Failed to resolve tourist for refund notification",
			"error", err,
			"tourist_id", booking.TouristID)
		m.Ack()
		return
	}

	body := fmt.Sprintf("The hold for booking %s has been released.", event.Reference)
	if !event.Voided {
		body = fmt.Sprintf("A refund of %d has been issued for booking %s.", event.Amount, event.Reference)
	}

	notification := external.Notification{
		Recipient: tourist.Email,
		Subject:   "Payment released",
		Reference: event.Reference,
		Status:    models.PaymentRefunded,
		Body:      body,
	}
	if err := h.notifyClient.Send(ctx, notification); err != nil {
		slog.Error("Failed to send refund notification",
			"error", err,
			"booking_id", event.BookingID)
	}

	m.Ack()
}

func subjectFor(status string) string {
	switch status {
	case models.BookingConfirmed:
		return "Booking confirmed"
	case models.BookingDeclined:
		return "Booking declined"
	case models.BookingCancelled:
		return "Booking cancelled"
	case models.BookingCompleted:
		return "How was your trip?"
	default:
		return "Booking update"
	}
}

func bodyFor(event *models.BookingStatusEvent) string {
	switch event.Status {
	case models.BookingConfirmed:
		return fmt.Sprintf("The operator has confirmed booking %s. See you there!", event.Reference)
	case models.BookingDeclined:
		if event.Reason != "" {
			return fmt.Sprintf("Booking %s was declined: %s. Your payment hold has been released.", event.Reference, event.Reason)
		}
		return fmt.Sprintf("Booking %s was declined. Your payment hold has been released.", event.Reference)
	case models.BookingCancelled:
		return fmt.Sprintf("Booking %s has been cancelled.", event.Reference)
	case models.BookingCompleted:
		return fmt.Sprintf("We hope you enjoyed booking %s. You can rebook anytime.", event.Reference)
	default:
		return fmt.Sprintf("Booking %s moved to %s.", event.Reference, event.Status)
	}
}
