// Package lifecycle is the authoritative booking state machine. Every change
// to (status, payment_status) after creation goes through it, and the payment
// follow-up (capture, void, refund) is decided here and nowhere else.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"sunbird/internal/apperrors"
	"sunbird/internal/logger"
	"sunbird/internal/metrics"
	"sunbird/internal/models"
)

// BookingStore is the slice of the record store the machine needs.
type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	// TransitionState persists the booking's new state only if the row still
	// holds (fromStatus, fromPayment). Returns false when another writer got
	// there first.
	TransitionState(ctx context.Context, booking *models.Booking, fromStatus, fromPayment string) (bool, error)
}

// CapacityStore releases reserved spots when a booking dies.
type CapacityStore interface {
	ReleaseSpots(ctx context.Context, occurrenceID int64, count int) error
}

// Gateway is the payment processor surface the machine drives.
type Gateway interface {
	Capture(ctx context.Context, paymentRef string) error
	Void(ctx context.Context, paymentRef string) error
	Refund(ctx context.Context, paymentRef string) error
}

// Locker serializes payment side-effects per booking.
type Locker interface {
	Acquire(ctx context.Context, bookingID int64) (func(), error)
}

// Publisher is the fire-and-forget notification sink.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Machine struct {
	bookings    BookingStore
	occurrences CapacityStore
	gateway     Gateway
	locks       Locker
	nats        Publisher
}

func NewMachine(bookings BookingStore, occurrences CapacityStore, gateway Gateway, locks Locker, nats Publisher) *Machine {
	return &Machine{
		bookings:    bookings,
		occurrences: occurrences,
		gateway:     gateway,
		locks:       locks,
		nats:        nats,
	}
}

// Confirm applies an operator confirmation. Capture stays deferred until the
// capture trigger fires. Duplicate confirmations are no-ops.
func (m *Machine) Confirm(ctx context.Context, bookingID int64) error {
	return m.transition(ctx, bookingID, "confirm", func(ctx context.Context, b *models.Booking) error {
		switch {
		case b.Status == models.BookingConfirmed, b.Status == models.BookingCompleted:
			return nil // already applied
		case b.Status != models.BookingPending || b.PaymentStatus != models.PaymentAuthorized:
			return m.illegal(b, "confirm")
		}

		now := time.Now()
		from, fromPay := b.Status, b.PaymentStatus
		b.Status = models.BookingConfirmed
		b.ConfirmedAt = &now

		if err := m.persist(ctx, b, from, fromPay); err != nil {
			return err
		}

		m.publishStatus(ctx, models.EventBookingConfirmed, b, "")
		return nil
	})
}

// Capture converts the hold into an actual transfer. Only CONFIRMED/AUTHORIZED
// bookings may be captured; anything else is a programming error and no
// gateway call is made. Duplicate captures are no-ops.
func (m *Machine) Capture(ctx context.Context, bookingID int64) error {
	return m.transition(ctx, bookingID, "capture", func(ctx context.Context, b *models.Booking) error {
		switch {
		case b.PaymentStatus == models.PaymentCaptured:
			return nil // already applied, exactly one gateway capture
		case b.Status != models.BookingConfirmed || b.PaymentStatus != models.PaymentAuthorized:
			return m.illegal(b, "capture")
		}

		if err := m.gateway.Capture(ctx, *b.PaymentRef); err != nil {
			metrics.GatewayCalls.WithLabelValues("capture", "error").Inc()
			return fmt.Errorf("failed to capture payment: %w", err)
		}
		metrics.GatewayCalls.WithLabelValues("capture", "ok").Inc()

		now := time.Now()
		from, fromPay := b.Status, b.PaymentStatus
		b.PaymentStatus = models.PaymentCaptured
		b.CapturedAt = &now

		if err := m.persist(ctx, b, from, fromPay); err != nil {
			return err
		}

		m.publishCaptured(ctx, b)
		return nil
	})
}

// Decline applies an operator decline to a pending booking and releases the
// money: void for an uncaptured hold, refund for a captured one. Duplicate
// declines are no-ops with no second gateway call.
func (m *Machine) Decline(ctx context.Context, bookingID int64, reason string) error {
	return m.transition(ctx, bookingID, "decline", func(ctx context.Context, b *models.Booking) error {
		switch {
		case b.Status == models.BookingDeclined:
			return nil // already applied
		case b.Status != models.BookingPending:
			return m.illegal(b, "decline")
		}

		voided, err := m.releasePayment(ctx, b)
		if err != nil {
			return err
		}

		now := time.Now()
		from, fromPay := b.Status, b.PaymentStatus
		b.Status = models.BookingDeclined
		b.DeclinedAt = &now
		if fromPay == models.PaymentAuthorized || fromPay == models.PaymentCaptured {
			b.PaymentStatus = models.PaymentRefunded
		}

		if err := m.persist(ctx, b, from, fromPay); err != nil {
			return err
		}

		m.releaseSpots(ctx, b)
		m.publishStatus(ctx, models.EventBookingDeclined, b, reason)
		if b.PaymentStatus == models.PaymentRefunded {
			m.publishRefunded(ctx, b, voided)
		}
		return nil
	})
}

// Cancel aborts a pending or confirmed booking, refunding any money held or
// captured. Terminal bookings cannot be cancelled. Duplicate cancels are no-ops.
func (m *Machine) Cancel(ctx context.Context, bookingID int64, reason string) error {
	return m.transition(ctx, bookingID, "cancel", func(ctx context.Context, b *models.Booking) error {
		switch {
		case b.Status == models.BookingCancelled:
			return nil // already applied
		case b.Status != models.BookingPending && b.Status != models.BookingConfirmed:
			return m.illegal(b, "cancel")
		}

		voided, err := m.releasePayment(ctx, b)
		if err != nil {
			return err
		}

		now := time.Now()
		from, fromPay := b.Status, b.PaymentStatus
		b.Status = models.BookingCancelled
		b.CancelledAt = &now
		if fromPay == models.PaymentAuthorized || fromPay == models.PaymentCaptured {
			b.PaymentStatus = models.PaymentRefunded
		}

		if err := m.persist(ctx, b, from, fromPay); err != nil {
			return err
		}

		m.releaseSpots(ctx, b)
		m.publishStatus(ctx, models.EventBookingCancelled, b, reason)
		if b.PaymentStatus == models.PaymentRefunded {
			m.publishRefunded(ctx, b, voided)
		}
		return nil
	})
}

// Complete settles a confirmed, captured booking once the occurrence date has
// passed. No payment side-effect.
func (m *Machine) Complete(ctx context.Context, bookingID int64) error {
	return m.transition(ctx, bookingID, "complete", func(ctx context.Context, b *models.Booking) error {
		switch {
		case b.Status == models.BookingCompleted:
			return nil // already applied
		case b.Status != models.BookingConfirmed || b.PaymentStatus != models.PaymentCaptured:
			return m.illegal(b, "complete")
		}

		now := time.Now()
		from, fromPay := b.Status, b.PaymentStatus
		b.Status = models.BookingCompleted
		b.CompletedAt = &now

		if err := m.persist(ctx, b, from, fromPay); err != nil {
			return err
		}

		m.publishStatus(ctx, models.EventBookingCompleted, b, "")
		return nil
	})
}

// transition wraps every operation: per-booking lock, fresh state read,
// outcome metrics. The handler sees current state and must re-check its
// precondition: the lock keeps payment side-effects single-writer, the
// conditional persist catches anything that slipped past.
func (m *Machine) transition(ctx context.Context, bookingID int64, event string, apply func(context.Context, *models.Booking) error) error {
	release, err := m.locks.Acquire(ctx, bookingID)
	if err != nil {
		metrics.BookingTransitions.WithLabelValues(event, "locked_out").Inc()
		return err
	}
	defer release()

	booking, err := m.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return apperrors.ErrNotFound
	}

	if err := apply(ctx, booking); err != nil {
		outcome := "error"
		if apperrors.IsIllegalTransition(err) {
			outcome = "illegal"
			logger.WithContext(ctx).Error("Illegal booking transition",
				"error", err,
				"booking_id", bookingID,
				"event", event)
		}
		metrics.BookingTransitions.WithLabelValues(event, outcome).Inc()
		return err
	}

	metrics.BookingTransitions.WithLabelValues(event, "ok").Inc()
	return nil
}

// releasePayment gives held or captured money back. Void only applies to an
// uncaptured hold; a captured amount must be refunded. The choice follows
// payment_status, never booking_status.
func (m *Machine) releasePayment(ctx context.Context, b *models.Booking) (voided bool, err error) {
	switch b.PaymentStatus {
	case models.PaymentAuthorized:
		if err := m.gateway.Void(ctx, *b.PaymentRef); err != nil {
			metrics.GatewayCalls.WithLabelValues("void", "error").Inc()
			return false, fmt.Errorf("failed to void payment: %w", err)
		}
		metrics.GatewayCalls.WithLabelValues("void", "ok").Inc()
		return true, nil
	case models.PaymentCaptured:
		if err := m.gateway.Refund(ctx, *b.PaymentRef); err != nil {
			metrics.GatewayCalls.WithLabelValues("refund", "error").Inc()
			return false, fmt.Errorf("failed to refund payment: %w", err)
		}
		metrics.GatewayCalls.WithLabelValues("refund", "ok").Inc()
		return false, nil
	default:
		// No money held, nothing to release
		return false, nil
	}
}

func (m *Machine) persist(ctx context.Context, b *models.Booking, fromStatus, fromPayment string) error {
	ok, err := m.bookings.TransitionState(ctx, b, fromStatus, fromPayment)
	if err != nil {
		return fmt.Errorf("failed to update booking state: %w", err)
	}
	if !ok {
		// Someone changed the row between our read and write. With the lock
		// held this means an out-of-band writer; reject rather than retry.
		return apperrors.ErrConcurrentAction
	}
	return nil
}

func (m *Machine) illegal(b *models.Booking, event string) error {
	return &apperrors.IllegalTransitionError{
		BookingID:     b.ID,
		Event:         event,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
	}
}

func (m *Machine) releaseSpots(ctx context.Context, b *models.Booking) {
	if err := m.occurrences.ReleaseSpots(ctx, b.OccurrenceID, b.PartySize()); err != nil {
		logger.WithContext(ctx).Error("Failed to release occurrence spots",
			"error", err,
			"booking_id", b.ID,
			"occurrence_id", b.OccurrenceID)
	}
}

func (m *Machine) publishStatus(ctx context.Context, subject string, b *models.Booking, reason string) {
	event := models.BookingStatusEvent{
		BookingID:     b.ID,
		Reference:     b.Reference,
		OccurrenceID:  b.OccurrenceID,
		OperatorID:    b.OperatorID,
		TouristID:     b.TouristID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Reason:        reason,
		Timestamp:     time.Now(),
	}

	if err := m.nats.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking event",
			"error", err,
			"booking_id", b.ID,
			"event_type", subject)
	}
}

func (m *Machine) publishCaptured(ctx context.Context, b *models.Booking) {
	event := models.PaymentCapturedEvent{
		BookingID:      b.ID,
		Reference:      b.Reference,
		PaymentRef:     *b.PaymentRef,
		TotalAmount:    b.TotalAmount,
		OperatorAmount: b.OperatorAmount,
		PlatformFee:    b.PlatformFee,
		Timestamp:      time.Now(),
	}

	if err := m.nats.Publish(models.EventPaymentCaptured, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment captured event",
			"error", err,
			"booking_id", b.ID,
			"event_type", models.EventPaymentCaptured)
	}
}

func (m *Machine) publishRefunded(ctx context.Context, b *models.Booking, voided bool) {
	event := models.PaymentRefundedEvent{
		BookingID:  b.ID,
		Reference:  b.Reference,
		PaymentRef: *b.PaymentRef,
		Amount:     b.TotalAmount,
		Voided:     voided,
		Timestamp:  time.Now(),
	}

	if err := m.nats.Publish(models.EventPaymentRefunded, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment refunded event",
			"error", err,
			"booking_id", b.ID,
			"event_type", models.EventPaymentRefunded)
	}
}
