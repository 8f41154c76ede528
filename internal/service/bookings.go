package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"sunbird/internal/apperrors"
	"sunbird/internal/external"
	"sunbird/internal/lifecycle"
	"sunbird/internal/logger"
	"sunbird/internal/metrics"
	"sunbird/internal/models"
	"sunbird/internal/payments"
)

// Orchestrator dependencies are narrow interfaces so the whole creation flow
// can run against in-memory doubles.
type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	ListByTourist(ctx context.Context, touristID int64) ([]models.Booking, error)
}

type occurrenceStore interface {
	GetByID(ctx context.Context, id int64) (*models.Occurrence, error)
	ReserveSpots(ctx context.Context, occurrenceID int64, count int) error
	ReleaseSpots(ctx context.Context, occurrenceID int64, count int) error
}

type operatorStore interface {
	GetByID(ctx context.Context, id int64) (*models.Operator, error)
}

type touristStore interface {
	ResolveOrCreate(ctx context.Context, tourist *models.Tourist) error
	GetByEmail(ctx context.Context, email string) (*models.Tourist, error)
}

type authorizer interface {
	Authorize(ctx context.Context, req external.AuthorizeRequest) (*external.AuthorizeResult, error)
	Void(ctx context.Context, paymentRef string) error
}

type publisher interface {
	Publish(subject string, data interface{}) error
}

type BookingService struct {
	bookings    bookingStore
	occurrences occurrenceStore
	operators   operatorStore
	tourists    touristStore
	gateway     authorizer
	nats        publisher
}

func NewBookingService(bookings bookingStore, occurrences occurrenceStore, operators operatorStore, tourists touristStore, gateway authorizer, nats publisher) *BookingService {
	return &BookingService{
		bookings:    bookings,
		occurrences: occurrences,
		operators:   operators,
		tourists:    tourists,
		gateway:     gateway,
		nats:        nats,
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Create runs the whole booking pipeline: intake validation, account
// resolution, operator and price resolution, payment authorization, atomic
// capacity reservation, persistence. Ordering matters: the card hold is
// placed before the spots are taken, so a decline costs no capacity, and the
// hold is voided whenever a later step fails.
func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if err := validateIntake(req); err != nil {
		return nil, err
	}

	occurrence, err := s.occurrences.GetByID(ctx, req.OccurrenceID)
	if err != nil {
		return nil, err
	}
	if occurrence == nil {
		return nil, apperrors.ErrNotFound
	}
	if time.Now().After(occurrence.BookingDeadline) {
		verr := apperrors.NewValidationError()
		verr.Add("occurrence_id", "booking deadline has passed")
		return nil, verr
	}
	// Read-time capacity check: reject obviously oversized parties before any
	// gateway call. ReserveSpots below stays the authority for the racy path.
	if req.AdultCount+req.ChildCount > occurrence.AvailableSpots {
		verr := apperrors.NewValidationError()
		verr.Add("adult_count", fmt.Sprintf("party of %d exceeds the %d remaining spots", req.AdultCount+req.ChildCount, occurrence.AvailableSpots))
		return nil, verr
	}

	operator, err := s.operators.GetByID(ctx, occurrence.OperatorID)
	if err != nil {
		return nil, err
	}
	if operator == nil || !operator.IsActive {
		return nil, &apperrors.OperatorResolutionError{OccurrenceID: occurrence.ID}
	}

	tourist := &models.Tourist{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if req.Phone != "" {
		phone := req.Phone
		tourist.Phone = &phone
	}
	if err := s.tourists.ResolveOrCreate(ctx, tourist); err != nil {
		return nil, &apperrors.AccountError{Err: err}
	}

	// Totals are always computed server-side from the stored prices. Client
	// amounts are never trusted.
	partySize := req.AdultCount + req.ChildCount
	totalAmount := int64(req.AdultCount)*occurrence.PricePerAdult + int64(req.ChildCount)*occurrence.PricePerChild
	operatorAmount, platformFee := payments.Split(totalAmount, operator.CommissionBP)

	reference := newBookingReference()

	auth, err := s.gateway.Authorize(ctx, external.AuthorizeRequest{
		Amount:         totalAmount,
		OrderRef:       reference,
		OperatorID:     operator.ID,
		OperatorAmount: operatorAmount,
		PlatformFee:    platformFee,
		CardToken:      req.CardToken,
		Description:    fmt.Sprintf("Booking %s", reference),
	})
	if err != nil {
		if declined, ok := apperrors.IsPaymentDeclined(err); ok {
			metrics.PaymentDeclines.WithLabelValues(declined.Reason).Inc()
		}
		return nil, err
	}

	if err := s.occurrences.ReserveSpots(ctx, occurrence.ID, partySize); err != nil {
		s.voidHold(ctx, auth.PaymentRef, reference)
		return nil, err
	}

	booking := &models.Booking{
		Reference:      reference,
		OccurrenceID:   occurrence.ID,
		OperatorID:     operator.ID,
		TouristID:      tourist.ID,
		AdultCount:     req.AdultCount,
		ChildCount:     req.ChildCount,
		PricePerAdult:  occurrence.PricePerAdult,
		PricePerChild:  occurrence.PricePerChild,
		TotalAmount:    totalAmount,
		CommissionBP:   operator.CommissionBP,
		OperatorAmount: operatorAmount,
		PlatformFee:    platformFee,
		PaymentRef:     &auth.PaymentRef,
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentAuthorized,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// The hold must not outlive a failed booking row.
		s.voidHold(ctx, auth.PaymentRef, reference)
		if rerr := s.occurrences.ReleaseSpots(ctx, occurrence.ID, partySize); rerr != nil {
			logger.WithContext(ctx).Error("Failed to release spots after persistence failure",
				"error", rerr,
				"occurrence_id", occurrence.ID)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publishCreated(ctx, booking, tourist)

	return &models.CreateBookingResponse{
		ID:             booking.ID,
		Reference:      booking.Reference,
		Status:         booking.Status,
		PaymentStatus:  booking.PaymentStatus,
		TotalAmount:    booking.TotalAmount,
		OperatorAmount: booking.OperatorAmount,
		PlatformFee:    booking.PlatformFee,
	}, nil
}

// GetDetail returns the booking with its per-state action eligibility block.
func (s *BookingService) GetDetail(ctx context.Context, reference string) (*models.BookingDetailResponse, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.ErrNotFound
	}

	return &models.BookingDetailResponse{
		Booking: *booking,
		Actions: lifecycle.ActionsFor(booking.Status, booking.PaymentStatus),
	}, nil
}

// ListByEmail returns the tourist's bookings, newest first. An unknown email
// is an empty list, not an error.
func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]models.ListBookingsResponseItem, error) {
	tourist, err := s.tourists.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if tourist == nil {
		return []models.ListBookingsResponseItem{}, nil
	}

	bookings, err := s.bookings.ListByTourist(ctx, tourist.ID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ListBookingsResponseItem, len(bookings))
	for i, b := range bookings {
		items[i] = models.ListBookingsResponseItem{
			ID:            b.ID,
			Reference:     b.Reference,
			OccurrenceID:  b.OccurrenceID,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			TotalAmount:   b.TotalAmount,
		}
	}
	return items, nil
}

func (s *BookingService) voidHold(ctx context.Context, paymentRef, reference string) {
	if err := s.gateway.Void(ctx, paymentRef); err != nil {
		// The hold will expire gateway-side; log loudly so it can be reconciled.
		logger.WithContext(ctx).Error("Failed to void payment hold",
			"error", err,
			"payment_ref", paymentRef,
			"reference", reference)
	}
}

func (s *BookingService) publishCreated(ctx context.Context, booking *models.Booking, tourist *models.Tourist) {
	event := models.BookingCreatedEvent{
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		OccurrenceID:  booking.OccurrenceID,
		OperatorID:    booking.OperatorID,
		TouristID:     tourist.ID,
		TouristEmail:  tourist.Email,
		TotalAmount:   booking.TotalAmount,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		Timestamp:     time.Now(),
	}

	if err := s.nats.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", booking.ID)
	}
}

// validateIntake checks the whole form and reports every violation at once.
func validateIntake(req *models.CreateBookingRequest) error {
	verr := apperrors.NewValidationError()

	if req.OccurrenceID <= 0 {
		verr.Add("occurrence_id", "occurrence is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		verr.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		verr.Add("last_name", "last name is required")
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		verr.Add("email", "email is required")
	case !emailPattern.MatchString(email):
		verr.Add("email", "email format is invalid")
	case !strings.EqualFold(email, strings.TrimSpace(req.EmailConfirm)):
		verr.Add("email_confirm", "email addresses do not match")
	}

	if req.AdultCount < 1 {
		verr.Add("adult_count", "at least one adult is required")
	}
	if req.ChildCount < 0 {
		verr.Add("child_count", "child count cannot be negative")
	}
	if req.CardToken == "" {
		verr.Add("card_token", "card token is required")
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

// newBookingReference builds the customer-facing reference. The same value is
// sent to the gateway as the order key and stored on the row, so retries and
// webhooks always correlate.
func newBookingReference() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return time.Now().UTC().Format("20060102150405") + "-" + fragment
}
