package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunbird/internal/apperrors"
	"sunbird/internal/external"
	"sunbird/internal/middleware"
	"sunbird/internal/models"
	"sunbird/internal/service"
)

type stubBookings struct {
	booking *models.Booking
}

func (s *stubBookings) Create(_ context.Context, _ *models.Booking) error { return nil }

func (s *stubBookings) GetByReference(_ context.Context, reference string) (*models.Booking, error) {
	if s.booking != nil && s.booking.Reference == reference {
		copied := *s.booking
		return &copied, nil
	}
	return nil, nil
}

func (s *stubBookings) ListByTourist(_ context.Context, _ int64) ([]models.Booking, error) {
	return nil, nil
}

type stubOccurrences struct{}

func (stubOccurrences) GetByID(_ context.Context, _ int64) (*models.Occurrence, error) {
	return nil, nil
}
func (stubOccurrences) ReserveSpots(_ context.Context, _ int64, _ int) error { return nil }
func (stubOccurrences) ReleaseSpots(_ context.Context, _ int64, _ int) error { return nil }

type stubOperators struct{}

func (stubOperators) GetByID(_ context.Context, _ int64) (*models.Operator, error) {
	return nil, nil
}

type stubTourists struct{}

func (stubTourists) ResolveOrCreate(_ context.Context, _ *models.Tourist) error { return nil }
func (stubTourists) GetByEmail(_ context.Context, _ string) (*models.Tourist, error) {
	return nil, nil
}

type stubGateway struct{}

func (stubGateway) Authorize(_ context.Context, _ external.AuthorizeRequest) (*external.AuthorizeResult, error) {
	return &external.AuthorizeResult{PaymentRef: "pay_test"}, nil
}
func (stubGateway) Void(_ context.Context, _ string) error { return nil }

type stubPublisher struct{}

func (stubPublisher) Publish(_ string, _ interface{}) error { return nil }

type recordingMachine struct {
	confirmed []int64
	captured  []int64
	declined  []int64
	cancelled []int64
	fail      error
}

func (m *recordingMachine) Confirm(_ context.Context, id int64) error {
	if m.fail != nil {
		return m.fail
	}
	m.confirmed = append(m.confirmed, id)
	return nil
}

func (m *recordingMachine) Capture(_ context.Context, id int64) error {
	if m.fail != nil {
		return m.fail
	}
	m.captured = append(m.captured, id)
	return nil
}

func (m *recordingMachine) Decline(_ context.Context, id int64, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.declined = append(m.declined, id)
	return nil
}

func (m *recordingMachine) Cancel(_ context.Context, id int64, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.cancelled = append(m.cancelled, id)
	return nil
}

func seededBooking() *models.Booking {
	return &models.Booking{
		ID:            42,
		Reference:     "20260901120000-AB12CD",
		OccurrenceID:  10,
		OperatorID:    7,
		TouristID:     3,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentAuthorized,
		TotalAmount:   15000,
	}
}

// fakeOperatorAuth puts a fixed operator id into the request context
func fakeOperatorAuth(operatorID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("operator_id", operatorID)
		c.Request = c.Request.WithContext(middleware.ContextWithOperatorID(c.Request.Context(), operatorID))
		c.Next()
	}
}

func setupRouter(machine *recordingMachine, booking *models.Booking, operatorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	bookingService := service.NewBookingService(
		&stubBookings{booking: booking},
		stubOccurrences{},
		stubOperators{},
		stubTourists{},
		stubGateway{},
		stubPublisher{},
	)
	h := NewHandlers(&service.Services{Bookings: bookingService}, machine)

	r := gin.New()
	api := r.Group("/api")
	{
		bookings := api.Group("/bookings")
		{
			bookings.GET("/:reference", h.GetBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}

		ops := api.Group("/bookings", fakeOperatorAuth(operatorID))
		{
			ops.PATCH("/confirm", h.ConfirmBooking)
			ops.PATCH("/decline", h.DeclineBooking)
		}

		api.POST("/payments/notifications", h.OnPaymentUpdates)
	}
	return r
}

func patchJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("PATCH", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetBooking(t *testing.T) {
	booking := seededBooking()
	r := setupRouter(&recordingMachine{}, booking, 7)

	req, _ := http.NewRequest("GET", "/api/bookings/"+booking.Reference, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var detail models.BookingDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, booking.Reference, detail.Booking.Reference)
	assert.Equal(t, "awaiting_operator", detail.Actions.Label)
	assert.True(t, detail.Actions.CanContactOperator)
}

func TestGetBookingNotFound(t *testing.T) {
	r := setupRouter(&recordingMachine{}, seededBooking(), 7)

	req, _ := http.NewRequest("GET", "/api/bookings/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmBooking(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{}
	r := setupRouter(machine, booking, 7)

	w := patchJSON(r, "/api/bookings/confirm", models.BookingActionRequest{Reference: booking.Reference})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{42}, machine.confirmed)
}

func TestConfirmBookingForeignOperator(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{}
	r := setupRouter(machine, booking, 99)

	w := patchJSON(r, "/api/bookings/confirm", models.BookingActionRequest{Reference: booking.Reference})

	assert.Equal(t, http.StatusNotFound, w.Code, "foreign bookings stay invisible")
	assert.Empty(t, machine.confirmed)
}

func TestDeclineBooking(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{}
	r := setupRouter(machine, booking, 7)

	w := patchJSON(r, "/api/bookings/decline", models.BookingActionRequest{
		Reference: booking.Reference,
		Reason:    "fully booked",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{42}, machine.declined)
}

func TestCancelBooking(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{}
	r := setupRouter(machine, booking, 7)

	w := patchJSON(r, "/api/bookings/cancel", models.BookingActionRequest{Reference: booking.Reference})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{42}, machine.cancelled)
}

func TestIllegalTransitionMapsToConflict(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{fail: &apperrors.IllegalTransitionError{
		BookingID: 42,
		Event:     "cancel",
		Status:    models.BookingCompleted,
	}}
	r := setupRouter(machine, booking, 7)

	w := patchJSON(r, "/api/bookings/cancel", models.BookingActionRequest{Reference: booking.Reference})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConcurrentActionMapsToConflict(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{fail: apperrors.ErrConcurrentAction}
	r := setupRouter(machine, booking, 7)

	w := patchJSON(r, "/api/bookings/cancel", models.BookingActionRequest{Reference: booking.Reference})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentWebhookCaptured(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{}
	r := setupRouter(machine, booking, 7)

	payload := models.PaymentNotificationPayload{
		PaymentRef: "pay_test",
		OrderRef:   booking.Reference,
		Status:     "CAPTURED",
	}
	jsonBody, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/api/payments/notifications", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{42}, machine.captured)
}

func TestPaymentWebhookUnknownOrder(t *testing.T) {
	machine := &recordingMachine{}
	r := setupRouter(machine, seededBooking(), 7)

	payload := models.PaymentNotificationPayload{OrderRef: "missing", Status: "CAPTURED"}
	jsonBody, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/api/payments/notifications", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, machine.captured)
}

func TestPaymentWebhookDuplicateStillAcknowledged(t *testing.T) {
	booking := seededBooking()
	machine := &recordingMachine{fail: &apperrors.IllegalTransitionError{BookingID: 42, Event: "capture"}}
	r := setupRouter(machine, booking, 7)

	payload := models.PaymentNotificationPayload{OrderRef: booking.Reference, Status: "CAPTURED"}
	jsonBody, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/api/payments/notifications", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "duplicates must not trigger gateway retries")
}
