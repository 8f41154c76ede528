package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sunbird/internal/apperrors"
	"sunbird/internal/logger"
	"sunbird/internal/middleware"
	"sunbird/internal/models"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать бронирование: форма, аккаунт, холд, места, запись
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create booking", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListBookings - GET /api/bookings?email=
// Получить список бронирований туриста
func (h *Handlers) ListBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	response, err := h.services.Bookings.ListByEmail(c.Request.Context(), email)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to list bookings", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBooking - GET /api/bookings/:reference
// Получить бронирование с блоком доступных действий
func (h *Handlers) GetBooking(c *gin.Context) {
	reference := c.Param("reference")

	detail, err := h.services.Bookings.GetDetail(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ConfirmBooking - PATCH /api/bookings/confirm
// Оператор подтверждает бронирование
func (h *Handlers) ConfirmBooking(c *gin.Context) {
	h.operatorTransition(c, func(ctx context.Context, bookingID int64, _ string) error {
		return h.machine.Confirm(ctx, bookingID)
	})
}

// DeclineBooking - PATCH /api/bookings/decline
// Оператор отклоняет бронирование, холд возвращается туристу
func (h *Handlers) DeclineBooking(c *gin.Context) {
	h.operatorTransition(c, h.machine.Decline)
}

// CancelBooking - PATCH /api/bookings/cancel
// Турист отменяет бронирование
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.BookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := logger.ContextWithReference(c.Request.Context(), req.Reference)

	detail, err := h.services.Bookings.GetDetail(ctx, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.machine.Cancel(ctx, detail.Booking.ID, req.Reason); err != nil {
		logger.WithContext(ctx).Error("Failed to cancel booking", "error", err)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// CaptureBooking - PATCH /api/bookings/capture
// Ручной запуск списания холда (обычно делает фоновый джоб)
func (h *Handlers) CaptureBooking(c *gin.Context) {
	h.operatorTransition(c, func(ctx context.Context, bookingID int64, _ string) error {
		return h.machine.Capture(ctx, bookingID)
	})
}

// operatorTransition обрабатывает общий для операторских действий путь:
// ссылка -> бронирование -> проверка владельца -> переход
func (h *Handlers) operatorTransition(c *gin.Context, apply func(ctx context.Context, bookingID int64, reason string) error) {
	var req models.BookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := logger.ContextWithReference(c.Request.Context(), req.Reference)

	detail, err := h.services.Bookings.GetDetail(ctx, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	operatorID, ok := middleware.OperatorIDFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if detail.Booking.OperatorID != operatorID {
		// Не раскрываем чужие бронирования
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := apply(ctx, detail.Booking.ID, req.Reason); err != nil {
		logger.WithContext(ctx).Error("Booking transition failed",
			"error", err,
			"reference", req.Reference)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
