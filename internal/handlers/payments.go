package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sunbird/internal/apperrors"
	"sunbird/internal/logger"
	"sunbird/internal/models"
)

// Payments handlers

// OnPaymentUpdates - POST /api/payments/notifications
// Webhook от платежного шлюза. Всегда отвечаем 200 на известный заказ,
// иначе шлюз будет ретраить до бесконечности.
func (h *Handlers) OnPaymentUpdates(c *gin.Context) {
	var payload models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := logger.ContextWithReference(c.Request.Context(), payload.OrderRef)
	log := logger.WithContext(ctx)

	log.Info("Payment notification received",
		"order_ref", payload.OrderRef,
		"payment_ref", payload.PaymentRef,
		"status", payload.Status)

	detail, err := h.services.Bookings.GetDetail(ctx, payload.OrderRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Error("Payment notification for unknown order", "order_ref", payload.OrderRef)
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
			return
		}
		respondError(c, err)
		return
	}

	switch strings.ToUpper(payload.Status) {
	case "CAPTURED":
		err = h.machine.Capture(ctx, detail.Booking.ID)
	case "REFUNDED", "VOIDED":
		// Возврат инициирован на стороне шлюза, закрываем бронирование
		err = h.machine.Cancel(ctx, detail.Booking.ID, "refunded by gateway")
	default:
		log.Info("Ignoring payment notification status", "status", payload.Status)
	}

	if err != nil && !apperrors.IsIllegalTransition(err) {
		log.Error("Failed to apply payment notification", "error", err)
		respondError(c, err)
		return
	}
	if apperrors.IsIllegalTransition(err) {
		// Дубликат или гонка с фоновым джобом, шлюзу все равно отвечаем 200
		log.Error("Payment notification ignored in current state", "error", err)
	}

	c.Status(http.StatusOK)
}
