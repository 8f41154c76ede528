package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sunbird/internal/apperrors"
	"sunbird/internal/models"
	"sunbird/internal/service"
)

// transitioner is the slice of the state machine the HTTP layer drives.
type transitioner interface {
	Confirm(ctx context.Context, bookingID int64) error
	Capture(ctx context.Context, bookingID int64) error
	Decline(ctx context.Context, bookingID int64, reason string) error
	Cancel(ctx context.Context, bookingID int64, reason string) error
}

type Handlers struct {
	services *service.Services
	machine  transitioner
}

func NewHandlers(services *service.Services, machine transitioner) *Handlers {
	return &Handlers{
		services: services,
		machine:  machine,
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors stay opaque 500s so internals never leak.
func respondError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
		return
	}

	if declined, ok := apperrors.IsPaymentDeclined(err); ok {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  "payment declined",
			"reason": declined.Reason,
		})
		return
	}

	var capacityErr *apperrors.CapacityExceededError
	if errors.As(err, &capacityErr) {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough spots available"})
		return
	}

	var operatorErr *apperrors.OperatorResolutionError
	if errors.As(err, &operatorErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no operator available for this occurrence"})
		return
	}

	var accountErr *apperrors.AccountError
	if errors.As(err, &accountErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "account service unavailable"})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrConcurrentAction):
		c.JSON(http.StatusConflict, gin.H{"error": "another action is in progress"})
	case apperrors.IsIllegalTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": "action not allowed in current state"})
	case apperrors.IsGatewayUnavailable(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
