package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masai-connect/mentor-booking-api/internal/domain"
	"github.com/masai-connect/mentor-booking-api/pkg/response"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		response.Conflict(c, "SLOT_UNAVAILABLE", err.Error())
	case errors.Is(err, domain.ErrSlotBooked):
		response.Conflict(c, "SLOT_BOOKED", err.Error())
	case errors.Is(err, domain.ErrSlotOverlap):
		response.Conflict(c, "SLOT_OVERLAP", err.Error())
	case errors.Is(err, domain.ErrSessionLimitReached):
		response.Conflict(c, "SESSION_LIMIT_REACHED", err.Error())
	case errors.Is(err, domain.ErrSessionNotScheduled):
		response.Conflict(c, "SESSION_NOT_SCHEDULED", err.Error())
	case errors.Is(err, domain.ErrCancellationWindowClosed):
		response.Conflict(c, "CANCELLATION_WINDOW_CLOSED", err.Error())
	case errors.Is(err, domain.ErrSessionNotEnded):
		response.Conflict(c, "SESSION_NOT_ENDED", err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		response.Conflict(c, "USER_EXISTS", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error(), "")
	case errors.Is(err, domain.ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", err.Error(), "")
	case domain.IsAuthError(err):
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", err.Error(), "")
	case domain.IsPermissionError(err):
		response.Forbidden(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
