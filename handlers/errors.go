package handlers

import (
	"context"
	"errors"
	"net/http"

	"smartparking/services/admin"
	"smartparking/services/occupancy"
	"smartparking/services/payment"
	"smartparking/services/reservation"
	"smartparking/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var conflict *reservation.ConflictError
	if errors.As(err, &conflict) {
		body := gin.H{
			"error":  "spot no longer available",
			"code":   conflict.Code,
			"reason": conflict.Reason,
		}
		if conflict.ReservationID != "" {
			body["conflictingReservationId"] = conflict.ReservationID
		}
		if conflict.NextAvailable != nil {
			body["nextAvailable"] = conflict.NextAvailable
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	status := statusFor(err)
	switch status {
	case http.StatusServiceUnavailable:
		getLogger(c).Warn("Request failed on unavailable dependency", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error(), "retry": "try again"})
	case http.StatusInternalServerError:
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, occupancy.ErrInvalidInterval),
		errors.Is(err, reservation.ErrInvalidRequest),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, reservation.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, occupancy.ErrSpotNotFound),
		errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, admin.ErrNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, reservation.ErrOutsideWindow),
		errors.Is(err, payment.ErrNotPayable),
		errors.Is(err, admin.ErrDuplicate),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, occupancy.ErrOccupancyChanged):
		return http.StatusConflict
	case errors.Is(err, occupancy.ErrStoreUnavailable),
		errors.Is(err, occupancy.ErrClaimBusy),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// currentUser returns the authenticated user's ID and role set by the auth middleware.
func currentUser(c *gin.Context) (string, string, bool) {
	id := c.GetString("userID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return "", "", false
	}
	return id, c.GetString("role"), true
}
