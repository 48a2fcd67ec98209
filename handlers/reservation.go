package handlers

import (
	"context"
	"net/http"

	"smartparking/models"
	"smartparking/services/reservation"
	"smartparking/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	Service     reservation.ReservationService
	UserService user.UserService
}

// CreateReservationHandler handles POST /api/reservations.
func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req.UserID = userID
	if h.UserService != nil {
		if u, err := h.UserService.GetUserByID(userID); err == nil {
			req.UserName, req.UserPhone = u.Name, u.Phone
		} else {
			getLogger(c).Debug("Reservation without user profile", zap.String("userID", userID), zap.Error(err))
		}
	}

	res, err := h.Service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// MyReservationsHandler handles GET /api/reservations/mine.
func (h *ReservationHandler) MyReservationsHandler(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Service.ListUserReservations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out, "count": len(out)})
}

// GetReservationHandler handles GET /api/reservations/:id. Only the owner
// or an admin may read it.
func (h *ReservationHandler) GetReservationHandler(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := h.Service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if res.UserID != userID && role != models.RoleAdmin {
		writeError(c, reservation.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelReservationHandler handles POST /api/reservations/:id/cancel.
func (h *ReservationHandler) CancelReservationHandler(c *gin.Context) {
	h.ownerAction(c, h.Service.CancelReservation)
}

// CheckInHandler handles POST /api/reservations/:id/check-in.
func (h *ReservationHandler) CheckInHandler(c *gin.Context) {
	h.ownerAction(c, h.Service.CheckIn)
}

// CheckOutHandler handles POST /api/reservations/:id/check-out.
func (h *ReservationHandler) CheckOutHandler(c *gin.Context) {
	h.ownerAction(c, h.Service.CheckOut)
}

func (h *ReservationHandler) ownerAction(c *gin.Context, action func(ctx context.Context, id, userID string) (*models.Reservation, error)) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := action(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
