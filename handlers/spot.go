package handlers

import (
	"net/http"
	"time"

	"smartparking/models"
	"smartparking/services/admin"
	"smartparking/services/occupancy"
	"smartparking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SpotHandler serves the user-facing spot endpoints.
type SpotHandler struct {
	Spots   admin.AdminService
	Engine  occupancy.OccupancyEngine
	Sweeper SweepRunner
}

// ListSpotsHandler handles GET /api/spots?zone=.
func (h *SpotHandler) ListSpotsHandler(c *gin.Context) {
	spots, err := h.Spots.ListSpots(c.Request.Context(), c.Query("zone"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spots": spots, "count": len(spots)})
}

// GetSpotHandler handles GET /api/spots/:id.
func (h *SpotHandler) GetSpotHandler(c *gin.Context) {
	spot, err := h.Spots.GetSpot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// AvailabilityHandler handles GET /api/spots/:id/availability?start=&end=.
func (h *SpotHandler) AvailabilityHandler(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an RFC3339 timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be an RFC3339 timestamp"})
		return
	}

	ctx := c.Request.Context()
	spotID := c.Param("id")
	result, err := h.Engine.CheckAvailability(ctx, spotID, start, end)
	if err != nil {
		utils.AvailabilityChecks.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}

	body := gin.H{
		"spotId":    result.SpotID,
		"available": result.Available,
		"start":     start,
		"end":       end,
	}
	if result.Available {
		utils.AvailabilityChecks.WithLabelValues("available").Inc()
		c.JSON(http.StatusOK, body)
		return
	}

	utils.AvailabilityChecks.WithLabelValues(string(result.Reason)).Inc()
	body["reason"] = result.Reason
	if result.ConflictingReservationID != "" {
		body["conflictingReservationId"] = result.ConflictingReservationID
	}
	if result.HeldUntil != nil {
		body["heldUntil"] = result.HeldUntil
	}
	next, err := h.Engine.GetNextAvailableTime(ctx, spotID)
	if err != nil {
		getLogger(c).Warn("Next available time lookup failed", zap.String("spotID", spotID), zap.Error(err))
	} else if next != nil {
		body["nextAvailable"] = next
	}
	c.JSON(http.StatusOK, body)
}

// NextAvailableHandler handles GET /api/spots/:id/next-available. A null
// nextAvailable means the spot is under maintenance with no known end.
func (h *SpotHandler) NextAvailableHandler(c *gin.Context) {
	spotID := c.Param("id")
	next, err := h.Engine.GetNextAvailableTime(c.Request.Context(), spotID)
	if err != nil {
		writeError(c, err)
		return
	}
	body := gin.H{"spotId": spotID, "nextAvailable": next}
	if next == nil {
		body["reason"] = models.ConflictMaintenance
	}
	c.JSON(http.StatusOK, body)
}

// TriggerSweepHandler handles POST /api/spots/sweep. The sweep runs in the
// background.
func (h *SpotHandler) TriggerSweepHandler(c *gin.Context) {
	h.Sweeper.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"message": "Occupancy sweep requested"})
}
