package handlers

import (
	"net/http"

	"smartparking/models"
	"smartparking/services/admin"
	"smartparking/services/reservation"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Service      admin.AdminService
	Reservations reservation.ReservationService
	Sweeper      SweepRunner
}

// Zones

func (h *AdminHandler) ListZonesHandler(c *gin.Context) {
	zones, err := h.Service.ListZones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones, "count": len(zones)})
}

func (h *AdminHandler) CreateZoneHandler(c *gin.Context) {
	var in models.ZoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	zone, err := h.Service.CreateZone(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *AdminHandler) UpdateZoneHandler(c *gin.Context) {
	var in models.ZoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	zone, err := h.Service.UpdateZone(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *AdminHandler) DeleteZoneHandler(c *gin.Context) {
	if err := h.Service.DeleteZone(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted"})
}

// Spots

func (h *AdminHandler) CreateSpotHandler(c *gin.Context) {
	var in models.SpotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	spot, err := h.Service.CreateSpot(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

func (h *AdminHandler) UpdateSpotHandler(c *gin.Context) {
	var in models.SpotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	spot, err := h.Service.UpdateSpot(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

func (h *AdminHandler) DeleteSpotHandler(c *gin.Context) {
	if err := h.Service.DeleteSpot(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Spot deleted"})
}

// SetSpotStatusHandler handles PUT /api/admin/spots/:id/status.
func (h *AdminHandler) SetSpotStatusHandler(c *gin.Context) {
	var input struct {
		Status models.SpotStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	spot, err := h.Service.SetSpotStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// Reservations

// ListReservationsHandler handles GET /api/admin/reservations?status=.
func (h *AdminHandler) ListReservationsHandler(c *gin.Context) {
	h.listReservations(c, models.ReservationStatus(c.Query("status")))
}

func (h *AdminHandler) PendingReservationsHandler(c *gin.Context) {
	h.listReservations(c, models.ReservationPending)
}

func (h *AdminHandler) listReservations(c *gin.Context, status models.ReservationStatus) {
	out, err := h.Reservations.ListReservations(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out, "count": len(out)})
}

func (h *AdminHandler) ApproveReservationHandler(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := h.Reservations.ApproveReservation(c.Request.Context(), c.Param("id"), adminID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) RejectReservationHandler(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&input)
	res, err := h.Reservations.RejectReservation(c.Request.Context(), c.Param("id"), input.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Dashboard

func (h *AdminHandler) AnalyticsHandler(c *gin.Context) {
	stats, err := h.Service.GetAnalytics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunSweepHandler handles POST /api/admin/sweep. It sweeps synchronously and
// returns the report; a sweep already in progress yields 409 with the
// previous report.
func (h *AdminHandler) RunSweepHandler(c *gin.Context) {
	report, ran := h.Sweeper.RunOnce(c.Request.Context())
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "sweep already in progress", "last": sweepBody(h.Sweeper.LastReport())})
		return
	}
	c.JSON(http.StatusOK, sweepBody(report))
}

func sweepBody(r models.SweepReport) gin.H {
	released := make([]string, 0, len(r.Released))
	for _, s := range r.Released {
		released = append(released, s.ID)
	}
	body := gin.H{
		"startedAt": r.StartedAt,
		"scanned":   r.Scanned,
		"released":  released,
		"skipped":   r.Skipped,
		"failed":    r.Failed,
	}
	if r.Err != nil {
		body["error"] = r.Err.Error()
	}
	return body
}
