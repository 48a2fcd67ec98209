package handlers

import (
	"io"
	"net/http"

	"smartparking/models"
	"smartparking/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 65536

type PaymentHandler struct {
	Service payment.PaymentService
}

// CreateIntentHandler handles POST /api/payments/intent.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	intent, err := h.Service.CreatePaymentIntent(c.Request.Context(), req.ReservationID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// WebhookHandler handles POST /api/payments/webhook. The raw body is needed
// for signature verification.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to read body"})
		return
	}
	outcome, err := h.Service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		writeError(c, err)
		return
	}
	if outcome != nil {
		getLogger(c).Info("Payment webhook applied",
			zap.String("reservationID", outcome.ReservationID), zap.Bool("succeeded", outcome.Succeeded))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
