package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartparking/models"
	"smartparking/services/reservation"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// HandleWebhook verifies and applies a Stripe event. A succeeded payment
// marks the reservation paid and checks it in when its window is open; a
// failed one is reported to the user. Other event types are ignored and
// yield a nil outcome.
func (s *StripePaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentOutcome, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.Logger.Warn("Rejected payment webhook", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		outcome, err := decodeOutcome(event)
		if err != nil {
			return nil, err
		}
		outcome.Succeeded = true
		return outcome, s.applySuccess(ctx, outcome)

	case stripe.EventTypePaymentIntentPaymentFailed:
		outcome, err := decodeOutcome(event)
		if err != nil {
			return nil, err
		}
		s.Logger.Info("Payment failed",
			zap.String("reservationID", outcome.ReservationID), zap.String("reason", outcome.FailureReason))
		if s.Notifier != nil {
			if err := s.Notifier.NotifyPaymentFailed(ctx, *outcome); err != nil {
				s.Logger.Warn("Payment failure notification not sent", zap.Error(err))
			}
		}
		return outcome, nil

	default:
		s.Logger.Debug("Ignoring payment webhook", zap.String("type", string(event.Type)))
		return nil, nil
	}
}

func (s *StripePaymentService) applySuccess(ctx context.Context, outcome *models.PaymentOutcome) error {
	res, err := s.Reservations.MarkPaid(ctx, outcome.ReservationID, outcome.IntentID)
	if err != nil {
		return err
	}

	if res.Status != models.ReservationApproved {
		return nil
	}
	// Paying at the spot grants the occupancy hold.
	if _, err := s.Reservations.CheckIn(ctx, res.ID, ""); err != nil {
		if errors.Is(err, reservation.ErrOutsideWindow) {
			s.Logger.Debug("Paid ahead of window; check-in deferred", zap.String("reservationID", res.ID))
			return nil
		}
		s.Logger.Warn("Check-in after payment failed", zap.String("reservationID", res.ID), zap.Error(err))
	}
	return nil
}

func decodeOutcome(event stripe.Event) (*models.PaymentOutcome, error) {
	if event.Data == nil {
		return nil, ErrInvalidEvent
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	outcome := &models.PaymentOutcome{
		IntentID:      pi.ID,
		ReservationID: pi.Metadata["reservationId"],
		UserID:        pi.Metadata["userId"],
	}
	if outcome.ReservationID == "" {
		return nil, fmt.Errorf("%w: intent %s has no reservationId", ErrInvalidEvent, pi.ID)
	}
	if pi.LastPaymentError != nil {
		outcome.FailureReason = pi.LastPaymentError.Msg
	}
	return outcome, nil
}
