package payment

import (
	"context"
	"fmt"
	"math"

	"smartparking/models"
	"smartparking/services/reservation"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// CreatePaymentIntent opens a Stripe payment for an approved, unpaid
// reservation owned by userID.
func (s *StripePaymentService) CreatePaymentIntent(ctx context.Context, reservationID, userID string) (*models.PaymentIntent, error) {
	res, err := s.Reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, reservation.ErrForbidden
	}
	if res.Status != models.ReservationApproved || res.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: status %s, payment %s", ErrNotPayable, res.Status, res.PaymentStatus)
	}

	amount := toMinorUnits(res.TotalCost)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: nothing to charge", ErrNotPayable)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Parking spot %s", res.SpotNumber)),
	}
	params.Context = ctx
	params.AddMetadata("reservationId", res.ID)
	params.AddMetadata("spotId", res.SpotID)
	params.AddMetadata("spotNumber", res.SpotNumber)
	params.AddMetadata("userId", res.UserID)

	newIntent := s.NewIntent
	if newIntent == nil {
		newIntent = paymentintent.New
	}
	pi, err := newIntent(params)
	if err != nil {
		s.Logger.Error("Stripe payment intent creation failed",
			zap.String("reservationID", res.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("Payment intent created",
		zap.String("reservationID", res.ID), zap.String("intentID", pi.ID), zap.Int64("amount", amount))
	return &models.PaymentIntent{
		ID:            pi.ID,
		ClientSecret:  pi.ClientSecret,
		Amount:        amount,
		Currency:      s.Currency,
		ReservationID: res.ID,
		TotalCost:     res.TotalCost,
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
