package payment

import (
	"context"
	"errors"

	"smartparking/models"
	"smartparking/services/notification"
	"smartparking/services/reservation"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

var (
	ErrNotPayable       = errors.New("reservation is not awaiting payment")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidEvent     = errors.New("malformed payment event")
)

// PaymentService turns reservations into Stripe payment intents and applies
// Stripe's payment callbacks.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, reservationID, userID string) (*models.PaymentIntent, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentOutcome, error)
}

// StripePaymentService implements PaymentService against the Stripe API.
type StripePaymentService struct {
	Reservations  reservation.ReservationService
	Notifier      notification.NotificationService
	Currency      string
	WebhookSecret string
	Logger        *zap.Logger

	// NewIntent creates the intent at Stripe. Nil means paymentintent.New.
	NewIntent func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripePaymentService(
	reservations reservation.ReservationService,
	notifier notification.NotificationService,
	currency, webhookSecret string,
	logger *zap.Logger,
) *StripePaymentService {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripePaymentService{
		Reservations:  reservations,
		Notifier:      notifier,
		Currency:      currency,
		WebhookSecret: webhookSecret,
		Logger:        logger,
		NewIntent:     paymentintent.New,
	}
}
