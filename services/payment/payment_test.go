package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"smartparking/database/repository/repotest"
	"smartparking/models"
	"smartparking/services/occupancy"
	"smartparking/services/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

const secret = "whsec_test"

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

type failedNotices struct{ outcomes []models.PaymentOutcome }

func (f *failedNotices) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}
func (f *failedNotices) NotifyOccupancyExpired(context.Context, models.Spot) error           { return nil }
func (f *failedNotices) NotifyReservationStatus(context.Context, models.Reservation) error { return nil }
func (f *failedNotices) NotifyPaymentFailed(_ context.Context, o models.PaymentOutcome) error {
	f.outcomes = append(f.outcomes, o)
	return nil
}

type fixture struct {
	svc          *StripePaymentService
	spots        *repotest.Spots
	reservations *repotest.Reservations
	notices      *failedNotices
	params       *stripe.PaymentIntentParams
}

func newFixture(now time.Time, rs ...models.Reservation) *fixture {
	f := &fixture{
		spots:        repotest.NewSpots(models.Spot{ID: "s1", Number: "A-01", Status: models.SpotAvailable, PricePerHour: 2}),
		reservations: repotest.NewReservations(rs...),
		notices:      &failedNotices{},
	}
	clock := func() time.Time { return now }
	engine := occupancy.NewOccupancyEngine(occupancy.NewMongoStore(f.spots, f.reservations), nil)
	engine.Now = clock
	resSvc := &reservation.DefaultReservationService{
		Reservations: f.reservations,
		Spots:        f.spots,
		Engine:       engine,
		Claims:       occupancy.NewLocalClaimLocker(),
		Now:          clock,
	}
	f.svc = NewStripePaymentService(resSvc, f.notices, "usd", secret, nil)
	f.svc.NewIntent = func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		f.params = p
		return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
	}
	return f
}

func approved(id string, start, end time.Time) models.Reservation {
	return models.Reservation{
		ID: id, UserID: "u1", SpotID: "s1", SpotNumber: "A-01",
		StartTime: start, EndTime: end, TotalCost: 4.5,
		Status: models.ReservationApproved, PaymentStatus: models.PaymentPending,
	}
}

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))), []byte(payload)
}

func intentEvent(eventType, intentJSON string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":"2023-10-16","data":{"object":%s}}`, eventType, intentJSON)
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(day.Add(9*time.Hour), approved("r1", day.Add(10*time.Hour), day.Add(12*time.Hour)))

	intent, err := f.svc.CreatePaymentIntent(context.Background(), "r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, int64(450), intent.Amount)

	require.NotNil(t, f.params)
	assert.Equal(t, int64(450), *f.params.Amount)
	assert.Equal(t, "usd", *f.params.Currency)
	assert.Equal(t, "r1", f.params.Metadata["reservationId"])
	assert.Equal(t, "s1", f.params.Metadata["spotId"])
}

func TestCreatePaymentIntent_Refusals(t *testing.T) {
	pending := approved("r2", day.Add(10*time.Hour), day.Add(12*time.Hour))
	pending.Status = models.ReservationPending
	paid := approved("r3", day.Add(10*time.Hour), day.Add(12*time.Hour))
	paid.PaymentStatus = models.PaymentPaid
	f := newFixture(day.Add(9*time.Hour), approved("r1", day.Add(10*time.Hour), day.Add(12*time.Hour)), pending, paid)
	ctx := context.Background()

	_, err := f.svc.CreatePaymentIntent(ctx, "r1", "intruder")
	assert.ErrorIs(t, err, reservation.ErrForbidden)

	_, err = f.svc.CreatePaymentIntent(ctx, "r2", "u1")
	assert.ErrorIs(t, err, ErrNotPayable)

	_, err = f.svc.CreatePaymentIntent(ctx, "r3", "u1")
	assert.ErrorIs(t, err, ErrNotPayable)

	_, err = f.svc.CreatePaymentIntent(ctx, "missing", "u1")
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	assert.Nil(t, f.params)
}

func TestHandleWebhook_SucceededChecksIn(t *testing.T) {
	f := newFixture(day.Add(10*time.Hour), approved("r1", day.Add(10*time.Hour), day.Add(12*time.Hour)))
	sig, body := signed(t, intentEvent("payment_intent.succeeded",
		`{"id":"pi_123","object":"payment_intent","metadata":{"reservationId":"r1","userId":"u1"}}`))

	outcome, err := f.svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Succeeded)

	res := f.reservations.Get("r1")
	assert.Equal(t, models.PaymentPaid, res.PaymentStatus)
	assert.Equal(t, "pi_123", res.PaymentRef)
	assert.Equal(t, models.ReservationActive, res.Status)

	spot := f.spots.Get("s1")
	assert.Equal(t, models.SpotOccupied, spot.Status)
	require.NotNil(t, spot.OccupiedUntil)
	assert.True(t, spot.OccupiedUntil.Equal(day.Add(12*time.Hour)))
}

func TestHandleWebhook_SucceededBeforeWindow(t *testing.T) {
	f := newFixture(day.Add(6*time.Hour), approved("r1", day.Add(10*time.Hour), day.Add(12*time.Hour)))
	sig, body := signed(t, intentEvent("payment_intent.succeeded",
		`{"id":"pi_123","object":"payment_intent","metadata":{"reservationId":"r1"}}`))

	_, err := f.svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)

	res := f.reservations.Get("r1")
	assert.Equal(t, models.PaymentPaid, res.PaymentStatus)
	assert.Equal(t, models.ReservationApproved, res.Status)
	assert.Equal(t, models.SpotAvailable, f.spots.Get("s1").Status)
}

func TestHandleWebhook_Failed(t *testing.T) {
	f := newFixture(day.Add(10*time.Hour), approved("r1", day.Add(10*time.Hour), day.Add(12*time.Hour)))
	sig, body := signed(t, intentEvent("payment_intent.payment_failed",
		`{"id":"pi_9","object":"payment_intent","metadata":{"reservationId":"r1","userId":"u1"},"last_payment_error":{"message":"Your card was declined."}}`))

	outcome, err := f.svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)

	require.Len(t, f.notices.outcomes, 1)
	assert.Equal(t, "Your card was declined.", f.notices.outcomes[0].FailureReason)
	assert.Equal(t, models.PaymentPending, f.reservations.Get("r1").PaymentStatus)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	f := newFixture(day.Add(10*time.Hour))
	_, body := signed(t, intentEvent("payment_intent.succeeded", `{"id":"pi_1"}`))

	_, err := f.svc.HandleWebhook(context.Background(), body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newFixture(day.Add(10*time.Hour))
	sig, body := signed(t, intentEvent("charge.refunded", `{"id":"ch_1","object":"charge"}`))

	outcome, err := f.svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), toMinorUnits(19.99))
	assert.Equal(t, int64(5), toMinorUnits(0.05))
}
