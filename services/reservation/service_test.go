package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartparking/database/repository/repotest"
	"smartparking/models"
	"smartparking/services/events"
	"smartparking/services/occupancy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []models.ReservationStatus
}

func (n *recordingNotifier) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}
func (n *recordingNotifier) NotifyOccupancyExpired(context.Context, models.Spot) error { return nil }
func (n *recordingNotifier) NotifyPaymentFailed(context.Context, models.PaymentOutcome) error {
	return nil
}
func (n *recordingNotifier) NotifyReservationStatus(_ context.Context, res models.Reservation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, res.Status)
	return nil
}

type recordingReleases struct {
	spots []string
	until []time.Time
}

func (r *recordingReleases) ScheduleRelease(_ context.Context, spotID string, until time.Time) error {
	r.spots = append(r.spots, spotID)
	r.until = append(r.until, until)
	return nil
}

type fixture struct {
	svc          *DefaultReservationService
	engine       *occupancy.DefaultOccupancyEngine
	spots        *repotest.Spots
	reservations *repotest.Reservations
	claims       *occupancy.LocalClaimLocker
	releases     *recordingReleases
	notifier     *recordingNotifier
	now          time.Time
}

func newFixture(now time.Time, spots ...models.Spot) *fixture {
	f := &fixture{
		spots:        repotest.NewSpots(spots...),
		reservations: repotest.NewReservations(),
		claims:       occupancy.NewLocalClaimLocker(),
		releases:     &recordingReleases{},
		notifier:     &recordingNotifier{},
		now:          now,
	}
	clock := func() time.Time { return f.now }
	f.engine = occupancy.NewOccupancyEngine(occupancy.NewMongoStore(f.spots, f.reservations), nil)
	f.engine.Now = clock
	f.svc = &DefaultReservationService{
		Reservations: f.reservations,
		Spots:        f.spots,
		Engine:       f.engine,
		Claims:       f.claims,
		Releases:     f.releases,
		Notifier:     f.notifier,
		Events:       events.NoopPublisher{},
		Now:          clock,
	}
	return f
}

func spot(id string, price float64) models.Spot {
	return models.Spot{ID: id, Number: id, Zone: "A", Status: models.SpotAvailable, PricePerHour: price}
}

func (f *fixture) create(t *testing.T, user, spotID string, start, end time.Time) *models.Reservation {
	t.Helper()
	res, err := f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: spotID, StartTime: start, EndTime: end, UserID: user,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) approved(t *testing.T, user, spotID string, start, end time.Time) *models.Reservation {
	t.Helper()
	res := f.create(t, user, spotID, start, end)
	approved, err := f.svc.ApproveReservation(context.Background(), res.ID, "admin-1")
	require.NoError(t, err)
	return approved
}

func TestCreateReservation_DurationAndCost(t *testing.T) {
	f := newFixture(at(8, 0), spot("A-01", 2.5))

	res, err := f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(10, 0), Duration: 2, UserID: "u1", UserName: "Ann",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.True(t, res.EndTime.Equal(at(12, 0)))
	assert.Equal(t, 2.0, res.Duration)
	assert.Equal(t, 5.0, res.TotalCost)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, models.PaymentPending, res.PaymentStatus)
	assert.Equal(t, "A-01", res.SpotNumber)
	assert.Equal(t, 1, f.reservations.Len())

	res, err = f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(13, 0), EndTime: at(14, 30), UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, res.Duration)
	assert.Equal(t, 3.75, res.TotalCost)
}

func TestCreateReservation_ConflictCarriesNextAvailable(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	existing := f.approved(t, "u1", "A-01", at(10, 0), at(12, 0))

	_, err := f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(11, 0), EndTime: at(13, 0), UserID: "u2",
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictReservation, conflict.Reason)
	assert.Equal(t, existing.ID, conflict.ReservationID)
	require.NotNil(t, conflict.NextAvailable)
	assert.True(t, conflict.NextAvailable.Equal(at(12, 0)))
}

func TestCreateReservation_Validation(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, models.CreateReservationRequest{SpotID: "A-01", StartTime: at(11, 0), EndTime: at(10, 0)})
	assert.ErrorIs(t, err, occupancy.ErrInvalidInterval)

	_, err = f.svc.CreateReservation(ctx, models.CreateReservationRequest{SpotID: "A-01", StartTime: at(11, 0)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.CreateReservation(ctx, models.CreateReservationRequest{SpotID: "A-01", StartTime: at(6, 0), EndTime: at(7, 0)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.CreateReservation(ctx, models.CreateReservationRequest{SpotID: "nope", StartTime: at(10, 0), EndTime: at(11, 0)})
	assert.ErrorIs(t, err, occupancy.ErrSpotNotFound)
	assert.Zero(t, f.reservations.Len())
}

func TestCreateReservation_MaintenanceSpot(t *testing.T) {
	s := spot("A-01", 2)
	s.Status = models.SpotMaintenance
	f := newFixture(at(9, 0), s)

	_, err := f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(10, 0), EndTime: at(11, 0),
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictMaintenance, conflict.Reason)
}

func TestCreateReservation_ClaimBusy(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	release, err := f.claims.Claim(context.Background(), "A-01")
	require.NoError(t, err)
	defer release()

	_, err = f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(10, 0), EndTime: at(11, 0),
	})
	assert.ErrorIs(t, err, occupancy.ErrClaimBusy)
	assert.Zero(t, f.reservations.Len())
}

func TestApproveReservation_RechecksOverlap(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	first := f.create(t, "u1", "A-01", at(10, 0), at(12, 0))
	second := f.create(t, "u2", "A-01", at(11, 0), at(13, 0))

	approved, err := f.svc.ApproveReservation(context.Background(), first.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	_, err = f.svc.ApproveReservation(context.Background(), second.ID, "admin-1")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ReservationID)
	assert.Equal(t, models.ReservationPending, f.reservations.Get(second.ID).Status)
	assert.Equal(t, []models.ReservationStatus{models.ReservationApproved}, f.notifier.statuses)
}

func TestApproveReservation_OnlyPending(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	res := f.approved(t, "u1", "A-01", at(10, 0), at(12, 0))

	_, err := f.svc.ApproveReservation(context.Background(), res.ID, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.ApproveReservation(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestRejectAndCancel(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	ctx := context.Background()

	pending := f.create(t, "u1", "A-01", at(10, 0), at(11, 0))
	rejected, err := f.svc.RejectReservation(ctx, pending.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, rejected.Status)
	assert.Equal(t, "Rejected by admin", rejected.Notes)

	_, err = f.svc.RejectReservation(ctx, pending.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	approved := f.approved(t, "u1", "A-01", at(12, 0), at(13, 0))
	_, err = f.svc.CancelReservation(ctx, approved.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.CancelReservation(ctx, approved.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)

	// The window is free again once the binding reservation is cancelled.
	ok, err := f.engine.IsSpotAvailable(ctx, "A-01", at(12, 0), at(13, 0))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckInAndOut(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	ctx := context.Background()
	res := f.approved(t, "u1", "A-01", at(10, 0), at(12, 0))

	_, err := f.svc.CheckIn(ctx, res.ID, "u1")
	assert.ErrorIs(t, err, ErrOutsideWindow)

	f.now = at(9, 50)
	active, err := f.svc.CheckIn(ctx, res.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationActive, active.Status)
	require.NotNil(t, active.CheckInTime)

	held := f.spots.Get("A-01")
	assert.Equal(t, models.SpotOccupied, held.Status)
	require.NotNil(t, held.OccupiedBy)
	assert.Equal(t, "u1", *held.OccupiedBy)
	require.NotNil(t, held.OccupiedUntil)
	assert.True(t, held.OccupiedUntil.Equal(at(12, 0)))
	assert.Equal(t, []string{"A-01"}, f.releases.spots)

	next, err := f.engine.GetNextAvailableTime(ctx, "A-01")
	require.NoError(t, err)
	assert.True(t, next.Equal(at(12, 0)))

	f.now = at(11, 0)
	done, err := f.svc.CheckOut(ctx, res.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, done.Status)
	assert.Equal(t, models.SpotAvailable, f.spots.Get("A-01").Status)
	assert.Nil(t, f.spots.Get("A-01").OccupiedBy)

	_, err = f.svc.CheckOut(ctx, res.ID, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCheckIn_SpotHeldByOther(t *testing.T) {
	s := spot("A-01", 2)
	other, until := "walk-in", at(11, 0)
	s.Status, s.OccupiedBy, s.OccupiedUntil = models.SpotOccupied, &other, &until
	f := newFixture(at(9, 0), s)

	// Inserted directly: approval would refuse it while the hold is live.
	res := models.Reservation{ID: "r1", UserID: "u1", SpotID: "A-01", StartTime: at(10, 0), EndTime: at(12, 0), Status: models.ReservationApproved}
	require.NoError(t, f.reservations.Create(context.Background(), &res))

	f.now = at(10, 0)
	_, err := f.svc.CheckIn(context.Background(), "r1", "u1")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictOccupied, conflict.Reason)
	assert.Equal(t, models.ReservationApproved, f.reservations.Get("r1").Status)
	assert.Equal(t, "walk-in", *f.spots.Get("A-01").OccupiedBy)
}

func TestHoldFromCheckInIsSweptAtEnd(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	ctx := context.Background()
	res := f.approved(t, "u1", "A-01", at(10, 0), at(12, 0))

	f.now = at(10, 0)
	_, err := f.svc.CheckIn(ctx, res.ID, "u1")
	require.NoError(t, err)

	f.now = at(11, 59)
	report := f.engine.UpdateExpiredOccupancies(ctx)
	assert.Empty(t, report.Released)

	f.now = at(12, 0)
	report = f.engine.UpdateExpiredOccupancies(ctx)
	require.Len(t, report.Released, 1)
	assert.Equal(t, models.SpotAvailable, f.spots.Get("A-01").Status)
}

func TestExpireStaleReservations(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	ctx := context.Background()
	pending := f.create(t, "u1", "A-01", at(10, 0), at(11, 0))
	approved := f.approved(t, "u2", "A-01", at(11, 0), at(12, 0))
	later := f.create(t, "u3", "A-01", at(15, 0), at(16, 0))

	f.now = at(12, 0)
	n, err := f.svc.ExpireStaleReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, models.ReservationExpired, f.reservations.Get(pending.ID).Status)
	assert.Equal(t, models.ReservationExpired, f.reservations.Get(approved.ID).Status)
	assert.Equal(t, models.ReservationPending, f.reservations.Get(later.ID).Status)
}

func TestStoreFailureSurfacesAsUnavailable(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	f.reservations.Err = errors.New("server selection timeout")

	_, err := f.svc.GetReservation(context.Background(), "r1")
	assert.ErrorIs(t, err, occupancy.ErrStoreUnavailable)

	_, err = f.svc.CreateReservation(context.Background(), models.CreateReservationRequest{
		SpotID: "A-01", StartTime: at(10, 0), EndTime: at(11, 0),
	})
	assert.ErrorIs(t, err, occupancy.ErrStoreUnavailable)
}

func TestListReservations_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(at(9, 0), spot("A-01", 2))
	_, err := f.svc.ListReservations(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
