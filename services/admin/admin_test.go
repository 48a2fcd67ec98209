package admin

import (
	"context"
	"testing"
	"time"

	"smartparking/database/repository/repotest"
	"smartparking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(spots []models.Spot, reservations []models.Reservation, users ...models.User) (*DefaultAdminService, *repotest.Spots) {
	spotStore := repotest.NewSpots(spots...)
	return &DefaultAdminService{
		Zones:        repotest.NewZones(),
		Spots:        spotStore,
		Reservations: repotest.NewReservations(reservations...),
		Users:        repotest.NewUsers(users...),
	}, spotStore
}

func TestGetAnalytics(t *testing.T) {
	spots := []models.Spot{
		{ID: "1", Status: models.SpotAvailable},
		{ID: "2", Status: models.SpotOccupied},
		{ID: "3", Status: models.SpotMaintenance},
	}
	reservations := []models.Reservation{
		{ID: "a", Status: models.ReservationPending, TotalCost: 3},
		{ID: "b", Status: models.ReservationApproved, PaymentStatus: models.PaymentPaid, TotalCost: 4.5},
		{ID: "c", Status: models.ReservationCompleted, PaymentStatus: models.PaymentPaid, TotalCost: 6},
	}
	svc, _ := newService(spots, reservations, models.User{ID: "u1"}, models.User{ID: "u2"})

	a, err := svc.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.TotalUsers)
	assert.Equal(t, 3, a.TotalSpots)
	assert.Equal(t, 1, a.AvailableSpots)
	assert.Equal(t, 1, a.OccupiedSpots)
	assert.Equal(t, 1, a.MaintenanceSpots)
	assert.Equal(t, 3, a.TotalReservations)
	assert.Equal(t, 1, a.PendingReservations)
	assert.Equal(t, 1, a.ApprovedReservations)
	assert.Equal(t, 1, a.CompletedReservations)
	assert.Equal(t, 10.5, a.TotalRevenue)
	assert.Equal(t, "33.3", a.OccupancyRate)
}

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, "0", occupancyRate(0, 0))
	assert.Equal(t, "0.0", occupancyRate(0, 4))
	assert.Equal(t, "100.0", occupancyRate(4, 4))
	assert.Equal(t, "66.7", occupancyRate(2, 3))
}

func TestSetSpotStatus(t *testing.T) {
	holder, until := "u1", time.Now().Add(time.Hour)
	held := models.Spot{ID: "1", Status: models.SpotOccupied, OccupiedBy: &holder, OccupiedUntil: &until}
	ctx := context.Background()

	t.Run("maintenance clears the hold", func(t *testing.T) {
		svc, store := newService([]models.Spot{held}, nil)
		spot, err := svc.SetSpotStatus(ctx, "1", models.SpotMaintenance)
		require.NoError(t, err)
		assert.Equal(t, models.SpotMaintenance, spot.Status)
		assert.Nil(t, store.Get("1").OccupiedUntil)
		assert.Nil(t, store.Get("1").OccupiedBy)
	})

	t.Run("reserved keeps the hold", func(t *testing.T) {
		svc, store := newService([]models.Spot{held}, nil)
		_, err := svc.SetSpotStatus(ctx, "1", models.SpotReserved)
		require.NoError(t, err)
		assert.NotNil(t, store.Get("1").OccupiedUntil)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newService([]models.Spot{held}, nil)
		_, err := svc.SetSpotStatus(ctx, "1", "parked")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown spot", func(t *testing.T) {
		svc, _ := newService(nil, nil)
		_, err := svc.SetSpotStatus(ctx, "nope", models.SpotAvailable)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSpotAndZoneCrud(t *testing.T) {
	svc, store := newService(nil, nil)
	ctx := context.Background()

	zone, err := svc.CreateZone(ctx, models.ZoneInput{Name: "Zone A"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, zone.PriceMultiplier)

	spot, err := svc.CreateSpot(ctx, models.SpotInput{Number: "A-01", Zone: zone.Name, PricePerHour: 2})
	require.NoError(t, err)
	assert.Equal(t, models.SpotAvailable, spot.Status)

	until := time.Now().Add(time.Hour)
	require.NoError(t, store.PlaceHold(ctx, spot.ID, "u1", until, time.Now()))

	updated, err := svc.UpdateSpot(ctx, spot.ID, models.SpotInput{Number: "A-01", Zone: zone.Name, PricePerHour: 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.PricePerHour)
	assert.Equal(t, models.SpotOccupied, updated.Status, "editing a spot leaves its hold alone")

	list, err := svc.ListSpots(ctx, zone.Name)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteSpot(ctx, spot.ID))
	assert.ErrorIs(t, svc.DeleteSpot(ctx, spot.ID), ErrNotFound)

	require.NoError(t, svc.DeleteZone(ctx, zone.ID))
	zones, err := svc.ListZones(ctx)
	require.NoError(t, err)
	assert.Empty(t, zones)
}
