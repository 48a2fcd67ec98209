package occupancy

import (
	"context"
	"time"

	"smartparking/models"

	"go.uber.org/zap"
)

// GetNextAvailableTime returns the earliest instant, from now on, at which
// the spot comes free. Spots under maintenance have no such instant and
// yield nil without an error.
func (e *DefaultOccupancyEngine) GetNextAvailableTime(ctx context.Context, spotID string) (*time.Time, error) {
	now := e.now()

	spot, err := e.Store.GetSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.Status == models.SpotMaintenance {
		return nil, nil
	}

	candidate, blocked := now, false
	if spot.HeldAt(now) {
		candidate, blocked = *spot.OccupiedUntil, true
	}

	reservations, err := e.Store.ListReservationsForSpot(ctx, spotID, models.BindingStatuses)
	if err != nil {
		e.logger().Warn("GetNextAvailableTime: reservation lookup failed",
			zap.String("spotID", spotID), zap.Error(err))
		return nil, err
	}

	next := nextFree(candidate, blocked, reservations)
	return &next, nil
}
