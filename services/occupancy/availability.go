package occupancy

import (
	"context"
	"time"

	"smartparking/models"

	"go.uber.org/zap"
)

// IsSpotAvailable reports whether the spot is free for [start, end).
// Errors always come with false.
func (e *DefaultOccupancyEngine) IsSpotAvailable(ctx context.Context, spotID string, start, end time.Time) (bool, error) {
	res, err := e.CheckAvailability(ctx, spotID, start, end)
	if err != nil {
		return false, err
	}
	return res.Available, nil
}

// CheckAvailability is IsSpotAvailable with the reason for a refusal.
func (e *DefaultOccupancyEngine) CheckAvailability(ctx context.Context, spotID string, start, end time.Time) (models.AvailabilityResult, error) {
	result := models.AvailabilityResult{SpotID: spotID}
	if !start.Before(end) {
		return result, ErrInvalidInterval
	}

	spot, err := e.Store.GetSpot(ctx, spotID)
	if err != nil {
		e.logger().Debug("CheckAvailability: spot lookup failed",
			zap.String("spotID", spotID), zap.Error(err))
		return result, err
	}

	if spot.Status == models.SpotMaintenance {
		result.Reason = models.ConflictMaintenance
		return result, nil
	}

	// A live hold that reaches past the requested start blocks the whole window.
	if spot.Status == models.SpotOccupied && spot.OccupiedUntil != nil && spot.OccupiedUntil.After(start) {
		until := *spot.OccupiedUntil
		result.Reason = models.ConflictOccupied
		result.HeldUntil = &until
		return result, nil
	}

	reservations, err := e.Store.ListReservationsForSpot(ctx, spotID, models.BindingStatuses)
	if err != nil {
		e.logger().Warn("CheckAvailability: reservation lookup failed",
			zap.String("spotID", spotID), zap.Error(err))
		return result, err
	}
	if r := firstConflict(reservations, start, end); r != nil {
		result.Reason = models.ConflictReservation
		result.ConflictingReservationID = r.ID
		return result, nil
	}

	result.Available = true
	return result, nil
}
