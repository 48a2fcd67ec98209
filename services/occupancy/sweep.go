package occupancy

import (
	"context"
	"errors"

	"smartparking/models"

	"go.uber.org/zap"
)

// UpdateExpiredOccupancies releases every occupancy hold that has ended.
// Each spot is released on its own with a write guarded on the hold it was
// read with, so a hold extended meanwhile is left alone. Failures are logged
// and counted in the report, never returned.
func (e *DefaultOccupancyEngine) UpdateExpiredOccupancies(ctx context.Context) models.SweepReport {
	logger := e.logger()
	now := e.now()
	report := models.SweepReport{StartedAt: now}

	spots, err := e.Store.ListOccupiedSpots(ctx)
	if err != nil {
		logger.Error("UpdateExpiredOccupancies: listing occupied spots failed", zap.Error(err))
		report.Err = err
		return report
	}
	report.Scanned = len(spots)

	for _, spot := range spots {
		// Occupied without an end is an operator-set state, not a hold.
		if spot.Status != models.SpotOccupied || spot.OccupiedUntil == nil || spot.OccupiedUntil.After(now) {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Err = err
			break
		}

		guard := &models.OccupancyGuard{Status: models.SpotOccupied, OccupiedUntil: spot.OccupiedUntil}
		fields := models.OccupancyFields{Status: models.SpotAvailable, LastUpdated: now}

		err := e.Store.UpdateSpotFields(ctx, spot.ID, fields, guard)
		switch {
		case err == nil:
			report.Released = append(report.Released, spot)
			logger.Info("Released expired occupancy",
				zap.String("spotID", spot.ID), zap.Time("occupiedUntil", *spot.OccupiedUntil))
		case errors.Is(err, ErrOccupancyChanged), errors.Is(err, ErrSpotNotFound):
			report.Skipped++
			logger.Debug("Skipped spot whose hold changed during sweep", zap.String("spotID", spot.ID))
		default:
			report.Failed++
			logger.Error("Failed to release expired occupancy",
				zap.String("spotID", spot.ID), zap.Error(err))
		}
	}
	return report
}
