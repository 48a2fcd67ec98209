package occupancy

import (
	"context"
	"time"

	"smartparking/models"

	"go.uber.org/zap"
)

// OccupancyEngine answers availability questions for spots over time and
// releases expired occupancy holds.
type OccupancyEngine interface {
	IsSpotAvailable(ctx context.Context, spotID string, start, end time.Time) (bool, error)
	CheckAvailability(ctx context.Context, spotID string, start, end time.Time) (models.AvailabilityResult, error)
	GetNextAvailableTime(ctx context.Context, spotID string) (*time.Time, error)
	UpdateExpiredOccupancies(ctx context.Context) models.SweepReport
}

// Store is the persistence the engine reads and writes through.
type Store interface {
	GetSpot(ctx context.Context, spotID string) (*models.Spot, error)
	ListReservationsForSpot(ctx context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error)
	ListOccupiedSpots(ctx context.Context) ([]models.Spot, error)
	UpdateSpotFields(ctx context.Context, spotID string, fields models.OccupancyFields, guard *models.OccupancyGuard) error
}

// DefaultOccupancyEngine implements OccupancyEngine. It holds no state of its
// own; every call reads the store afresh, so it is safe for concurrent use.
// Availability answers carry no exclusivity: callers that act on them must
// hold a ClaimLocker claim for the spot.
type DefaultOccupancyEngine struct {
	Store  Store
	Logger *zap.Logger
	// Now is the engine clock. Nil means time.Now.
	Now func() time.Time
}

func NewOccupancyEngine(store Store, logger *zap.Logger) *DefaultOccupancyEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultOccupancyEngine{Store: store, Logger: logger}
}

func (e *DefaultOccupancyEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DefaultOccupancyEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
