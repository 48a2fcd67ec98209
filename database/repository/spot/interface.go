// File: database/repository/spot/interface.go
package spotRepo

import (
	"context"
	"errors"
	"time"

	"smartparking/database"
	"smartparking/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrGuardMismatch is returned when a guarded occupancy update finds the
// spot's hold already changed.
var ErrGuardMismatch = errors.New("spot occupancy changed concurrently")

// ErrHoldConflict is returned when a hold cannot be placed because another
// holder owns the spot or it is under maintenance.
var ErrHoldConflict = errors.New("spot is held by another occupant")

type SpotRepository interface {
	Create(ctx context.Context, spot *models.Spot) error
	GetByID(ctx context.Context, id string) (*models.Spot, error)
	GetByNumber(ctx context.Context, number string) (*models.Spot, error)
	List(ctx context.Context, zone string) ([]models.Spot, error)
	ListByStatus(ctx context.Context, status models.SpotStatus) ([]models.Spot, error)
	Update(ctx context.Context, id string, input models.SpotInput) error
	SetStatus(ctx context.Context, id string, status models.SpotStatus, clearHold bool) error
	Delete(ctx context.Context, id string) error

	UpdateOccupancy(ctx context.Context, id string, fields models.OccupancyFields, guard *models.OccupancyGuard) error
	PlaceHold(ctx context.Context, id, holder string, until, now time.Time) error
	ReleaseHold(ctx context.Context, id, holder string, now time.Time) (bool, error)
}

type mongoSpotRepo struct {
	coll *mongo.Collection
}

const queryTimeout = 5 * time.Second

// NewMongoSpotRepo constructs a new MongoDB SpotRepository.
func NewMongoSpotRepo() SpotRepository {
	repo := &mongoSpotRepo{
		coll: database.DB().Collection("parkingSpots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		database.LogIndexError("parkingSpots", err)
	}
	return repo
}
