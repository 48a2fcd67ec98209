package admin

import (
	"context"
	"errors"
	"fmt"

	reservationRepo "smartparking/database/repository/reservation"
	spotRepo "smartparking/database/repository/spot"
	userRepo "smartparking/database/repository/user"
	zoneRepo "smartparking/database/repository/zone"
	"smartparking/models"
	"smartparking/services/occupancy"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrInvalidStatus = errors.New("invalid spot status")
)

// AdminService covers the operator side: zones, spots, manual status
// overrides and the dashboard figures.
type AdminService interface {
	CreateZone(ctx context.Context, in models.ZoneInput) (*models.Zone, error)
	UpdateZone(ctx context.Context, id string, in models.ZoneInput) (*models.Zone, error)
	DeleteZone(ctx context.Context, id string) error
	ListZones(ctx context.Context) ([]models.Zone, error)

	CreateSpot(ctx context.Context, in models.SpotInput) (*models.Spot, error)
	UpdateSpot(ctx context.Context, id string, in models.SpotInput) (*models.Spot, error)
	DeleteSpot(ctx context.Context, id string) error
	GetSpot(ctx context.Context, id string) (*models.Spot, error)
	ListSpots(ctx context.Context, zone string) ([]models.Spot, error)
	SetSpotStatus(ctx context.Context, id string, status models.SpotStatus) (*models.Spot, error)

	GetAnalytics(ctx context.Context) (*models.Analytics, error)
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Zones        zoneRepo.ZoneRepository
	Spots        spotRepo.SpotRepository
	Reservations reservationRepo.ReservationRepository
	Users        userRepo.UserRepository
	Logger       *zap.Logger
}

func (a *DefaultAdminService) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func repoError(what string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}
}
