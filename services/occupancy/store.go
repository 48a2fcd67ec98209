package occupancy

import (
	"context"
	"errors"
	"fmt"

	reservationRepo "smartparking/database/repository/reservation"
	spotRepo "smartparking/database/repository/spot"
	"smartparking/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore adapts the spot and reservation repositories to Store and
// translates their errors into the engine's taxonomy.
type MongoStore struct {
	Spots        spotRepo.SpotRepository
	Reservations reservationRepo.ReservationRepository
}

func NewMongoStore(spots spotRepo.SpotRepository, reservations reservationRepo.ReservationRepository) *MongoStore {
	return &MongoStore{Spots: spots, Reservations: reservations}
}

func (s *MongoStore) GetSpot(ctx context.Context, spotID string) (*models.Spot, error) {
	spot, err := s.Spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, translate(err)
	}
	return spot, nil
}

func (s *MongoStore) ListReservationsForSpot(ctx context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error) {
	out, err := s.Reservations.ListForSpot(ctx, spotID, statusIn)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *MongoStore) ListOccupiedSpots(ctx context.Context) ([]models.Spot, error) {
	out, err := s.Spots.ListByStatus(ctx, models.SpotOccupied)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *MongoStore) UpdateSpotFields(ctx context.Context, spotID string, fields models.OccupancyFields, guard *models.OccupancyGuard) error {
	if err := s.Spots.UpdateOccupancy(ctx, spotID, fields, guard); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrSpotNotFound
	case errors.Is(err, spotRepo.ErrGuardMismatch):
		return ErrOccupancyChanged
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
