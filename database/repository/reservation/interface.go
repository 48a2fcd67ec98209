// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"
	"time"

	"smartparking/database"
	"smartparking/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrStaleStatus is returned when a transition finds the reservation no
// longer in one of the expected source statuses.
var ErrStaleStatus = errors.New("reservation status changed")

type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListForSpot(ctx context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	List(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
	Transition(ctx context.Context, id string, from []models.ReservationStatus, to models.ReservationStatus, set map[string]any) (*models.Reservation, error)
	MarkPaid(ctx context.Context, id, paymentRef string) (*models.Reservation, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

const queryTimeout = 5 * time.Second

// NewMongoReservationRepo constructs a new MongoDB ReservationRepository.
func NewMongoReservationRepo() ReservationRepository {
	repo := &mongoReservationRepo{
		coll: database.DB().Collection("reservations"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		database.LogIndexError("reservations", err)
	}
	return repo
}
