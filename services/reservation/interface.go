package reservation

import (
	"context"
	"time"

	reservationRepo "smartparking/database/repository/reservation"
	spotRepo "smartparking/database/repository/spot"
	"smartparking/models"
	"smartparking/services/events"
	"smartparking/services/notification"
	"smartparking/services/occupancy"
	"smartparking/services/tasks"

	"go.uber.org/zap"
)

// ReservationService drives reservations through their lifecycle and keeps
// the spot's occupancy hold in step with check-in and check-out.
type ReservationService interface {
	CreateReservation(ctx context.Context, req models.CreateReservationRequest) (*models.Reservation, error)
	ApproveReservation(ctx context.Context, id, adminID string) (*models.Reservation, error)
	RejectReservation(ctx context.Context, id, notes string) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id, userID string) (*models.Reservation, error)
	CheckIn(ctx context.Context, id, userID string) (*models.Reservation, error)
	CheckOut(ctx context.Context, id, userID string) (*models.Reservation, error)
	MarkPaid(ctx context.Context, id, paymentRef string) (*models.Reservation, error)
	ExpireStaleReservations(ctx context.Context) (int64, error)

	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListUserReservations(ctx context.Context, userID string) ([]models.Reservation, error)
	ListReservations(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
}

// CheckInGrace is how early before its start a reservation may be checked in.
const CheckInGrace = 15 * time.Minute

// DefaultReservationService implements ReservationService.
type DefaultReservationService struct {
	Reservations reservationRepo.ReservationRepository
	Spots        spotRepo.SpotRepository
	Engine       occupancy.OccupancyEngine
	Claims       occupancy.ClaimLocker
	Releases     tasks.ReleaseScheduler
	Notifier     notification.NotificationService
	Events       events.Publisher
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultReservationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
