package reservation

import (
	"context"
	"fmt"

	"smartparking/models"
	"smartparking/services/occupancy"
)

func (s *DefaultReservationService) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	res, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, reservationError(err)
	}
	return res, nil
}

func (s *DefaultReservationService) ListUserReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	out, err := s.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}
	return out, nil
}

// ListReservations lists all reservations, optionally filtered by status.
func (s *DefaultReservationService) ListReservations(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	out, err := s.Reservations.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}
	return out, nil
}
