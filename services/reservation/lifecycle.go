package reservation

import (
	"context"
	"errors"
	"fmt"

	reservationRepo "smartparking/database/repository/reservation"
	spotRepo "smartparking/database/repository/spot"
	"smartparking/models"
	"smartparking/services/events"
	"smartparking/services/occupancy"
	"smartparking/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ApproveReservation accepts a pending reservation. Availability is checked
// again under the spot claim so that no two binding reservations of a spot
// ever overlap.
func (s *DefaultReservationService) ApproveReservation(ctx context.Context, id, adminID string) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != models.ReservationPending {
		return nil, fmt.Errorf("%w: %s reservation cannot be approved", ErrInvalidTransition, res.Status)
	}

	release, err := s.Claims.Claim(ctx, res.SpotID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureAvailable(ctx, res.SpotID, res.StartTime, res.EndTime); err != nil {
		return nil, err
	}

	return s.transition(ctx, id, []models.ReservationStatus{models.ReservationPending}, models.ReservationApproved, map[string]any{
		"approvedBy": adminID,
		"approvedAt": s.now(),
	})
}

// RejectReservation cancels a pending reservation on an operator's behalf.
func (s *DefaultReservationService) RejectReservation(ctx context.Context, id, notes string) (*models.Reservation, error) {
	if notes == "" {
		notes = "Rejected by admin"
	}
	return s.transition(ctx, id, []models.ReservationStatus{models.ReservationPending}, models.ReservationCancelled, map[string]any{
		"notes": notes,
	})
}

func (s *DefaultReservationService) CancelReservation(ctx context.Context, id, userID string) (*models.Reservation, error) {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id,
		[]models.ReservationStatus{models.ReservationPending, models.ReservationApproved},
		models.ReservationCancelled, nil)
}

// CheckIn starts an approved reservation: the spot is held for the caller
// until the reservation ends, and a release is scheduled for that moment.
// An empty userID checks in on the owner's behalf.
func (s *DefaultReservationService) CheckIn(ctx context.Context, id, userID string) (*models.Reservation, error) {
	logger := s.logger()
	res, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if res.Status != models.ReservationApproved {
		return nil, fmt.Errorf("%w: %s reservation cannot be checked in", ErrInvalidTransition, res.Status)
	}
	now := s.now()
	if now.Before(res.StartTime.Add(-CheckInGrace)) || !now.Before(res.EndTime) {
		return nil, ErrOutsideWindow
	}

	release, err := s.Claims.Claim(ctx, res.SpotID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.Spots.PlaceHold(ctx, res.SpotID, res.UserID, res.EndTime, now); err != nil {
		if errors.Is(err, spotRepo.ErrHoldConflict) {
			return nil, NewConflictError(models.ConflictOccupied, "", nil)
		}
		return nil, spotError(err)
	}

	updated, err := s.transition(ctx, id, []models.ReservationStatus{models.ReservationApproved}, models.ReservationActive, map[string]any{
		"checkInTime": now,
	})
	if err != nil {
		if _, rerr := s.Spots.ReleaseHold(ctx, res.SpotID, res.UserID, now); rerr != nil {
			logger.Error("CheckIn: failed to roll back hold", zap.String("spotID", res.SpotID), zap.Error(rerr))
		}
		return nil, err
	}

	// The periodic sweep still releases the hold if this scheduling fails.
	if s.Releases != nil {
		if err := s.Releases.ScheduleRelease(ctx, res.SpotID, res.EndTime); err != nil {
			logger.Warn("CheckIn: release not scheduled", zap.String("spotID", res.SpotID), zap.Error(err))
		}
	}
	s.publish(ctx, events.SpotHeld(*updated, now))
	return updated, nil
}

// CheckOut completes an active reservation and frees the spot.
func (s *DefaultReservationService) CheckOut(ctx context.Context, id, userID string) (*models.Reservation, error) {
	res, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	updated, err := s.transition(ctx, id, []models.ReservationStatus{models.ReservationActive}, models.ReservationCompleted, map[string]any{
		"checkOutTime": now,
	})
	if err != nil {
		return nil, err
	}

	released, err := s.Spots.ReleaseHold(ctx, res.SpotID, res.UserID, now)
	if err != nil {
		s.logger().Error("CheckOut: failed to release hold; the sweep will clear it at expiry",
			zap.String("spotID", res.SpotID), zap.Error(err))
	}
	if released {
		holder := res.UserID
		s.publish(ctx, events.SpotReleased(models.Spot{ID: res.SpotID, Number: res.SpotNumber, OccupiedBy: &holder}, now))
	}
	return updated, nil
}

func (s *DefaultReservationService) MarkPaid(ctx context.Context, id, paymentRef string) (*models.Reservation, error) {
	res, err := s.Reservations.MarkPaid(ctx, id, paymentRef)
	if err != nil {
		return nil, reservationError(err)
	}
	s.logger().Info("Reservation paid", zap.String("reservationID", id), zap.String("paymentRef", paymentRef))
	return res, nil
}

// ExpireStaleReservations expires pending and approved reservations whose
// window closed without a check-in.
func (s *DefaultReservationService) ExpireStaleReservations(ctx context.Context) (int64, error) {
	n, err := s.Reservations.ExpireStale(ctx, s.now())
	if err != nil {
		s.logger().Error("ExpireStaleReservations failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}
	if n > 0 {
		utils.ReservationTransitions.WithLabelValues(string(models.ReservationExpired)).Add(float64(n))
		s.logger().Info("Expired stale reservations", zap.Int64("count", n))
	}
	return n, nil
}

func (s *DefaultReservationService) transition(ctx context.Context, id string, from []models.ReservationStatus, to models.ReservationStatus, set map[string]any) (*models.Reservation, error) {
	updated, err := s.Reservations.Transition(ctx, id, from, to, set)
	if err != nil {
		return nil, reservationError(err)
	}
	utils.ReservationTransitions.WithLabelValues(string(to)).Inc()
	s.logger().Info("Reservation status changed",
		zap.String("reservationID", id), zap.String("status", string(to)))

	if s.Notifier != nil {
		if err := s.Notifier.NotifyReservationStatus(ctx, *updated); err != nil {
			s.logger().Warn("Reservation notification failed", zap.String("reservationID", id), zap.Error(err))
		}
	}
	s.publish(ctx, events.ReservationChanged(*updated, s.now()))
	return updated, nil
}

// owned loads the reservation and checks it belongs to userID.
func (s *DefaultReservationService) owned(ctx context.Context, id, userID string) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && res.UserID != userID {
		return nil, ErrForbidden
	}
	return res, nil
}

func (s *DefaultReservationService) publish(ctx context.Context, ev models.ParkingEvent) {
	if s.Events == nil {
		return
	}
	// Publishing failures are already logged by the publisher.
	_ = s.Events.Publish(ctx, ev)
}

func reservationError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrReservationNotFound
	case errors.Is(err, reservationRepo.ErrStaleStatus):
		return ErrInvalidTransition
	default:
		return fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}
}

func spotError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return occupancy.ErrSpotNotFound
	}
	return fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
}
