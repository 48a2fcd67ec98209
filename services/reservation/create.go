package reservation

import (
	"context"
	"fmt"
	"math"
	"time"

	"smartparking/models"
	"smartparking/services/events"
	"smartparking/services/occupancy"
	"smartparking/utils"

	"go.uber.org/zap"
)

// CreateReservation stores a pending reservation if the spot is free for the
// requested window. The availability check and the insert run under the
// spot's claim.
func (s *DefaultReservationService) CreateReservation(ctx context.Context, req models.CreateReservationRequest) (*models.Reservation, error) {
	logger := s.logger()

	start, end, err := requestWindow(req)
	if err != nil {
		return nil, err
	}
	if !end.After(s.now()) {
		return nil, fmt.Errorf("%w: reservation window has already ended", ErrInvalidRequest)
	}

	spot, err := s.Spots.GetByID(ctx, req.SpotID)
	if err != nil {
		return nil, spotError(err)
	}
	if spot.Status == models.SpotMaintenance {
		return nil, NewConflictError(models.ConflictMaintenance, "", nil)
	}

	release, err := s.Claims.Claim(ctx, spot.ID)
	if err != nil {
		logger.Warn("CreateReservation: could not claim spot", zap.String("spotID", spot.ID), zap.Error(err))
		return nil, err
	}
	defer release()

	if err := s.ensureAvailable(ctx, spot.ID, start, end); err != nil {
		return nil, err
	}

	duration := end.Sub(start).Hours()
	res := &models.Reservation{
		UserID:        req.UserID,
		UserName:      req.UserName,
		UserPhone:     req.UserPhone,
		SpotID:        spot.ID,
		SpotNumber:    spot.Number,
		StartTime:     start,
		EndTime:       end,
		Duration:      duration,
		TotalCost:     roundCents(spot.PricePerHour * duration),
		Status:        models.ReservationPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     s.now(),
	}
	if err := s.Reservations.Create(ctx, res); err != nil {
		logger.Error("CreateReservation: insert failed", zap.String("spotID", spot.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", occupancy.ErrStoreUnavailable, err)
	}

	logger.Info("Reservation created",
		zap.String("reservationID", res.ID),
		zap.String("spotID", spot.ID),
		zap.Time("start", start), zap.Time("end", end))
	utils.ReservationTransitions.WithLabelValues(string(res.Status)).Inc()
	s.publish(ctx, events.ReservationChanged(*res, s.now()))
	return res, nil
}

// ensureAvailable turns a refused availability check into a ConflictError
// carrying the spot's next free instant.
func (s *DefaultReservationService) ensureAvailable(ctx context.Context, spotID string, start, end time.Time) error {
	check, err := s.Engine.CheckAvailability(ctx, spotID, start, end)
	if err != nil {
		return err
	}
	utils.AvailabilityChecks.WithLabelValues(availabilityLabel(check)).Inc()
	if check.Available {
		return nil
	}

	next, err := s.Engine.GetNextAvailableTime(ctx, spotID)
	if err != nil {
		s.logger().Debug("next available time unknown", zap.String("spotID", spotID), zap.Error(err))
		next = nil
	}
	return NewConflictError(check.Reason, check.ConflictingReservationID, next)
}

func availabilityLabel(check models.AvailabilityResult) string {
	if check.Available {
		return "available"
	}
	return string(check.Reason)
}

// requestWindow resolves [start, end) from an explicit end or a duration in hours.
func requestWindow(req models.CreateReservationRequest) (time.Time, time.Time, error) {
	if req.SpotID == "" || req.StartTime.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: spotId and startTime are required", ErrInvalidRequest)
	}
	start := req.StartTime
	end := req.EndTime
	if end.IsZero() {
		if req.Duration <= 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: endTime or a positive duration is required", ErrInvalidRequest)
		}
		end = start.Add(time.Duration(req.Duration * float64(time.Hour)))
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, occupancy.ErrInvalidInterval
	}
	return start, end, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
