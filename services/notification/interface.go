package notification

import (
	"context"
	"fmt"
	"time"

	"smartparking/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	NotifyOccupancyExpired(ctx context.Context, spot models.Spot) error
	NotifyReservationStatus(ctx context.Context, res models.Reservation) error
	NotifyPaymentFailed(ctx context.Context, outcome models.PaymentOutcome) error
}

// Sender is the part of *messaging.Client the service uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UserLookup resolves a user's push token.
type UserLookup interface {
	GetByID(id string) (*models.User, error)
}

// DefaultNotificationService is the production implementation. A nil Sender
// turns every push into a logged no-op.
type DefaultNotificationService struct {
	users  UserLookup
	sender Sender
	logger *zap.Logger
}

func NewDefaultNotificationService(users UserLookup, sender Sender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if users == nil {
		return nil, fmt.Errorf("notification service initialization error: user lookup is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{users: users, sender: sender, logger: logger}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	if s.sender == nil {
		s.logger.Debug("Push disabled, dropping notification",
			zap.String("userID", userID), zap.String("title", title))
		return nil
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = u.Role
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "parking_updates",
				Sound:     "default",
			},
		},
	}

	response, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.logger.Debug("Push sent", zap.String("userID", userID), zap.String("messageID", response))
	return nil
}

// NotifyOccupancyExpired tells the former holder that their time ran out.
func (s *DefaultNotificationService) NotifyOccupancyExpired(ctx context.Context, spot models.Spot) error {
	if spot.OccupiedBy == nil || *spot.OccupiedBy == "" {
		return nil
	}
	data := map[string]string{
		"type":   "occupancy_expired",
		"spotId": spot.ID,
	}
	if spot.OccupiedUntil != nil {
		data["until"] = spot.OccupiedUntil.Format(time.RFC3339)
	}
	body := fmt.Sprintf("Your parking time at spot %s has ended.", spot.Number)
	return s.SendUserPushNotification(ctx, *spot.OccupiedBy, "Parking time ended", body, data)
}

var statusMessages = map[models.ReservationStatus]struct{ title, body string }{
	models.ReservationApproved:  {"Reservation approved", "Your reservation for spot %s has been approved."},
	models.ReservationCancelled: {"Reservation cancelled", "Your reservation for spot %s was cancelled."},
	models.ReservationActive:    {"Checked in", "You are checked in at spot %s."},
	models.ReservationCompleted: {"Checked out", "Thanks for parking at spot %s."},
	models.ReservationExpired:   {"Reservation expired", "Your reservation for spot %s has expired."},
}

// NotifyReservationStatus pushes the reservation's current status to its owner.
func (s *DefaultNotificationService) NotifyReservationStatus(ctx context.Context, res models.Reservation) error {
	msg, ok := statusMessages[res.Status]
	if !ok {
		return nil
	}
	data := map[string]string{
		"type":          "reservation_status",
		"reservationId": res.ID,
		"status":        string(res.Status),
	}
	return s.SendUserPushNotification(ctx, res.UserID, msg.title, fmt.Sprintf(msg.body, res.SpotNumber), data)
}

func (s *DefaultNotificationService) NotifyPaymentFailed(ctx context.Context, outcome models.PaymentOutcome) error {
	if outcome.UserID == "" {
		return nil
	}
	data := map[string]string{
		"type":          "payment_failed",
		"reservationId": outcome.ReservationID,
	}
	body := "Your payment could not be completed. Please try again."
	if outcome.FailureReason != "" {
		body = "Payment failed: " + outcome.FailureReason
	}
	return s.SendUserPushNotification(ctx, outcome.UserID, "Payment failed", body, data)
}
