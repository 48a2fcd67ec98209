package user

import (
	"errors"
	"fmt"

	"smartparking/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

// UpdateFCMToken stores the push token for the user's current device.
func (s *DefaultUserService) UpdateFCMToken(userID, token string) error {
	if token == "" {
		return fmt.Errorf("fcm token is required")
	}
	if err := s.Repo.UpdateFCMToken(userID, token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		s.Logger.Error("UpdateFCMToken failed", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}
