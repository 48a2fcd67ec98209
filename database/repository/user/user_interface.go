package userRepo

import (
	"smartparking/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	GetByEmail(email string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// UpdateFCMToken stores the device token used for push notifications.
	UpdateFCMToken(id, token string) error
	// Count returns the number of registered users.
	Count() (int64, error)
}
