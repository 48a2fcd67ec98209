package user

import (
	"errors"
	"time"

	userRepo "smartparking/database/repository/user"
	"smartparking/models"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 72 * time.Hour

type UserService interface {
	// Authentication
	Register(req models.RegisterRequest) (*AuthResponse, error)
	Login(req models.LoginRequest) (*AuthResponse, error)

	// User Management
	GetUserByID(userID string) (*models.User, error)
	UpdateFCMToken(userID, token string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Logger *zap.Logger
	// IssueToken signs access tokens; utils.GenerateToken in production.
	IssueToken func(subject, email, role string, ttl time.Duration) (string, error)
}

// AuthResponse contains the user's ID, token, and additional details.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}
