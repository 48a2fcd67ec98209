package user

import (
	"errors"
	"fmt"
	"strings"

	userRepo "smartparking/database/repository/user"
	"smartparking/models"
	"smartparking/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func NewUserService(repo userRepo.UserRepository, logger *zap.Logger) *DefaultUserService {
	return &DefaultUserService{Repo: repo, Logger: logger, IssueToken: utils.GenerateToken}
}

// Register creates a user account with the default role and signs it in.
func (s *DefaultUserService) Register(req models.RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		s.Logger.Error("Register: failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	s.Logger.Info("user registered", zap.String("userID", u.ID))
	return s.authResponse(u)
}

// Login verifies the password and issues a fresh token.
func (s *DefaultUserService) Login(req models.LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		s.Logger.Error("Login: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(u)
}

func (s *DefaultUserService) authResponse(u *models.User) (*AuthResponse, error) {
	token, err := s.IssueToken(u.ID, u.Email, u.Role, TokenTTL)
	if err != nil {
		s.Logger.Error("failed to sign token", zap.String("userID", u.ID), zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	return &AuthResponse{ID: u.ID, Token: token, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}
