package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
	"github.com/thereayou/secure-profile/pkg/auth"
)

// dummyHash keeps the unknown-username path as slow as a bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3xjzUq1k4F6sY5Z5Y5Y5Y5e"

type AuthService struct {
	users     UserStore
	passwords auth.PasswordChecker
	logger    *zap.Logger
}

func NewAuthService(users UserStore, passwords auth.PasswordChecker, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, passwords: passwords, logger: logger}
}

// Authenticate returns the user whose username and password both match.
// The error does not say which of the two was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.passwords.Check(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}

	if !s.passwords.Check(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if !auth.IsHashed(user.Password) {
		s.logger.Warn("user authenticated with a plaintext credential", zap.String("user_id", user.ID))
	}
	return user, nil
}
