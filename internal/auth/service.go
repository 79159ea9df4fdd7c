// Package auth is the identity layer: signup, signin, stateless signout
// and the password reset flow, all yielding the owner id the task store is
// partitioned by.
package auth

import (
	"context"
	"errors"
	"net/mail"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 characters")
)

// Identity is the authenticated user handed back to callers.
type Identity struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service struct {
	users  repo.UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	logger *zap.Logger
}

func NewService(users repo.UserRepository, hasher *PasswordHasher, jwt *JWTManager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		jwt:    jwt,
		logger: logger,
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (Identity, error) {
	if err := validateEmail(email); err != nil {
		return Identity{}, err
	}
	if err := validatePassword(password); err != nil {
		return Identity{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Identity{}, err
	}

	user, err := s.users.CreateUser(ctx, repo.User{Email: email, PasswordHash: hash})
	if err != nil {
		return Identity{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issueTokens(user)
}

// SignIn authenticates by email and password. Lookup failures and bad
// passwords collapse into one error so the response doesn't leak which
// accounts exist.
func (s *Service) SignIn(ctx context.Context, email, password string) (Identity, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Identity{}, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// SignOut acknowledges the client discarding its tokens. Tokens are
// stateless, so there is nothing to revoke server side.
func (s *Service) SignOut(ctx context.Context, userID string) {
	s.logger.Info("user signed out", zap.String("user_id", userID))
}

// RequestPasswordReset issues a short-lived reset token for the account.
// An unknown email reports success without a token, again to avoid
// account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.jwt.GenerateResetToken(user.ID, user.Email)
}

// ResetPassword sets a new password using a valid reset token.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.jwt.ValidateReset(resetToken)
	if err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, claims.UserID, hash); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("user_id", claims.UserID))
	return nil
}

func (s *Service) issueTokens(user repo.User) (Identity, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return Identity{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
