// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
	"codeberg.org/oliverandrich/go-newsletter/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// TokenEncoder issues access tokens for authenticated users.
type TokenEncoder interface {
	Encode(email string, userID int64) (string, error)
	TTL() time.Duration
}

type Service struct {
	repo              *repository.Repository
	tokens            TokenEncoder
	passwordValidator *PasswordValidator
	cost              int
}

func NewService(repo *repository.Repository, tokens TokenEncoder) *Service {
	return &Service{
		repo:              repo,
		tokens:            tokens,
		passwordValidator: DefaultPasswordValidator(),
		cost:              bcrypt.DefaultCost,
	}
}

// WithHashCost returns a copy of s that hashes new passwords with cost.
// Tests use bcrypt.MinCost to stay fast.
func (s *Service) WithHashCost(cost int) *Service {
	cp := *s
	cp.cost = cost
	return &cp
}

// RegisterParams holds the parameters for user registration
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	email := strings.TrimSpace(params.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	validation := s.passwordValidator.Validate(params.Password, params.Name, email)
	if !validation.Valid {
		return nil, &PasswordValidationError{Errors: validation.Errors}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, strings.TrimSpace(params.Name), email, string(passwordHash))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)

	return user, nil
}

// Login checks the credentials and returns a fresh access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Encode(user.Email, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login_success", "user_id", user.ID, "email", user.Email)
	return token, nil
}

// TokenTTL is how long tokens returned by Login stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// CurrentUser loads the user a token was issued to.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns the public data of every user.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return s.repo.ListUsers(ctx)
}
