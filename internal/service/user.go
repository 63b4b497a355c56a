package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/repository"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameTooLong  = errors.New("username must be at most 50 characters")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUsernameTaken    = errors.New("username is already taken")
)

const (
	maxUsernameLength = 50
	minPasswordLength = 8
)

// UserService handles account registration, deletion, and the
// startup admin bootstrap.
type UserService struct {
	repo      *repository.Repository
	blacklist *cache.Blacklist
	logger    *slog.Logger
}

func NewUserService(repo *repository.Repository, blacklist *cache.Blacklist, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, blacklist: blacklist, logger: logger}
}

// Register creates a new account with the USER role. Self-service
// registration never grants ADMIN.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(username) > maxUsernameLength {
		return nil, ErrUsernameTooLong
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// DeleteAccount removes the caller's account and revokes the token the
// request was made with, so the credential dies with the account.
func (s *UserService) DeleteAccount(ctx context.Context, username, rawToken string) error {
	if err := s.repo.DeleteUserByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.blacklist.Revoke(ctx, rawToken)
	s.logger.Info("account deleted", "username", username)
	return nil
}

// EnsureAdmin creates the configured admin account at startup when it
// does not exist yet. An existing account is left untouched, whatever
// its role or password.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.Warn("admin bootstrap skipped, credentials not configured")
		return nil
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		s.logger.Info("admin user already exists", "username", username)
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		// A concurrent replica may have won the race.
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	s.logger.Info("admin user created", "username", username)
	return nil
}
