package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/repository"
	"github.com/projectdesk/projectdesk/internal/token"
)

// ErrInvalidCredentials indicates a failed username/password check.
// It deliberately does not distinguish an unknown user from a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator verifies credentials and manages token lifecycle.
type Authenticator struct {
	repo      *repository.Repository
	codec     *token.Codec
	blacklist *cache.Blacklist
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(repo *repository.Repository, codec *token.Codec, blacklist *cache.Blacklist, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		repo:      repo,
		codec:     codec,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Login verifies the credentials against the user store and issues a
// bearer token on success.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", ErrInvalidCredentials
	}

	signed, err := a.codec.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	a.logger.Info("user authenticated", slog.String("username", user.Username))
	return signed, nil
}

// Logout revokes the presented token for the remainder of its
// lifetime. Revocation is best-effort; see Blacklist.Revoke.
func (a *Authenticator) Logout(ctx context.Context, tokenString string) {
	a.blacklist.Revoke(ctx, tokenString)
}
