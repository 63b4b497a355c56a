package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/token"
)

// UserSource resolves token subjects to user accounts.
type UserSource interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthConfig holds configuration for the identity middleware.
type AuthConfig struct {
	Logger    *slog.Logger
	Codec     *token.Codec
	Blacklist *cache.Blacklist
	Users     UserSource
}

// Authenticate resolves the caller's identity from the Authorization
// header exactly once per request and stores it in the request context.
// The chain always continues: a missing, malformed, expired, or revoked
// token leaves the request anonymous rather than rejecting it, so the
// response for any of those cases is decided by the route's own
// requirements and never reveals why resolution failed.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.ExtractBearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := cfg.Codec.Parse(raw)
			if err != nil {
				cfg.Logger.Debug("identity resolution failed",
					slog.String("reason", "invalid_token"),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Revocation is only consulted for tokens that passed
			// signature and expiry checks.
			if cfg.Blacklist.IsRevoked(r.Context(), raw) {
				cfg.Logger.Debug("identity resolution failed",
					slog.String("reason", "revoked_token"),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			user, err := cfg.Users.GetUserByUsername(r.Context(), claims.Subject)
			if err != nil {
				cfg.Logger.Debug("identity resolution failed",
					slog.String("reason", "unknown_subject"),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ident := &auth.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			}
			ctx := auth.ContextWithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
