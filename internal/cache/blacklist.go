package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/projectdesk/projectdesk/internal/token"
)

// blacklistPrefix is the Redis key prefix for revoked tokens.
const blacklistPrefix = "auth:blacklist:"

// Blacklist tracks tokens revoked before their natural expiry.
// Entries carry a TTL equal to the token's remaining lifetime, so a
// revocation record never outlives the token it revokes.
type Blacklist struct {
	cache  *Cache
	codec  *token.Codec
	logger *slog.Logger
}

// NewBlacklist creates a Blacklist backed by the given cache.
func NewBlacklist(cache *Cache, codec *token.Codec, logger *slog.Logger) *Blacklist {
	return &Blacklist{
		cache:  cache,
		codec:  codec,
		logger: logger,
	}
}

// Revoke marks the token unusable for the remainder of its lifetime.
// Blank and already-invalid tokens are ignored. Store failures are
// logged and swallowed; the token then stays valid until natural
// expiry.
func (b *Blacklist) Revoke(ctx context.Context, tokenString string) {
	if tokenString == "" {
		return
	}

	expiresAt, err := b.codec.ExpiresAt(tokenString)
	if err != nil {
		b.logger.Debug("skip revoking invalid token", slog.String("error", err.Error()))
		return
	}

	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return
	}

	if err := b.cache.client.Set(ctx, blacklistPrefix+tokenString, "1", remaining).Err(); err != nil {
		b.logger.Warn("failed to store revoked token",
			slog.String("error", err.Error()),
		)
	}
}

// IsRevoked checks whether the token was revoked earlier. Blank tokens
// and store failures report false; a Redis outage therefore lets
// revoked-but-unexpired tokens through until the store recovers.
func (b *Blacklist) IsRevoked(ctx context.Context, tokenString string) bool {
	if tokenString == "" {
		return false
	}

	n, err := b.cache.client.Exists(ctx, blacklistPrefix+tokenString).Result()
	if err != nil {
		b.logger.Warn("failed to check token revocation",
			slog.String("error", err.Error()),
		)
		return false
	}
	return n > 0
}
