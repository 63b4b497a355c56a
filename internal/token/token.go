// Package token issues and validates signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// minKeyLen is the minimum HMAC key size for HS256.
const minKeyLen = 32

// ErrInvalidToken indicates a token that failed signature, structural,
// or expiry validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the verified contents of a parsed token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	TokenID   string
}

// Codec creates and parses HS256-signed tokens carrying a subject and
// expiry. It is safe for concurrent use: the key and TTL are fixed at
// construction.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec creates a Codec from a shared secret and token lifetime.
// A secret shorter than 32 bytes is zero-extended to the HS256 minimum
// key size. Padding adds no entropy; production secrets must be long
// and random to begin with.
func NewCodec(secret string, ttl time.Duration) *Codec {
	key := []byte(secret)
	if len(key) < minKeyLen {
		padded := make([]byte, minKeyLen)
		copy(padded, key)
		key = padded
	}
	return &Codec{key: key, ttl: ttl}
}

// Issue creates a signed token for the subject, expiring after the
// configured TTL.
func (c *Codec) Issue(subject string) (string, error) {
	return c.issueAt(subject, time.Now())
}

// issueAt mints a token with the expiry anchored at the given time.
func (c *Codec) issueAt(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        ulid.Make().String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token's signature, structure, and expiry.
// Any failure is reported as ErrInvalidToken; callers must not be able
// to distinguish a forged token from an expired one.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.key, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		TokenID:   claims.ID,
	}, nil
}

// IsValid reports whether the token parses and verifies. It never
// returns claim data; use Parse when the subject is needed.
func (c *Codec) IsValid(tokenString string) bool {
	_, err := c.Parse(tokenString)
	return err == nil
}

// ExpiresAt returns the expiry of a valid token. An invalid or already
// expired token yields ErrInvalidToken.
func (c *Codec) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
