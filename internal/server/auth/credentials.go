// Package auth implements the credential service: bcrypt password hashing,
// HS256 token issue and validation, and token revocation.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
)

// Principal is the identity resolved from a valid token.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Credentials bundles the process-wide secret and work factor. It is built
// once from configuration and handed to whoever needs it.
type Credentials struct {
	secret      []byte
	cost        int
	validity    time.Duration
	revocations RevocationStore
}

// NewCredentials builds the credential service. revocations may be nil, in
// which case nothing is ever revoked.
func NewCredentials(secretKey string, cost int, validity time.Duration, revocations RevocationStore) *Credentials {
	return &Credentials{
		secret:      []byte(secretKey),
		cost:        cost,
		validity:    validity,
		revocations: revocations,
	}
}

func (c *Credentials) HashPassword(password string) (string, error) {
	return HashPassword(password, c.cost)
}

func (c *Credentials) VerifyPassword(candidate, hash string) (bool, error) {
	return CheckPassword(candidate, hash)
}

func (c *Credentials) IssueToken(userID string, isAdmin bool) (string, error) {
	token, err := GenerateToken(userID, isAdmin, c.secret, c.validity)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// Authenticate validates token and checks it against the revocation list.
// Tokens issued in the same millisecond as a revocation count as revoked.
func (c *Credentials) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := ParseToken(token, c.secret)
	if err != nil {
		return Principal{}, err
	}

	if c.revocations != nil {
		revokedAt, ok, err := c.revocations.RevokedAt(ctx, claims.UserID)
		if err != nil {
			return Principal{}, fmt.Errorf("error reading revocation list: %w", err)
		}
		if ok && (claims.IssuedAt == nil || claims.IssuedAt.UnixMilli() <= revokedAt.UnixMilli()) {
			return Principal{}, common.ErrTokenRevoked
		}
	}

	return Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}

// Revoke invalidates every token issued to userID up to now.
func (c *Credentials) Revoke(ctx context.Context, userID string) error {
	if c.revocations == nil {
		return nil
	}
	return c.revocations.Revoke(ctx, userID, time.Now())
}
