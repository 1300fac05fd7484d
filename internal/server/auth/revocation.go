package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers, per account, the instant after which earlier
// tokens stop being accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, userID string, at time.Time) error
	// RevokedAt returns the revocation instant and whether one exists.
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

// AccountStore persists the revocation instant on the user record.
type AccountStore interface {
	SetTokensValidAfter(ctx context.Context, id string, at time.Time) error
	TokensValidAfter(ctx context.Context, id string) (time.Time, bool, error)
}

// AccountRevocationStore keeps revocations in the users table (or
// collection), so every process sharing the database sees them.
type AccountRevocationStore struct {
	accounts AccountStore
	now      func() time.Time
}

func NewAccountRevocationStore(accounts AccountStore) *AccountRevocationStore {
	return &AccountRevocationStore{accounts: accounts, now: time.Now}
}

// Revoke on a deleted account is a no-op: RevokedAt already rejects
// everything issued to it.
func (s *AccountRevocationStore) Revoke(ctx context.Context, userID string, at time.Time) error {
	err := s.accounts.SetTokensValidAfter(ctx, userID, at)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (s *AccountRevocationStore) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	at, ok, err := s.accounts.TokensValidAfter(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return s.now(), true, nil
	}
	return at, ok, err
}

// RedisRevocationStore shares revocations between API instances. Instants
// are stored as Unix milliseconds.
type RedisRevocationStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisRevocationStore stores entries under prefix+userID. A positive
// ttl lets entries expire once every token they cover would have expired
// anyway; zero keeps them forever.
func NewRedisRevocationStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisRevocationStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, userID string, at time.Time) error {
	return s.rdb.Set(ctx, s.key(userID), strconv.FormatInt(at.UnixMilli(), 10), s.ttl).Err()
}

func (s *RedisRevocationStore) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return time.UnixMilli(v), true, nil
}
