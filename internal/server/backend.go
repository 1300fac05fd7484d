package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/config"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskapi/internal/server/services"
	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "taskapi:revoked:"

// Backend is the store, credentials and services shared by the API server
// and the admin tool.
type Backend struct {
	Repos repomanager.RepositoryManager
	Creds *auth.Credentials
	Users *services.UserService
	Tasks *services.TaskService

	redis *redis.Client
}

// OpenBackend connects to the configured store, applies migrations and
// wires the services on top of it.
func OpenBackend(ctx context.Context, cfg *config.Config, l logging.Logger) (*Backend, error) {
	repos, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	b := &Backend{Repos: repos}

	var revocations auth.RevocationStore = auth.NewAccountRevocationStore(repos.Users())
	if cfg.RedisAddr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		revocations = auth.NewRedisRevocationStore(b.redis, revocationKeyPrefix, cfg.AccessTokenValidityDuration)
	}

	b.Creds = auth.NewCredentials(cfg.SecretKey, cfg.PasswordHashCost, cfg.AccessTokenValidityDuration, revocations)
	b.Users = services.NewUserService(repos, b.Creds, l)
	b.Tasks = services.NewTaskService(repos, l)

	return b, nil
}

func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	errs = append(errs, b.Repos.Close(ctx))
	return errors.Join(errs...)
}
