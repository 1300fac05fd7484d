// Package repomanager wires the user and task repositories for a storage
// backend and exposes schema setup, transactions and health checks over them.
package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
)

// TxFunc receives repositories bound to a single unit of work.
type TxFunc func(ctx context.Context, users users.Repository, tasks tasks.Repository) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Tasks() tasks.Repository
	WithTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open picks a backend from the DSN scheme: postgres:// or postgresql://,
// mongodb:// or mongodb+srv://, and memory://.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("invalid database dsn: missing scheme")
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return NewPostgresRepositoryManager(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return NewMongoRepositoryManager(ctx, dsn)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
