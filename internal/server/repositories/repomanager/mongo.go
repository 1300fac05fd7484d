package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the DSN names no database.
const DefaultMongoDatabase = "tasks"

// MongoRepositoryManager vends MongoDB-backed repositories.
type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
	users  *users.MongoRepository
	tasks  *tasks.MongoRepository
}

// NewMongoRepositoryManager connects to dsn and pings the primary.
func NewMongoRepositoryManager(ctx context.Context, dsn string) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(dsn)
	if err != nil {
		return nil, fmt.Errorf("mongo dsn error: %w", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	name := strings.TrimSpace(cs.Database)
	if name == "" {
		name = DefaultMongoDatabase
	}

	m := NewMongoRepositoryManagerFromDB(client.Database(name))
	m.client = client
	return m, nil
}

// NewMongoRepositoryManagerFromDB wraps an existing database handle. Close is
// a no-op for managers built this way.
func NewMongoRepositoryManagerFromDB(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		db:    db,
		users: users.NewMongoRepository(db),
		tasks: tasks.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }

func (m *MongoRepositoryManager) Tasks() tasks.Repository { return m.tasks }

// RunMigrations creates the collection indexes.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.tasks.EnsureIndexes(ctx)
}

// WithTx runs fn against the plain repositories. Multi-document transactions
// require a replica set, so steps are applied one after another.
func (m *MongoRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m.users, m.tasks)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
