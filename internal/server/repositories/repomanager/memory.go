package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. It backs
// memory:// DSNs and the service tests.
type MemoryRepositoryManager struct {
	mu    sync.Mutex
	users *users.MemoryRepository
	tasks *tasks.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		tasks: tasks.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Tasks() tasks.Repository { return m.tasks }

// WithTx runs fn against staged copies of both repositories and applies
// what it changed only when fn returns nil. Units of work are serialized
// against each other but not against plain repository calls.
func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	userBase, taskBase := m.users.Clone(), m.tasks.Clone()
	userStage, taskStage := userBase.Clone(), taskBase.Clone()
	if err := fn(ctx, userStage, taskStage); err != nil {
		return err
	}

	if err := m.users.Apply(userBase, userStage); err != nil {
		return err
	}
	m.tasks.Apply(taskBase, taskStage)
	return nil
}

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
