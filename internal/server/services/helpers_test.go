package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("connection refused")

type fixture struct {
	repos *repomanager.MemoryRepositoryManager
	creds *auth.Credentials
	users *UserService
	tasks *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	creds := auth.NewCredentials("test-secret", bcrypt.MinCost, 0, auth.NewAccountRevocationStore(repos.Users()))
	return &fixture{
		repos: repos,
		creds: creds,
		users: NewUserService(repos, creds, logging.Nop{}),
		tasks: NewTaskService(repos, logging.Nop{}),
	}
}

// brokenManager serves repositories whose every call fails.
type brokenManager struct {
	*repomanager.MemoryRepositoryManager
}

func (brokenManager) Users() users.Repository { return brokenUsers{} }
func (brokenManager) Tasks() tasks.Repository { return brokenTasks{} }

func (m brokenManager) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return fn(ctx, brokenUsers{}, brokenTasks{})
}

type brokenUsers struct{}

func (brokenUsers) Create(context.Context, *models.User) (*models.User, error) {
	return nil, errStoreDown
}
func (brokenUsers) GetByID(context.Context, string) (*models.User, error) { return nil, errStoreDown }
func (brokenUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}
func (brokenUsers) Update(context.Context, *models.User) error   { return errStoreDown }
func (brokenUsers) Delete(context.Context, string) error         { return errStoreDown }
func (brokenUsers) List(context.Context) ([]*models.User, error) { return nil, errStoreDown }
func (brokenUsers) SetTokensValidAfter(context.Context, string, time.Time) error {
	return errStoreDown
}
func (brokenUsers) TokensValidAfter(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errStoreDown
}

type brokenTasks struct{}

func (brokenTasks) Create(context.Context, *models.Task) (*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) ListByOwner(context.Context, string) ([]*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) GetByOwner(context.Context, string, string) (*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) CompleteByOwner(context.Context, string, string) (*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) UpdateByOwner(context.Context, string, string, models.TaskPatch) (*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) DeleteByOwner(context.Context, string, string) (*models.Task, error) {
	return nil, errStoreDown
}
func (brokenTasks) DeleteAllByOwner(context.Context, string) (int64, error) { return 0, errStoreDown }
func (brokenTasks) List(context.Context) ([]*models.Task, error)            { return nil, errStoreDown }
func (brokenTasks) Delete(context.Context, string) (*models.Task, error) {
	return nil, errStoreDown
}
