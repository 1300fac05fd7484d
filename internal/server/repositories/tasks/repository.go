// Package tasks provides owner-scoped task repositories.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskapi/internal/server/models"
)

// Repository persists tasks. The *ByOwner methods only ever touch tasks whose
// UserID matches the given owner; a task owned by someone else is reported as
// common.ErrorNotFound, exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Task, error)
	GetByOwner(ctx context.Context, userID, id string) (*models.Task, error)
	// CompleteByOwner marks a Pending task Completed. A task that is already
	// Completed does not match and yields common.ErrorNotFound.
	CompleteByOwner(ctx context.Context, userID, id string) (*models.Task, error)
	UpdateByOwner(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteByOwner(ctx context.Context, userID, id string) (*models.Task, error)
	DeleteAllByOwner(ctx context.Context, userID string) (int64, error)

	List(ctx context.Context) ([]*models.Task, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
}
