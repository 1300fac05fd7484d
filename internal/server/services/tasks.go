package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/repomanager"
)

// NewTask carries the caller supplied fields of a task being created.
type NewTask struct {
	Title       string
	Description string
}

type TaskService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewTaskService(m repomanager.RepositoryManager, l logging.Logger) *TaskService {
	return &TaskService{
		repos:  m,
		logger: l.With("module", "task_service"),
	}
}

// storeError maps a repository failure. Missing rows become ErrTaskNotFound,
// anything else is logged and redacted.
func (s *TaskService) storeError(ctx context.Context, message string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrTaskNotFound
	}
	return internalError(ctx, s.logger, message, err)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationError("title should not be empty")
	}
	return nil
}

// Create stores a Pending task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, in NewTask, ownerID string) (*models.Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}

	task, err := s.repos.Tasks().Create(ctx, &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskStatusPending,
		UserID:      ownerID,
	})
	if err != nil {
		return nil, internalError(ctx, s.logger, "Could not create task", err)
	}
	return task, nil
}

func (s *TaskService) ListForOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	list, err := s.repos.Tasks().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, internalError(ctx, s.logger, "Could not get tasks", err)
	}
	return list, nil
}

func (s *TaskService) GetOne(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrTaskNotFound
	}

	task, err := s.repos.Tasks().GetByOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.storeError(ctx, "Could not get task", err)
	}
	return task, nil
}

// Complete moves a Pending task to Completed. Completed is terminal. The
// status check is part of the write, so of two concurrent calls only one
// succeeds.
func (s *TaskService) Complete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrTaskNotFound
	}

	task, err := s.repos.Tasks().CompleteByOwner(ctx, ownerID, taskID)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, internalError(ctx, s.logger, "Could not complete task", err)
	}

	// nothing pending matched: either the task is gone or already done
	if _, err := s.GetOne(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	return nil, common.ErrTaskAlreadyCompleted
}

// Update applies patch to one of the owner's tasks.
func (s *TaskService) Update(ctx context.Context, taskID, ownerID string, patch models.TaskPatch) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrTaskNotFound
	}
	if patch.Empty() {
		return s.GetOne(ctx, ownerID, taskID)
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}

	task, err := s.repos.Tasks().UpdateByOwner(ctx, ownerID, taskID, patch)
	if err != nil {
		return nil, s.storeError(ctx, "Could not update task", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrTaskNotFound
	}

	task, err := s.repos.Tasks().DeleteByOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.storeError(ctx, "Could not delete task", err)
	}
	return task, nil
}

// ListAll returns every task regardless of owner.
func (s *TaskService) ListAll(ctx context.Context) ([]*models.Task, error) {
	list, err := s.repos.Tasks().List(ctx)
	if err != nil {
		return nil, internalError(ctx, s.logger, "Could not get all tasks", err)
	}
	return list, nil
}

// RemoveTask deletes any task by id.
func (s *TaskService) RemoveTask(ctx context.Context, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, common.ErrTaskNotFound
	}

	task, err := s.repos.Tasks().Delete(ctx, taskID)
	if err != nil {
		return nil, s.storeError(ctx, "Could not remove task", err)
	}
	return task, nil
}
