package tasks

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps tasks in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   uint64
	tasks map[string]storedTask
}

// storedTask remembers insertion order so listings are stable.
type storedTask struct {
	models.Task
	seq uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]storedTask)}
}

func (r *MemoryRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.seq++
	r.tasks[task.ID] = storedTask{Task: *task, seq: r.seq}
	return task, nil
}

func (r *MemoryRepository) collect(match func(models.Task) bool) []*models.Task {
	stored := make([]storedTask, 0)
	for _, t := range r.tasks {
		if match(t.Task) {
			stored = append(stored, t)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	result := make([]*models.Task, 0, len(stored))
	for i := range stored {
		t := stored[i].Task
		result = append(result, &t)
	}
	return result
}

func (r *MemoryRepository) owned(userID, id string) (storedTask, bool) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return storedTask{}, false
	}
	return t, true
}

func (r *MemoryRepository) ListByOwner(_ context.Context, userID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(t models.Task) bool { return t.UserID == userID }), nil
}

func (r *MemoryRepository) GetByOwner(_ context.Context, userID, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t.Task, nil
}

func (r *MemoryRepository) CompleteByOwner(_ context.Context, userID, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(userID, id)
	if !ok || t.Status == models.TaskStatusCompleted {
		return nil, common.ErrorNotFound
	}
	t.Status = models.TaskStatusCompleted
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return &t.Task, nil
}

func (r *MemoryRepository) UpdateByOwner(_ context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return &t.Task, nil
}

func (r *MemoryRepository) DeleteByOwner(_ context.Context, userID, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tasks, id)
	return &t.Task, nil
}

func (r *MemoryRepository) DeleteAllByOwner(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tasks {
		if t.UserID == userID {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(models.Task) bool { return true }), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tasks, id)
	return &t.Task, nil
}

// Clone returns an independent copy of the repository.
func (r *MemoryRepository) Clone() *MemoryRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &MemoryRepository{seq: r.seq, tasks: maps.Clone(r.tasks)}
}

// Apply writes into r whatever staged changed relative to base. Tasks staged
// left alone keep their current value in r.
func (r *MemoryRepository) Apply(base, staged *MemoryRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range base.tasks {
		if _, ok := staged.tasks[id]; !ok {
			delete(r.tasks, id)
		}
	}

	var changed []storedTask
	for id, t := range staged.tasks {
		if old, ok := base.tasks[id]; !ok || old != t {
			changed = append(changed, t)
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].seq < changed[j].seq })

	for _, t := range changed {
		if cur, ok := r.tasks[t.ID]; ok {
			t.seq = cur.seq
		} else {
			r.seq++
			t.seq = r.seq
		}
		r.tasks[t.ID] = t
	}
}
