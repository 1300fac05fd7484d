package users

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu      sync.RWMutex
	seq     uint64
	byID    map[string]storedUser
	byEmail map[string]string
}

type storedUser struct {
	models.User
	seq        uint64
	validAfter time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]storedUser),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.seq++
	r.byID[user.ID] = storedUser{User: *user, seq: r.seq}
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u.User, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.byID[id]
	return &u.User, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return common.ErrorAlreadyExists
	}

	user.CreatedAt = old.CreatedAt
	user.UpdatedAt = time.Now().UTC()

	delete(r.byEmail, old.Email)
	r.byEmail[user.Email] = user.ID
	r.byID[user.ID] = storedUser{User: *user, seq: old.seq, validAfter: old.validAfter}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := make([]storedUser, 0, len(r.byID))
	for _, u := range r.byID {
		stored = append(stored, u)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	result := make([]*models.User, 0, len(stored))
	for i := range stored {
		u := stored[i].User
		result = append(result, &u)
	}
	return result, nil
}

func (r *MemoryRepository) SetTokensValidAfter(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.validAfter = at
	r.byID[id] = u
	return nil
}

func (r *MemoryRepository) TokensValidAfter(_ context.Context, id string) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return time.Time{}, false, common.ErrorNotFound
	}
	return u.validAfter, !u.validAfter.IsZero(), nil
}

// Clone returns an independent copy of the repository.
func (r *MemoryRepository) Clone() *MemoryRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &MemoryRepository{
		seq:     r.seq,
		byID:    maps.Clone(r.byID),
		byEmail: maps.Clone(r.byEmail),
	}
}

// Apply writes into r whatever staged changed relative to base. Records
// staged left alone keep their current value in r. Nothing is written when
// a staged email now belongs to another user.
func (r *MemoryRepository) Apply(base, staged *MemoryRepository) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id := range base.byID {
		if _, ok := staged.byID[id]; !ok {
			removed = append(removed, id)
		}
	}

	var changed []storedUser
	for id, u := range staged.byID {
		if old, ok := base.byID[id]; !ok || old != u {
			changed = append(changed, u)
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].seq < changed[j].seq })

	for _, u := range changed {
		owner, taken := r.byEmail[u.Email]
		if taken && owner != u.ID && !slices.Contains(removed, owner) {
			return common.ErrorAlreadyExists
		}
	}

	for _, id := range removed {
		if u, ok := r.byID[id]; ok {
			delete(r.byEmail, u.Email)
			delete(r.byID, id)
		}
	}
	for _, u := range changed {
		if cur, ok := r.byID[u.ID]; ok {
			delete(r.byEmail, cur.Email)
			u.seq = cur.seq
		} else {
			r.seq++
			u.seq = r.seq
		}
		r.byID[u.ID] = u
		r.byEmail[u.Email] = u.ID
	}
	return nil
}
