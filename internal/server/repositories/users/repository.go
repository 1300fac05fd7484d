// Package users provides the user repositories: PostgreSQL, MongoDB and an
// in-memory implementation sharing one contract.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/server/models"
)

// Repository persists users. Lookups of missing users return
// common.ErrorNotFound; writes that would duplicate an email return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)

	// SetTokensValidAfter records the instant up to which the user's tokens
	// are no longer accepted.
	SetTokensValidAfter(ctx context.Context, id string, at time.Time) error
	// TokensValidAfter reports that instant and whether one was ever set.
	TokensValidAfter(ctx context.Context, id string) (time.Time, bool, error)
}
