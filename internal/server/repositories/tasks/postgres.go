package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/dbx"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task   models.Task
		status string
	)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	return &task, nil
}

// queryOne runs a single-row statement and maps a missing row to ErrorNotFound.
func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (title, description, status, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, string(task.Status), task.UserID).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at
		 `
	return r.queryMany(ctx, query, userID)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `
	return r.queryOne(ctx, query, id, userID)
}

func (r *PostgresRepository) CompleteByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `UPDATE tasks SET status = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND status <> $3
		 RETURNING ` + taskColumns
	return r.queryOne(ctx, query, id, userID, string(models.TaskStatusCompleted))
}

func (r *PostgresRepository) UpdateByOwner(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	query := `UPDATE tasks SET title = COALESCE($3, title), description = COALESCE($4, description), updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + taskColumns
	return r.queryOne(ctx, query, id, userID, patch.Title, patch.Description)
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `DELETE FROM tasks
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + taskColumns
	return r.queryOne(ctx, query, id, userID)
}

func (r *PostgresRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.queryMany(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at`)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Task, error) {
	query := `DELETE FROM tasks
		 WHERE id = $1
		 RETURNING ` + taskColumns
	return r.queryOne(ctx, query, id)
}
