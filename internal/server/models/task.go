package models

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Task is a to-do item. UserID is the owner and never changes after creation.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch is a partial task update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}
