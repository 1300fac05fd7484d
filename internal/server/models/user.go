// Package models defines server-side records persisted by the repositories.
package models

import "time"

// User is a registered account. Password only ever holds a bcrypt hash.
type User struct {
	ID        string
	Email     string
	Password  string
	FullName  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
