// Package services holds the user and task use cases. Services validate
// input, enforce ownership and translate repository failures into the
// client-facing errors from package common.
package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/google/uuid"
)

// internalError logs the store failure and returns a redacted error.
func internalError(ctx context.Context, l logging.Logger, message string, err error) error {
	l.Error(ctx, message, "error", err)
	return common.NewError(common.ErrorInternal, message)
}

func validationError(message string) error {
	return common.NewError(common.ErrorValidation, message)
}

// validID reports whether id can name a stored record. Ids are UUIDs on every
// backend, so anything else cannot match and is treated as missing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return validationError("email should not be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("email must be an email")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return validationError("password should not be empty")
	}
	if len(password) > auth.MaxPasswordLength {
		return validationError("password must be at most 72 bytes long")
	}
	return nil
}
