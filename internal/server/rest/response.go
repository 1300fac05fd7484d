package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
)

const maxBodyBytes = 1 << 20

// envelope wraps every successful response.
type envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// errorBody is the payload of every failed response.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message})
}

// errorStatus maps an error kind to its HTTP status and client message.
func errorStatus(err error) (int, string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		status = http.StatusConflict
	}

	var fe *common.FieldsError
	if errors.As(err, &fe) {
		return status, fe.Error()
	}
	var ce *common.Error
	if errors.As(err, &ce) {
		return status, ce.Message
	}
	return status, http.StatusText(status)
}

func writeError(ctx context.Context, l logging.Logger, w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		l.Error(ctx, "request failed", "error", err)
	}
	writeStatus(w, status, message)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewError(common.ErrorValidation, "request body is required")
		}
		return common.NewError(common.ErrorValidation, "invalid request body")
	}
	return nil
}
