package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// RequestError is a failed request mapped to an HTTP status. The message is
// sent to the client as plain text; the wrapped error is only logged.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(msg string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: msg}
}

func internalError(msg string, err error) *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// configReadError maps a store read failure to a response.
func configReadError(err error) *RequestError {
	if config.IsNotFound(err) {
		return &RequestError{Status: http.StatusNotFound, Message: "config.json not found", Err: err}
	}
	return internalError("failed to open config.json", err)
}

// writeError sends err to the client. Errors that are not a RequestError are
// reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var re *RequestError
	if !errors.As(err, &re) {
		re = internalError("internal error", err)
	}

	if re.Status >= http.StatusInternalServerError {
		logging.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", re.Status),
			zap.Error(re),
		)
	}

	http.Error(w, re.Message, re.Status)
}
