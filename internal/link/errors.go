package link

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a connection failure
type ErrorType int

const (
	// ErrTypeTimeout indicates the network did not associate within the budget
	ErrTypeTimeout ErrorType = iota
	// ErrTypeRejected indicates the radio refused or failed the attempt
	ErrTypeRejected
	// ErrTypeRadio indicates a role could not be started at all
	ErrTypeRadio
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTimeout:
		return "Connection Timeout"
	case ErrTypeRejected:
		return "Connection Rejected"
	case ErrTypeRadio:
		return "Radio Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ConnectError describes why the device is not on a network
type ConnectError struct {
	Type   ErrorType
	SSID   string
	Budget time.Duration // only for timeouts
	Err    error
}

// Error implements the error interface
func (e *ConnectError) Error() string {
	msg := fmt.Sprintf("%s for %q", e.Type, e.SSID)
	if e.Type == ErrTypeTimeout && e.Budget > 0 {
		msg = fmt.Sprintf("%s after %s", msg, e.Budget)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// NewTimeoutError reports that ssid did not connect within budget.
func NewTimeoutError(ssid string, budget time.Duration) *ConnectError {
	return &ConnectError{Type: ErrTypeTimeout, SSID: ssid, Budget: budget}
}

// NewRejectedError reports that the radio failed the attempt outright.
func NewRejectedError(ssid string, err error) *ConnectError {
	return &ConnectError{Type: ErrTypeRejected, SSID: ssid, Err: err}
}

func newRadioError(name string, err error) *ConnectError {
	return &ConnectError{Type: ErrTypeRadio, SSID: name, Err: err}
}

// IsTimeout returns true if err is a connection timeout
func IsTimeout(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// IsRejected returns true if err is a rejected connection
func IsRejected(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce) && ce.Type == ErrTypeRejected
}
