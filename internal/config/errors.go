package config

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a store failure
type ErrorType int

const (
	// ErrTypeStorageUnavailable indicates the volume could not be mounted,
	// even after a format
	ErrTypeStorageUnavailable ErrorType = iota
	// ErrTypeNotFound indicates no config document exists
	ErrTypeNotFound
	// ErrTypeParse indicates the document is not valid JSON
	ErrTypeParse
	// ErrTypeBlankSSID indicates the document names no network
	ErrTypeBlankSSID
	// ErrTypeWrite indicates a save did not reach the volume
	ErrTypeWrite
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeStorageUnavailable:
		return "Storage Unavailable"
	case ErrTypeNotFound:
		return "Config Not Found"
	case ErrTypeParse:
		return "Config Parse Error"
	case ErrTypeBlankSSID:
		return "Config Blank SSID"
	case ErrTypeWrite:
		return "Config Write Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// StoreError is returned by every Store operation that fails
type StoreError struct {
	Type ErrorType
	Op   string // "load", "save", "erase", "read"
	Err  error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s (caused by: %v)", e.Op, e.Type, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Op, e.Type)
}

// Unwrap returns the underlying error for error chain inspection
func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, typ ErrorType, err error) *StoreError {
	return &StoreError{Type: typ, Op: op, Err: err}
}

func errorType(err error) (ErrorType, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Type, true
	}
	return 0, false
}

// IsStorageUnavailable checks if the volume could not be mounted
func IsStorageUnavailable(err error) bool {
	typ, ok := errorType(err)
	return ok && typ == ErrTypeStorageUnavailable
}

// IsConfigInvalid checks if a load failed because the record is absent or
// unusable. Such failures mean "enter provisioning" and are never shown to
// an operator as errors.
func IsConfigInvalid(err error) bool {
	typ, ok := errorType(err)
	return ok && (typ == ErrTypeNotFound || typ == ErrTypeParse || typ == ErrTypeBlankSSID)
}

// IsNotFound checks if no config document exists
func IsNotFound(err error) bool {
	typ, ok := errorType(err)
	return ok && typ == ErrTypeNotFound
}
