package client

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeHTTP indicates a non-success HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeValidation indicates input rejected before or by the device
	ErrTypeValidation
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening on the device port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeNotConfigured indicates the device has no stored configuration
	ErrTypeNotConfigured
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeNotConfigured:
		return "Not Configured"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred talking to a device
type DeviceError struct {
	Type           ErrorType
	Message        string
	StatusCode     int // HTTP status code, if any
	Err            error
	NetworkSubtype NetworkErrorSubtype
	DeviceAddr     string
	Retryable      bool
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a typed error.
func ClassifyNetworkError(err error, addr string) *DeviceError {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, addr)
	}

	devErr := &DeviceError{
		Type:       ErrTypeNetwork,
		Message:    "Network error occurred",
		Err:        err,
		DeviceAddr: addr,
		Retryable:  true,
	}

	var dnsErr *net.DNSError
	switch {
	case os.IsTimeout(err):
		devErr.Type = ErrTypeTimeout
		devErr.Message = "Request timed out"
		devErr.NetworkSubtype = NetworkErrorTimeout
	case errors.As(err, &dnsErr):
		devErr.Type = ErrTypeDNS
		devErr.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		devErr.NetworkSubtype = NetworkErrorDNS
		devErr.Retryable = false
	case errors.Is(err, syscall.ECONNREFUSED):
		devErr.Type = ErrTypeConnectionRefused
		devErr.Message = "Device refused connection"
		devErr.NetworkSubtype = NetworkErrorConnectionRefused
	case errors.Is(err, syscall.EHOSTUNREACH):
		devErr.Message = "Host unreachable"
		devErr.NetworkSubtype = NetworkErrorHostUnreachable
	case errors.Is(err, syscall.ENETUNREACH):
		devErr.Message = "Network unreachable"
		devErr.NetworkSubtype = NetworkErrorNetworkUnreachable
	}
	return devErr
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message, addr string, err error) *DeviceError {
	devErr := ClassifyNetworkError(err, addr)
	if devErr == nil {
		return &DeviceError{Type: ErrTypeNetwork, Message: message, DeviceAddr: addr, Retryable: true}
	}
	devErr.Message = message
	return devErr
}

// NewHTTPError creates an HTTP-level error. Server errors are retryable.
func NewHTTPError(statusCode int, message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{Type: ErrTypeValidation, Message: message}
}

func errorType(err error) (ErrorType, bool) {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return 0, false
	}
	return devErr.Type, true
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeHTTP
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsNotConfigured reports whether the device has no stored configuration
func IsNotConfigured(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeNotConfigured
}

// IsRetryable checks if an error should be retried. Unknown errors are not.
func IsRetryable(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Retryable
}

// Troubleshooting returns operator tips for err, suitable for a failure box.
func Troubleshooting(err error) []string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return nil
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return []string{
			"Check that the device is powered on",
			"A device that just restarted needs a few seconds to join the network",
			"Try a longer --timeout",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"The device answers on port 80 in both provisioning and normal operation",
			"Check the port if the daemon runs with a custom http.listen",
			"The device may be restarting after provisioning or a factory reset",
		}
	case ErrTypeDNS:
		return []string{
			"Use the IP address instead of the hostname",
			"Run `thermactl scan` to find the device over mDNS",
		}
	case ErrTypeNotConfigured:
		return []string{
			"Join the device's access point (ThermaBridge-XXXX)",
			"Run `thermactl provision --ssid <network>` against 192.168.4.1",
		}
	case ErrTypeNetwork:
		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return []string{
				"Verify the device address is correct",
				"Check that you are on the same network as the device",
				"Try pinging the device: ping " + devErr.DeviceAddr,
			}
		case NetworkErrorNetworkUnreachable:
			return []string{
				"Connect to the device's access point or its home network",
				"Check your network adapter settings",
			}
		}
		return []string{
			"Check your network connection",
			"Verify the device is powered on",
		}
	case ErrTypeHTTP:
		if devErr.StatusCode >= 500 {
			return []string{
				"The device could not complete the request",
				"A storage failure on the device returns HTTP 500; a factory reset may help",
			}
		}
		return []string{fmt.Sprintf("The device rejected the request (HTTP %d)", devErr.StatusCode)}
	case ErrTypeParse:
		return []string{
			"The response was not a ThermaBridge document",
			"Check that the address points at a ThermaBridge device",
		}
	}
	return nil
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Device not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Device refused connection"
	case ErrTypeDNS:
		return "Cannot resolve device hostname"
	case ErrTypeNotConfigured:
		return "Device has no stored configuration"
	case ErrTypeNetwork:
		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Device unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		}
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Device error (HTTP %d)", devErr.StatusCode)
	}
	return devErr.Message
}
