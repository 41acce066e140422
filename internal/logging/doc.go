// Package logging provides structured logging for the ThermaBridge daemon and
// operator tools.
//
// This package wraps a package-level zap logger with convenience functions for
// the logging patterns used by the bootstrap core: mode transitions, HTTP
// requests on the portal and diagnostics servers, and captive DNS queries.
//
// # Log Levels
//
//   - Debug: phase transitions, every captive DNS answer, radio polling
//   - Info: mode changes, served requests, activations
//   - Warn: degraded storage, failed activations, connection timeouts
//   - Error: failures that leave the device in its safe fallback
//
// # Configuration
//
// Initialize logging at daemon startup:
//
//	if err := logging.Initialize("info"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty level falls back to the THERMABRIDGE_LOG_LEVEL environment
// variable; when that is unset too the logger is a no-op, which keeps the
// operator CLI quiet by default.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
