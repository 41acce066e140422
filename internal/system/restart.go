// Package system restarts the running device.
//
// On the appliance a restart re-executes the daemon binary in place so the
// bootstrap sequence runs again from the top with a clean process. When the
// daemon runs under a supervisor (systemd, a container runtime) it can exit
// instead and let the supervisor start it again.
package system

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// Restarter restarts the device. A successful Restart does not return.
type Restarter interface {
	Restart(reason string) error
}

// Restart modes accepted by NewRestarter.
const (
	ModeExec = "exec"
	ModeExit = "exit"
)

// RestartExitCode is the status used by ExitRestarter. Supervisors should be
// configured to restart on it.
const RestartExitCode = 3

// NewRestarter returns the restarter for mode.
func NewRestarter(mode string) (Restarter, error) {
	switch mode {
	case ModeExec, "":
		return &ExecRestarter{Settle: 200 * time.Millisecond}, nil
	case ModeExit:
		return &ExitRestarter{Settle: 200 * time.Millisecond}, nil
	default:
		return nil, fmt.Errorf("unknown restart mode %q (want %q or %q)", mode, ModeExec, ModeExit)
	}
}

// ExecRestarter replaces the process image with a fresh copy of itself.
type ExecRestarter struct {
	// Settle is slept before restarting so responses and logs flush.
	Settle time.Duration
}

// Restart implements Restarter.
func (r *ExecRestarter) Restart(reason string) error {
	logging.Info("Restarting device", zap.String("reason", reason), zap.String("mode", ModeExec))
	logging.Sync()
	time.Sleep(r.Settle)

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("failed to re-exec %s: %w", exe, err)
	}
	return nil
}

// ExitRestarter exits with RestartExitCode.
type ExitRestarter struct {
	Settle time.Duration
	// Exit defaults to os.Exit.
	Exit func(code int)
}

// Restart implements Restarter.
func (r *ExitRestarter) Restart(reason string) error {
	logging.Info("Restarting device", zap.String("reason", reason), zap.String("mode", ModeExit))
	logging.Sync()
	time.Sleep(r.Settle)

	exit := r.Exit
	if exit == nil {
		exit = os.Exit
	}
	exit(RestartExitCode)
	return nil
}

// RecordingRestarter records restart requests instead of acting on them.
type RecordingRestarter struct {
	Reasons []string
}

// Restart implements Restarter.
func (r *RecordingRestarter) Restart(reason string) error {
	r.Reasons = append(r.Reasons, reason)
	return nil
}

// Count returns how many restarts were requested.
func (r *RecordingRestarter) Count() int {
	return len(r.Reasons)
}
