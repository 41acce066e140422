package reset

import (
	"time"

	"github.com/muurk/thermabridge/internal/gpio"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// Monitor detects a sustained hold on the reset input. It is not safe for
// concurrent use; only the control loop calls Check.
type Monitor struct {
	input gpio.Input

	pressed bool
	since   time.Time
	fired   bool
}

// NewMonitor creates a monitor on input.
func NewMonitor(input gpio.Input) *Monitor {
	return &Monitor{input: input}
}

// Check samples the input at now and reports whether the hold threshold was
// crossed on this sample. It returns true at most once until the input is
// released.
func (m *Monitor) Check(now time.Time, hold time.Duration) bool {
	level, err := m.input.Read()
	if err != nil {
		logging.Debug("Reset input unreadable, treating as released", zap.Error(err))
		level = gpio.High
	}

	if level != gpio.Low {
		if m.pressed {
			logging.Debug("Reset button released", zap.Duration("held", now.Sub(m.since)))
		}
		m.pressed = false
		m.fired = false
		return false
	}

	if !m.pressed {
		m.pressed = true
		m.since = now
		logging.Debug("Reset button pressed")
	}
	if m.fired {
		return false
	}
	if now.Sub(m.since) >= hold {
		m.fired = true
		return true
	}
	return false
}

// Held returns how long the input has been held as of now, or zero.
func (m *Monitor) Held(now time.Time) time.Duration {
	if !m.pressed {
		return 0
	}
	return now.Sub(m.since)
}
