// Package gpio reads the factory-reset button.
//
// The button is active-low: Low means pressed. Every Input implementation
// reports High when it cannot read the line, so a broken input can never
// trigger a reset.
package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/atomic"
)

// Level is a sampled logic level.
type Level int

const (
	Low Level = iota
	High
)

// String returns "low" or "high"
func (l Level) String() string {
	if l == Low {
		return "low"
	}
	return "high"
}

// Input is a single digital input line.
type Input interface {
	Read() (Level, error)
}

// SysfsInput reads a line exported under /sys/class/gpio.
type SysfsInput struct {
	Path string
}

// NewSysfsInput returns the input for an already exported pin number.
func NewSysfsInput(pin int) *SysfsInput {
	return &SysfsInput{Path: fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)}
}

// Read implements Input.
func (s *SysfsInput) Read() (Level, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return High, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	switch strings.TrimSpace(string(data)) {
	case "0":
		return Low, nil
	case "1":
		return High, nil
	default:
		return High, fmt.Errorf("unexpected value %q in %s", strings.TrimSpace(string(data)), s.Path)
	}
}

// FileTrigger reports the button pressed while a marker file exists. It
// stands in for the button on hosts without GPIO:
//
//	touch /run/thermabridge/reset   # press
//	rm /run/thermabridge/reset      # release
type FileTrigger struct {
	Path string
}

// NewFileTrigger creates a trigger on path.
func NewFileTrigger(path string) *FileTrigger {
	return &FileTrigger{Path: filepath.Clean(path)}
}

// Read implements Input.
func (f *FileTrigger) Read() (Level, error) {
	_, err := os.Stat(f.Path)
	if err == nil {
		return Low, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return High, nil
	}
	return High, err
}

// None is an input that is never pressed.
type None struct{}

// Read implements Input.
func (None) Read() (Level, error) {
	return High, nil
}

// Button is an in-memory input that tests and simulations press and release.
type Button struct {
	pressed atomic.Bool
}

// Press holds the button down.
func (b *Button) Press() { b.pressed.Store(true) }

// Release lets the button go.
func (b *Button) Release() { b.pressed.Store(false) }

// Read implements Input.
func (b *Button) Read() (Level, error) {
	if b.pressed.Load() {
		return Low, nil
	}
	return High, nil
}
