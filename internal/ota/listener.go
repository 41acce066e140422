// Package ota tracks the remote-update listener armed when the device goes
// operational. The update transport itself lives outside this module; this
// package records whether the listener is armed, under which hostname, and
// whether it requires a credential, so diagnostics can report it.
package ota

import (
	"errors"
	"sync"
	"time"

	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// Info is the listener state as rendered by /info.
type Info struct {
	Armed         bool      `json:"armed"`
	Hostname      string    `json:"hostname,omitempty"`
	Authenticated bool      `json:"authenticated"`
	ArmedAt       time.Time `json:"armed_at,omitempty"`
}

// Listener is the update listener. The zero value is disarmed and ready.
type Listener struct {
	mu       sync.Mutex
	armed    bool
	hostname string
	password string
	armedAt  time.Time
}

// NewListener creates a disarmed listener.
func NewListener() *Listener {
	return &Listener{}
}

// Arm enables the listener under hostname. An empty password leaves it
// unauthenticated.
func (l *Listener) Arm(hostname, password string) error {
	if hostname == "" {
		return errors.New("update listener needs a hostname")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.armed = true
	l.hostname = hostname
	l.password = password
	l.armedAt = time.Now()

	if password == "" {
		logging.Warn("Update listener armed without a credential", zap.String("hostname", hostname))
	} else {
		logging.Info("Update listener armed", zap.String("hostname", hostname))
	}
	return nil
}

// Disarm disables the listener.
func (l *Listener) Disarm() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = false
	l.password = ""
}

// Authorize reports whether password may start an update.
func (l *Listener) Authorize(password string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.armed {
		return false
	}
	return l.password == "" || l.password == password
}

// Info returns the current state.
func (l *Listener) Info() Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Info{
		Armed:         l.armed,
		Hostname:      l.hostname,
		Authenticated: l.armed && l.password != "",
		ArmedAt:       l.armedAt,
	}
}
