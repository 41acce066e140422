package device

import (
	"time"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/atomic"
)

// Context is the one owned copy of device state.
type Context struct {
	mode    atomic.Int32
	record  atomic.Pointer[config.Record]
	started time.Time
}

// NewContext creates a context in Unconfigured mode started at now.
func NewContext(now time.Time) *Context {
	c := &Context{started: now}
	c.mode.Store(int32(Unconfigured))
	return c
}

// Mode returns the current mode.
func (c *Context) Mode() Mode {
	return Mode(c.mode.Load())
}

// SetMode changes the mode and logs the transition. Setting the current mode
// again is a no-op.
func (c *Context) SetMode(m Mode) {
	prev := Mode(c.mode.Swap(int32(m)))
	if prev != m {
		logging.LogModeChange(prev.String(), m.String())
	}
}

// Record returns a copy of the loaded settings, or nil if none is loaded.
func (c *Context) Record() *config.Record {
	rec := c.record.Load()
	if rec == nil {
		return nil
	}
	cp := *rec
	return &cp
}

// SetRecord publishes a new settings snapshot. A nil record clears it.
func (c *Context) SetRecord(rec *config.Record) {
	if rec == nil {
		c.record.Store(nil)
		return
	}
	cp := *rec
	c.record.Store(&cp)
}

// Started returns the boot time.
func (c *Context) Started() time.Time {
	return c.started
}

// Uptime returns the time elapsed since boot as of now.
func (c *Context) Uptime(now time.Time) time.Duration {
	if now.Before(c.started) {
		return 0
	}
	return now.Sub(c.started)
}
