package peripheral

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/ui"
)

// DefaultConsoleInterval is how often Console polls the mode.
const DefaultConsoleInterval = 250 * time.Millisecond

// Console renders the device mode as a banner on a terminal.
type Console struct {
	Source   ModeSource
	Out      io.Writer
	Product  string
	Interval time.Duration
	Clock    clock.Clock

	mu       sync.Mutex
	rendered bool
	last     device.Mode
}

// NewConsole creates a console indicator writing to out, or os.Stdout if
// out is nil.
func NewConsole(src ModeSource, out io.Writer, product string) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{
		Source:   src,
		Out:      out,
		Product:  product,
		Interval: DefaultConsoleInterval,
		Clock:    clock.New(),
	}
}

// Name implements Peripheral.
func (c *Console) Name() string { return "console" }

// Run polls the mode until ctx is done.
func (c *Console) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultConsoleInterval
	}
	clk := c.Clock
	if clk == nil {
		clk = clock.New()
	}

	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	c.Refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Refresh()
		}
	}
}

// Refresh redraws the banner if the mode changed since the last draw. It
// reports whether anything was written.
func (c *Console) Refresh() bool {
	mode := c.Source.Mode()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rendered && mode == c.last {
		return false
	}
	c.rendered = true
	c.last = mode

	_, _ = fmt.Fprintln(c.Out, ui.RenderModeBanner(c.Product, mode.String(), c.details(mode)...))
	return true
}

func (c *Console) details(mode device.Mode) []ui.Field {
	rec := c.Source.Record()
	if rec == nil {
		return nil
	}
	fields := []ui.Field{{Key: "Name", Value: rec.DevName}}
	if mode == device.ConnectingToNetwork || mode == device.Operational {
		fields = append(fields, ui.Field{Key: "Network", Value: rec.SSID})
	}
	if rec.DisplayEnabled {
		fields = append(fields, ui.Field{
			Key:   "Display",
			Value: strconv.Itoa(rec.DisplayWidth) + "x" + strconv.Itoa(rec.DisplayHeight),
		})
	}
	return fields
}

// FactoryResetVisual implements reset.Indicator.
func (c *Console) FactoryResetVisual() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = device.ResettingFactory
	c.rendered = true
	_, _ = fmt.Fprintln(c.Out, ui.RenderResetBanner(c.Product))
}
