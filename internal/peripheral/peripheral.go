package peripheral

import (
	"context"
	"runtime/debug"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// ModeSource is the read-only view of device state a peripheral may use.
type ModeSource interface {
	Mode() device.Mode
	Record() *config.Record
}

// Peripheral is a long-running observer of device state.
type Peripheral interface {
	Name() string
	Run(ctx context.Context) error
}

// Supervise runs p in a new goroutine. A returned error or a panic is
// logged; neither propagates. The returned channel closes when p stops.
func Supervise(ctx context.Context, p Peripheral) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Peripheral panicked",
					zap.String("peripheral", p.Name()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("Peripheral stopped", zap.String("peripheral", p.Name()), zap.Error(err))
		}
	}()
	return done
}
