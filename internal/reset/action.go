package reset

import (
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/logging"
	"github.com/muurk/thermabridge/internal/system"
	"go.uber.org/zap"
)

// Namespace is one independently stored piece of persistent state.
type Namespace interface {
	Name() string
	Erase() error
}

// Indicator renders the factory-reset visual. It must return promptly.
type Indicator interface {
	FactoryResetVisual()
}

// PurgeAllPersistentState erases every namespace in order. It always visits
// all of them and returns the failures it saw.
func PurgeAllPersistentState(namespaces []Namespace) []error {
	var errs []error
	for _, ns := range namespaces {
		if err := ns.Erase(); err != nil {
			logging.Error("Failed to purge namespace",
				zap.String("namespace", ns.Name()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		logging.Info("Purged namespace", zap.String("namespace", ns.Name()))
	}
	return errs
}

// Action is the destructive factory-reset sequence.
type Action struct {
	Device     *device.Context
	Indicator  Indicator
	Namespaces []Namespace
	Restarter  system.Restarter
}

// Perform runs the sequence. The restart is issued whatever else failed.
func (a *Action) Perform() {
	logging.Warn("Factory reset triggered")

	a.Device.SetMode(device.ResettingFactory)

	if a.Indicator != nil {
		showVisual(a.Indicator)
	}

	if errs := PurgeAllPersistentState(a.Namespaces); len(errs) > 0 {
		logging.Warn("Factory reset purge incomplete", zap.Int("failures", len(errs)))
	}

	if err := a.Restarter.Restart("factory reset"); err != nil {
		logging.Error("Restart after factory reset failed", zap.Error(err))
	}
}

// showVisual keeps a misbehaving indicator from aborting the reset.
func showVisual(ind Indicator) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Indicator panicked during factory reset", zap.Any("panic", r))
		}
	}()
	ind.FactoryResetVisual()
}
