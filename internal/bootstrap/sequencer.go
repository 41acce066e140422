package bootstrap

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/logging"
	"github.com/muurk/thermabridge/internal/server"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	// DefaultConnectTimeout is the budget for one client connection attempt.
	DefaultConnectTimeout = 15 * time.Second
	// DefaultPollInterval is the tick cadence.
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultAccessPointRetry is how long to wait before retrying a failed
	// access point or portal start.
	DefaultAccessPointRetry = 5 * time.Second
)

// Options tune the sequencer.
type Options struct {
	ConnectTimeout   time.Duration
	PollInterval     time.Duration
	AccessPointRetry time.Duration
	// Product prefixes the access point name.
	Product string
	// HTTPPort is advertised over mDNS.
	HTTPPort int
	// Version is advertised over mDNS.
	Version string
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.AccessPointRetry <= 0 {
		o.AccessPointRetry = DefaultAccessPointRetry
	}
	if o.Product == "" {
		o.Product = config.DefaultDeviceName
	}
	if o.HTTPPort == 0 {
		o.HTTPPort = 80
	}
	return o
}

// Sequencer is the bootstrap state machine. Tick must only be called from
// one goroutine; Phase may be read from any.
type Sequencer struct {
	deps Deps
	opts Options

	phase atomic.Int32

	record   *config.Record
	ssid     string
	deadline time.Time
	apRetry  time.Time
}

// New creates a sequencer in MountingStorage.
func New(deps Deps, opts Options) *Sequencer {
	return &Sequencer{deps: deps, opts: opts.withDefaults()}
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	return Phase(s.phase.Load())
}

// Done reports whether the sequencer reached Restarting.
func (s *Sequencer) Done() bool {
	return s.Phase() == Restarting
}

func (s *Sequencer) setPhase(p Phase) {
	prev := Phase(s.phase.Swap(int32(p)))
	if prev != p {
		logging.LogPhase(prev.String(), p.String())
	}
	if m, ok := p.mode(); ok {
		s.deps.Device.SetMode(m)
	}
}

// resetHold is the clamped hold for the loaded record.
func (s *Sequencer) resetHold() time.Duration {
	if s.record == nil {
		return config.DefaultResetHold()
	}
	return s.record.ResetHold()
}

// Tick advances the state machine as of now. The reset input is evaluated
// before anything else; a performed reset ends the sequence.
func (s *Sequencer) Tick(now time.Time) {
	if s.Done() {
		return
	}

	if s.deps.Guard != nil && s.deps.Guard.Poll(now, s.resetHold()) {
		s.setPhase(Restarting)
		return
	}

	// Phases that need no waiting chain within one tick.
	for s.step(now) {
	}
}

// step runs the current phase once and reports whether the next phase
// should run immediately.
func (s *Sequencer) step(now time.Time) bool {
	switch s.Phase() {
	case MountingStorage:
		return s.mountStorage()
	case LoadingConfig:
		return s.loadConfig(now)
	case Connecting:
		return s.pollBootConnection(now)
	case EnteringProvisioning:
		return s.enterProvisioning(now)
	case Provisioning:
		return s.pollSubmissions(now)
	case ProvisionConnecting:
		return s.pollProvisionConnection(now)
	}
	return false
}

func (s *Sequencer) mountStorage() bool {
	if err := s.deps.Store.Mount(); err != nil {
		logging.Error("Storage unavailable, provisioning without persistence", zap.Error(err))
		s.setPhase(EnteringProvisioning)
		return true
	}

	if s.deps.Prefs != nil {
		if boot, err := s.deps.Prefs.RecordBoot(); err != nil {
			logging.Warn("Failed to record boot", zap.Error(err))
		} else {
			logging.Info("Boot recorded", zap.Int("boot_count", boot.BootCount))
		}
	}

	s.setPhase(LoadingConfig)
	return true
}

func (s *Sequencer) loadConfig(now time.Time) bool {
	rec, err := s.deps.Store.Load()
	if err != nil || rec == nil {
		if err != nil {
			logging.Info("No usable configuration", zap.Error(err))
		}
		s.setPhase(EnteringProvisioning)
		return true
	}

	s.record = rec
	s.deps.Device.SetRecord(rec)

	if !s.beginConnection(now, *rec) {
		s.setPhase(EnteringProvisioning)
		return true
	}
	s.setPhase(Connecting)
	return false
}

// beginConnection starts a client attempt with a fresh deadline.
func (s *Sequencer) beginConnection(now time.Time, rec config.Record) bool {
	if err := s.deps.Link.BeginClientConnection(rec.SSID, rec.PSK); err != nil {
		logging.Error("Connection attempt rejected", zap.Error(err))
		return false
	}
	s.ssid = rec.SSID
	s.deadline = now.Add(s.opts.ConnectTimeout)
	return true
}

// connectionResult reports whether the current attempt connected, timed
// out, or is still pending.
func (s *Sequencer) connectionResult(now time.Time) (connected, expired bool) {
	if s.deps.Link.Status() == link.StatusConnected {
		return true, false
	}
	if !now.Before(s.deadline) {
		logging.Warn("Connection attempt failed",
			zap.Error(link.NewTimeoutError(s.ssid, s.opts.ConnectTimeout)))
		return false, true
	}
	return false, false
}

func (s *Sequencer) pollBootConnection(now time.Time) bool {
	connected, expired := s.connectionResult(now)
	switch {
	case connected:
		s.enterOperational(now)
	case expired:
		s.setPhase(EnteringProvisioning)
		return true
	}
	return false
}

func (s *Sequencer) enterOperational(now time.Time) {
	s.setPhase(Operational)

	ip := s.deps.Link.LocalIP()
	rec := *s.record
	logging.Info("Connected", zap.String("ssid", rec.SSID), zap.String("ip", ip))

	// Each activation is independent: a failure is logged and the rest
	// still run.
	if s.deps.Diagnostics != nil {
		if err := s.deps.Diagnostics.Start(); err != nil {
			logging.Error("Failed to start diagnostics server", zap.Error(err))
		}
	}
	if s.deps.Updates != nil {
		if err := s.deps.Updates.Arm(rec.DevName, rec.OTAPassword); err != nil {
			logging.Error("Failed to arm update listener", zap.Error(err))
		}
	}
	if s.deps.Advertiser != nil && rec.MDNSEnable {
		if err := s.deps.Advertiser.Publish(rec.DevName, s.opts.HTTPPort, s.opts.Version); err != nil {
			logging.Error("Failed to publish mDNS service", zap.Error(err))
		}
	}
	if s.deps.Prefs != nil {
		if err := s.deps.Prefs.RecordConnection(rec.SSID, ip, now); err != nil {
			logging.Warn("Failed to record connection", zap.Error(err))
		}
	}
}

func (s *Sequencer) enterProvisioning(now time.Time) bool {
	// The phase is published first so peripherals show Provisioning while
	// the access point comes up.
	s.setPhase(EnteringProvisioning)

	if now.Before(s.apRetry) {
		return false
	}

	name := link.APName(s.opts.Product, s.deps.Link.HardwareAddr())
	ip, err := s.deps.Link.BeginAccessPoint(name)
	if err != nil {
		logging.Error("Failed to start access point", zap.Error(err))
		s.apRetry = now.Add(s.opts.AccessPointRetry)
		return false
	}

	if err := s.deps.Portal.Start(ip); err != nil {
		logging.Error("Failed to start provisioning portal", zap.Error(err))
		s.apRetry = now.Add(s.opts.AccessPointRetry)
		return false
	}

	logging.Info("Provisioning portal ready",
		zap.String("ap", name),
		zap.String("url", "http://"+ip.String()))
	s.setPhase(Provisioning)
	return true
}

func (s *Sequencer) pollSubmissions(now time.Time) bool {
	if s.deps.Link.AccessPointStatus() == link.StatusFailed {
		logging.Error("Access point went down, retrying")
		s.apRetry = now.Add(s.opts.AccessPointRetry)
		s.setPhase(EnteringProvisioning)
		return false
	}

	var sub server.Submission
	select {
	case sub = <-s.deps.Portal.Submissions():
	default:
		return false
	}

	logging.Info("Credentials submitted", zap.String("ssid", sub.Record.SSID))
	rec := sub.Record
	s.record = &rec
	s.deps.Device.SetRecord(&rec)

	if !s.beginConnection(now, rec) {
		// The client attempt tore the access point down; bring it back.
		s.setPhase(EnteringProvisioning)
		return true
	}
	s.setPhase(ProvisionConnecting)
	return false
}

func (s *Sequencer) pollProvisionConnection(now time.Time) bool {
	connected, expired := s.connectionResult(now)
	switch {
	case connected:
		s.setPhase(Restarting)
		logging.Info("Provisioned network reachable, restarting", zap.String("ssid", s.ssid))
		if err := s.deps.Restarter.Restart("provisioned"); err != nil {
			logging.Error("Restart after provisioning failed", zap.Error(err))
		}
	case expired:
		// The record stays on disk; the portal is still serving.
		s.setPhase(EnteringProvisioning)
		return true
	}
	return false
}

// Run ticks at the poll interval until the sequence restarts or ctx is
// done. It returns nil after a restart was issued.
func (s *Sequencer) Run(ctx context.Context, clk clock.Clock) error {
	if clk == nil {
		clk = clock.New()
	}
	ticker := clk.Ticker(s.opts.PollInterval)
	defer ticker.Stop()

	s.Tick(clk.Now())
	for !s.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(clk.Now())
		}
	}
	return nil
}

// Shutdown stops whatever servers the sequence started. It is for process
// exit on a signal; a restart never calls it.
func (s *Sequencer) Shutdown(ctx context.Context) error {
	if s.deps.Advertiser != nil {
		s.deps.Advertiser.Shutdown()
	}
	var err error
	if s.deps.Diagnostics != nil {
		err = s.deps.Diagnostics.Shutdown(ctx)
	}
	if perr := s.deps.Portal.Shutdown(ctx); perr != nil && err == nil {
		err = perr
	}
	return err
}
