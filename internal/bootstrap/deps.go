package bootstrap

import (
	"context"
	"net"
	"time"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/server"
	"github.com/muurk/thermabridge/internal/storage"
	"github.com/muurk/thermabridge/internal/system"
)

// Store is the config store as the sequencer uses it.
type Store interface {
	Mount() error
	Load() (*config.Record, error)
}

// Link is the link controller as the sequencer uses it.
type Link interface {
	BeginClientConnection(ssid, secret string) error
	Status() link.Status
	BeginAccessPoint(name string) (net.IP, error)
	AccessPointStatus() link.Status
	LocalIP() string
	HardwareAddr() net.HardwareAddr
}

// Portal is the provisioning surface.
type Portal interface {
	Start(apIP net.IP) error
	Submissions() <-chan server.Submission
	Shutdown(ctx context.Context) error
}

// Diagnostics is the operational server.
type Diagnostics interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// UpdateListener is armed once the device is operational.
type UpdateListener interface {
	Arm(hostname, password string) error
}

// Advertiser publishes the diagnostics service over mDNS.
type Advertiser interface {
	Publish(name string, port int, version string) error
	Shutdown()
}

// BootHistory is the write side of the preferences namespace.
type BootHistory interface {
	RecordBoot() (storage.BootRecord, error)
	RecordConnection(ssid, ip string, at time.Time) error
}

// ResetGuard performs a factory reset when the hold threshold is crossed.
type ResetGuard interface {
	Poll(now time.Time, hold time.Duration) bool
}

// Deps are the sequencer's collaborators. Updates, Advertiser, Prefs and
// Guard may be nil.
type Deps struct {
	Device      *device.Context
	Store       Store
	Link        Link
	Portal      Portal
	Diagnostics Diagnostics
	Updates     UpdateListener
	Advertiser  Advertiser
	Prefs       BootHistory
	Guard       ResetGuard
	Restarter   system.Restarter
}
