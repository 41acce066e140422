package link

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// APConnectionName is the NetworkManager connection profile used for the
// provisioning access point.
const APConnectionName = "thermabridge-ap"

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DefaultCommandTimeout bounds one nmcli invocation. It stays below the
// connect budget so a hung association is reported as Failed in time.
const DefaultCommandTimeout = 10 * time.Second

// NMCLIRadio drives a wireless interface through NetworkManager.
//
// nmcli blocks until NetworkManager has finished, so no Radio method runs it
// directly. Each role change is queued for a single worker goroutine and the
// outcome is published through ClientStatus, AccessPointStatus and LocalIP.
// A newer role change supersedes a queued one and cancels the one in flight.
type NMCLIRadio struct {
	Interface string
	Run       Runner
	// CommandTimeout bounds every nmcli invocation.
	CommandTimeout time.Duration

	mu       sync.Mutex
	status   Status
	apStatus Status
	ip       net.IP

	gen        int
	pending    func(ctx context.Context, gen int)
	pendingGen int
	cancel     context.CancelFunc
	wake       chan struct{}
}

// NewNMCLIRadio creates a radio for iface using ExecRunner.
func NewNMCLIRadio(iface string) *NMCLIRadio {
	return &NMCLIRadio{
		Interface:      iface,
		Run:            ExecRunner,
		CommandTimeout: DefaultCommandTimeout,
	}
}

func (r *NMCLIRadio) run(ctx context.Context, args ...string) (string, error) {
	timeout := r.CommandTimeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := r.Run(ctx, "nmcli", args...)
	if err != nil {
		return string(out), fmt.Errorf("nmcli %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// submit replaces any queued operation with op. It must be called with mu
// held.
func (r *NMCLIRadio) submit(op func(ctx context.Context, gen int)) {
	r.gen++
	r.pending = op
	r.pendingGen = r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.wake == nil {
		r.wake = make(chan struct{}, 1)
		go r.worker(r.wake)
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *NMCLIRadio) worker(wake <-chan struct{}) {
	for range wake {
		r.mu.Lock()
		op, gen := r.pending, r.pendingGen
		r.pending = nil
		if op == nil {
			r.mu.Unlock()
			continue
		}
		ctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		r.mu.Unlock()

		op(ctx, gen)
		cancel()

		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}
}

// publish applies f if gen is still the latest role change.
func (r *NMCLIRadio) publish(gen int, f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		f()
	}
}

// StartClient implements Radio. ClientStatus reports Connecting until
// nmcli returns.
func (r *NMCLIRadio) StartClient(ssid, psk string) error {
	args := []string{"device", "wifi", "connect", ssid, "ifname", r.Interface}
	if psk != "" {
		args = append(args, "password", psk)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = StatusConnecting
	r.apStatus = StatusIdle
	r.ip = nil
	r.submit(func(ctx context.Context, gen int) {
		_, err := r.run(ctx, args...)
		var ip net.IP
		if err == nil {
			if out, ierr := r.run(ctx, "-g", "IP4.ADDRESS", "device", "show", r.Interface); ierr == nil {
				ip = parseIPv4Address(out)
			}
		}
		r.publish(gen, func() {
			if err != nil {
				logging.Warn("nmcli connect failed",
					zap.String("ssid", ssid),
					zap.Error(err),
				)
				r.status = StatusFailed
				return
			}
			r.status = StatusConnected
			r.ip = ip
		})
	})
	return nil
}

// ClientStatus implements Radio.
func (r *NMCLIRadio) ClientStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// AccessPointStatus implements Radio.
func (r *NMCLIRadio) AccessPointStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apStatus
}

// LocalIP implements Radio. The address is read once when the connection
// comes up.
func (r *NMCLIRadio) LocalIP() net.IP {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ip == nil {
		return nil
	}
	return append(net.IP(nil), r.ip...)
}

// parseIPv4Address extracts the first address from nmcli's
// "a.b.c.d/len | e.f.g.h/len" output.
func parseIPv4Address(out string) net.IP {
	first := strings.TrimSpace(strings.Split(out, "|")[0])
	if first == "" {
		return nil
	}
	if ip, _, err := net.ParseCIDR(first); err == nil {
		return ip
	}
	return net.ParseIP(first)
}

// StartAccessPoint implements Radio. AccessPointStatus reports Connecting
// until the profile is up.
func (r *NMCLIRadio) StartAccessPoint(name string, addr net.IP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = StatusIdle
	r.apStatus = StatusConnecting
	r.ip = nil
	r.submit(func(ctx context.Context, gen int) {
		err := r.bringUpAccessPoint(ctx, name, addr)
		r.publish(gen, func() {
			if err != nil {
				logging.Error("nmcli access point failed",
					zap.String("name", name),
					zap.Error(err),
				)
				r.apStatus = StatusFailed
				return
			}
			r.apStatus = StatusConnected
		})
	})
	return nil
}

// bringUpAccessPoint recreates the profile every time so a changed name or
// address always takes effect.
func (r *NMCLIRadio) bringUpAccessPoint(ctx context.Context, name string, addr net.IP) error {
	_, _ = r.run(ctx, "connection", "delete", APConnectionName)

	if _, err := r.run(ctx, "connection", "add",
		"type", "wifi",
		"ifname", r.Interface,
		"con-name", APConnectionName,
		"autoconnect", "no",
		"ssid", name,
		"802-11-wireless.mode", "ap",
		"ipv4.method", "shared",
		"ipv4.addresses", addr.String()+"/24",
	); err != nil {
		return err
	}
	_, err := r.run(ctx, "connection", "up", APConnectionName)
	return err
}

// Stop implements Radio. The teardown itself runs on the worker.
func (r *NMCLIRadio) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = StatusIdle
	r.apStatus = StatusIdle
	r.ip = nil
	r.submit(func(ctx context.Context, gen int) {
		if err := r.tearDown(ctx); err != nil {
			logging.Warn("nmcli teardown failed", zap.Error(err))
		}
	})
	return nil
}

func (r *NMCLIRadio) tearDown(ctx context.Context) error {
	_, _ = r.run(ctx, "connection", "down", APConnectionName)
	if out, err := r.run(ctx, "device", "disconnect", r.Interface); err != nil {
		// Disconnecting an interface that is already down is not an error.
		if strings.Contains(out, "not active") || strings.Contains(out, "disconnected") {
			return nil
		}
		return err
	}
	return nil
}

// HardwareAddr implements Radio.
func (r *NMCLIRadio) HardwareAddr() net.HardwareAddr {
	iface, err := net.InterfaceByName(r.Interface)
	if err != nil {
		return nil
	}
	return iface.HardwareAddr
}
