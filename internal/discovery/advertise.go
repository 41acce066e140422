package discovery

import (
	"fmt"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// registerFunc matches zeroconf.Register.
type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (*zeroconf.Server, error)

// Advertiser publishes the device's diagnostics service.
type Advertiser struct {
	register registerFunc

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser that publishes on all interfaces.
func NewAdvertiser() *Advertiser {
	return &Advertiser{register: zeroconf.Register}
}

// TXTRecords returns the records published for a device running version.
func TXTRecords(version string) []string {
	return []string{
		ProductKey + "=" + ProductValue,
		"version=" + version,
		"path=/status",
	}
}

// Publish advertises name on port. Publishing again replaces the previous
// advertisement.
func (a *Advertiser) Publish(name string, port int, version string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := a.register(name, ServiceType, ServiceDomain, port, TXTRecords(version), nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service %q: %w", name, err)
	}
	a.server = server

	logging.Info("mDNS service published",
		zap.String("instance", name),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
