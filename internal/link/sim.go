package link

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultAssociationDelay is how long SimRadio takes to join a network.
const DefaultAssociationDelay = 2 * time.Second

// SimNetwork is a network reachable by SimRadio.
type SimNetwork struct {
	SSID string
	PSK  string
	// IP is the address handed out on association. Zero means 10.0.0.50.
	IP net.IP
}

// SimRadio is an in-memory Radio.
//
// A known network with the right PSK connects once AssociationDelay has
// elapsed. A wrong PSK fails after the same delay. An unknown network stays
// Connecting forever, like a radio that keeps scanning for it.
type SimRadio struct {
	Clock            clock.Clock
	AssociationDelay time.Duration
	MAC              net.HardwareAddr

	mu       sync.Mutex
	networks map[string]SimNetwork
	role     Role
	ssid     string
	psk      string
	started  time.Time
	apName   string
	apAddr   net.IP

	ClientStarts int
	APStarts     int
	Stops        int
	// FailAccessPoint makes StartAccessPoint fail.
	FailAccessPoint bool
}

// NewSimRadio creates a simulated radio that can reach networks.
func NewSimRadio(clk clock.Clock, networks ...SimNetwork) *SimRadio {
	if clk == nil {
		clk = clock.New()
	}
	r := &SimRadio{
		Clock:            clk,
		AssociationDelay: DefaultAssociationDelay,
		MAC:              net.HardwareAddr{0x02, 0x54, 0x42, 0x00, 0x3f, 0x2a},
		networks:         make(map[string]SimNetwork),
	}
	for _, n := range networks {
		r.AddNetwork(n)
	}
	return r
}

// AddNetwork makes n reachable.
func (r *SimRadio) AddNetwork(n SimNetwork) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.IP == nil {
		n.IP = net.IPv4(10, 0, 0, 50)
	}
	r.networks[n.SSID] = n
}

// RemoveNetwork makes ssid unreachable.
func (r *SimRadio) RemoveNetwork(ssid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.networks, ssid)
}

// StartClient implements Radio.
func (r *SimRadio) StartClient(ssid, psk string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ssid == "" {
		return errors.New("empty ssid")
	}
	r.ClientStarts++
	r.role = RoleClient
	r.ssid = ssid
	r.psk = psk
	r.started = r.Clock.Now()
	return nil
}

// ClientStatus implements Radio.
func (r *SimRadio) ClientStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status()
}

func (r *SimRadio) status() Status {
	if r.role != RoleClient {
		return StatusIdle
	}
	n, ok := r.networks[r.ssid]
	if !ok {
		return StatusConnecting
	}
	if r.Clock.Since(r.started) < r.AssociationDelay {
		return StatusConnecting
	}
	if n.PSK != r.psk {
		return StatusFailed
	}
	return StatusConnected
}

// LocalIP implements Radio.
func (r *SimRadio) LocalIP() net.IP {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status() != StatusConnected {
		return nil
	}
	return r.networks[r.ssid].IP
}

// StartAccessPoint implements Radio.
func (r *SimRadio) StartAccessPoint(name string, addr net.IP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.APStarts++
	if r.FailAccessPoint {
		return errors.New("simulated access point failure")
	}
	r.role = RoleAccessPoint
	r.apName = name
	r.apAddr = addr
	return nil
}

// AccessPointStatus implements Radio. The simulated network is up as soon
// as StartAccessPoint returns.
func (r *SimRadio) AccessPointStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.role != RoleAccessPoint {
		return StatusIdle
	}
	return StatusConnected
}

// AccessPoint returns the advertised name and address, or "" and nil when
// not in AP role.
func (r *SimRadio) AccessPoint() (string, net.IP) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.role != RoleAccessPoint {
		return "", nil
	}
	return r.apName, r.apAddr
}

// Stop implements Radio.
func (r *SimRadio) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Stops++
	r.role = RoleNone
	r.ssid = ""
	r.psk = ""
	r.apName = ""
	r.apAddr = nil
	return nil
}

// HardwareAddr implements Radio.
func (r *SimRadio) HardwareAddr() net.HardwareAddr {
	return r.MAC
}
