package link

import (
	"fmt"
	"net"
	"sync"

	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// Radio is the hardware (or simulated) wireless interface.
type Radio interface {
	// StartClient begins associating with ssid and returns without waiting.
	StartClient(ssid, psk string) error
	// ClientStatus reports the state of the last StartClient.
	ClientStatus() Status
	// LocalIP returns the client-role address, or nil.
	LocalIP() net.IP
	// StartAccessPoint begins bringing up an open network called name at
	// addr. A driver may return before the network is up.
	StartAccessPoint(name string, addr net.IP) error
	// AccessPointStatus reports the state of the last StartAccessPoint.
	AccessPointStatus() Status
	// Stop tears down whatever role is active.
	Stop() error
	// HardwareAddr returns the radio MAC address.
	HardwareAddr() net.HardwareAddr
}

// Controller serialises role changes on a Radio. It is safe for concurrent
// use: the HTTP handlers read Status and LocalIP while the control loop
// drives role changes. Radio methods must not block, since they are called
// with the controller's mutex held.
type Controller struct {
	radio  Radio
	apAddr net.IP

	mu   sync.Mutex
	role Role
	ssid string
}

// NewController creates a controller. A nil apAddr means
// DefaultAccessPointAddr.
func NewController(radio Radio, apAddr net.IP) *Controller {
	if apAddr == nil {
		apAddr = DefaultAccessPointAddr
	}
	return &Controller{radio: radio, apAddr: apAddr}
}

// BeginClientConnection tears down the current role and starts associating
// with ssid. It does not wait for the result; poll Status.
func (c *Controller) BeginClientConnection(ssid, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()

	logging.Info("Starting client connection", zap.String("ssid", ssid))

	if err := c.radio.StartClient(ssid, secret); err != nil {
		c.role = RoleNone
		return NewRejectedError(ssid, err)
	}
	c.role = RoleClient
	c.ssid = ssid
	return nil
}

// Status returns the client-role status. Outside client role it is Idle.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.role != RoleClient {
		return StatusIdle
	}
	return c.radio.ClientStatus()
}

// BeginAccessPoint tears down the current role and brings up the
// provisioning network. It returns the address clients should be sent to.
func (c *Controller) BeginAccessPoint(name string) (net.IP, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()

	logging.Info("Starting access point",
		zap.String("name", name),
		zap.String("addr", c.apAddr.String()),
	)

	if err := c.radio.StartAccessPoint(name, c.apAddr); err != nil {
		c.role = RoleNone
		return nil, newRadioError(name, fmt.Errorf("failed to start access point: %w", err))
	}
	c.role = RoleAccessPoint
	c.ssid = name
	return c.apAddr, nil
}

// AccessPointStatus reports whether the provisioning network is up.
// Outside AP role it is Idle.
func (c *Controller) AccessPointStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.role != RoleAccessPoint {
		return StatusIdle
	}
	return c.radio.AccessPointStatus()
}

// LocalIP returns the client-role address as text, or "" when not connected.
func (c *Controller) LocalIP() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.role != RoleClient || c.radio.ClientStatus() != StatusConnected {
		return ""
	}
	ip := c.radio.LocalIP()
	if ip == nil {
		return ""
	}
	return ip.String()
}

// Role returns the active role.
func (c *Controller) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// AccessPointAddr returns the address used in AP role.
func (c *Controller) AccessPointAddr() net.IP {
	return c.apAddr
}

// HardwareAddr returns the radio MAC address.
func (c *Controller) HardwareAddr() net.HardwareAddr {
	return c.radio.HardwareAddr()
}

// teardown must be called with mu held.
func (c *Controller) teardown() {
	if err := c.radio.Stop(); err != nil {
		logging.Warn("Failed to stop radio role",
			zap.String("role", c.role.String()),
			zap.Error(err),
		)
	}
	c.role = RoleNone
	c.ssid = ""
}

// Network returns the network name of the active role: the joined SSID in
// client role, the advertised name in AP role.
func (c *Controller) Network() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ssid
}
