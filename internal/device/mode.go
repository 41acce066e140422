package device

import "fmt"

// Mode is the high-level state peripherals render.
type Mode int32

const (
	// Unconfigured is the mode before the first bootstrap decision.
	Unconfigured Mode = iota
	// Provisioning means the captive portal is up.
	Provisioning
	// ConnectingToNetwork means a client connection attempt is in progress.
	ConnectingToNetwork
	// Operational means the device is on a network and diagnostics are up.
	Operational
	// ResettingFactory means a factory reset is purging state.
	ResettingFactory
)

// String returns a human-readable name for the mode
func (m Mode) String() string {
	switch m {
	case Unconfigured:
		return "Unconfigured"
	case Provisioning:
		return "Provisioning"
	case ConnectingToNetwork:
		return "ConnectingToNetwork"
	case Operational:
		return "Operational"
	case ResettingFactory:
		return "ResettingFactory"
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{Unconfigured, Provisioning, ConnectingToNetwork, Operational, ResettingFactory}
}
