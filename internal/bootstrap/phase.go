package bootstrap

import (
	"fmt"

	"github.com/muurk/thermabridge/internal/device"
)

// Phase is a sequencer state. Phases are finer-grained than device.Mode;
// peripherals only ever see the mode.
type Phase int32

const (
	MountingStorage Phase = iota
	LoadingConfig
	Connecting
	EnteringProvisioning
	Provisioning
	ProvisionConnecting
	Operational
	// Restarting is terminal.
	Restarting
)

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case MountingStorage:
		return "MountingStorage"
	case LoadingConfig:
		return "LoadingConfig"
	case Connecting:
		return "Connecting"
	case EnteringProvisioning:
		return "EnteringProvisioning"
	case Provisioning:
		return "Provisioning"
	case ProvisionConnecting:
		return "ProvisionConnecting"
	case Operational:
		return "Operational"
	case Restarting:
		return "Restarting"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// mode is the device mode published while in p. Restarting keeps whatever
// mode led to it.
func (p Phase) mode() (device.Mode, bool) {
	switch p {
	case MountingStorage, LoadingConfig:
		return device.Unconfigured, true
	case Connecting, ProvisionConnecting:
		return device.ConnectingToNetwork, true
	case EnteringProvisioning, Provisioning:
		return device.Provisioning, true
	case Operational:
		return device.Operational, true
	default:
		return 0, false
	}
}
