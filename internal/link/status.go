package link

import (
	"fmt"
	"net"
)

// Status is the client-role connection state. The numeric values are the
// codes reported by the radio firmware and appear verbatim in /status.
type Status int

const (
	StatusIdle       Status = 0
	StatusConnected  Status = 3
	StatusFailed     Status = 4
	StatusConnecting Status = 6
)

// String returns a human-readable name for the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Role is the radio's current role.
type Role int

const (
	RoleNone Role = iota
	RoleClient
	RoleAccessPoint
)

// String returns a human-readable name for the role
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleClient:
		return "client"
	case RoleAccessPoint:
		return "access-point"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// DefaultAccessPointAddr is the fixed address the device takes in AP role.
var DefaultAccessPointAddr = net.IPv4(192, 168, 4, 1)

// APName builds the access-point network name from the product name and the
// last two bytes of the radio's hardware address, e.g. "ThermaBridge-3F2A".
func APName(product string, mac net.HardwareAddr) string {
	if len(mac) < 2 {
		return product
	}
	return fmt.Sprintf("%s-%02X%02X", product, mac[len(mac)-2], mac[len(mac)-1])
}
