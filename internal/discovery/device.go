package discovery

import (
	"fmt"
	"time"
)

// Device represents a discovered ThermaBridge on the network
type Device struct {
	// Name is the advertised instance name, the device's devname
	Name string

	// Hostname is the mDNS hostname (e.g., "thermabridge-3f2a.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.23")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Version is the firmware build version from the TXT record
	Version string

	// Metadata contains every TXT record
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("ThermaBridge %s (%s) at %s:%d", d.Name, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
