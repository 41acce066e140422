package registry

import (
	"sort"
	"strings"
	"time"
)

// CurrentVersion is the registry file format version.
const CurrentVersion = 1

// Registry is the operator's record of known ThermaBridge devices and
// thermactl preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by advertised instance name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is what thermactl remembers about one device.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`  // Operator-chosen alias
	LastIP   string    `yaml:"last_ip,omitempty"`   // Last known address
	Port     int       `yaml:"port,omitempty"`      // Diagnostics port
	Version  string    `yaml:"version,omitempty"`   // Build advertised over mDNS
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery or successful request
	LastSSID string    `yaml:"last_ssid,omitempty"` // Network it was last provisioned for
}

// Preferences holds thermactl-wide settings.
type Preferences struct {
	ScanTimeoutSeconds int `yaml:"scan_timeout_seconds"`
	DefaultPort        int `yaml:"default_port"`
}

func defaultPreferences() *Preferences {
	return &Preferences{ScanTimeoutSeconds: 5, DefaultPort: 80}
}

// New creates a new Registry with default values.
func New() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// Get returns the entry for name, or nil.
func (r *Registry) Get(name string) *Device {
	return r.Devices[name]
}

// Ensure returns the entry for name, creating an empty one if needed.
func (r *Registry) Ensure(name string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if d, ok := r.Devices[name]; ok {
		return d
	}
	d := &Device{}
	r.Devices[name] = d
	return d
}

// Observe records that name was seen at ip:port running version.
func (r *Registry) Observe(name, ip string, port int, version string, at time.Time) {
	d := r.Ensure(name)
	d.LastIP = ip
	d.Port = port
	if version != "" {
		d.Version = version
	}
	d.LastSeen = at
}

// SetNickname sets an alias for name. Resolve accepts either.
func (r *Registry) SetNickname(name, nickname string) {
	r.Ensure(name).Nickname = nickname
}

// Remove forgets name. It reports whether an entry existed.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	return true
}

// Resolve looks a target up by instance name, then case-insensitively by
// nickname. It returns the instance name and entry.
func (r *Registry) Resolve(target string) (string, *Device, bool) {
	if d, ok := r.Devices[target]; ok {
		return target, d, true
	}
	for _, name := range r.Names() {
		d := r.Devices[name]
		if d.Nickname != "" && strings.EqualFold(d.Nickname, target) {
			return name, d, true
		}
	}
	return "", nil, false
}

// Names returns every instance name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
