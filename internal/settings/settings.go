// Package settings loads the daemon's own runtime settings.
//
// These are host-level knobs (where the flash volume lives, which radio
// driver to use, which addresses to listen on) and are distinct from the
// device config record the operator provisions. They are read once at
// startup from a YAML file, then overridden from THERMABRIDGE_* environment
// variables, then validated.
package settings

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the daemon looks for its settings file.
const DefaultPath = "/etc/thermabridge/thermabridge.yaml"

// Environment overrides.
const (
	EnvDataDir     = "THERMABRIDGE_DATA_DIR"
	EnvHTTPAddr    = "THERMABRIDGE_HTTP_ADDR"
	EnvDNSAddr     = "THERMABRIDGE_DNS_ADDR"
	EnvRadio       = "THERMABRIDGE_RADIO"
	EnvInterface   = "THERMABRIDGE_INTERFACE"
	EnvRestartMode = "THERMABRIDGE_RESTART_MODE"
	EnvLogLevel    = "THERMABRIDGE_LOG_LEVEL"
)

// Radio drivers.
const (
	RadioSim   = "sim"
	RadioNMCLI = "nmcli"
)

// Reset input drivers.
const (
	ResetNone  = "none"
	ResetSysfs = "sysfs"
	ResetFile  = "file"
)

// Settings is the daemon configuration.
type Settings struct {
	DataDir  string `yaml:"data_dir"`
	Product  string `yaml:"product"`
	LogLevel string `yaml:"log_level"`

	HTTP        HTTPSettings        `yaml:"http"`
	DNS         DNSSettings         `yaml:"dns"`
	AccessPoint AccessPointSettings `yaml:"access_point"`
	Connect     ConnectSettings     `yaml:"connect"`
	Radio       RadioSettings       `yaml:"radio"`
	Reset       ResetSettings       `yaml:"reset"`
	Restart     RestartSettings     `yaml:"restart"`
	Events      EventsSettings      `yaml:"events"`
	Indicator   IndicatorSettings   `yaml:"indicator"`
}

// HTTPSettings configures the portal and diagnostics listeners.
type HTTPSettings struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DNSSettings configures the captive DNS responder. An empty Listen
// disables it.
type DNSSettings struct {
	Listen string `yaml:"listen"`
}

// AccessPointSettings configures the provisioning network.
type AccessPointSettings struct {
	Address string `yaml:"address"`
}

// ConnectSettings bounds client connection attempts.
type ConnectSettings struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// RadioSettings selects the radio driver.
type RadioSettings struct {
	Driver    string `yaml:"driver"`
	Interface string `yaml:"interface"`

	// Simulated radio only.
	AssociationDelay time.Duration `yaml:"association_delay"`
	Networks         []SimNetwork  `yaml:"networks"`
}

// SimNetwork is a network the simulated radio can join.
type SimNetwork struct {
	SSID string `yaml:"ssid"`
	PSK  string `yaml:"psk"`
	IP   string `yaml:"ip"`
}

// ResetSettings selects the factory-reset input.
type ResetSettings struct {
	Driver string `yaml:"driver"`
	Pin    int    `yaml:"pin"`
	Path   string `yaml:"path"`
}

// RestartSettings selects how the device restarts.
type RestartSettings struct {
	Mode string `yaml:"mode"`
}

// EventsSettings configures the /events stream.
type EventsSettings struct {
	Interval time.Duration `yaml:"interval"`
}

// IndicatorSettings configures the console mode indicator.
type IndicatorSettings struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		DataDir: "/var/lib/thermabridge",
		Product: "ThermaBridge",
		HTTP: HTTPSettings{
			Listen:          ":80",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		DNS:         DNSSettings{Listen: ":53"},
		AccessPoint: AccessPointSettings{Address: "192.168.4.1"},
		Connect: ConnectSettings{
			Timeout:      15 * time.Second,
			PollInterval: 200 * time.Millisecond,
		},
		Radio: RadioSettings{
			Driver:           RadioSim,
			Interface:        "wlan0",
			AssociationDelay: 2 * time.Second,
		},
		Reset: ResetSettings{
			Driver: ResetNone,
			Path:   "/run/thermabridge/reset",
		},
		Restart:   RestartSettings{Mode: "exec"},
		Events:    EventsSettings{Interval: 2 * time.Second},
		Indicator: IndicatorSettings{Enabled: true},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. A missing file is only an error when required.
func Load(path string, required bool) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	s.ApplyEnv(os.LookupEnv)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyEnv overrides fields from the environment.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvDataDir, &s.DataDir)
	set(EnvHTTPAddr, &s.HTTP.Listen)
	set(EnvDNSAddr, &s.DNS.Listen)
	set(EnvRadio, &s.Radio.Driver)
	set(EnvInterface, &s.Radio.Interface)
	set(EnvRestartMode, &s.Restart.Mode)
	set(EnvLogLevel, &s.LogLevel)
}

// Validate checks that the settings are coherent.
func (s Settings) Validate() error {
	if s.DataDir == "" {
		return fmt.Errorf("invalid data_dir: must not be empty")
	}
	if s.Product == "" {
		return fmt.Errorf("invalid product: must not be empty")
	}
	if _, _, err := net.SplitHostPort(s.HTTP.Listen); err != nil {
		return fmt.Errorf("invalid http.listen %q: %w", s.HTTP.Listen, err)
	}
	if s.DNS.Listen != "" {
		if _, _, err := net.SplitHostPort(s.DNS.Listen); err != nil {
			return fmt.Errorf("invalid dns.listen %q: %w", s.DNS.Listen, err)
		}
	}
	if ip := net.ParseIP(s.AccessPoint.Address); ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid access_point.address %q: must be an IPv4 address", s.AccessPoint.Address)
	}
	if s.Connect.Timeout <= 0 {
		return fmt.Errorf("invalid connect.timeout: must be > 0")
	}
	if s.Connect.PollInterval <= 0 {
		return fmt.Errorf("invalid connect.poll_interval: must be > 0")
	}
	if s.Connect.PollInterval > s.Connect.Timeout {
		return fmt.Errorf("invalid connect.poll_interval: must not exceed connect.timeout")
	}

	switch s.Radio.Driver {
	case RadioSim:
		for i, n := range s.Radio.Networks {
			if strings.TrimSpace(n.SSID) == "" {
				return fmt.Errorf("invalid radio.networks[%d]: ssid must not be empty", i)
			}
			if n.IP != "" && net.ParseIP(n.IP) == nil {
				return fmt.Errorf("invalid radio.networks[%d].ip %q", i, n.IP)
			}
		}
	case RadioNMCLI:
		if s.Radio.Interface == "" {
			return fmt.Errorf("invalid radio.interface: required for the %s driver", RadioNMCLI)
		}
	default:
		return fmt.Errorf("invalid radio.driver %q: must be %q or %q", s.Radio.Driver, RadioSim, RadioNMCLI)
	}

	switch s.Reset.Driver {
	case ResetNone:
	case ResetSysfs:
		if s.Reset.Pin < 0 {
			return fmt.Errorf("invalid reset.pin: must be >= 0")
		}
	case ResetFile:
		if s.Reset.Path == "" {
			return fmt.Errorf("invalid reset.path: required for the %s driver", ResetFile)
		}
	default:
		return fmt.Errorf("invalid reset.driver %q: must be %q, %q or %q", s.Reset.Driver, ResetNone, ResetSysfs, ResetFile)
	}

	if s.Restart.Mode != "exec" && s.Restart.Mode != "exit" {
		return fmt.Errorf("invalid restart.mode %q: must be \"exec\" or \"exit\"", s.Restart.Mode)
	}
	if s.Events.Interval <= 0 {
		return fmt.Errorf("invalid events.interval: must be > 0")
	}
	return nil
}

// AccessPointIP returns the parsed access-point address.
func (s Settings) AccessPointIP() net.IP {
	return net.ParseIP(s.AccessPoint.Address).To4()
}

// HTTPPort returns the port part of http.listen, for mDNS advertisement.
func (s Settings) HTTPPort() int {
	_, port, err := net.SplitHostPort(s.HTTP.Listen)
	if err != nil {
		return 80
	}
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil || n == 0 {
		return 80
	}
	return n
}
