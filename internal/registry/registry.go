package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName  = "thermabridge"
	fileName = "devices.yaml"
)

// Mutex for file operations within this process
var fileMutex sync.Mutex

// ConfigDir returns the OS-appropriate configuration directory for thermactl:
//   - Linux: $XDG_CONFIG_HOME/thermabridge or $HOME/.config/thermabridge
//   - macOS: $HOME/.config/thermabridge
//   - Windows: %LOCALAPPDATA%\thermabridge
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	case "darwin":
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the full path to the registry file.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the registry at path. A missing file yields a new default
// registry.
func Load(path string) (*Registry, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}
	if reg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported registry version: %d (expected %d)", reg.Version, CurrentVersion)
	}
	if reg.Devices == nil {
		reg.Devices = make(map[string]*Device)
	}
	if reg.Preferences == nil {
		reg.Preferences = defaultPreferences()
	}
	return &reg, nil
}

// Save writes the registry to path atomically, creating the directory if
// needed.
func (r *Registry) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	header := []byte("# thermactl device registry\n" +
		"# Network credentials are never stored here.\n\n")
	data := append(header, body...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary registry file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save registry file: %w", err)
	}
	return nil
}
