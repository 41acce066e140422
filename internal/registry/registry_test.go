package registry

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != filepath.Join("/tmp/xdg", "thermabridge") {
			t.Errorf("ConfigDir() = %v, want /tmp/xdg/thermabridge", dir)
		}
	}

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if filepath.Base(path) != "devices.yaml" {
		t.Errorf("DefaultPath() should end with devices.yaml, got %v", path)
	}
}

func TestNew(t *testing.T) {
	reg := New()
	if reg.Version != CurrentVersion {
		t.Errorf("New().Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Devices == nil {
		t.Error("New().Devices should be initialized")
	}
	if reg.Preferences.DefaultPort != 80 {
		t.Errorf("DefaultPort = %v, want 80", reg.Preferences.DefaultPort)
	}
}

func TestObserveAndResolve(t *testing.T) {
	reg := New()
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reg.Observe("ThermaBridge-3F2A", "192.168.1.23", 80, "1.2.0", seen)
	reg.SetNickname("ThermaBridge-3F2A", "Kitchen")
	reg.Observe("ThermaBridge-0001", "192.168.1.40", 80, "", seen)

	tests := []struct {
		target   string
		wantName string
		wantOK   bool
	}{
		{"ThermaBridge-3F2A", "ThermaBridge-3F2A", true},
		{"kitchen", "ThermaBridge-3F2A", true},
		{"ThermaBridge-0001", "ThermaBridge-0001", true},
		{"garage", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			name, dev, ok := reg.Resolve(tt.target)
			if ok != tt.wantOK || name != tt.wantName {
				t.Fatalf("Resolve(%q) = %q, %v, want %q, %v", tt.target, name, ok, tt.wantName, tt.wantOK)
			}
			if ok && dev == nil {
				t.Error("Resolve() returned nil device")
			}
		})
	}

	if got := reg.Get("ThermaBridge-3F2A").Version; got != "1.2.0" {
		t.Errorf("Version = %v, want 1.2.0", got)
	}

	// An empty version does not erase a known one.
	reg.Observe("ThermaBridge-3F2A", "192.168.1.24", 80, "", seen.Add(time.Hour))
	dev := reg.Get("ThermaBridge-3F2A")
	if dev.Version != "1.2.0" || dev.LastIP != "192.168.1.24" {
		t.Errorf("after re-observe = %+v", dev)
	}
}

func TestNamesSorted(t *testing.T) {
	reg := New()
	for _, n := range []string{"c", "a", "b"} {
		reg.Ensure(n)
	}
	if got := strings.Join(reg.Names(), ","); got != "a,b,c" {
		t.Errorf("Names() = %v, want a,b,c", got)
	}
	if !reg.Remove("b") || reg.Remove("b") {
		t.Error("Remove() should report existence exactly once")
	}
}

func TestLoadMissingFile(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.Devices) != 0 {
		t.Errorf("Load() of missing file has %d devices", len(reg.Devices))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "devices.yaml")
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reg := New()
	reg.Observe("ThermaBridge-3F2A", "192.168.1.23", 8080, "1.2.0", seen)
	reg.SetNickname("ThermaBridge-3F2A", "Kitchen")
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	dev := got.Get("ThermaBridge-3F2A")
	if dev == nil {
		t.Fatal("device missing after round trip")
	}
	if dev.Nickname != "Kitchen" || dev.Port != 8080 || !dev.LastSeen.Equal(seen) {
		t.Errorf("device after round trip = %+v", dev)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"not yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "devices.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Devices == nil || reg.Preferences == nil {
		t.Error("Load() should initialize devices and preferences")
	}
}
