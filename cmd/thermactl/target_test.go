package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/discovery"
	"github.com/muurk/thermabridge/internal/registry"
	"github.com/muurk/thermabridge/internal/server"
)

func noScan(t *testing.T) func(time.Duration) ([]*discovery.Device, error) {
	return func(time.Duration) ([]*discovery.Device, error) {
		t.Fatal("unexpected scan")
		return nil, nil
	}
}

func scanResult(devices ...*discovery.Device) func(time.Duration) ([]*discovery.Device, error) {
	return func(time.Duration) ([]*discovery.Device, error) { return devices, nil }
}

func TestResolve_ByNickname(t *testing.T) {
	devicePort = 0
	reg := registry.New()
	reg.Observe("ThermaBridge-3f2a", "192.168.1.23", 8080, "v1.0.0", time.Now())
	reg.SetNickname("ThermaBridge-3f2a", "kitchen")

	got, err := resolve(reg, "Kitchen", noScan(t))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	want := target{Name: "ThermaBridge-3f2a", Host: "192.168.1.23", Port: 8080}
	if got != want {
		t.Errorf("resolve() = %+v, want %+v", got, want)
	}
}

func TestResolve_PortFlagOverridesRegistry(t *testing.T) {
	devicePort = 9000
	defer func() { devicePort = 0 }()

	reg := registry.New()
	reg.Observe("ThermaBridge-3f2a", "192.168.1.23", 8080, "", time.Now())

	got, err := resolve(reg, "ThermaBridge-3f2a", noScan(t))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if got.Port != 9000 {
		t.Errorf("resolve().Port = %d, want 9000", got.Port)
	}
}

func TestResolve_UnknownIsAddress(t *testing.T) {
	devicePort = 0
	got, err := resolve(registry.New(), "192.168.4.1", noScan(t))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	want := target{Host: "192.168.4.1", Port: 80}
	if got != want {
		t.Errorf("resolve() = %+v, want %+v", got, want)
	}
}

func TestResolve_Discovery(t *testing.T) {
	devicePort = 0
	a := &discovery.Device{Name: "ThermaBridge-3f2a", IP: "192.168.1.23", Port: 80, Version: "v1", DiscoveredAt: time.Now()}
	b := &discovery.Device{Name: "ThermaBridge-77c1", IP: "192.168.1.24", Port: 80, DiscoveredAt: time.Now()}

	tests := []struct {
		name    string
		devices []*discovery.Device
		want    target
		wantErr bool
	}{
		{"none", nil, target{}, true},
		{"one", []*discovery.Device{a}, target{Name: a.Name, Host: a.IP, Port: 80}, false},
		{"many", []*discovery.Device{a, b}, target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			got, err := resolve(reg, "", scanResult(tt.devices...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
			if len(reg.Names()) != len(tt.devices) {
				t.Errorf("registry has %d devices, want %d", len(reg.Names()), len(tt.devices))
			}
		})
	}
}

func TestResolve_ScanError(t *testing.T) {
	devicePort = 0
	scan := func(time.Duration) ([]*discovery.Device, error) { return nil, errors.New("no multicast") }
	if _, err := resolve(registry.New(), "", scan); err == nil {
		t.Error("resolve() expected error")
	}
}

func TestRemember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	reg := registry.New()

	remember(reg, path, target{Host: "192.168.4.1", Port: 80}, nil)
	if len(reg.Names()) != 0 {
		t.Errorf("remember() stored an unnamed target")
	}

	remember(reg, path, target{Name: "ThermaBridge-3f2a", Host: "192.168.1.23", Port: 80}, func(d *registry.Device) {
		d.LastSSID = "Home"
	})
	loaded, err := registry.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	d := loaded.Get("ThermaBridge-3f2a")
	if d == nil {
		t.Fatal("device not saved")
	}
	if d.LastIP != "192.168.1.23" || d.LastSSID != "Home" {
		t.Errorf("saved device = %+v", d)
	}
}

func TestSnapshotFromEvent(t *testing.T) {
	now := time.Now()
	ev := server.Event{
		Time: now,
		Mode: "Operational",
		Status: server.StatusResponse{
			Configured: true,
			SSID:       "Home",
			WifiStatus: 3,
			IP:         "192.168.1.23",
		},
	}
	got := snapshotFromEvent(ev)
	if got.Mode != "Operational" || got.SSID != "Home" || got.WiFiStatus != 3 || got.IP != "192.168.1.23" || !got.Configured {
		t.Errorf("snapshotFromEvent() = %+v", got)
	}
	if !got.Time.Equal(now) {
		t.Errorf("Time = %v, want %v", got.Time, now)
	}
}

func TestRecordFields_ClampedHold(t *testing.T) {
	rec := config.Default()
	rec.SSID = "Home"
	rec.PSK = "secret"
	rec.ResetHoldSeconds = 0

	fields := recordFields(&rec)
	if fields[1].Value != "******" {
		t.Errorf("Password = %q, want masked", fields[1].Value)
	}
	if fields[3].Value != "0s (acts as 10s)" {
		t.Errorf("Reset hold = %q, want %q", fields[3].Value, "0s (acts as 10s)")
	}
}
