package main

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/bootstrap"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/gpio"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/settings"
)

func TestBuildRadio(t *testing.T) {
	s := settings.Default()
	s.Radio.AssociationDelay = time.Second
	s.Radio.Networks = []settings.SimNetwork{{SSID: "Home", PSK: "secret123", IP: "192.168.1.23"}}

	radio, err := buildRadio(s, clock.NewMock())
	if err != nil {
		t.Fatalf("buildRadio() error = %v", err)
	}
	sim, ok := radio.(*link.SimRadio)
	if !ok {
		t.Fatalf("buildRadio() = %T, want *link.SimRadio", radio)
	}
	if sim.AssociationDelay != time.Second {
		t.Errorf("AssociationDelay = %v, want 1s", sim.AssociationDelay)
	}

	s.Radio.Driver = settings.RadioNMCLI
	radio, err = buildRadio(s, clock.NewMock())
	if err != nil {
		t.Fatalf("buildRadio(nmcli) error = %v", err)
	}
	if _, ok := radio.(*link.NMCLIRadio); !ok {
		t.Errorf("buildRadio(nmcli) = %T, want *link.NMCLIRadio", radio)
	}

	s.Radio.Driver = "zigbee"
	if _, err := buildRadio(s, clock.NewMock()); err == nil {
		t.Error("buildRadio(zigbee) expected error")
	}
}

func TestBuildResetInput(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{settings.ResetNone, "gpio.None"},
		{settings.ResetSysfs, "*gpio.SysfsInput"},
		{settings.ResetFile, "*gpio.FileTrigger"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s := settings.Default()
			s.Reset.Driver = tt.driver
			in := buildResetInput(s)
			var got string
			switch in.(type) {
			case gpio.None:
				got = "gpio.None"
			case *gpio.SysfsInput:
				got = "*gpio.SysfsInput"
			case *gpio.FileTrigger:
				got = "*gpio.FileTrigger"
			}
			if got != tt.want {
				t.Errorf("buildResetInput(%s) = %T, want %s", tt.driver, in, tt.want)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	s := settings.Default()
	s.DataDir = t.TempDir()

	var out bytes.Buffer
	app, err := assemble(s, &out)
	if err != nil {
		t.Fatalf("assemble() error = %v", err)
	}
	if app.seq.Phase() != bootstrap.MountingStorage {
		t.Errorf("Phase() = %v, want %v", app.seq.Phase(), bootstrap.MountingStorage)
	}
	if app.device.Mode() != device.Unconfigured {
		t.Errorf("Mode() = %v, want %v", app.device.Mode(), device.Unconfigured)
	}
	if got := app.link.AccessPointAddr(); !got.Equal(net.IPv4(192, 168, 4, 1)) {
		t.Errorf("AccessPointAddr() = %v, want 192.168.4.1", got)
	}
	if out.Len() != 0 {
		t.Errorf("assemble() wrote %q before anything ran", out.String())
	}
}

func TestAssemble_BadRestartMode(t *testing.T) {
	s := settings.Default()
	s.DataDir = t.TempDir()
	s.Restart.Mode = "reboot"

	if _, err := assemble(s, nil); err == nil {
		t.Error("assemble() expected error for unknown restart mode")
	}
}
