package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	rec := Default()

	if rec.DevName != DefaultDeviceName {
		t.Errorf("DevName = %q, want %q", rec.DevName, DefaultDeviceName)
	}
	if rec.ResetHoldSeconds != 10 {
		t.Errorf("ResetHoldSeconds = %d, want 10", rec.ResetHoldSeconds)
	}
	if !rec.MDNSEnable {
		t.Error("MDNSEnable should default to true")
	}
	if rec.Usable() {
		t.Error("default record has no SSID and must not be usable")
	}
}

func TestRecord_Usable(t *testing.T) {
	tests := []struct {
		ssid string
		want bool
	}{
		{"", false},
		{" ", false},
		{"\t\n  \r", false},
		{"Home", true},
		{"  Home  ", true},
	}

	for _, tt := range tests {
		rec := Record{SSID: tt.ssid}
		if got := rec.Usable(); got != tt.want {
			t.Errorf("Record{SSID: %q}.Usable() = %v, want %v", tt.ssid, got, tt.want)
		}
	}
}

func TestRecord_ResetHold(t *testing.T) {
	tests := []struct {
		name string
		secs int
		want time.Duration
	}{
		{"configured", 5, 5 * time.Second},
		{"zero clamps to default", 0, 10 * time.Second},
		{"negative clamps to default", -3, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{ResetHoldSeconds: tt.secs}
			if got := rec.ResetHold(); got != tt.want {
				t.Errorf("ResetHold() = %v, want %v", got, tt.want)
			}
			if rec.ResetHoldSeconds != tt.secs {
				t.Error("ResetHold() must not modify the raw value")
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"secret123", "*********"},
		{"pässwörd", "********"},
	}

	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
