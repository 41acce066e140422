package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = text
	return e
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()
	product := ProductKey + "=" + ProductValue

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name:     "device with IPv4",
			entry:    entry("Kitchen", "thermabridge-3f2a.local.", 80, []net.IP{net.ParseIP("192.168.1.23")}, nil, product, "version=v1.2.0"),
			wantName: "Kitchen",
			wantIP:   "192.168.1.23",
			wantPort: 80,
		},
		{
			name:     "device with custom port",
			entry:    entry("Attic", "attic.local.", 8080, []net.IP{net.ParseIP("10.0.0.5")}, nil, product),
			wantName: "Attic",
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name:     "no port defaults to 80",
			entry:    entry("Hall", "hall.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil, product),
			wantName: "Hall",
			wantIP:   "172.16.0.1",
			wantPort: 80,
		},
		{
			name:    "other HTTP service",
			entry:   entry("Printer", "printer.local.", 80, []net.IP{net.ParseIP("192.168.1.9")}, nil, "path=/"),
			wantNil: true,
		},
		{
			name:    "different product",
			entry:   entry("Valve", "valve.local.", 80, []net.IP{net.ParseIP("192.168.1.9")}, nil, "product=shelly"),
			wantNil: true,
		},
		{
			name:    "no IP address",
			entry:   entry("Kitchen", "kitchen.local.", 80, nil, nil, product),
			wantNil: true,
		},
		{
			name:     "IPv6 only",
			entry:    entry("Kitchen", "kitchen.local.", 80, nil, []net.IP{net.ParseIP("fe80::1")}, product),
			wantName: "Kitchen",
			wantIP:   "fe80::1",
			wantPort: 80,
		},
		{
			name:     "both families prefers IPv4",
			entry:    entry("Kitchen", "kitchen.local.", 80, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}, product),
			wantName: "Kitchen",
			wantIP:   "192.168.1.50",
			wantPort: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}

			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil device")
			}
			if device.Name != tt.wantName {
				t.Errorf("device.Name = %v, want %v", device.Name, tt.wantName)
			}
			if device.IP != tt.wantIP {
				t.Errorf("device.IP = %v, want %v", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("device.Port = %v, want %v", device.Port, tt.wantPort)
			}
			if device.Hostname != tt.entry.HostName {
				t.Errorf("device.Hostname = %v, want %v", device.Hostname, tt.entry.HostName)
			}
			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"product=thermabridge", "version=v1.0", "flag", "path=/a=b"})

	want := map[string]string{
		"product": "thermabridge",
		"version": "v1.0",
		"flag":    "",
		"path":    "/a=b",
	}
	if len(got) != len(want) {
		t.Errorf("parseTXT() has %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestTXTRecordsRoundTrip(t *testing.T) {
	e := entry("Kitchen", "kitchen.local.", 80, []net.IP{net.ParseIP("192.168.1.23")}, nil, TXTRecords("v1.4.0")...)

	device := NewScanner().parseServiceEntry(e)
	if device == nil {
		t.Fatal("a published record must be recognised by the scanner")
	}
	if device.Version != "v1.4.0" {
		t.Errorf("device.Version = %q, want v1.4.0", device.Version)
	}
	if device.GetMetadata("path") != "/status" {
		t.Errorf("path = %q, want /status", device.GetMetadata("path"))
	}
}
