package link

import (
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func newTestController(networks ...SimNetwork) (*Controller, *SimRadio, *clock.Mock) {
	clk := clock.NewMock()
	radio := NewSimRadio(clk, networks...)
	return NewController(radio, nil), radio, clk
}

func TestController_ClientConnects(t *testing.T) {
	c, _, clk := newTestController(SimNetwork{SSID: "Home", PSK: "secret123", IP: net.IPv4(192, 168, 1, 23)})

	if err := c.BeginClientConnection("Home", "secret123"); err != nil {
		t.Fatalf("BeginClientConnection() error = %v", err)
	}
	if got := c.Status(); got != StatusConnecting {
		t.Errorf("Status() = %v, want Connecting", got)
	}
	if got := c.LocalIP(); got != "" {
		t.Errorf("LocalIP() while connecting = %q, want empty", got)
	}

	clk.Add(DefaultAssociationDelay)

	if got := c.Status(); got != StatusConnected {
		t.Errorf("Status() = %v, want Connected", got)
	}
	if got := c.LocalIP(); got != "192.168.1.23" {
		t.Errorf("LocalIP() = %q, want 192.168.1.23", got)
	}
	if c.Role() != RoleClient || c.Network() != "Home" {
		t.Errorf("Role()/Network() = %v/%q, want client/Home", c.Role(), c.Network())
	}
}

func TestController_WrongPSKFails(t *testing.T) {
	c, _, clk := newTestController(SimNetwork{SSID: "Home", PSK: "secret123"})

	_ = c.BeginClientConnection("Home", "wrong")
	clk.Add(DefaultAssociationDelay)

	if got := c.Status(); got != StatusFailed {
		t.Errorf("Status() = %v, want Failed", got)
	}
}

func TestController_UnknownNetworkKeepsConnecting(t *testing.T) {
	c, _, clk := newTestController()

	_ = c.BeginClientConnection("Nowhere", "x")
	clk.Add(time.Minute)

	if got := c.Status(); got != StatusConnecting {
		t.Errorf("Status() = %v, want Connecting", got)
	}
}

func TestController_RoleSwitchTearsDown(t *testing.T) {
	c, radio, clk := newTestController(SimNetwork{SSID: "Home"})

	_ = c.BeginClientConnection("Home", "")
	clk.Add(DefaultAssociationDelay)

	ip, err := c.BeginAccessPoint("ThermaBridge-3F2A")
	if err != nil {
		t.Fatalf("BeginAccessPoint() error = %v", err)
	}
	if !ip.Equal(DefaultAccessPointAddr) {
		t.Errorf("BeginAccessPoint() = %v, want %v", ip, DefaultAccessPointAddr)
	}
	if radio.Stops != 2 {
		t.Errorf("radio stopped %d times, want 2", radio.Stops)
	}
	if got := c.Status(); got != StatusIdle {
		t.Errorf("Status() in AP role = %v, want Idle", got)
	}
	if got := c.LocalIP(); got != "" {
		t.Errorf("LocalIP() in AP role = %q, want empty", got)
	}
	name, addr := radio.AccessPoint()
	if name != "ThermaBridge-3F2A" || !addr.Equal(DefaultAccessPointAddr) {
		t.Errorf("radio AP = %q %v", name, addr)
	}
}

func TestController_AccessPointFailure(t *testing.T) {
	c, radio, _ := newTestController()
	radio.FailAccessPoint = true

	if _, err := c.BeginAccessPoint("x"); err == nil {
		t.Fatal("BeginAccessPoint() should fail")
	}
	if c.Role() != RoleNone {
		t.Errorf("Role() = %v, want none", c.Role())
	}
}

func TestController_EmptySSIDRejected(t *testing.T) {
	c, _, _ := newTestController()

	err := c.BeginClientConnection("", "")
	if !IsRejected(err) {
		t.Errorf("BeginClientConnection(\"\") error = %v, want rejected", err)
	}
}

func TestController_CustomAccessPointAddr(t *testing.T) {
	radio := NewSimRadio(clock.NewMock())
	c := NewController(radio, net.IPv4(10, 42, 0, 1))

	ip, err := c.BeginAccessPoint("x")
	if err != nil {
		t.Fatalf("BeginAccessPoint() error = %v", err)
	}
	if ip.String() != "10.42.0.1" {
		t.Errorf("BeginAccessPoint() = %v, want 10.42.0.1", ip)
	}
}

func TestAPName(t *testing.T) {
	tests := []struct {
		product string
		mac     net.HardwareAddr
		want    string
	}{
		{"ThermaBridge", net.HardwareAddr{0x24, 0x6f, 0x28, 0xaa, 0x3f, 0x2a}, "ThermaBridge-3F2A"},
		{"ThermaBridge", net.HardwareAddr{0, 0, 0, 0, 0, 0x0b}, "ThermaBridge-000B"},
		{"ThermaBridge", nil, "ThermaBridge"},
	}

	for _, tt := range tests {
		if got := APName(tt.product, tt.mac); got != tt.want {
			t.Errorf("APName(%q, %v) = %q, want %q", tt.product, tt.mac, got, tt.want)
		}
	}
}

func TestStatus_WireValues(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusIdle, 0},
		{StatusConnected, 3},
		{StatusFailed, 4},
		{StatusConnecting, 6},
	}

	for _, tt := range tests {
		if int(tt.status) != tt.want {
			t.Errorf("%v = %d, want %d", tt.status, int(tt.status), tt.want)
		}
	}
}

func TestConnectError(t *testing.T) {
	err := NewTimeoutError("Home", 15*time.Second)

	if !IsTimeout(err) || IsRejected(err) {
		t.Errorf("classification of %v is wrong", err)
	}
	if got := err.Error(); got != `Connection Timeout for "Home" after 15s` {
		t.Errorf("Error() = %q", got)
	}
}
