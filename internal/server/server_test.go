package server

import (
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/storage"
)

type fixture struct {
	vol    *storage.MemVolume
	store  *config.Store
	prefs  *storage.Prefs
	radio  *link.SimRadio
	link   *link.Controller
	device *device.Context
	clock  *clock.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	vol := storage.NewMemVolume()
	radio := link.NewSimRadio(clk, link.SimNetwork{SSID: "Home", PSK: "secret123", IP: net.IPv4(192, 168, 1, 23)})

	return &fixture{
		vol:    vol,
		store:  config.NewStore(vol),
		prefs:  storage.NewPrefs(vol),
		radio:  radio,
		link:   link.NewController(radio, nil),
		device: device.NewContext(clk.Now()),
		clock:  clk,
	}
}

func (f *fixture) deps() Deps {
	return Deps{Store: f.store, Link: f.link, Device: f.device, Clock: f.clock}
}

func testHTTPConfig() Config {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	return cfg
}
