package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/muurk/thermabridge/internal/ota"
	"github.com/muurk/thermabridge/internal/storage"
	"github.com/muurk/thermabridge/internal/version"
)

// BootHistory is the read side of the preferences namespace.
type BootHistory interface {
	Load() (storage.BootRecord, error)
}

// UpdateListener reports the remote-update listener state.
type UpdateListener interface {
	Info() ota.Info
}

// DiagnosticsConfig configures the operational server.
type DiagnosticsConfig struct {
	HTTP Config
	// EventsInterval is how often /events pushes a status snapshot.
	EventsInterval time.Duration
}

// InfoResponse is the /info document.
type InfoResponse struct {
	Build         version.Info `json:"build"`
	Mode          string       `json:"mode"`
	Hostname      string       `json:"hostname"`
	BootCount     int          `json:"boot_count"`
	LastIP        string       `json:"last_ip"`
	LastSSID      string       `json:"last_ssid"`
	LastConnected *time.Time   `json:"last_connected,omitempty"`
	Update        ota.Info     `json:"update_listener"`
	UptimeS       int64        `json:"uptime_s"`
}

// Diagnostics is the read-only operational server.
type Diagnostics struct {
	deps    Deps
	cfg     DiagnosticsConfig
	prefs   BootHistory
	updates UpdateListener
	http    *httpServer
	events  *eventHub
}

// NewDiagnostics creates the server. prefs and updates may be nil.
func NewDiagnostics(cfg DiagnosticsConfig, deps Deps, prefs BootHistory, updates UpdateListener) *Diagnostics {
	if cfg.EventsInterval <= 0 {
		cfg.EventsInterval = 2 * time.Second
	}
	d := &Diagnostics{
		deps:    deps,
		cfg:     cfg,
		prefs:   prefs,
		updates: updates,
		http:    newHTTPServer("diagnostics", cfg.HTTP),
	}
	d.events = newEventHub(deps, cfg.EventsInterval)
	return d
}

// Router returns the diagnostics routes.
func (d *Diagnostics) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.With(requestLogger("diagnostics")).Get("/status", d.deps.handleStatus)
	mux.With(requestLogger("diagnostics")).Get("/health", d.deps.handleHealth)
	mux.With(requestLogger("diagnostics")).Get("/config", d.deps.handleConfig)
	mux.With(requestLogger("diagnostics")).Get("/config.json", d.deps.handleConfig)
	mux.With(requestLogger("diagnostics")).Get("/info", d.handleInfo)

	// The websocket handler hijacks the connection, so it is not wrapped.
	mux.Get("/events", d.events.handle)
	return mux
}

// Start serves the diagnostics routes in the background.
func (d *Diagnostics) Start() error {
	return d.http.start(d.Router())
}

// Addr returns the bound address.
func (d *Diagnostics) Addr() string {
	return d.http.addr()
}

// Shutdown closes every event stream and stops the server.
func (d *Diagnostics) Shutdown(ctx context.Context) error {
	d.events.closeAll()
	return d.http.shutdown(ctx)
}

func (d *Diagnostics) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		Build:   version.Current(),
		Mode:    d.deps.Device.Mode().String(),
		UptimeS: int64(d.deps.Device.Uptime(d.deps.clock().Now()).Seconds()),
	}
	if rec := d.deps.Device.Record(); rec != nil {
		resp.Hostname = rec.DevName
	}
	if d.prefs != nil {
		if boot, err := d.prefs.Load(); err == nil {
			resp.BootCount = boot.BootCount
			resp.LastIP = boot.LastIP
			resp.LastSSID = boot.LastSSID
			if !boot.LastConnected.IsZero() {
				t := boot.LastConnected
				resp.LastConnected = &t
			}
		}
	}
	if d.updates != nil {
		resp.Update = d.updates.Info()
	}
	writeJSON(w, http.StatusOK, resp)
}
