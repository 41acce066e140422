package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/muurk/thermabridge/internal/captive"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Submission is a credential set accepted by the portal and already saved.
type Submission struct {
	Record   config.Record
	Received time.Time
}

// PortalConfig configures the provisioning portal.
type PortalConfig struct {
	HTTP Config
	// DNSAddr is where the captive DNS responder listens. Empty disables it.
	DNSAddr string
}

// Portal is the captive provisioning surface.
type Portal struct {
	deps Deps
	cfg  PortalConfig
	http *httpServer

	apIP atomic.String
	dns  *captive.Responder

	subMu       sync.Mutex
	submissions chan Submission
}

// NewPortal creates a portal. Nothing listens until Start.
func NewPortal(cfg PortalConfig, deps Deps) *Portal {
	return &Portal{
		deps:        deps,
		cfg:         cfg,
		http:        newHTTPServer("portal", cfg.HTTP),
		submissions: make(chan Submission, 1),
	}
}

// Router returns the portal routes. Tests drive it with httptest.
func (p *Portal) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(requestLogger("portal"))

	mux.Get("/", serveAsset("index.html", "text/html; charset=utf-8"))
	mux.Get("/app.js", serveAsset("app.js", "application/javascript"))
	mux.Get("/style.css", serveAsset("style.css", "text/css"))
	mux.Post("/save", p.handleSave)

	mux.Get("/status", p.deps.handleStatus)
	mux.Get("/health", p.deps.handleHealth)
	mux.Get("/config", p.deps.handleConfig)
	mux.Get("/config.json", p.deps.handleConfig)

	mux.NotFound(p.handleNotFound)
	return mux
}

// Start brings up the HTTP server and, if configured, the captive DNS
// responder answering with apIP. Starting an already running portal only
// updates the redirect address.
func (p *Portal) Start(apIP net.IP) error {
	p.apIP.Store(apIP.String())

	if p.http.running() {
		return nil
	}

	if err := p.http.start(p.Router()); err != nil {
		return err
	}

	if p.cfg.DNSAddr != "" {
		p.dns = captive.NewResponder(apIP)
		if err := p.dns.Start(p.cfg.DNSAddr); err != nil {
			// The page is still reachable by address without DNS.
			logging.Error("Captive DNS unavailable", zap.Error(err))
			p.dns = nil
		}
	}
	return nil
}

// Addr returns the bound HTTP address.
func (p *Portal) Addr() string {
	return p.http.addr()
}

// Submissions delivers accepted submissions to the control loop.
func (p *Portal) Submissions() <-chan Submission {
	return p.submissions
}

// Shutdown stops the HTTP server and the DNS responder.
func (p *Portal) Shutdown(ctx context.Context) error {
	var errs []error
	if p.dns != nil {
		errs = append(errs, p.dns.Shutdown(ctx))
		p.dns = nil
	}
	errs = append(errs, p.http.shutdown(ctx))
	return errors.Join(errs...)
}

func (p *Portal) handleNotFound(w http.ResponseWriter, r *http.Request) {
	target := "http://" + p.apIP.Load()
	w.Header().Set("Location", target)
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusFound)
}

func (p *Portal) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, badRequest("malformed form"))
		return
	}

	ssid := r.PostForm.Get("ssid")
	if strings.TrimSpace(ssid) == "" {
		writeError(w, r, badRequest("SSID required"))
		return
	}

	// Fields the form does not carry keep their stored values.
	rec, err := p.deps.Store.Snapshot()
	if err != nil {
		rec = config.Default()
	}
	rec.SSID = ssid
	rec.PSK = r.PostForm.Get("psk")
	if devname := strings.TrimSpace(r.PostForm.Get("devname")); devname != "" {
		rec.DevName = devname
	} else if rec.DevName == "" {
		rec.DevName = config.DefaultDeviceName
	}

	if err := p.deps.Store.Save(rec); err != nil {
		writeError(w, r, internalError("Failed to save config", err))
		return
	}

	logging.Info("Provisioning credentials saved",
		zap.String("ssid", rec.SSID),
		zap.String("devname", rec.DevName),
	)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "<html><body><h3>Saved. Attempting to connect to %s ...</h3>"+
		"<p>If successful, the device will reboot.</p></body></html>", html.EscapeString(rec.SSID))

	p.submit(Submission{Record: rec, Received: p.deps.clock().Now()})
}

// submit hands s to the control loop, replacing any pending submission.
func (p *Portal) submit(s Submission) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	select {
	case <-p.submissions:
		logging.Info("Replacing pending provisioning submission")
	default:
	}
	p.submissions <- s
}
