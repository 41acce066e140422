package server

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// ConfigStore is the read side of the config store, plus Save and Snapshot
// for the portal.
type ConfigStore interface {
	Load() (*config.Record, error)
	Snapshot() (config.Record, error)
	ReadRaw() ([]byte, error)
	Save(config.Record) error
}

// LinkState is what the handlers need from the link controller.
type LinkState interface {
	Status() link.Status
	LocalIP() string
}

// StatusResponse is the /status document. Field order is part of the wire
// format.
type StatusResponse struct {
	Configured bool   `json:"configured"`
	SSID       string `json:"ssid"`
	PSKMasked  string `json:"psk_masked"`
	DevName    string `json:"devname"`
	WifiStatus int    `json:"wifi_status"`
	IP         string `json:"ip"`
}

// HealthResponse is the /health document.
type HealthResponse struct {
	UptimeS  int64  `json:"uptime_s"`
	FreeHeap uint64 `json:"free_heap"`
}

// Deps are the collaborators shared by both servers.
type Deps struct {
	Store  ConfigStore
	Link   LinkState
	Device *device.Context
	Clock  clock.Clock
}

func (d Deps) clock() clock.Clock {
	if d.Clock == nil {
		return clock.New()
	}
	return d.Clock
}

// BuildStatus assembles a fresh /status document.
func BuildStatus(store ConfigStore, ls LinkState) StatusResponse {
	resp := StatusResponse{}

	if rec, err := store.Load(); err == nil && rec != nil {
		resp.Configured = true
		resp.SSID = rec.SSID
		resp.PSKMasked = rec.MaskedPSK()
		resp.DevName = rec.DevName
	}

	status := ls.Status()
	resp.WifiStatus = int(status)
	if status == link.StatusConnected {
		resp.IP = ls.LocalIP()
	}
	return resp
}

// freeHeap reports heap memory the runtime holds but is not using.
func freeHeap() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapSys - ms.HeapInuse
}

func (d Deps) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BuildStatus(d.Store, d.Link))
}

func (d Deps) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := d.Device.Uptime(d.clock().Now())
	writeJSON(w, http.StatusOK, HealthResponse{
		UptimeS:  int64(uptime.Seconds()),
		FreeHeap: freeHeap(),
	})
}

func (d Deps) handleConfig(w http.ResponseWriter, r *http.Request) {
	data, err := d.Store.ReadRaw()
	if err != nil {
		writeError(w, r, configReadError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write JSON response", zap.Error(err))
	}
}
