package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/ota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperationalFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)

	rec := config.Default()
	rec.SSID = "Home"
	rec.PSK = "secret123"
	rec.DevName = "Dev1"
	rec.ResetHoldSeconds = 0
	require.NoError(t, f.store.Save(rec))
	f.device.SetRecord(&rec)

	require.NoError(t, f.link.BeginClientConnection("Home", "secret123"))
	f.clock.Add(link.DefaultAssociationDelay)
	require.Equal(t, link.StatusConnected, f.link.Status())

	f.device.SetMode(device.Operational)
	return f
}

func TestDiagnostics_Status(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), f.prefs, nil)

	rr := get(t, d.Router(), "/status")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t,
		`{"configured":true,"ssid":"Home","psk_masked":"*********","devname":"Dev1","wifi_status":3,"ip":"192.168.1.23"}`,
		strings.TrimSpace(rr.Body.String()))
}

func TestDiagnostics_StatusRereadsStore(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), nil, nil)
	h := d.Router()

	require.NoError(t, f.store.Erase())
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(get(t, h, "/status").Body.Bytes(), &resp))
	assert.False(t, resp.Configured)
	assert.Equal(t, "192.168.1.23", resp.IP)
}

func TestDiagnostics_ConfigShowsRawHold(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), nil, nil)

	rr := get(t, d.Router(), "/config.json")

	require.Equal(t, http.StatusOK, rr.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, float64(0), doc["reset_hold_seconds"])
	assert.Equal(t, "secret123", doc["psk"])
}

func TestDiagnostics_Health(t *testing.T) {
	f := newOperationalFixture(t)
	f.clock.Add(95 * time.Second)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), nil, nil)

	var resp HealthResponse
	rr := get(t, d.Router(), "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// The association delay plus the extra 95 seconds.
	assert.Equal(t, int64(97), resp.UptimeS)
}

func TestDiagnostics_Info(t *testing.T) {
	f := newOperationalFixture(t)
	_, err := f.prefs.RecordBoot()
	require.NoError(t, err)
	require.NoError(t, f.prefs.RecordConnection("Home", "192.168.1.23", f.clock.Now()))

	updates := ota.NewListener()
	require.NoError(t, updates.Arm("Dev1", "hunter2"))

	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), f.prefs, updates)
	rr := get(t, d.Router(), "/info")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Operational", resp.Mode)
	assert.Equal(t, "Dev1", resp.Hostname)
	assert.Equal(t, 1, resp.BootCount)
	assert.Equal(t, "192.168.1.23", resp.LastIP)
	assert.Equal(t, "Home", resp.LastSSID)
	require.NotNil(t, resp.LastConnected)
	assert.True(t, resp.Update.Armed)
	assert.True(t, resp.Update.Authenticated)
	assert.NotEmpty(t, resp.Build.Version)
}

func TestDiagnostics_NoSaveEndpoint(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), nil, nil)

	rr := httptest.NewRecorder()
	d.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/save", strings.NewReader("ssid=x")))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDiagnostics_Events(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig(), EventsInterval: 20 * time.Millisecond}, f.deps(), nil, nil)

	srv := httptest.NewServer(d.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < 2; i++ {
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, "Operational", ev.Mode)
		assert.True(t, ev.Status.Configured)
		assert.Equal(t, 3, ev.Status.WifiStatus)
	}
}

func TestDiagnostics_StartShutdown(t *testing.T) {
	f := newOperationalFixture(t)
	d := NewDiagnostics(DiagnosticsConfig{HTTP: testHTTPConfig()}, f.deps(), nil, nil)

	require.NoError(t, d.Start())
	assert.Error(t, d.Start(), "second Start must fail")

	resp, err := http.Get("http://" + d.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	assert.Empty(t, d.Addr())
	assert.NoError(t, d.Shutdown(ctx), "shutting down twice is a no-op")
}
