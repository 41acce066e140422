package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Event is one message on the /events stream.
type Event struct {
	Time   time.Time      `json:"time"`
	Mode   string         `json:"mode"`
	Status StatusResponse `json:"status"`
}

// eventHub serves /events and tracks open streams so shutdown can close
// them.
type eventHub struct {
	deps     Deps
	interval time.Duration
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newEventHub(deps Deps, interval time.Duration) *eventHub {
	return &eventHub{
		deps:     deps,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
			// The device has no web origin of its own to protect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *eventHub) snapshot() Event {
	return Event{
		Time:   h.deps.clock().Now().UTC(),
		Mode:   h.deps.Device.Mode().String(),
		Status: BuildStatus(h.deps.Store, h.deps.Link),
	}
}

func (h *eventHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Debug("Event stream upgrade failed", zap.Error(err))
		return
	}

	remoteAddr := r.RemoteAddr
	logging.LogConnection(remoteAddr, "events_opened")

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "events_closed")
	}()

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, done)
}

// readPump discards client messages and keeps the read deadline fresh. It
// closes done when the peer goes away.
func (h *eventHub) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) writePump(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	send := func() bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(h.snapshot()); err != nil {
			logging.Debug("Event stream write failed", zap.Error(err))
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !send() {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeAll sends a close frame on every open stream.
func (h *eventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	for conn := range h.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
}
