package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/thermabridge/internal/server"
)

// ErrStreamClosed is returned by Next once the device has closed the stream.
var ErrStreamClosed = errors.New("event stream closed")

// EventStream is an open /events subscription.
type EventStream struct {
	conn *websocket.Conn
}

// WatchEvents opens the device's /events websocket.
func (c *Client) WatchEvents(ctx context.Context) (*EventStream, error) {
	wsURL := "ws" + strings.TrimPrefix(c.BaseURL, "http") + "/events"

	dialer := websocket.Dialer{HandshakeTimeout: c.HTTPClient.Timeout}
	header := map[string][]string{"User-Agent": {c.UserAgent}}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, NewHTTPError(resp.StatusCode, "events stream unavailable (is the device operational?)")
		}
		return nil, NewNetworkError("failed to open events stream", c.host(), err)
	}
	return &EventStream{conn: conn}, nil
}

// Next blocks until the next event arrives.
func (s *EventStream) Next() (server.Event, error) {
	var ev server.Event
	if err := s.conn.ReadJSON(&ev); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
			errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return server.Event{}, ErrStreamClosed
		}
		return server.Event{}, err
	}
	return ev, nil
}

// Close sends a close frame and closes the connection.
func (s *EventStream) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}
