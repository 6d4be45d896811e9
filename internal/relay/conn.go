package relay

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is the minimal connection surface the relay pumps need. Both the
// browser and the upstream connection satisfy it, and tests swap in
// in-memory fakes.
type Socket interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	WriteJSON(v any) error
	Close() error
}

// wsSocket wraps a gorilla connection with a write mutex. Each connection is
// written to by both relay pumps, and gorilla forbids concurrent writers.
type wsSocket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewSocket(conn *websocket.Conn) Socket {
	return &wsSocket{conn: conn}
}

func (s *wsSocket) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s *wsSocket) WriteMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSocket) WriteJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *wsSocket) Close() error {
	return s.conn.Close()
}

// UpstreamDialer opens a websocket to the realtime AI endpoint.
type UpstreamDialer interface {
	Dial(ctx context.Context) (Socket, error)
}

// RealtimeDialer dials the OpenAI-compatible realtime endpoint.
type RealtimeDialer struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func (d *RealtimeDialer) Dial(ctx context.Context) (Socket, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	url := d.URL
	if d.Model != "" {
		url = fmt.Sprintf("%s?model=%s", d.URL, d.Model)
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime endpoint: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return NewSocket(conn), nil
}
