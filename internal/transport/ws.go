package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/fenwick-labs/rtcsig/internal/message"
	"github.com/gorilla/websocket"
)

const (
	wsReadBufferSize  = 4096
	wsWriteBufferSize = 4096
)

// WS performs the client WebSocket handshake over an already-connected
// lower layer (TCP or TLS) and frames messages on top of it.
type WS struct {
	base

	lower  connProvider
	scheme string
	host   string
	path   string
	header http.Header

	Incoming message.Callback[*message.Message]

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewWS creates a WS layer on top of lower. scheme is "ws" or "wss",
// used only to build the handshake request line — the TLS work, if
// any, has already happened in the lower layer.
func NewWS(lower connProvider, scheme, host, path string) *WS {
	return &WS{lower: lower, scheme: scheme, host: host, path: path, header: http.Header{}}
}

// Start performs the handshake on a new goroutine, then begins
// pumping inbound frames into Incoming.
func (w *WS) Start() error {
	go func() {
		raw := w.lower.Conn()
		if raw == nil {
			w.fireState(StateFailed)
			return
		}
		u := &url.URL{Scheme: w.scheme, Host: w.host, Path: w.path}
		conn, _, err := websocket.NewClient(raw, u, w.header, wsReadBufferSize, wsWriteBufferSize)
		if err != nil {
			w.fireState(StateFailed)
			return
		}
		w.writeMu.Lock()
		w.conn = conn
		w.writeMu.Unlock()
		w.fireState(StateConnected)
		w.readPump(conn)
	}()
	return nil
}

// readPump loops reading frames until the connection closes, handing
// each text or binary frame to Incoming. Control frames are left to
// gorilla's default ping/pong/close handlers and never forwarded.
func (w *WS) readPump(conn *websocket.Conn) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			w.fireState(StateDisconnected)
			return
		}
		switch kind {
		case websocket.TextMessage:
			w.Incoming.Invoke(message.NewString(string(data)))
		case websocket.BinaryMessage:
			w.Incoming.Invoke(message.NewBinary(data))
		}
	}
}

// Send frames m according to its Kind and writes it to the connection.
func (w *WS) Send(m *message.Message) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("ws transport: not connected")
	}
	kind := websocket.BinaryMessage
	if m.IsText() {
		kind = websocket.TextMessage
	}
	return w.conn.WriteMessage(kind, m.Data)
}

// Stop closes the WebSocket connection, which also closes the
// underlying lower-layer connection.
func (w *WS) Stop() error {
	w.writeMu.Lock()
	conn := w.conn
	w.writeMu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
