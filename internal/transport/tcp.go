package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/fenwick-labs/rtcsig/internal/message"
)

// TCP is the bottom of the stack: it dials host:service and, once
// connected, exposes the raw net.Conn for a TLS or WS layer to build
// on top of.
type TCP struct {
	base

	host, service string
	dialer        net.Dialer

	mu   sync.Mutex
	conn net.Conn
}

// NewTCP creates a TCP transport that will dial host:service when
// Start is called.
func NewTCP(host, service string) *TCP {
	return &TCP{host: host, service: service}
}

// Start dials the remote address on a new goroutine. The state-change
// callback fires Connected on success or Failed on error.
func (t *TCP) Start() error {
	go func() {
		conn, err := t.dialer.DialContext(context.Background(), "tcp", net.JoinHostPort(t.host, t.service))
		if err != nil {
			t.fireState(StateFailed)
			return
		}
		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		t.fireState(StateConnected)
	}()
	return nil
}

// Stop closes the underlying connection, if any.
func (t *TCP) Stop() error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Send writes raw bytes to the connection. A WS layer stacked on top
// does not call it; it writes through Conn instead.
func (t *TCP) Send(m *message.Message) error {
	conn := t.Conn()
	if conn == nil {
		return fmt.Errorf("tcp transport: not connected")
	}
	_, err := conn.Write(m.Data)
	return err
}

// Conn returns the underlying net.Conn, or nil before Connected fires.
func (t *TCP) Conn() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}
