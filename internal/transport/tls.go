package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/fenwick-labs/rtcsig/internal/message"
)

// TLS wraps a lower connProvider layer (normally TCP) with a
// client-side TLS handshake. It exposes its own Conn so WS can stack
// on top of it exactly as it would on plain TCP.
type TLS struct {
	base

	lower    connProvider
	hostname string
	insecure bool

	mu   sync.Mutex
	conn *tls.Conn
}

// NewTLS creates a TLS layer on top of lower, verifying the peer
// certificate against hostname unless insecure is set.
func NewTLS(lower connProvider, hostname string, insecure bool) *TLS {
	return &TLS{lower: lower, hostname: hostname, insecure: insecure}
}

// Start performs the handshake on a new goroutine over the lower
// layer's connection. It does not wait for that connection: if the
// lower layer has none yet, it reports Failed.
func (t *TLS) Start() error {
	go func() {
		raw := t.lower.Conn()
		if raw == nil {
			t.fireState(StateFailed)
			return
		}
		conn := tls.Client(raw, &tls.Config{
			ServerName:         t.hostname,
			InsecureSkipVerify: t.insecure,
		})
		if err := conn.HandshakeContext(context.Background()); err != nil {
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

// Stop closes the TLS connection, which also closes the underlying
// raw connection.
func (t *TLS) Stop() error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Send writes raw bytes over the encrypted connection.
func (t *TLS) Send(m *message.Message) error {
	conn := t.Conn()
	if conn == nil {
		return fmt.Errorf("tls transport: not connected")
	}
	_, err := conn.Write(m.Data)
	return err
}

// Conn returns the underlying *tls.Conn as a net.Conn, or nil before
// Connected fires.
func (t *TLS) Conn() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	return t.conn
}
