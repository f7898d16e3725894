// Package wsclient implements a WebSocket client as a state machine
// composed bottom-up from TCP, optional TLS, and WS transport layers.
// Opening a socket starts TCP; TLS (for wss) and WS are started in
// turn as each lower layer reports itself Connected, and the socket
// becomes Open only once the WS handshake completes.
package wsclient

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/fenwick-labs/rtcsig/internal/message"
	"github.com/fenwick-labs/rtcsig/internal/threadpool"
	"github.com/fenwick-labs/rtcsig/internal/transport"
	"github.com/fenwick-labs/rtcsig/internal/util"
)

// State is a WebSocket's position in its connect/close lifecycle.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// WebSocket is a client connection built from a TCP, optional TLS,
// and WS transport layer. The zero value is not usable; create one
// with New.
type WebSocket struct {
	cfg  Config
	pool *threadpool.Pool

	state atomic.Int32

	scheme, host, hostname, service, path string

	initMu sync.Mutex
	tcp    atomic.Pointer[transport.TCP]
	tls    atomic.Pointer[transport.TLS]
	ws     atomic.Pointer[transport.WS]

	closeOnce atomic.Pointer[sync.Once]

	recvQueue *message.Queue

	onOpen      message.Callback0
	onClosed    message.Callback0
	onError     message.Callback[string]
	onAvailable message.Callback[int]
}

// New creates a WebSocket in the Closed state, ready for Open.
func New(cfg Config) *WebSocket {
	pool := threadpool.Instance()
	if cfg.ThreadPoolSize > 0 {
		pool = threadpool.New(cfg.ThreadPoolSize)
	}
	return &WebSocket{
		cfg:       cfg,
		pool:      pool,
		recvQueue: message.NewQueue(message.DefaultQueueCapacity),
	}
}

func (w *WebSocket) State() State { return State(w.state.Load()) }
func (w *WebSocket) IsOpen() bool { return w.State() == StateOpen }
func (w *WebSocket) IsClosed() bool { return w.State() == StateClosed }

func (w *WebSocket) transition(from, to State) bool {
	return w.state.CompareAndSwap(int32(from), int32(to))
}

// OnOpen registers the callback fired when the handshake completes.
func (w *WebSocket) OnOpen(fn func()) { w.onOpen.Store(fn) }

// OnClosed registers the callback fired exactly once per Open
// lifetime, when teardown detaches the transports (before they are
// stopped on the thread pool).
func (w *WebSocket) OnClosed(fn func()) { w.onClosed.Store(fn) }

// OnError registers the callback fired with a layer-specific message
// whenever a transport reports Failed.
func (w *WebSocket) OnError(fn func(reason string)) { w.onError.Store(fn) }

// OnMessage registers the callback fired with the new queue depth
// every time a message is pushed onto the receive queue.
func (w *WebSocket) OnMessage(fn func(amount int)) { w.onAvailable.Store(fn) }

// Open begins connecting to a ws:// or wss:// URL. It fails unless
// the socket is currently Closed.
func (w *WebSocket) Open(rawURL string) error {
	if !w.transition(StateClosed, StateConnecting) {
		return fmt.Errorf("%w: open called while %v", ErrInvalidState, w.State())
	}

	scheme, hostname, service, path, err := parseURL(rawURL)
	if err != nil {
		w.state.Store(int32(StateClosed))
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	w.scheme, w.hostname, w.service, w.path = scheme, hostname, service, path
	w.host = net.JoinHostPort(hostname, service)
	w.closeOnce.Store(&sync.Once{})

	if err := w.initTcpTransport(); err != nil {
		util.LogError("wsclient: tcp init: %v", err)
		w.onError.Invoke(fmt.Sprintf("tcp transport init failed: %v", err))
		w.remoteClose()
		return fmt.Errorf("%w: %v", ErrTransportInit, err)
	}
	return nil
}

// initTcpTransport, initTlsTransport, and initWsTransport share a
// pattern: return the existing slot if already set, construct and
// publish the transport, then re-check that the socket wasn't closed
// concurrently before starting it — a transport created just as a
// close races in must not be allowed to outlive that close.
func (w *WebSocket) initTcpTransport() error {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	if w.tcp.Load() != nil {
		return nil
	}

	t := transport.NewTCP(w.hostname, w.service)
	t.OnStateChange(w.onTCPStateChange)
	w.tcp.Store(t)

	if w.State() == StateClosed {
		w.tcp.Store(nil)
		return fmt.Errorf("socket closed during tcp init")
	}
	return t.Start()
}

func (w *WebSocket) initTlsTransport() error {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	if w.tls.Load() != nil {
		return nil
	}

	lower := w.tcp.Load()
	if lower == nil {
		return fmt.Errorf("tls init attempted before tcp transport exists")
	}

	t := transport.NewTLS(lower, w.hostname, w.cfg.InsecureSkipVerify)
	t.OnStateChange(w.onTLSStateChange)
	w.tls.Store(t)

	if w.State() == StateClosed {
		w.tls.Store(nil)
		return fmt.Errorf("socket closed during tls init")
	}
	return t.Start()
}

func (w *WebSocket) initWsTransport() error {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	if w.ws.Load() != nil {
		return nil
	}

	var t *transport.WS
	switch {
	case w.tls.Load() != nil:
		t = transport.NewWS(w.tls.Load(), w.scheme, w.host, w.path)
	case w.tcp.Load() != nil:
		t = transport.NewWS(w.tcp.Load(), w.scheme, w.host, w.path)
	default:
		return fmt.Errorf("ws init attempted before a lower transport exists")
	}

	t.OnStateChange(w.onWSStateChange)
	t.Incoming.Store(w.incoming)
	w.ws.Store(t)

	if w.State() == StateClosed {
		w.ws.Store(nil)
		return fmt.Errorf("socket closed during ws init")
	}
	return t.Start()
}

func (w *WebSocket) onTCPStateChange(s transport.State) {
	switch s {
	case transport.StateConnected:
		var err error
		if w.scheme == "wss" {
			err = w.initTlsTransport()
		} else {
			err = w.initWsTransport()
		}
		if err != nil {
			util.LogError("wsclient: %v", err)
			w.onError.Invoke(fmt.Sprintf("transport init failed: %v", err))
			w.remoteClose()
		}
	case transport.StateFailed:
		w.onError.Invoke("tcp transport failed")
		w.remoteClose()
	case transport.StateDisconnected:
		w.remoteClose()
	}
}

func (w *WebSocket) onTLSStateChange(s transport.State) {
	switch s {
	case transport.StateConnected:
		if err := w.initWsTransport(); err != nil {
			util.LogError("wsclient: %v", err)
			w.onError.Invoke(fmt.Sprintf("ws transport init failed: %v", err))
			w.remoteClose()
		}
	case transport.StateFailed:
		w.onError.Invoke("tls transport failed")
		w.remoteClose()
	case transport.StateDisconnected:
		w.remoteClose()
	}
}

func (w *WebSocket) onWSStateChange(s transport.State) {
	switch s {
	case transport.StateConnected:
		if w.transition(StateConnecting, StateOpen) {
			util.Stats.AddOpened()
			w.onOpen.Invoke()
		}
	case transport.StateFailed:
		w.onError.Invoke("ws transport failed")
		w.remoteClose()
	case transport.StateDisconnected:
		w.remoteClose()
	}
}

func (w *WebSocket) incoming(m *message.Message) {
	util.Stats.AddRecv(m.Size())
	depth := w.recvQueue.Push(m)
	w.onAvailable.Invoke(depth)
}

// Send transmits a message over the WS transport. It fails unless the
// socket is Open, and unless the payload is within the configured
// maximum message size.
func (w *WebSocket) Send(m *message.Message) error {
	if w.State() != StateOpen {
		return fmt.Errorf("%w: send called while %v", ErrInvalidState, w.State())
	}
	if uint64(m.Size()) > w.cfg.maxMessageSize() {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrOversize, m.Size(), w.cfg.maxMessageSize())
	}
	t := w.ws.Load()
	if t == nil {
		return fmt.Errorf("%w: no ws transport", ErrInvalidState)
	}
	if err := t.Send(m); err != nil {
		return err
	}
	util.Stats.AddSent(m.Size())
	return nil
}

// SendText is a convenience wrapper over Send for text frames.
func (w *WebSocket) SendText(text string) error { return w.Send(message.NewString(text)) }

// SendBinary is a convenience wrapper over Send for binary frames.
func (w *WebSocket) SendBinary(data []byte) error { return w.Send(message.NewBinary(data)) }

// Receive pops the oldest buffered message, if any.
func (w *WebSocket) Receive() (*message.Message, bool) { return w.recvQueue.Pop() }

// AvailableAmount reports the total bytes currently buffered in the
// receive queue.
func (w *WebSocket) AvailableAmount() int { return w.recvQueue.Amount() }

// Close begins a graceful shutdown from Connecting or Open. If no WS
// transport has been created yet, there is nothing to close
// gracefully and the socket drops straight to Closed without running
// closeTransports — callers relying on OnClosed firing should not
// assume it always will when closing this early.
func (w *WebSocket) Close() error {
	cur := w.State()
	if cur != StateConnecting && cur != StateOpen {
		return nil
	}
	if !w.transition(cur, StateClosing) {
		return nil
	}

	if t := w.ws.Load(); t != nil {
		return t.Stop()
	}
	w.state.Store(int32(StateClosed))
	return nil
}

// remoteClose is Close followed by closeTransports, safe to call from
// any transport's own callback goroutine and idempotent across
// concurrent callers.
func (w *WebSocket) remoteClose() {
	w.Close()
	w.closeTransports()
}

// closeTransports swaps out all three transport slots, fires the
// closed callback exactly once, resets the user callbacks to prevent
// re-entry, and hands the transports to the thread pool to stop —
// off the calling goroutine, so a transport can trigger this from its
// own callback without joining itself.
func (w *WebSocket) closeTransports() {
	once := w.closeOnce.Load()
	if once == nil {
		return
	}
	once.Do(func() {
		w.state.Store(int32(StateClosed))
		util.Stats.AddClosed()

		tcp := w.tcp.Swap(nil)
		tls := w.tls.Swap(nil)
		ws := w.ws.Swap(nil)

		w.onOpen.Store(nil)
		w.onError.Store(nil)
		w.onAvailable.Store(nil)
		w.onClosed.Invoke()
		w.onClosed.Store(nil)

		w.pool.Enqueue(func() {
			if ws != nil {
				ws.Stop()
			}
			if tls != nil {
				tls.Stop()
			}
			if tcp != nil {
				tcp.Stop()
			}
		})
	})
}
