// Package transport implements the layered transport stack a
// WebSocket client is built from: TCP, an optional TLS layer on top of
// it, and a WS layer that performs the WebSocket handshake and framing
// on top of whichever of those is the current top of the stack.
//
// All three layers share the same lifecycle shape — Start, Stop, Send,
// and a state-change callback stream over {Connecting, Connected,
// Disconnected, Failed} — so the client state machine in
// internal/wsclient can compose them uniformly.
package transport

import (
	"net"
	"sync/atomic"

	"github.com/fenwick-labs/rtcsig/internal/message"
)

// State is a transport layer's connection state.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Layer is the uniform lifecycle every transport in the stack
// implements.
type Layer interface {
	// Start begins connecting (or, for WS, handshaking). It returns
	// immediately; progress is reported through the state-change
	// callback.
	Start() error
	// Stop tears the transport down. It is safe to call more than
	// once and from the transport's own callback goroutine.
	Stop() error
	// Send transmits a message. TCP and TLS layers write the raw
	// payload bytes; the WS layer frames it according to its Kind.
	Send(m *message.Message) error
	// OnStateChange replaces the state-change callback.
	OnStateChange(fn func(State))
	// State returns the last reported state.
	State() State
}

// connProvider is implemented by layers (TCP, TLS) that another layer
// can be stacked directly on top of.
type connProvider interface {
	Conn() net.Conn
}

// base holds the bookkeeping shared by every layer: an atomic state
// value and a synchronized state-change callback.
type base struct {
	state   atomic.Int32
	onState message.Callback[State]
}

func (b *base) State() State { return State(b.state.Load()) }

// setState stores s and returns whether it actually changed.
func (b *base) setState(s State) bool {
	return State(b.state.Swap(int32(s))) != s
}

func (b *base) OnStateChange(fn func(State)) { b.onState.Store(fn) }

func (b *base) fireState(s State) {
	b.setState(s)
	b.onState.Invoke(s)
}
