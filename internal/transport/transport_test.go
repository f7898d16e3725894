package transport

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenwick-labs/rtcsig/internal/message"
	"github.com/gorilla/websocket"
)

func waitState(t *testing.T, l Layer, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	ch := make(chan State, 4)
	l.OnStateChange(func(s State) { ch <- s })
	if l.State() == want {
		return
	}
	for {
		select {
		case s := <-ch:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("state never reached %v, last %v", want, l.State())
		}
	}
}

func TestTCPConnectsAndSends(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	tcp := NewTCP(host, port)
	if err := tcp.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitState(t, tcp, StateConnected)
	defer tcp.Stop()

	if err := tcp.Send(message.NewString("hi")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "hi" {
			t.Fatalf("received %q, want %q", got, "hi")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received data")
	}
}

func TestTCPFailsOnRefusedConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listening now

	host, port, _ := net.SplitHostPort(addr)
	tcp := NewTCP(host, port)
	if err := tcp.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitState(t, tcp, StateFailed)
}

func TestWSHandshakeAndEcho(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(kind, data)
	}))
	defer srv.Close()

	host, port, _ := net.SplitHostPort(srv.Listener.Addr().String())
	tcp := NewTCP(host, port)
	if err := tcp.Start(); err != nil {
		t.Fatalf("tcp Start: %v", err)
	}
	waitState(t, tcp, StateConnected)
	defer tcp.Stop()

	ws := NewWS(tcp, "ws", srv.Listener.Addr().String(), "/")
	incoming := make(chan *message.Message, 1)
	ws.Incoming.Store(func(m *message.Message) { incoming <- m })
	if err := ws.Start(); err != nil {
		t.Fatalf("ws Start: %v", err)
	}
	waitState(t, ws, StateConnected)
	defer ws.Stop()

	if err := ws.Send(message.NewString("echo")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case m := <-incoming:
		if m.Text() != "echo" {
			t.Fatalf("got %q, want %q", m.Text(), "echo")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no echo received")
	}
}

func TestTLSHandshakeInsecure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	host, port, _ := net.SplitHostPort(srv.Listener.Addr().String())
	tcp := NewTCP(host, port)
	if err := tcp.Start(); err != nil {
		t.Fatalf("tcp Start: %v", err)
	}
	waitState(t, tcp, StateConnected)
	defer tcp.Stop()

	tl := NewTLS(tcp, host, true)
	if err := tl.Start(); err != nil {
		t.Fatalf("tls Start: %v", err)
	}
	waitState(t, tl, StateConnected)
	defer tl.Stop()

	if tl.Conn() == nil {
		t.Fatal("Conn() == nil after Connected")
	}
}

func TestBaseFireStateInvokesCallbackOnRepeat(t *testing.T) {
	var b base
	calls := 0
	b.OnStateChange(func(State) { calls++ })

	b.fireState(StateConnecting)
	b.fireState(StateConnecting) // same state, callback still fires

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if b.State() != StateConnecting {
		t.Fatalf("State() = %v, want %v", b.State(), StateConnecting)
	}
}
