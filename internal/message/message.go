// Package message defines the tagged message variant exchanged with a
// WebSocket transport, the bounded receive queue messages are buffered
// in, and a synchronized callback slot used throughout the transport
// stack for state-change and data notifications.
package message

// Kind tags what a Message carries.
type Kind int

const (
	String Kind = iota
	Binary
	Control
)

// Message is the tagged union described in the spec: only String and
// Binary messages are ever queued for a consumer; Control frames
// (ping/pong/close) are consumed by the WS transport itself and never
// constructed here.
type Message struct {
	Kind Kind
	Data []byte
}

// NewString builds a String message from text.
func NewString(text string) *Message {
	return &Message{Kind: String, Data: []byte(text)}
}

// NewBinary builds a Binary message from a byte slice. The slice is
// not copied; callers must not mutate it afterwards.
func NewBinary(data []byte) *Message {
	return &Message{Kind: Binary, Data: data}
}

// Size returns the number of bytes the message occupies.
func (m *Message) Size() int { return len(m.Data) }

// IsText reports whether the message is a String message.
func (m *Message) IsText() bool { return m.Kind == String }

// Text returns the message payload decoded as a string. Callers should
// check IsText first if they care about the distinction.
func (m *Message) Text() string { return string(m.Data) }
