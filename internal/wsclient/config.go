package wsclient

// DefaultMaxMessageSize is the ceiling Send enforces when Config
// doesn't override it.
const DefaultMaxMessageSize = 65536

// Config tunes a WebSocket's transport behavior. The zero value is
// usable: it verifies TLS certificates and uses the process-wide
// thread pool and the default message size ceiling.
type Config struct {
	// InsecureSkipVerify disables TLS certificate verification. Only
	// useful against self-signed test servers.
	InsecureSkipVerify bool
	// MaxMessageSize caps Send payloads. Zero means DefaultMaxMessageSize.
	MaxMessageSize uint64
	// ThreadPoolSize, if positive, gives this WebSocket its own
	// teardown pool instead of sharing threadpool.Instance().
	ThreadPoolSize int
}

func (c Config) maxMessageSize() uint64 {
	if c.MaxMessageSize == 0 {
		return DefaultMaxMessageSize
	}
	return c.MaxMessageSize
}
