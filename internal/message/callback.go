package message

import "sync"

// Callback is a synchronized slot holding a single func(T) value. It
// mirrors the original library's synchronized_callback: storing into
// the slot and invoking the stored function are both safe to call
// concurrently from any goroutine, including safely clearing the slot
// from inside the function that is currently running.
//
// That last guarantee is why Invoke does not hold the lock across the
// call: it copies the handle out under the lock, releases it, then
// calls the copy. A Go mutex is not re-entrant, so holding it across
// the call would deadlock a callback that calls Store(nil) on itself.
type Callback[T any] struct {
	mu sync.Mutex
	fn func(T)
}

// Store replaces the callback. Passing nil disables it.
func (c *Callback[T]) Store(fn func(T)) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

// Invoke calls the stored callback with v, if one is set.
func (c *Callback[T]) Invoke(v T) {
	c.mu.Lock()
	fn := c.fn
	c.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

// IsSet reports whether a callback is currently stored.
func (c *Callback[T]) IsSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn != nil
}

// Callback0 is a synchronized slot for no-argument callbacks (e.g. "on
// open", "on closed"), following the same semantics as Callback.
type Callback0 struct {
	mu sync.Mutex
	fn func()
}

func (c *Callback0) Store(fn func()) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

func (c *Callback0) Invoke() {
	c.mu.Lock()
	fn := c.fn
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Callback0) IsSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn != nil
}
