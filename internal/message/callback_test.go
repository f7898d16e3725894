package message

import "testing"

func TestCallbackClearsItselfFromWithinInvoke(t *testing.T) {
	var cb Callback[int]
	calls := 0

	cb.Store(func(v int) {
		calls++
		cb.Store(nil) // must not deadlock
	})

	cb.Invoke(1)
	cb.Invoke(2) // no-op, callback cleared itself

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if cb.IsSet() {
		t.Fatalf("IsSet() = true after callback cleared itself")
	}
}

func TestCallback0NilIsNoOp(t *testing.T) {
	var cb Callback0
	cb.Invoke() // must not panic

	called := false
	cb.Store(func() { called = true })
	cb.Invoke()

	if !called {
		t.Fatalf("stored callback was not invoked")
	}
}
