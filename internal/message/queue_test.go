package message

import "testing"

func TestQueuePushPopOrderAndAmount(t *testing.T) {
	q := NewQueue(0) // falls back to DefaultQueueCapacity

	q.Push(NewString("a"))
	q.Push(NewBinary([]byte{1, 2, 3}))

	if got := q.Amount(); got != 4 {
		t.Fatalf("Amount() = %d, want 4", got)
	}
	if got := q.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	m, ok := q.Pop()
	if !ok || !m.IsText() || m.Text() != "a" {
		t.Fatalf("first Pop() = (%+v, %v), want the string message \"a\"", m, ok)
	}
	if got := q.Amount(); got != 3 {
		t.Fatalf("Amount() after pop = %d, want 3", got)
	}

	m, ok = q.Pop()
	if !ok || m.IsText() {
		t.Fatalf("second Pop() = (%+v, %v), want the binary message", m, ok)
	}

	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop() on empty queue returned ok=true")
	}
}

func TestQueueBoundedEvictsOldest(t *testing.T) {
	q := NewQueue(2)

	q.Push(NewString("first"))
	q.Push(NewString("second"))
	q.Push(NewString("third"))

	if got := q.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	m, _ := q.Pop()
	if m.Text() != "second" {
		t.Fatalf("oldest surviving message = %q, want %q", m.Text(), "second")
	}
}
