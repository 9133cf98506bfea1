package reactive

import "sync/atomic"

// Listener is anything that can be notified when a signal changes.
type Listener interface {
	// MarkDirty notifies the listener that a dependency has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// ListenerFunc adapts a plain function into a Listener.
type ListenerFunc struct {
	id uint64
	fn func()
}

// NewListenerFunc wraps fn as a Listener with a fresh ID.
func NewListenerFunc(fn func()) *ListenerFunc {
	return &ListenerFunc{id: nextID(), fn: fn}
}

func (l *ListenerFunc) MarkDirty() {
	if l.fn != nil {
		l.fn()
	}
}

func (l *ListenerFunc) ID() uint64 {
	return l.id
}

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are monotonically increasing and
// never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
