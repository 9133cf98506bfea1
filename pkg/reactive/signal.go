// Package reactive provides the minimal signal/batch core that schedules
// publish reactions for query-string state.
//
// Subscriptions are explicit: there is no render-tracking context here,
// only subscriber lists and turn-level batching.
package reactive

import "sync"

// Signal is a reactive value container with an explicit subscriber list.
type Signal[T any] struct {
	id uint64

	// value is the current signal value, guarded by mu.
	value T
	mu    sync.RWMutex

	// subs are the listeners subscribed to this signal, guarded by subMu.
	subs  []Listener
	subMu sync.RWMutex

	// equal gates notification: when it reports the new value equal to
	// the old one, subscribers are not notified. nil disables the gate,
	// so every Set notifies.
	equal func(T, T) bool
}

// NewSignal creates a signal with the given initial value.
// By default every Set notifies; use WithEquals to gate on equality.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// WithEquals configures the equality function used to suppress
// notifications for no-op writes. Returns the signal for chaining.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Peek returns the current value without any side effects.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers.
// When an equality function is configured and reports no change, the
// notification is suppressed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := s.equal == nil || !s.equal(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Update atomically reads and replaces the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := s.equal == nil || !s.equal(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Subscribe adds a listener. Duplicate IDs are ignored.
func (s *Signal[T]) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// Unsubscribe removes a listener by ID.
func (s *Signal[T]) Unsubscribe(l Listener) {
	if l == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notify delivers change notifications, queueing them when a batch is
// open on this goroutine. Copy-before-notify keeps the lock out of
// listener callbacks.
func (s *Signal[T]) notify() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	if batchDepth() > 0 {
		for _, sub := range subs {
			queuePending(sub)
		}
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}
