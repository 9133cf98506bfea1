// Package querystate keeps a schema-typed parameter store synchronized
// with the query-string component of a document address.
//
// A State is created once per document with a schema and an address port.
// Bootstrap parses the address's existing query string into the initial
// store; afterwards every committed mutation publishes the store back to
// the address as a canonical query string. Consumers read values and call
// mutation operations; they never touch the address text directly.
package querystate

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/querysync-dev/querysync/pkg/address"
	"github.com/querysync-dev/querysync/pkg/reactive"
	"github.com/querysync-dev/querysync/pkg/schema"
	"github.com/querysync-dev/querysync/pkg/store"
)

// snapshot is the value carried by the state's signal. The revision
// counter makes every committed mutation observable, so a no-op delete
// still schedules its publish.
type snapshot struct {
	rev    uint64
	values map[string]schema.Value
}

// State is the public mutation surface over one document's query
// parameters. One active State per document is assumed; concurrent
// instances would race on the shared address bar.
type State struct {
	schema *schema.Schema
	port   address.Port
	cfg    config
	log    *slog.Logger

	mu  sync.Mutex
	st  *store.Store
	rev uint64

	sig      *reactive.Signal[snapshot]
	listener *reactive.ListenerFunc

	timerMu sync.Mutex
	timer   *time.Timer

	closed atomic.Bool
}

// New bootstraps a State from the port's current address and publishes
// the resulting store once.
func New(sch *schema.Schema, port address.Port, opts ...Option) *State {
	cfg := config{mode: ModePush}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	s := &State{
		schema: sch,
		port:   port,
		cfg:    cfg,
		log:    cfg.logger.With("component", "querystate"),
		st:     store.New(sch),
	}

	s.bootstrap()

	s.sig = reactive.NewSignal(snapshot{values: s.st.Snapshot()}).
		WithEquals(func(a, b snapshot) bool { return a.rev == b.rev })
	s.listener = reactive.NewListenerFunc(s.schedulePublish)
	s.sig.Subscribe(s.listener)

	// The bootstrap store change publishes too. This one bypasses the
	// debounce timer: initialization should settle the address at once.
	s.publish()

	return s
}

// Schema returns the schema this state was built with.
func (s *State) Schema() *schema.Schema {
	return s.schema
}

// Get returns the value for name. ok=false is the "not found" sentinel,
// distinct from any stored value.
func (s *State) Get(name string) (schema.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Get(name)
}

// Has reports whether name is present, independent of the value.
func (s *State) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Has(name)
}

// Len returns the number of present keys.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Len()
}

// All returns a snapshot of the full current store. Reading it does not
// trigger a publish, and mutating the returned map has no effect on the
// state.
func (s *State) All() map[string]schema.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Snapshot()
}

// Set inserts or overwrites exactly one key, leaving all others
// untouched. An undeclared name or kind mismatch is dropped without a
// publish.
func (s *State) Set(name string, v schema.Value) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	ok := s.st.Set(name, v)
	var snap snapshot
	if ok {
		s.rev++
		snap = snapshot{rev: s.rev, values: s.st.Snapshot()}
	}
	s.mu.Unlock()

	if !ok {
		s.log.Debug("set dropped", "name", name, "kind", v.Kind().String())
		return
	}
	s.sig.Set(snap)
}

// Append merges every key of partial into the store, overwriting
// same-named keys and leaving unmentioned keys untouched. Invalid
// entries are dropped; the call publishes regardless.
func (s *State) Append(partial map[string]schema.Value) {
	s.commit(func(st *store.Store) {
		if n := st.Merge(partial); n < len(partial) {
			s.log.Debug("append dropped entries", "dropped", len(partial)-n)
		}
	})
}

// Assign replaces the entire store with partial: every key not present
// in partial is removed, regardless of prior presence.
func (s *State) Assign(partial map[string]schema.Value) {
	s.commit(func(st *store.Store) {
		st.ReplaceAll(partial)
	})
}

// Remove deletes exactly one key. Removing an absent key is a no-op on
// the store but still publishes.
func (s *State) Remove(name string) {
	s.commit(func(st *store.Store) {
		st.Delete(name)
	})
}

// RemoveAll empties the store entirely.
func (s *State) RemoveAll() {
	s.commit(func(st *store.Store) {
		st.Clear()
	})
}

// Query returns the current address's actual query string, re-read from
// the port rather than recomputed from the store. With a debounced state
// it can momentarily lag the store until the pending publish fires.
func (s *State) Query() string {
	return rawQueryOf(s.port.Read())
}

// Batch groups multiple mutations into a single publish reflecting only
// the final store state. Intermediate states are never published.
func (s *State) Batch(fn func()) {
	reactive.Batch(fn)
}

// Close detaches the state from its port: any pending debounced publish
// is cancelled and further mutations are ignored. Called when the
// consuming component unmounts.
func (s *State) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerMu.Unlock()
	s.sig.Unsubscribe(s.listener)
}

// commit runs a mutation against the store and signals the new snapshot.
// Every commit bumps the revision, so subscribers fire even when the
// mutation was a store-level no-op.
func (s *State) commit(mutate func(st *store.Store)) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	mutate(s.st)
	s.rev++
	snap := snapshot{rev: s.rev, values: s.st.Snapshot()}
	s.mu.Unlock()

	s.sig.Set(snap)
}

// Get returns the typed value bound to key. This is the compile-time
// checked companion of State.Get.
func Get[T schema.Primitive](s *State, key schema.Key[T]) (T, bool) {
	v, ok := s.Get(key.Name())
	if !ok {
		var zero T
		return zero, false
	}
	return schema.As[T](v)
}

// Set writes the typed value bound to key. The key carries its kind, so
// a mismatched write cannot be expressed.
func Set[T schema.Primitive](s *State, key schema.Key[T], v T) {
	s.Set(key.Name(), schema.ValueOf(v))
}
