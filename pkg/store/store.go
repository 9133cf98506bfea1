// Package store holds the in-memory mapping from parameter name to typed
// value that backs the mutation API. The store is the single source of
// truth during a session; the address bar is derived from it.
package store

import (
	"github.com/querysync-dev/querysync/pkg/schema"
)

// Store maps a subset of a schema's names to values.
//
// Invariant: every present key is declared in the schema and its value's
// kind matches the declaration. A key absent from the store means "not
// currently present in the address", not a zero value.
//
// Store is not safe for concurrent use; the owning state serializes
// access.
type Store struct {
	schema *schema.Schema
	values map[string]schema.Value
}

// New creates an empty store over the given schema.
func New(sch *schema.Schema) *Store {
	return &Store{
		schema: sch,
		values: make(map[string]schema.Value),
	}
}

// Schema returns the schema this store is bound to.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// Get returns the value for name. ok is false when name is absent.
func (s *Store) Get(name string) (schema.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present, independent of the value.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Len returns the number of present keys.
func (s *Store) Len() int {
	return len(s.values)
}

// Set inserts or overwrites exactly one key, leaving all others untouched.
// Undeclared names and kind mismatches are silently ignored; the return
// value reports whether the entry was accepted.
func (s *Store) Set(name string, v schema.Value) bool {
	if !s.schema.ValidateKey(name, v) {
		return false
	}
	s.values[name] = v
	return true
}

// Merge applies every entry of partial, overwriting same-named keys and
// leaving unmentioned keys untouched. Entries that fail validation are
// dropped. Returns the number of accepted entries.
func (s *Store) Merge(partial map[string]schema.Value) int {
	n := 0
	for name, v := range partial {
		if s.Set(name, v) {
			n++
		}
	}
	return n
}

// ReplaceAll replaces the whole store with partial: every key not present
// in partial is removed regardless of prior presence. Entries that fail
// validation are dropped.
func (s *Store) ReplaceAll(partial map[string]schema.Value) {
	s.values = make(map[string]schema.Value, len(partial))
	s.Merge(partial)
}

// Delete removes exactly one key. Returns whether the key was present.
func (s *Store) Delete(name string) bool {
	if _, ok := s.values[name]; !ok {
		return false
	}
	delete(s.values, name)
	return true
}

// Clear empties the store.
func (s *Store) Clear() {
	s.values = make(map[string]schema.Value)
}

// Restore seeds the store with trusted entries, bypassing validation.
// It is used for caller-supplied default values, which the contract
// treats as already well-typed.
func (s *Store) Restore(trusted map[string]schema.Value) {
	for name, v := range trusted {
		s.values[name] = v
	}
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]schema.Value {
	out := make(map[string]schema.Value, len(s.values))
	for name, v := range s.values {
		out[name] = v
	}
	return out
}

// Names returns the present keys in schema declaration order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.values))
	for _, name := range s.schema.Names() {
		if _, ok := s.values[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
