// Package schema declares the closed universe of parameter names and kinds
// that a query-string state may hold.
//
// A Schema is created once, before any state is constructed, and is never
// mutated afterwards. Any name absent from the schema is never stored,
// never parsed from an address, and rejected by explicit-key operations.
package schema

// Schema is an immutable mapping from parameter name to Kind.
// Declaration order is retained: it defines the canonical order of the
// query-string projection.
type Schema struct {
	names []string
	kinds map[string]Kind
}

// New builds a schema from the given field declarations.
// Duplicate names keep the first declaration; later ones are ignored.
func New(fields ...Field) *Schema {
	s := &Schema{
		names: make([]string, 0, len(fields)),
		kinds: make(map[string]Kind, len(fields)),
	}
	for _, f := range fields {
		name, kind := f.field()
		if !kind.Valid() {
			continue
		}
		if _, ok := s.kinds[name]; ok {
			continue
		}
		s.names = append(s.names, name)
		s.kinds[name] = kind
	}
	return s
}

// Len returns the number of declared parameters.
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns the declared parameter names in declaration order.
// The returned slice is a copy.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Kind returns the declared kind for name.
func (s *Schema) Kind(name string) (Kind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.kinds[name]
	return ok
}

// Validate reports whether candidate is a complete, well-typed record:
// its key set must exactly equal the schema's key set and every value's
// kind must match the declaration. It never panics.
//
// Validate is intentionally strict; it is meant for whole-record checks.
// Use ValidateKey for partial updates.
func (s *Schema) Validate(candidate map[string]Value) bool {
	if len(candidate) != len(s.kinds) {
		return false
	}
	for name, v := range candidate {
		k, ok := s.kinds[name]
		if !ok || v.Kind() != k {
			return false
		}
	}
	return true
}

// ValidateKey reports whether name is declared and v's kind matches the
// declaration. Undeclared names and kind mismatches both return false.
func (s *Schema) ValidateKey(name string, v Value) bool {
	k, ok := s.kinds[name]
	return ok && v.Kind() == k
}
