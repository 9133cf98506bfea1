package schema

import "math/big"

// Key is a typed parameter handle binding a name to a kind at compile time.
// Keys double as schema field declarations: pass them to New to build a
// Schema, then use them with the typed accessors in pkg/querystate for
// compile-time-checked reads and writes.
type Key[T Primitive] struct {
	name string
}

// StringKey declares a text parameter.
func StringKey(name string) Key[string] {
	return Key[string]{name: name}
}

// NumberKey declares a floating-point parameter.
func NumberKey(name string) Key[float64] {
	return Key[float64]{name: name}
}

// BoolKey declares a boolean parameter.
func BoolKey(name string) Key[bool] {
	return Key[bool]{name: name}
}

// BigIntKey declares an arbitrary-precision integer parameter.
func BigIntKey(name string) Key[*big.Int] {
	return Key[*big.Int]{name: name}
}

// Name returns the parameter name this key binds to.
func (k Key[T]) Name() string {
	return k.name
}

// Kind returns the kind implied by the key's type parameter.
func (k Key[T]) Kind() Kind {
	return kindOf[T]()
}

// field implements Field so keys can be passed to New.
func (k Key[T]) field() (string, Kind) {
	return k.name, k.Kind()
}

// Field is anything that can declare a schema field. Implemented by Key
// and by Decl for callers that build schemas dynamically (for example
// from a configuration file).
type Field interface {
	field() (string, Kind)
}

// Decl is an untyped field declaration.
type Decl struct {
	Name string
	Kind Kind
}

func (d Decl) field() (string, Kind) {
	return d.Name, d.Kind
}
