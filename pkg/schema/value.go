package schema

import "math/big"

// Value is a tagged variant holding exactly one parameter value.
// The zero Value has no kind and represents "no value"; it never appears
// inside a store.
type Value struct {
	kind Kind
	str  string
	num  float64
	bl   bool
	big  *big.Int
}

// String wraps a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a floating-point value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool wraps a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, bl: b}
}

// BigInt wraps an arbitrary-precision integer. The *big.Int is retained,
// not copied; callers must not mutate it afterwards.
func BigInt(i *big.Int) Value {
	return Value{kind: KindBigInt, big: i}
}

// Kind returns the value's kind tag, or 0 for the zero Value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsZero reports whether v is the "no value" sentinel.
func (v Value) IsZero() bool {
	return v.kind == 0
}

// Str returns the text payload. Only meaningful when Kind() == KindString.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload. Only meaningful when Kind() == KindNumber.
func (v Value) Num() float64 { return v.num }

// Boolean returns the boolean payload. Only meaningful when Kind() == KindBoolean.
func (v Value) Boolean() bool { return v.bl }

// Big returns the integer payload. Only meaningful when Kind() == KindBigInt.
func (v Value) Big() *big.Int { return v.big }

// Equal reports whether two values have the same kind and payload.
// BigInt values compare by numeric value, not pointer identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBoolean:
		return v.bl == o.bl
	case KindBigInt:
		if v.big == nil || o.big == nil {
			return v.big == o.big
		}
		return v.big.Cmp(o.big) == 0
	default:
		return true
	}
}

// Primitive is the set of Go types a typed Key can bind to.
// It mirrors the four kinds one-to-one.
type Primitive interface {
	string | float64 | bool | *big.Int
}

// ValueOf wraps a primitive Go value into a Value with the matching kind.
func ValueOf[T Primitive](v T) Value {
	switch x := any(v).(type) {
	case string:
		return String(x)
	case float64:
		return Number(x)
	case bool:
		return Bool(x)
	case *big.Int:
		return BigInt(x)
	default:
		// Unreachable: Primitive is a closed constraint.
		return Value{}
	}
}

// As extracts the primitive payload of v as type T.
// Returns false when v's kind does not match T.
func As[T Primitive](v Value) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		if v.kind == KindString {
			return any(v.str).(T), true
		}
	case float64:
		if v.kind == KindNumber {
			return any(v.num).(T), true
		}
	case bool:
		if v.kind == KindBoolean {
			return any(v.bl).(T), true
		}
	case *big.Int:
		if v.kind == KindBigInt {
			return any(v.big).(T), true
		}
	}
	return zero, false
}

// kindOf returns the Kind corresponding to the type parameter T.
func kindOf[T Primitive]() Kind {
	var zero T
	switch any(zero).(type) {
	case string:
		return KindString
	case float64:
		return KindNumber
	case bool:
		return KindBoolean
	default:
		return KindBigInt
	}
}
