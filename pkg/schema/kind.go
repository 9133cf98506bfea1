package schema

import "fmt"

// Kind identifies one of the four primitive value categories a parameter
// can hold. The set is closed: every switch over Kind in this module is
// exhaustive, so adding a kind forces every dispatch site to be revisited.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindBoolean
	KindBigInt
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindBigInt:
		return "bigint"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the four declared kinds.
func (k Kind) Valid() bool {
	return k >= KindString && k <= KindBigInt
}

// ParseKind converts a textual kind name (as used in configuration files)
// into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "bigint":
		return KindBigInt, nil
	default:
		return 0, fmt.Errorf("schema: unknown kind %q", s)
	}
}
