// Package codec converts between the textual form a query string carries
// and the typed values a store holds.
//
// Decode is total: it never panics and never returns an error. A text that
// cannot be parsed under its declared kind yields ok=false, which callers
// must treat as "drop this key", never as "store a zero value".
package codec

import (
	"math"
	"math/big"
	"strconv"

	"github.com/querysync-dev/querysync/pkg/schema"
)

// Decode parses text under the given kind.
//
// Rules per kind:
//   - string: identity, always succeeds
//   - number: must parse to a finite float (NaN, ±Inf, empty and garbage
//     input all fail)
//   - boolean: only the exact literals "true" and "false"
//   - bigint: base-10 arbitrary-precision integer parse
func Decode(kind schema.Kind, text string) (schema.Value, bool) {
	switch kind {
	case schema.KindString:
		return schema.String(text), true

	case schema.KindNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return schema.Value{}, false
		}
		return schema.Number(f), true

	case schema.KindBoolean:
		switch text {
		case "true":
			return schema.Bool(true), true
		case "false":
			return schema.Bool(false), true
		}
		return schema.Value{}, false

	case schema.KindBigInt:
		i, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return schema.Value{}, false
		}
		return schema.BigInt(i), true

	default:
		return schema.Value{}, false
	}
}

// Encode stringifies a value to its textual query-string form.
// The zero Value encodes to the empty string, which projections skip.
func Encode(v schema.Value) string {
	switch v.Kind() {
	case schema.KindString:
		return v.Str()
	case schema.KindNumber:
		return strconv.FormatFloat(v.Num(), 'f', -1, 64)
	case schema.KindBoolean:
		return strconv.FormatBool(v.Boolean())
	case schema.KindBigInt:
		if v.Big() == nil {
			return ""
		}
		return v.Big().String()
	default:
		return ""
	}
}
