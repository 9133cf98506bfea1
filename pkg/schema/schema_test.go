package schema

import (
	"math/big"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindString:  "string",
		KindNumber:  "number",
		KindBoolean: "boolean",
		KindBigInt:  "bigint",
		Kind(99):    "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		for name, want := range map[string]Kind{
			"string":  KindString,
			"number":  KindNumber,
			"boolean": KindBoolean,
			"bool":    KindBoolean,
			"bigint":  KindBigInt,
		} {
			got, err := ParseKind(name)
			if err != nil {
				t.Fatalf("ParseKind(%q): %v", name, err)
			}
			if got != want {
				t.Errorf("ParseKind(%q) = %v, want %v", name, got, want)
			}
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := ParseKind("float"); err == nil {
			t.Error("ParseKind(\"float\") should fail")
		}
	})
}

func TestNewRetainsDeclarationOrder(t *testing.T) {
	s := New(
		StringKey("q"),
		NumberKey("page"),
		BoolKey("instock"),
		BigIntKey("cursor"),
	)

	want := []string{"q", "page", "instock", "cursor"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewIgnoresDuplicates(t *testing.T) {
	s := New(StringKey("q"), NumberKey("q"))
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	k, _ := s.Kind("q")
	if k != KindString {
		t.Errorf("duplicate declaration should keep the first kind, got %v", k)
	}
}

func TestKeyKinds(t *testing.T) {
	if got := StringKey("a").Kind(); got != KindString {
		t.Errorf("StringKey kind = %v", got)
	}
	if got := NumberKey("a").Kind(); got != KindNumber {
		t.Errorf("NumberKey kind = %v", got)
	}
	if got := BoolKey("a").Kind(); got != KindBoolean {
		t.Errorf("BoolKey kind = %v", got)
	}
	if got := BigIntKey("a").Kind(); got != KindBigInt {
		t.Errorf("BigIntKey kind = %v", got)
	}
}

func TestValidate(t *testing.T) {
	s := New(StringKey("q"), NumberKey("page"))

	t.Run("Complete", func(t *testing.T) {
		ok := s.Validate(map[string]Value{
			"q":    String("hello"),
			"page": Number(2),
		})
		if !ok {
			t.Error("complete well-typed record should validate")
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		if s.Validate(map[string]Value{"q": String("hello")}) {
			t.Error("partial record must not validate")
		}
	})

	t.Run("ExtraKey", func(t *testing.T) {
		ok := s.Validate(map[string]Value{
			"q":    String("hello"),
			"page": Number(2),
			"junk": String("x"),
		})
		if ok {
			t.Error("extra key must not validate")
		}
	})

	t.Run("KindMismatch", func(t *testing.T) {
		ok := s.Validate(map[string]Value{
			"q":    String("hello"),
			"page": String("2"),
		})
		if ok {
			t.Error("kind mismatch must not validate")
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if s.Validate(nil) {
			t.Error("nil candidate must not validate against non-empty schema")
		}
		if !New().Validate(nil) {
			t.Error("nil candidate validates against empty schema")
		}
	})
}

func TestValidateKey(t *testing.T) {
	s := New(StringKey("q"), NumberKey("page"))

	if !s.ValidateKey("q", String("hi")) {
		t.Error("declared key with matching kind should validate")
	}
	if s.ValidateKey("q", Number(1)) {
		t.Error("kind mismatch should not validate")
	}
	if s.ValidateKey("junk", String("x")) {
		t.Error("undeclared key should not validate")
	}
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"SameString", String("a"), String("a"), true},
		{"DiffString", String("a"), String("b"), false},
		{"SameNumber", Number(2.5), Number(2.5), true},
		{"DiffNumber", Number(2.5), Number(3), false},
		{"SameBool", Bool(true), Bool(true), true},
		{"DiffBool", Bool(true), Bool(false), false},
		{"SameBigInt", BigInt(big.NewInt(9)), BigInt(big.NewInt(9)), true},
		{"DiffBigInt", BigInt(big.NewInt(9)), BigInt(big.NewInt(10)), false},
		{"KindMismatch", String("true"), Bool(true), false},
		{"Zero", Value{}, Value{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValueOfAndAs(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		v := ValueOf("hi")
		got, ok := As[string](v)
		if !ok || got != "hi" {
			t.Errorf("As[string] = (%q, %v)", got, ok)
		}
	})

	t.Run("Number", func(t *testing.T) {
		v := ValueOf(2.5)
		got, ok := As[float64](v)
		if !ok || got != 2.5 {
			t.Errorf("As[float64] = (%v, %v)", got, ok)
		}
	})

	t.Run("Bool", func(t *testing.T) {
		v := ValueOf(true)
		got, ok := As[bool](v)
		if !ok || !got {
			t.Errorf("As[bool] = (%v, %v)", got, ok)
		}
	})

	t.Run("BigInt", func(t *testing.T) {
		v := ValueOf(big.NewInt(42))
		got, ok := As[*big.Int](v)
		if !ok || got.Int64() != 42 {
			t.Errorf("As[*big.Int] = (%v, %v)", got, ok)
		}
	})

	t.Run("Mismatch", func(t *testing.T) {
		if _, ok := As[float64](String("2")); ok {
			t.Error("As[float64] on a string value should fail")
		}
	})
}
