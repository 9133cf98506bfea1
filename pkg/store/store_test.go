package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/querysync-dev/querysync/pkg/schema"
)

var cmpValues = cmp.Comparer(func(a, b schema.Value) bool { return a.Equal(b) })

func testSchema() *schema.Schema {
	return schema.New(
		schema.StringKey("q"),
		schema.NumberKey("page"),
		schema.BoolKey("instock"),
	)
}

func TestSetGetHasDelete(t *testing.T) {
	s := New(testSchema())

	if !s.Set("page", schema.Number(2)) {
		t.Fatal("Set of declared key rejected")
	}
	v, ok := s.Get("page")
	if !ok || v.Num() != 2 {
		t.Errorf("Get(page) = (%v, %v)", v, ok)
	}
	if !s.Has("page") {
		t.Error("Has(page) = false after Set")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if !s.Delete("page") {
		t.Error("Delete of present key returned false")
	}
	if s.Has("page") {
		t.Error("Has(page) = true after Delete")
	}
	if s.Delete("page") {
		t.Error("Delete of absent key returned true")
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	s := New(testSchema())

	if s.Set("junk", schema.String("x")) {
		t.Error("undeclared key accepted")
	}
	if s.Set("page", schema.String("2")) {
		t.Error("kind mismatch accepted")
	}
	if s.Len() != 0 {
		t.Errorf("rejected entries leaked into the store: Len() = %d", s.Len())
	}
}

func TestMergeOverwritesAndKeeps(t *testing.T) {
	s := New(testSchema())
	s.Set("q", schema.String("old"))

	n := s.Merge(map[string]schema.Value{
		"q":    schema.String("new"),
		"page": schema.Number(3),
		"junk": schema.String("x"),
	})
	if n != 2 {
		t.Errorf("Merge accepted %d entries, want 2", n)
	}

	want := map[string]schema.Value{
		"q":    schema.String("new"),
		"page": schema.Number(3),
	}
	if diff := cmp.Diff(want, s.Snapshot(), cmpValues); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceAllDropsUnmentioned(t *testing.T) {
	s := New(testSchema())
	s.Set("q", schema.String("hello"))
	s.Set("page", schema.Number(1))

	s.ReplaceAll(map[string]schema.Value{"page": schema.Number(2)})

	want := map[string]schema.Value{"page": schema.Number(2)}
	if diff := cmp.Diff(want, s.Snapshot(), cmpValues); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := New(testSchema())
	s.Set("q", schema.String("hello"))

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after Clear", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after second Clear", s.Len())
	}
}

func TestRestoreBypassesValidation(t *testing.T) {
	s := New(testSchema())

	// Defaults are trusted verbatim, even when they would not validate.
	s.Restore(map[string]schema.Value{
		"q":    schema.String("hello"),
		"junk": schema.Number(1),
	})
	if !s.Has("junk") {
		t.Error("Restore should seed trusted entries verbatim")
	}
}

func TestNamesFollowSchemaOrder(t *testing.T) {
	s := New(testSchema())
	s.Set("instock", schema.Bool(true))
	s.Set("q", schema.String("hello"))

	want := []string{"q", "instock"}
	if diff := cmp.Diff(want, s.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(testSchema())
	s.Set("q", schema.String("hello"))

	snap := s.Snapshot()
	snap["q"] = schema.String("mutated")

	v, _ := s.Get("q")
	if v.Str() != "hello" {
		t.Error("mutating a snapshot must not affect the store")
	}
}
