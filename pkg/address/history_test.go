package address

import "testing"

func TestHistoryPushAndRead(t *testing.T) {
	h := NewHistory("/items")

	if got := h.Read(); got != "/items" {
		t.Fatalf("Read() = %q, want initial entry", got)
	}

	h.Push("/items?page=1")
	h.Push("/items?page=2")

	if got := h.Read(); got != "/items?page=2" {
		t.Errorf("Read() = %q after pushes", got)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
}

func TestHistoryReplaceKeepsLength(t *testing.T) {
	h := NewHistory("/items")
	h.Replace("/items?q=a")

	if h.Len() != 1 {
		t.Errorf("Len() = %d after Replace, want 1", h.Len())
	}
	if got := h.Read(); got != "/items?q=a" {
		t.Errorf("Read() = %q after Replace", got)
	}
}

func TestHistoryBackForward(t *testing.T) {
	h := NewHistory("/a")
	h.Push("/b")
	h.Push("/c")

	if !h.Back() || h.Read() != "/b" {
		t.Fatalf("Back() landed on %q, want /b", h.Read())
	}
	if !h.Back() || h.Read() != "/a" {
		t.Fatalf("Back() landed on %q, want /a", h.Read())
	}
	if h.Back() {
		t.Error("Back() at oldest entry should return false")
	}

	if !h.Forward() || h.Read() != "/b" {
		t.Fatalf("Forward() landed on %q, want /b", h.Read())
	}
	if !h.Forward() || h.Read() != "/c" {
		t.Fatalf("Forward() landed on %q, want /c", h.Read())
	}
	if h.Forward() {
		t.Error("Forward() at newest entry should return false")
	}
}

func TestHistoryPushTruncatesForward(t *testing.T) {
	h := NewHistory("/a")
	h.Push("/b")
	h.Push("/c")
	h.Back()
	h.Back()

	h.Push("/d")

	if got := h.Read(); got != "/d" {
		t.Fatalf("Read() = %q after push from the past, want /d", got)
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (forward entries discarded)", h.Len())
	}
	if h.Forward() {
		t.Error("Forward() should fail after truncation")
	}
}
