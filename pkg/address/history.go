package address

import "sync"

// History is an in-memory Port with a navigable entry stack.
// It backs tests, server-side sessions, and any non-browser host.
type History struct {
	mu      sync.Mutex
	entries []string
	cur     int
}

// NewHistory creates a history whose single entry is the initial address.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Read returns the current address.
func (h *History) Read() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cur]
}

// Push appends a new entry after the current one and makes it current.
// Any forward entries are discarded, as a browser would on navigation.
func (h *History) Push(addr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.cur+1], addr)
	h.cur = len(h.entries) - 1
}

// Replace overwrites the current entry in place.
func (h *History) Replace(addr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.cur] = addr
}

// Back moves to the previous entry. Returns false at the oldest entry.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == 0 {
		return false
	}
	h.cur--
	return true
}

// Forward moves to the next entry. Returns false at the newest entry.
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur >= len(h.entries)-1 {
		return false
	}
	h.cur++
	return true
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
