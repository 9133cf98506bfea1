package reactive

import (
	"runtime"
	"sync"
)

// Batch groups signal updates issued within fn into a single notification
// phase. All notifications are collected, deduplicated by listener ID,
// and delivered once when the outermost batch completes.
//
// Batches nest: only the outermost completion flushes.
func Batch(fn func()) {
	gid := goroutineID()
	st := batchStateFor(gid)
	st.depth++

	defer func() {
		st.depth--
		if st.depth == 0 {
			flushPending(st)
			// Goroutines are transient; the entry must not outlive the
			// outermost batch.
			batchStates.Delete(gid)
		}
	}()

	fn()
}

// flushPending deduplicates and notifies all queued listeners.
func flushPending(st *goroutineBatch) {
	updates := st.pending
	st.pending = nil
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}

// goroutineBatch holds the batch state for one goroutine. Mutations and
// their publish reactions run on a single goroutine per state instance,
// so batch scoping follows the goroutine.
type goroutineBatch struct {
	depth   int
	pending []Listener
}

// batchStates stores per-goroutine batch state.
var batchStates sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack.
// The stack header has the form "goroutine <id> ".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// batchStateFor returns the state for gid, creating it when absent.
// Only Batch creates entries; read paths must not (see batchDepth).
func batchStateFor(gid uint64) *goroutineBatch {
	if st, ok := batchStates.Load(gid); ok {
		return st.(*goroutineBatch)
	}
	st := &goroutineBatch{}
	batchStates.Store(gid, st)
	return st
}

// batchDepth reports the open batch depth on this goroutine without
// creating state: every signal write checks it, and most writers never
// batch at all.
func batchDepth() int {
	if st, ok := batchStates.Load(goroutineID()); ok {
		return st.(*goroutineBatch).depth
	}
	return 0
}

// queuePending records a listener for the outermost flush. Only called
// with a batch open, so the entry exists.
func queuePending(l Listener) {
	st := batchStateFor(goroutineID())
	st.pending = append(st.pending, l)
}
