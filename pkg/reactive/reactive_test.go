package reactive

import (
	"sync"
	"testing"
)

func TestSignalSetNotifies(t *testing.T) {
	sig := NewSignal(0)
	fired := 0
	sig.Subscribe(NewListenerFunc(func() { fired++ }))

	sig.Set(1)
	sig.Set(1) // no equality gate: every Set notifies

	if fired != 2 {
		t.Errorf("fired %d times, want 2", fired)
	}
	if sig.Peek() != 1 {
		t.Errorf("Peek() = %d, want 1", sig.Peek())
	}
}

func TestSignalWithEqualsSuppresses(t *testing.T) {
	sig := NewSignal(0).WithEquals(func(a, b int) bool { return a == b })
	fired := 0
	sig.Subscribe(NewListenerFunc(func() { fired++ }))

	sig.Set(0)
	sig.Set(1)
	sig.Set(1)

	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
}

func TestSignalUpdate(t *testing.T) {
	sig := NewSignal(10)
	sig.Update(func(v int) int { return v * 2 })
	if sig.Peek() != 20 {
		t.Errorf("Peek() = %d, want 20", sig.Peek())
	}
}

func TestSubscribeDeduplicates(t *testing.T) {
	sig := NewSignal(0)
	fired := 0
	l := NewListenerFunc(func() { fired++ })

	sig.Subscribe(l)
	sig.Subscribe(l)
	sig.Set(1)

	if fired != 1 {
		t.Errorf("duplicate subscription fired %d times, want 1", fired)
	}
}

func TestUnsubscribe(t *testing.T) {
	sig := NewSignal(0)
	fired := 0
	l := NewListenerFunc(func() { fired++ })

	sig.Subscribe(l)
	sig.Unsubscribe(l)
	sig.Set(1)

	if fired != 0 {
		t.Errorf("fired %d times after Unsubscribe, want 0", fired)
	}
}

func TestBatchDeliversOnce(t *testing.T) {
	sig := NewSignal(0)
	fired := 0
	sig.Subscribe(NewListenerFunc(func() { fired++ }))

	Batch(func() {
		sig.Set(1)
		sig.Set(2)
		sig.Set(3)
	})

	if fired != 1 {
		t.Errorf("fired %d times inside one batch, want 1", fired)
	}
	if sig.Peek() != 3 {
		t.Errorf("Peek() = %d, want final batch value 3", sig.Peek())
	}
}

func TestBatchNesting(t *testing.T) {
	sig := NewSignal(0)
	fired := 0
	sig.Subscribe(NewListenerFunc(func() { fired++ }))

	Batch(func() {
		sig.Set(1)
		Batch(func() {
			sig.Set(2)
		})
		// Inner completion must not flush.
		if fired != 0 {
			t.Errorf("inner batch flushed early (%d)", fired)
		}
	})

	if fired != 1 {
		t.Errorf("fired %d times, want 1 after outermost completion", fired)
	}
}

func TestBatchDeduplicatesAcrossSignals(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	fired := 0
	l := NewListenerFunc(func() { fired++ })
	a.Subscribe(l)
	b.Subscribe(l)

	Batch(func() {
		a.Set(1)
		b.Set(1)
	})

	if fired != 1 {
		t.Errorf("shared listener fired %d times, want 1", fired)
	}
}

func countBatchStates() int {
	n := 0
	batchStates.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestBatchStateCleanup(t *testing.T) {
	sig := NewSignal(0)
	sig.Subscribe(NewListenerFunc(func() {}))
	before := countBatchStates()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A plain Set must not create per-goroutine state, and a
			// completed Batch must not leave any behind.
			sig.Set(1)
			Batch(func() {
				sig.Set(2)
				sig.Set(3)
			})
		}()
	}
	wg.Wait()

	if got := countBatchStates(); got > before {
		t.Errorf("batch state grew from %d to %d entries after goroutines exited", before, got)
	}
}

func TestBatchIsPerGoroutine(t *testing.T) {
	sig := NewSignal(0)
	var mu sync.Mutex
	fired := 0
	sig.Subscribe(NewListenerFunc(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	}))

	done := make(chan struct{})
	Batch(func() {
		sig.Set(1)
		go func() {
			// This goroutine is outside the batch: immediate delivery.
			sig.Set(2)
			close(done)
		}()
		<-done
		mu.Lock()
		if fired != 1 {
			t.Errorf("other goroutine's Set should fire immediately, fired = %d", fired)
		}
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	if fired != 2 {
		t.Errorf("fired %d times total, want 2", fired)
	}
}
