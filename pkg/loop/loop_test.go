package loop

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoopRunsDispatchedFunctionsInOrder(t *testing.T) {
	l := New(16, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 1; i <= 3; i++ {
		i := i
		l.Dispatch(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", got)
	}
}

func TestLoopRecoversFromPanic(t *testing.T) {
	l := New(4, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	l.Dispatch(func() { panic("boom") })

	done := make(chan struct{})
	l.Dispatch(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop stopped after panic")
	}
}

func TestLoopDispatchAfterCloseIsDiscarded(t *testing.T) {
	l := New(4, quietLogger())
	l.Close()
	l.Close()

	l.Dispatch(func() { t.Error("dispatched function ran after Close") })

	select {
	case <-l.Done():
	default:
		t.Fatal("Done() not closed after Close")
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	l := New(4, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-l.Done():
	default:
		t.Fatal("loop not closed after context cancel")
	}
}

func TestLoopSpillsInOrderWhenQueueFull(t *testing.T) {
	l := New(2, quietLogger())

	const n = 50
	var got []int
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		l.Dispatch(func() {
			defer wg.Done()
			got = append(got, i)
		})
	}
	if got := l.Spilled(); got != n-2 {
		t.Fatalf("Spilled() = %d, want %d", got, n-2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	wg.Wait()

	if len(got) != n {
		t.Fatalf("ran %d functions, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want ascending", got)
		}
	}
}

func TestLoopDispatchFromLoopWithFullQueue(t *testing.T) {
	l := New(1, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	done := make(chan struct{})
	var count int
	l.Dispatch(func() {
		for i := 0; i < 10; i++ {
			l.Dispatch(func() {
				count++
				if count == 10 {
					close(done)
				}
			})
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested dispatches did not all run")
	}
}

func TestInlineRunsSynchronously(t *testing.T) {
	called := false
	Inline.Dispatch(func() { called = true })
	if !called {
		t.Fatal("Inline did not run fn")
	}
}
