package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the dispatch buffer used when New is given a
// non-positive size.
const DefaultQueueSize = 256

// Dispatcher runs fn on its owner's logical thread.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline is a Dispatcher that runs fn immediately on the caller's goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Loop executes dispatched functions sequentially on one goroutine.
//
// Dispatch never blocks and never discards work while the loop is open.
// When the queue is full, functions spill into an overflow list that Run
// drains in order once the queue is empty.
type Loop struct {
	dispatchCh chan func()
	wake       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool
	executed   atomic.Uint64
	spilled    atomic.Uint64
	logger     *slog.Logger

	mu       sync.Mutex
	overflow []func()
}

// New creates a Loop with the given queue size.
func New(queueSize int, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		dispatchCh: make(chan func(), queueSize),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		logger:     logger.With("component", "loop"),
	}
}

// Dispatch queues fn to run on the loop. It is safe to call from any
// goroutine, including the loop itself. Functions dispatched after Close
// are discarded.
func (l *Loop) Dispatch(fn func()) {
	if l.closed.Load() {
		return
	}

	l.mu.Lock()
	if len(l.overflow) == 0 {
		select {
		case l.dispatchCh <- fn:
			l.mu.Unlock()
			return
		default:
		}
	}
	if len(l.overflow) == 0 {
		l.logger.Warn("dispatch queue full, spilling to overflow")
	}
	l.overflow = append(l.overflow, fn)
	l.spilled.Add(1)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes dispatched functions until ctx is cancelled or Close is
// called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
			continue
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		default:
		}

		if batch := l.takeOverflow(); len(batch) > 0 {
			for _, fn := range batch {
				if l.closed.Load() {
					return
				}
				l.execute(fn)
			}
			continue
		}

		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
		case <-l.wake:
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		}
	}
}

// takeOverflow returns the spilled functions once everything queued
// before them has run.
func (l *Loop) takeOverflow() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.dispatchCh) > 0 || len(l.overflow) == 0 {
		return nil
	}
	batch := l.overflow
	l.overflow = nil
	return batch
}

// Close stops the loop. Pending functions are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Executed returns the number of functions run so far.
func (l *Loop) Executed() uint64 {
	return l.executed.Load()
}

// Spilled returns the number of functions that went to the overflow
// list because the queue was full.
func (l *Loop) Spilled() uint64 {
	return l.spilled.Load()
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
	l.executed.Add(1)
}
