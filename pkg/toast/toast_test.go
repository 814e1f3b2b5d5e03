package toast

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/toastd/internal/clock"
	"pgregory.net/rapid"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const ms = time.Millisecond

// recorder counts onClose calls and remembers when they happened.
type recorder struct {
	clock  *clock.FakeClock
	closes int
	at     time.Duration
}

func (r *recorder) onClose() {
	r.closes++
	r.at = r.clock.Now().Sub(epoch)
}

func newTestToast(t *testing.T, opts ...Option) (*Toast, *clock.FakeClock, *recorder) {
	t.Helper()
	c := clock.Fake(epoch)
	rec := &recorder{clock: c}
	toast, err := New("hello", rec.onClose, append([]Option{WithClock(c)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return toast, c, rec
}

func TestAutoDismissTimeline(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(4000*ms))

	c.Advance(3999 * ms)
	if !toast.Visible() || toast.State() != StateShowing {
		t.Fatalf("at 3999ms: visible=%v state=%v, want visible showing", toast.Visible(), toast.State())
	}

	c.Advance(1 * ms)
	if toast.Visible() || toast.State() != StateDismissing {
		t.Fatalf("at 4000ms: visible=%v state=%v, want hidden dismissing", toast.Visible(), toast.State())
	}

	c.Advance(299 * ms)
	if rec.closes != 0 {
		t.Fatalf("onClose fired at 4299ms")
	}

	c.Advance(1 * ms)
	if rec.closes != 1 {
		t.Fatalf("closes = %d at 4300ms, want 1", rec.closes)
	}
	if rec.at != 4300*ms {
		t.Errorf("onClose at %v, want 4.3s", rec.at)
	}
	if toast.State() != StateClosed {
		t.Errorf("state = %v, want closed", toast.State())
	}

	c.Advance(time.Hour)
	if rec.closes != 1 {
		t.Errorf("closes = %d after an hour, want 1", rec.closes)
	}
	if toast.PendingTimer() || c.Pending() != 0 {
		t.Error("timer still armed after close")
	}
}

func TestDefaultDurationIsFourSeconds(t *testing.T) {
	_, c, rec := newTestToast(t)

	c.Advance(4300 * ms)
	if rec.closes != 1 || rec.at != 4300*ms {
		t.Fatalf("closes=%d at=%v, want 1 at 4.3s", rec.closes, rec.at)
	}
}

func TestNonPositiveDurationNeverAutoDismisses(t *testing.T) {
	for _, d := range []time.Duration{0, -1, NoAutoDismiss, -5 * time.Second} {
		toast, c, rec := newTestToast(t, WithDuration(d))

		c.Advance(24 * time.Hour)

		if rec.closes != 0 {
			t.Errorf("duration %v: onClose fired without dismissal", d)
		}
		if toast.State() != StateShowing || !toast.Visible() {
			t.Errorf("duration %v: state=%v visible=%v", d, toast.State(), toast.Visible())
		}
		if toast.PendingTimer() {
			t.Errorf("duration %v: timer armed", d)
		}
	}
}

func TestManualDismissTimeline(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(0))

	c.Advance(500 * ms)
	if !toast.Dismiss() {
		t.Fatal("Dismiss() = false from showing")
	}
	if toast.Visible() {
		t.Fatal("toast visible right after Dismiss")
	}

	c.Advance(299 * ms)
	if rec.closes != 0 {
		t.Fatal("onClose fired before exit delay")
	}
	c.Advance(1 * ms)
	if rec.closes != 1 || rec.at != 800*ms {
		t.Fatalf("closes=%d at=%v, want 1 at 800ms", rec.closes, rec.at)
	}
}

func TestDismissTwiceClosesOnce(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(4000*ms))

	c.Advance(100 * ms)
	if !toast.Dismiss() {
		t.Fatal("first Dismiss() = false")
	}
	if toast.Dismiss() {
		t.Fatal("second Dismiss() = true")
	}
	if c.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", c.Pending())
	}

	c.Advance(time.Hour)
	if rec.closes != 1 {
		t.Fatalf("closes = %d, want 1", rec.closes)
	}
	if toast.Dismiss() {
		t.Fatal("Dismiss() after close = true")
	}
}

func TestManualDismissCancelsAutoDismiss(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(4000*ms))

	c.Advance(1000 * ms)
	toast.Dismiss()
	c.Advance(10 * time.Second)

	if rec.closes != 1 || rec.at != 1300*ms {
		t.Fatalf("closes=%d at=%v, want 1 at 1.3s", rec.closes, rec.at)
	}
}

func TestTeardownBeforeTimerFires(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(4000*ms))

	c.Advance(1000 * ms)
	if !toast.Teardown() {
		t.Fatal("Teardown() = false on live toast")
	}
	if c.Pending() != 0 {
		t.Fatalf("pending timers = %d after teardown, want 0", c.Pending())
	}

	c.Advance(time.Hour)
	if rec.closes != 0 {
		t.Fatalf("closes = %d after teardown, want 0", rec.closes)
	}
	if toast.State() != StateTornDown {
		t.Errorf("state = %v, want torn_down", toast.State())
	}
	if toast.Teardown() {
		t.Error("second Teardown() = true")
	}
	if toast.Dismiss() {
		t.Error("Dismiss() after teardown = true")
	}
}

func TestTeardownDuringExitDelay(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(0))

	toast.Dismiss()
	c.Advance(100 * ms)
	toast.Teardown()
	c.Advance(time.Second)

	if rec.closes != 0 {
		t.Fatalf("closes = %d, want 0", rec.closes)
	}
	if c.Pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", c.Pending())
	}
}

func TestTeardownAfterCloseIsNoop(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(10*ms))
	c.Advance(time.Second)

	if toast.Teardown() {
		t.Fatal("Teardown() after close = true")
	}
	if toast.State() != StateClosed || rec.closes != 1 {
		t.Fatalf("state=%v closes=%d", toast.State(), rec.closes)
	}
}

func TestActionDoesNotAffectDismissal(t *testing.T) {
	actions := 0
	toast, c, rec := newTestToast(t,
		WithDuration(4000*ms),
		WithActionFunc("Undo", func() { actions++ }),
	)

	c.Advance(200 * ms)
	if !toast.Action() {
		t.Fatal("Action() = false")
	}
	if actions != 1 {
		t.Fatalf("actions = %d, want 1", actions)
	}
	if !toast.Visible() || toast.State() != StateShowing {
		t.Fatal("action changed visibility")
	}
	if toast.Action() {
		t.Fatal("second Action() = true")
	}

	c.Advance(4100 * ms)
	if rec.closes != 1 || rec.at != 4300*ms {
		t.Fatalf("closes=%d at=%v, want 1 at 4.3s", rec.closes, rec.at)
	}
	if actions != 1 {
		t.Fatalf("actions = %d, want 1", actions)
	}
}

func TestActionAfterHideIsIgnored(t *testing.T) {
	actions := 0
	toast, _, _ := newTestToast(t, WithDuration(0), WithActionFunc("Retry", func() { actions++ }))

	toast.Dismiss()
	if toast.Action() {
		t.Fatal("Action() while dismissing = true")
	}
	if actions != 0 {
		t.Fatalf("actions = %d, want 0", actions)
	}
}

func TestActionWithoutHandler(t *testing.T) {
	toast, _, _ := newTestToast(t)
	if toast.Action() {
		t.Fatal("Action() on toast without action = true")
	}
}

func TestOnHideRunsOnceBeforeOnClose(t *testing.T) {
	var events []string
	c := clock.Fake(epoch)
	toast, err := New("msg", func() { events = append(events, "close") },
		WithClock(c),
		WithDuration(1000*ms),
		WithOnHide(func(s Snapshot) {
			if s.Visible {
				t.Error("hide snapshot reports visible")
			}
			if s.State != StateDismissing {
				t.Errorf("hide snapshot state = %v", s.State)
			}
			events = append(events, "hide")
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	c.Advance(500 * ms)
	toast.Dismiss()
	toast.Dismiss()
	c.Advance(time.Hour)

	if len(events) != 2 || events[0] != "hide" || events[1] != "close" {
		t.Fatalf("events = %v, want [hide close]", events)
	}
}

func TestTeardownFromOnHide(t *testing.T) {
	c := clock.Fake(epoch)
	closes := 0
	var toast *Toast
	toast, err := New("msg", func() { closes++ },
		WithClock(c),
		WithDuration(0),
		WithOnHide(func(Snapshot) { toast.Teardown() }),
	)
	if err != nil {
		t.Fatal(err)
	}

	toast.Dismiss()
	c.Advance(time.Second)

	if closes != 0 {
		t.Fatalf("closes = %d, want 0", closes)
	}
	if c.Pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", c.Pending())
	}
}

func TestZeroExitDelayClosesImmediately(t *testing.T) {
	toast, _, rec := newTestToast(t, WithDuration(0), WithExitDelay(0))

	toast.Dismiss()

	if rec.closes != 1 {
		t.Fatalf("closes = %d, want 1", rec.closes)
	}
}

func TestExitDelayIsConfigurable(t *testing.T) {
	toast, c, rec := newTestToast(t, WithDuration(0), WithExitDelay(150*ms))

	toast.Dismiss()
	c.Advance(150 * ms)

	if rec.closes != 1 || rec.at != 150*ms {
		t.Fatalf("closes=%d at=%v, want 1 at 150ms", rec.closes, rec.at)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		onClose func()
		opts    []Option
		want    error
	}{
		{"nil onClose", nil, nil, ErrNilOnClose},
		{"unknown type", func() {}, []Option{WithType("fatal")}, ErrUnknownType},
		{"label without handler", func() {}, []Option{WithActionFunc("Undo", nil)}, ErrActionIncomplete},
		{"handler without label", func() {}, []Option{WithActionFunc("", func() {})}, ErrActionIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("msg", tt.onClose, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	toast, _, _ := newTestToast(t,
		WithID("toast-1"),
		WithType(TypeWarning),
		Titled("Heads up"),
		WithDuration(5000*ms),
		WithActionFunc("Review", func() {}),
		WithActionID("review-7"),
	)

	s := toast.Snapshot()
	if s.ID != "toast-1" || s.Type != TypeWarning || s.Title != "Heads up" || s.Message != "hello" {
		t.Errorf("unexpected snapshot identity: %+v", s)
	}
	if !s.HasAction() || s.ActionLabel != "Review" || s.ActionID != "review-7" {
		t.Errorf("unexpected snapshot action: %+v", s)
	}
	if s.DurationMS != 5000 || !s.Visible || s.State != StateShowing || !s.CreatedAt.Equal(epoch) {
		t.Errorf("unexpected snapshot state: %+v", s)
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	toast, _, _ := newTestToast(t,
		WithID("toast-9"),
		WithType(TypeError),
		WithActionFunc("Retry", func() {}),
	)
	toast.Dismiss()

	want := toast.Snapshot()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	want.Duration = 0
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
	if got.State != StateDismissing {
		t.Errorf("State = %v, want dismissing", got.State)
	}
}

func TestStateUnmarshalJSON(t *testing.T) {
	for _, want := range []State{StateShowing, StateDismissing, StateClosed, StateTornDown} {
		data, _ := json.Marshal(want)
		var got State
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", data, err)
		}
		if got != want {
			t.Errorf("Unmarshal(%s) = %v, want %v", data, got, want)
		}
	}

	for _, bad := range []string{`"unknown"`, `"SHOWING"`, `""`, `1`} {
		var st State
		if err := json.Unmarshal([]byte(bad), &st); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", bad)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateShowing:    "showing",
		StateDismissing: "dismissing",
		StateClosed:     "closed",
		StateTornDown:   "torn_down",
		State(99):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestConcurrentDismissClosesOnce(t *testing.T) {
	var closes atomic.Int32
	done := make(chan struct{})
	toast, err := New("msg", func() {
		if closes.Add(1) == 1 {
			close(done)
		}
	}, WithDuration(0), WithExitDelay(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var dismissed atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if toast.Dismiss() {
				dismissed.Add(1)
			}
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("onClose never fired")
	}
	time.Sleep(20 * time.Millisecond)

	if dismissed.Load() != 1 {
		t.Errorf("successful dismissals = %d, want 1", dismissed.Load())
	}
	if closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", closes.Load())
	}
}

func TestPropertyCloseFiresExactlyOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := time.Duration(rapid.IntRange(1, 10000).Draw(rt, "durationMS")) * ms
		dismissAt := time.Duration(rapid.IntRange(-1, 12000).Draw(rt, "dismissAtMS")) * ms
		extraDismissals := rapid.IntRange(0, 3).Draw(rt, "extraDismissals")

		c := clock.Fake(epoch)
		closes := 0
		var closedAt time.Duration
		toast, err := New("msg", func() {
			closes++
			closedAt = c.Now().Sub(epoch)
		}, WithClock(c), WithDuration(duration))
		if err != nil {
			rt.Fatal(err)
		}

		want := duration + DefaultExitDelay
		if dismissAt >= 0 {
			c.Advance(dismissAt)
			for i := 0; i <= extraDismissals; i++ {
				toast.Dismiss()
			}
			if dismissAt < duration {
				want = dismissAt + DefaultExitDelay
			}
		}
		c.Advance(30 * time.Second)

		if closes != 1 {
			rt.Fatalf("closes = %d, want 1", closes)
		}
		if closedAt != want {
			rt.Fatalf("closed at %v, want %v", closedAt, want)
		}
	})
}

func TestPropertyTeardownSuppressesClose(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := time.Duration(rapid.IntRange(-100, 10000).Draw(rt, "durationMS")) * ms
		teardownAt := time.Duration(rapid.IntRange(0, 20000).Draw(rt, "teardownAtMS")) * ms
		dismiss := rapid.Bool().Draw(rt, "dismiss")

		c := clock.Fake(epoch)
		closes := 0
		toast, err := New("msg", func() { closes++ }, WithClock(c), WithDuration(duration))
		if err != nil {
			rt.Fatal(err)
		}
		if dismiss {
			toast.Dismiss()
		}

		c.Advance(teardownAt)
		closedBefore := closes
		toast.Teardown()
		c.Advance(time.Minute)

		if closes != closedBefore {
			rt.Fatalf("onClose fired after teardown")
		}
		if closes > 1 {
			rt.Fatalf("closes = %d", closes)
		}
		if c.Pending() != 0 {
			rt.Fatalf("pending timers = %d after teardown", c.Pending())
		}
	})
}
