package toast

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vango-dev/toastd/internal/clock"
	"github.com/vango-dev/toastd/pkg/loop"
)

// State is the lifecycle state of a Toast.
type State int

const (
	// StateShowing is the initial, visible state.
	StateShowing State = iota

	// StateDismissing means the toast is hidden and waiting out the exit delay.
	StateDismissing

	// StateClosed means onClose has been called.
	StateClosed

	// StateTornDown means the owner destroyed the toast before it closed.
	StateTornDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateShowing:
		return "showing"
	case StateDismissing:
		return "dismissing"
	case StateClosed:
		return "closed"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name written by MarshalJSON.
func (s *State) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	st, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	for _, st := range []State{StateShowing, StateDismissing, StateClosed, StateTornDown} {
		if st.String() == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("toast: unknown state %q", name)
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateTornDown
}

// Snapshot is an immutable copy of a toast's observable state.
type Snapshot struct {
	ID          string        `json:"id"`
	Type        Type          `json:"type"`
	Title       string        `json:"title,omitempty"`
	Message     string        `json:"message"`
	ActionLabel string        `json:"actionLabel,omitempty"`
	ActionID    string        `json:"actionID,omitempty"`
	State       State         `json:"state"`
	Visible     bool          `json:"visible"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// HasAction reports whether the toast renders an action control.
func (s Snapshot) HasAction() bool {
	return s.ActionLabel != ""
}

// Toast is one notification instance.
//
// All methods are safe for concurrent use. Every callback (onClose,
// onAction, the OnHide hook) runs without the toast lock held.
type Toast struct {
	id          string
	typ         Type
	title       string
	message     string
	duration    time.Duration
	exitDelay   time.Duration
	actionLabel string
	actionID    string
	onAction    func()
	onHide      func(Snapshot)
	onClose     func()
	clock       clock.Clock
	dispatcher  loop.Dispatcher
	createdAt   time.Time

	mu          sync.Mutex
	state       State
	visible     bool
	actionFired bool
	timer       *clock.Timer
	// gen is bumped whenever the timer is replaced or cancelled so that a
	// callback from a stopped timer can recognise itself as stale.
	gen uint64
}

// New creates a toast in the Showing state and, when its duration is
// positive, arms the auto-dismiss timer.
func New(message string, onClose func(), opts ...Option) (*Toast, error) {
	if onClose == nil {
		return nil, ErrNilOnClose
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !o.typ.Valid() {
		return nil, ErrUnknownType
	}
	if (o.actionLabel == "") != (o.onAction == nil) {
		return nil, ErrActionIncomplete
	}

	t := &Toast{
		id:          o.id,
		typ:         o.typ,
		title:       o.title,
		message:     message,
		duration:    o.duration,
		exitDelay:   o.exitDelay,
		actionLabel: o.actionLabel,
		actionID:    o.actionID,
		onAction:    o.onAction,
		onHide:      o.onHide,
		onClose:     onClose,
		clock:       o.clock,
		dispatcher:  o.dispatcher,
		state:       StateShowing,
		visible:     true,
	}
	t.createdAt = t.clock.Now()

	if t.duration > 0 {
		t.mu.Lock()
		t.armLocked(t.duration, t.expire)
		t.mu.Unlock()
	}

	return t, nil
}

// ID returns the identifier set with WithID.
func (t *Toast) ID() string { return t.id }

// Type returns the toast type.
func (t *Toast) Type() Type { return t.typ }

// Message returns the toast message.
func (t *Toast) Message() string { return t.message }

// Duration returns the auto-dismiss budget.
func (t *Toast) Duration() time.Duration { return t.duration }

// State returns the current lifecycle state.
func (t *Toast) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Visible reports whether the toast is currently shown.
func (t *Toast) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Snapshot returns a copy of the toast's observable state.
func (t *Toast) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Toast) snapshotLocked() Snapshot {
	durationMS := int64(0)
	if t.duration > 0 {
		durationMS = t.duration.Milliseconds()
	}
	return Snapshot{
		ID:          t.id,
		Type:        t.typ,
		Title:       t.title,
		Message:     t.message,
		ActionLabel: t.actionLabel,
		ActionID:    t.actionID,
		State:       t.state,
		Visible:     t.visible,
		Duration:    t.duration,
		DurationMS:  durationMS,
		CreatedAt:   t.createdAt,
	}
}

// Dismiss hides the toast and schedules onClose after the exit delay.
// It only has an effect in the Showing state and reports whether it did.
func (t *Toast) Dismiss() bool {
	t.mu.Lock()
	if t.state != StateShowing {
		t.mu.Unlock()
		return false
	}
	t.hideLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.afterHide(snap)
	return true
}

// Action fires the action handler. The handler runs at most once per
// toast, only while the toast is showing, and never affects dismissal.
func (t *Toast) Action() bool {
	t.mu.Lock()
	if t.onAction == nil || t.actionFired || t.state != StateShowing {
		t.mu.Unlock()
		return false
	}
	t.actionFired = true
	fn := t.onAction
	t.mu.Unlock()

	fn()
	return true
}

// Teardown destroys the toast on behalf of its owner. Any pending timer
// is cancelled and onClose will not be called. It reports whether the
// toast was still live.
func (t *Toast) Teardown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.stopTimerLocked()
	t.state = StateTornDown
	t.visible = false
	return true
}

// PendingTimer reports whether a timer is armed.
func (t *Toast) PendingTimer() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// expire is the auto-dismiss timer callback.
func (t *Toast) expire(gen uint64) {
	t.mu.Lock()
	if t.state != StateShowing || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.hideLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.afterHide(snap)
}

// finish is the exit timer callback.
func (t *Toast) finish(gen uint64) {
	t.mu.Lock()
	if t.state != StateDismissing || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.state = StateClosed
	onClose := t.onClose
	t.mu.Unlock()

	onClose()
}

func (t *Toast) hideLocked() {
	t.stopTimerLocked()
	t.state = StateDismissing
	t.visible = false
}

// afterHide notifies the hide hook and then arms the exit timer, so the
// hidden state is always observed before onClose.
func (t *Toast) afterHide(snap Snapshot) {
	if t.onHide != nil {
		t.onHide(snap)
	}

	t.mu.Lock()
	if t.state != StateDismissing {
		// Torn down from inside the hook.
		t.mu.Unlock()
		return
	}
	if t.exitDelay <= 0 {
		t.gen++
		gen := t.gen
		t.mu.Unlock()
		t.dispatcher.Dispatch(func() { t.finish(gen) })
		return
	}
	t.armLocked(t.exitDelay, t.finish)
	t.mu.Unlock()
}

// armLocked replaces the current timer. d must be positive.
func (t *Toast) armLocked(d time.Duration, fire func(gen uint64)) {
	t.stopTimerLocked()
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		t.dispatcher.Dispatch(func() { fire(gen) })
	})
}

func (t *Toast) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
