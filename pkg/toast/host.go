package toast

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vango-dev/toastd/internal/clock"
	"github.com/vango-dev/toastd/pkg/loop"
)

// EventKind identifies a host lifecycle event.
type EventKind string

const (
	// EventShown is emitted when a toast is mounted.
	EventShown EventKind = "shown"

	// EventHidden is emitted when a toast becomes invisible and starts its exit.
	EventHidden EventKind = "hidden"

	// EventClosed is emitted after a toast's exit delay, when it leaves the host.
	EventClosed EventKind = "closed"

	// EventRemoved is emitted when the host tears a toast down early.
	EventRemoved EventKind = "removed"

	// EventAction is emitted when a toast's action fires.
	EventAction EventKind = "action"
)

// Event is a lifecycle notification from a Host.
type Event struct {
	Kind  EventKind `json:"event"`
	Toast Snapshot  `json:"toast"`
	At    time.Time `json:"at"`
}

// Observer receives every event of a Host, synchronously and in order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Props describes a toast to mount on a Host.
type Props struct {
	Type    Type
	Title   string
	Message string

	// Duration is the auto-dismiss budget. Unlike WithDuration, zero
	// does not mean "never": a zero Duration is treated as unset and
	// selects the per-type default from HostConfig.Durations (error 6s,
	// warning 5s, others 4s), for every type, not just errors. Use
	// NoAutoDismiss (or any negative value) for a toast that stays up
	// until dismissed.
	Duration time.Duration

	// ActionLabel and OnAction add an action control; set both or neither.
	ActionLabel string
	OnAction    func()

	// ActionID is an opaque id passed to the host action handler.
	ActionID string
}

// HostConfig configures a Host.
type HostConfig struct {
	// Durations are the per-type default durations.
	// Default: success 4s, error 6s, info 4s, warning 5s.
	Durations map[Type]time.Duration

	// ExitDelay is passed to every toast. Default: 300ms.
	// NoExitDelay closes hidden toasts immediately.
	ExitDelay time.Duration

	// MaxVisible caps the number of showing toasts; mounting past the cap
	// dismisses the oldest. 0 means no limit.
	MaxVisible int

	// Clock is the time source. Default: real time.
	Clock clock.Clock

	// Dispatcher runs timer expirations. Default: loop.Inline.
	Dispatcher loop.Dispatcher

	// Observers receive every lifecycle event.
	Observers []Observer

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultDurations returns the per-type default durations.
func DefaultDurations() map[Type]time.Duration {
	return map[Type]time.Duration{
		TypeSuccess: 4000 * time.Millisecond,
		TypeError:   6000 * time.Millisecond,
		TypeInfo:    4000 * time.Millisecond,
		TypeWarning: 5000 * time.Millisecond,
	}
}

// DefaultHostConfig returns a HostConfig with sensible defaults.
func DefaultHostConfig() *HostConfig {
	return &HostConfig{
		Durations:  DefaultDurations(),
		ExitDelay:  DefaultExitDelay,
		Clock:      clock.Real(),
		Dispatcher: loop.Inline,
		Logger:     slog.Default(),
	}
}

// Host mounts toasts, keeps them in display order and removes them once
// they close.
type Host struct {
	config *HostConfig
	logger *slog.Logger

	mu     sync.Mutex
	toasts map[string]*Toast
	order  []string
	seq    uint64
	closed bool

	actionHandler ActionHandler

	subMu     sync.RWMutex
	subSeq    uint64
	listeners map[uint64]func(Event)
}

// NewHost creates a Host. Unset config fields take their defaults.
func NewHost(config *HostConfig) *Host {
	defaults := DefaultHostConfig()
	if config == nil {
		config = defaults
	} else {
		c := *config
		config = &c
		if config.Durations == nil {
			config.Durations = defaults.Durations
		}
		if config.ExitDelay == 0 {
			config.ExitDelay = defaults.ExitDelay
		}
		if config.Clock == nil {
			config.Clock = defaults.Clock
		}
		if config.Dispatcher == nil {
			config.Dispatcher = defaults.Dispatcher
		}
		if config.Logger == nil {
			config.Logger = defaults.Logger
		}
	}

	return &Host{
		config:    config,
		logger:    config.Logger.With("component", "toast-host"),
		toasts:    make(map[string]*Toast),
		listeners: make(map[uint64]func(Event)),
	}
}

// Show mounts a toast and returns its id.
func (h *Host) Show(p Props) (string, error) {
	typ := p.Type
	if typ == "" {
		typ = TypeInfo
	}
	if !typ.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, string(typ))
	}

	duration := p.Duration
	if duration == 0 {
		duration = h.defaultDuration(typ)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return "", ErrHostClosed
	}

	h.seq++
	id := fmt.Sprintf("toast-%d-%d", h.config.Clock.Now().UnixMilli(), h.seq)

	opts := []Option{
		WithID(id),
		WithType(typ),
		Titled(p.Title),
		WithDuration(duration),
		WithExitDelay(h.config.ExitDelay),
		WithClock(h.config.Clock),
		WithDispatcher(h.config.Dispatcher),
		WithOnHide(func(s Snapshot) { h.emit(EventHidden, s) }),
	}
	if p.ActionLabel != "" || p.OnAction != nil {
		opts = append(opts, WithActionFunc(p.ActionLabel, p.OnAction), WithActionID(p.ActionID))
	}

	t, err := New(p.Message, func() { h.closeToast(id) }, opts...)
	if err != nil {
		h.mu.Unlock()
		return "", err
	}

	h.toasts[id] = t
	h.order = append(h.order, id)
	victim := h.evictionCandidateLocked(id)
	h.mu.Unlock()

	h.logger.Debug("toast shown", "id", id, "type", typ, "duration", duration)
	h.emit(EventShown, t.Snapshot())

	if victim != nil {
		victim.Dismiss()
	}
	return id, nil
}

// Success shows a success toast with the default duration.
func (h *Host) Success(message string) (string, error) {
	return h.Show(Props{Type: TypeSuccess, Message: message})
}

// Error shows an error toast with the default duration.
func (h *Host) Error(message string) (string, error) {
	return h.Show(Props{Type: TypeError, Message: message})
}

// Info shows an info toast with the default duration.
func (h *Host) Info(message string) (string, error) {
	return h.Show(Props{Type: TypeInfo, Message: message})
}

// Warning shows a warning toast with the default duration.
func (h *Host) Warning(message string) (string, error) {
	return h.Show(Props{Type: TypeWarning, Message: message})
}

// Dismiss starts the exit of a toast. Dismissing a toast that is already
// on its way out is a no-op.
func (h *Host) Dismiss(id string) error {
	t, err := h.lookup(id)
	if err != nil {
		return err
	}
	t.Dismiss()
	return nil
}

// Action fires the action of a toast.
func (h *Host) Action(id string) error {
	t, err := h.lookup(id)
	if err != nil {
		return err
	}
	if t.actionLabel == "" {
		return ErrNoAction
	}
	if !t.Action() {
		return nil
	}
	s := t.Snapshot()
	h.mu.Lock()
	handler := h.actionHandler
	h.mu.Unlock()
	if handler != nil {
		handler(s.ActionID, s)
	}
	h.emit(EventAction, s)
	return nil
}

// Remove unmounts a toast immediately. Its timers are cancelled and its
// close event is never emitted.
func (h *Host) Remove(id string) error {
	h.mu.Lock()
	t, ok := h.toasts[id]
	if ok {
		h.deleteLocked(id)
	}
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Teardown()
	h.emit(EventRemoved, t.Snapshot())
	return nil
}

// Get returns a snapshot of one toast.
func (h *Host) Get(id string) (Snapshot, error) {
	t, err := h.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Snapshot(), nil
}

// List returns snapshots of all mounted toasts in mount order.
func (h *Host) List() []Snapshot {
	h.mu.Lock()
	toasts := make([]*Toast, 0, len(h.order))
	for _, id := range h.order {
		toasts = append(toasts, h.toasts[id])
	}
	h.mu.Unlock()

	out := make([]Snapshot, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.Snapshot())
	}
	return out
}

// Len returns the number of mounted toasts.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Subscribe registers fn for every lifecycle event. The returned function
// unsubscribes.
func (h *Host) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.subMu.Lock()
	h.subSeq++
	key := h.subSeq
	h.listeners[key] = fn
	h.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.subMu.Lock()
			delete(h.listeners, key)
			h.subMu.Unlock()
		})
	}
}

// Close tears down every toast. Subsequent Show calls fail with
// ErrHostClosed.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	toasts := make([]*Toast, 0, len(h.order))
	for _, id := range h.order {
		toasts = append(toasts, h.toasts[id])
	}
	h.toasts = make(map[string]*Toast)
	h.order = nil
	h.mu.Unlock()

	for _, t := range toasts {
		if t.Teardown() {
			h.emit(EventRemoved, t.Snapshot())
		}
	}
	h.logger.Info("toast host closed", "torn_down", len(toasts))
}

func (h *Host) defaultDuration(t Type) time.Duration {
	if d, ok := h.config.Durations[t]; ok && d != 0 {
		return d
	}
	return DefaultDuration
}

func (h *Host) lookup(id string) (*Toast, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.toasts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// closeToast is the onClose callback of every toast mounted by h.
func (h *Host) closeToast(id string) {
	h.mu.Lock()
	t, ok := h.toasts[id]
	if ok {
		h.deleteLocked(id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	h.logger.Debug("toast closed", "id", id)
	h.emit(EventClosed, t.Snapshot())
}

func (h *Host) deleteLocked(id string) {
	delete(h.toasts, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// evictionCandidateLocked returns the oldest showing toast when the
// number of showing toasts exceeds MaxVisible.
func (h *Host) evictionCandidateLocked(newest string) *Toast {
	if h.config.MaxVisible <= 0 {
		return nil
	}
	showing := 0
	var oldest *Toast
	for _, id := range h.order {
		t := h.toasts[id]
		if t.State() != StateShowing {
			continue
		}
		showing++
		if oldest == nil && id != newest {
			oldest = t
		}
	}
	if showing <= h.config.MaxVisible {
		return nil
	}
	return oldest
}

func (h *Host) emit(kind EventKind, s Snapshot) {
	ev := Event{Kind: kind, Toast: s, At: h.config.Clock.Now()}

	for _, o := range h.config.Observers {
		o.Observe(ev)
	}

	h.subMu.RLock()
	keys := make([]uint64, 0, len(h.listeners))
	for k := range h.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fns := make([]func(Event), 0, len(keys))
	for _, k := range keys {
		fns = append(fns, h.listeners[k])
	}
	h.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
