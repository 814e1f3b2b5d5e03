package toast

import (
	"time"

	"github.com/vango-dev/toastd/internal/clock"
	"github.com/vango-dev/toastd/pkg/loop"
)

const (
	// DefaultDuration is how long a toast stays up when no duration is given.
	DefaultDuration = 4000 * time.Millisecond

	// DefaultExitDelay is the gap between hiding a toast and calling onClose,
	// long enough for the client exit transition.
	DefaultExitDelay = 300 * time.Millisecond

	// NoAutoDismiss disables the auto-dismiss timer.
	NoAutoDismiss time.Duration = -1

	// NoExitDelay closes a hidden toast without waiting. HostConfig
	// treats a zero ExitDelay as unset, so use this to disable the delay.
	NoExitDelay time.Duration = -1
)

// Option configures a Toast.
type Option func(*options)

type options struct {
	id          string
	typ         Type
	title       string
	duration    time.Duration
	exitDelay   time.Duration
	actionLabel string
	actionID    string
	onAction    func()
	onHide      func(Snapshot)
	clock       clock.Clock
	dispatcher  loop.Dispatcher
}

func defaultOptions() options {
	return options{
		typ:        TypeInfo,
		duration:   DefaultDuration,
		exitDelay:  DefaultExitDelay,
		clock:      clock.Real(),
		dispatcher: loop.Inline,
	}
}

// WithID sets the identifier reported in snapshots.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithType sets the toast type. The default is TypeInfo.
func WithType(t Type) Option {
	return func(o *options) {
		o.typ = t
	}
}

// Titled sets an optional heading shown above the message.
func Titled(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithDuration sets the auto-dismiss budget. Zero or negative disables
// auto-dismiss.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		o.duration = d
	}
}

// WithExitDelay sets the delay between hiding and onClose.
// Negative values are treated as zero.
func WithExitDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.exitDelay = d
	}
}

// WithActionFunc adds a secondary action control. Both label and fn are required.
func WithActionFunc(label string, fn func()) Option {
	return func(o *options) {
		o.actionLabel = label
		o.onAction = fn
	}
}

// WithActionID attaches an opaque id to the action, reported in snapshots.
func WithActionID(id string) Option {
	return func(o *options) {
		o.actionID = id
	}
}

// WithOnHide registers a hook called once, when the toast becomes
// invisible and before onClose.
func WithOnHide(fn func(Snapshot)) Option {
	return func(o *options) {
		o.onHide = fn
	}
}

// WithClock sets the time source for the toast timers.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDispatcher sets where timer expirations run. The default runs them
// on the timer goroutine.
func WithDispatcher(d loop.Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}
