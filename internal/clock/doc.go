// Package clock provides an injectable time source for toast timers.
//
// Lifecycle code accepts a Clock instead of calling time.Now or
// time.AfterFunc directly. Real() is the production clock; Fake() is a
// deterministic clock that only moves when Advance is called, so that
// auto-dismiss and exit-animation timers can be asserted to the
// millisecond:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	t := toast.New("Saved", onClose, toast.WithClock(c))
//	c.Advance(4 * time.Second)   // auto-dismiss fires, toast hides
//	c.Advance(300 * time.Millisecond) // exit delay elapses, onClose runs
package clock
