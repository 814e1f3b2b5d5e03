// Package loop provides the single logical thread that toast lifecycles
// run on.
//
// Timers fire on their own goroutines. Instead of mutating toast state
// from there, the timer callback is handed to a Dispatcher, which runs it
// on the loop goroutine one function at a time. This gives the host the
// same cooperative, event-loop-driven model a browser has:
//
//	l := loop.New(256, logger)
//	go l.Run(ctx)
//
//	l.Dispatch(func() {
//	    // runs serialised with every other dispatched function
//	})
//
// Dispatch never blocks and never loses a function while the loop is
// open. Once the queue is full, functions spill into an overflow list
// that Run drains in order.
//
// Inline is a Dispatcher that runs functions synchronously; it is used
// with the fake clock in tests.
package loop
