// Package toast implements server-owned toast notifications: the
// lifecycle of a single toast, a host container that stacks them, and
// helpers that emit toast payloads to any Emitter.
//
// # Lifecycle
//
// A Toast moves through three states:
//
//	Showing ──(duration elapses | Dismiss)──▶ Dismissing ──(exit delay)──▶ Closed
//
// Entering Dismissing hides the toast and notifies the OnHide hook so the
// client can play its exit transition. After the exit delay (300ms by
// default) the owner's onClose callback runs exactly once. A duration of
// zero or less never auto-dismisses.
//
// The owner may tear a toast down at any time. Teardown cancels the
// pending timer and guarantees onClose is never called afterwards.
//
//	t, err := toast.New("Project deleted", func() { remove(id) },
//	    toast.WithType(toast.TypeSuccess),
//	    toast.WithActionFunc("Undo", undo),
//	)
//
// # Host
//
// Host is the container most code uses. It assigns ids, applies per-type
// default durations, removes toasts once they close and fans lifecycle
// events out to subscribers:
//
//	host := toast.NewHost(toast.DefaultHostConfig())
//	unsubscribe := host.Subscribe(func(ev toast.Event) { ... })
//	id, err := host.Success("Changes saved")
//
// # Emitting
//
// Application code that only wants to raise a toast can use the emit
// helpers against any Emitter. Host implements Emitter, so the payload
// mounts a real toast:
//
//	toast.Error(host, "Failed to delete project")
//	toast.WithAction(host, toast.TypeInfo, "Item deleted", "Undo", "undo-42")
package toast
