package toast

import "errors"

// Sentinel errors for toast construction and host operations.
var (
	// ErrNilOnClose is returned when a toast is created without an onClose callback.
	ErrNilOnClose = errors.New("toast: onClose callback is required")

	// ErrUnknownType is returned for a type outside success, error, info and warning.
	ErrUnknownType = errors.New("toast: unknown type")

	// ErrActionIncomplete is returned when only one of action label and handler is set.
	ErrActionIncomplete = errors.New("toast: action label and handler must be set together")

	// ErrInvalidDuration is returned when a payload duration cannot be parsed.
	ErrInvalidDuration = errors.New("toast: invalid duration")

	// ErrNotFound is returned when a host has no toast with the given id.
	ErrNotFound = errors.New("toast: not found")

	// ErrNoAction is returned when an action is fired on a toast without one.
	ErrNoAction = errors.New("toast: toast has no action")

	// ErrHostClosed is returned when a toast is shown on a closed host.
	ErrHostClosed = errors.New("toast: host closed")
)
