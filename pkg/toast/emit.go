package toast

import (
	"fmt"
	"time"
)

// EventName is the event name dispatched for toasts.
// Client-side code should listen for this event.
const EventName = "vango:toast"

// Emitter receives custom events. Host implements it.
type Emitter interface {
	Emit(name string, data any)
}

// Show emits a toast payload to e.
//
// The payload is:
//   - level: "success|error|warning|info"
//   - message: the text
func Show(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
//
//	toast.Success(host, "Changes saved!")
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error toast.
//
//	toast.Error(host, "Failed to delete item")
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info toast.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// WithTitle shows a toast with a title and message.
//
//	toast.WithTitle(host, toast.TypeSuccess, "Settings", "Your changes have been saved.")
func WithTitle(e Emitter, level Type, title, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"title":   title,
		"message": message,
	})
}

// WithAction shows a toast with an action button. actionID is reported
// back in the action event so the client can route it.
//
//	toast.WithAction(host, toast.TypeInfo, "Item deleted", "Undo", "undo-123")
func WithAction(e Emitter, level Type, message, actionLabel, actionID string) {
	e.Emit(EventName, map[string]any{
		"level":       string(level),
		"message":     message,
		"actionLabel": actionLabel,
		"actionID":    actionID,
	})
}

// Persistent shows a toast that never auto-dismisses.
func Persistent(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":    string(level),
		"message":  message,
		"duration": 0,
	})
}

// Custom shows a toast with custom data.
func Custom(e Emitter, data map[string]any) {
	e.Emit(EventName, data)
}

// ActionHandler is called after any toast's action fires, with the
// action id the toast was mounted with.
type ActionHandler func(actionID string, s Snapshot)

// SetActionHandler sets the handler called after a toast action fires.
func (h *Host) SetActionHandler(fn ActionHandler) {
	h.mu.Lock()
	h.actionHandler = fn
	h.mu.Unlock()
}

// Emit implements Emitter. Payloads named EventName are mounted as
// toasts; anything else is ignored.
func (h *Host) Emit(name string, data any) {
	if name != EventName {
		return
	}
	payload, ok := data.(map[string]any)
	if !ok {
		h.logger.Warn("toast payload is not an object", "type", fmt.Sprintf("%T", data))
		return
	}
	if _, err := h.ShowPayload(payload); err != nil {
		h.logger.Warn("emitted toast rejected", "error", err)
	}
}

// ShowPayload mounts the toast described by an emitted payload and
// returns its id. An action label without a handler is routed through
// the host action handler.
func (h *Host) ShowPayload(payload map[string]any) (string, error) {
	props, err := PropsFromPayload(payload)
	if err != nil {
		return "", err
	}
	if props.ActionLabel != "" && props.OnAction == nil {
		props.OnAction = func() {}
	}
	return h.Show(props)
}

// PropsFromPayload decodes an emitted toast payload. A "duration" of
// zero or less means the toast never auto-dismisses; an absent duration
// selects the per-type default.
func PropsFromPayload(payload map[string]any) (Props, error) {
	var p Props

	level, _ := payload["level"].(string)
	if level == "" {
		level, _ = payload["type"].(string)
	}
	t, err := ParseType(level)
	if err != nil {
		return p, err
	}
	p.Type = t
	p.Message, _ = payload["message"].(string)
	p.Title, _ = payload["title"].(string)
	p.ActionLabel, _ = payload["actionLabel"].(string)
	p.ActionID, _ = payload["actionID"].(string)

	if raw, ok := payload["duration"]; ok {
		d, err := durationFromAny(raw)
		if err != nil {
			return p, err
		}
		if d <= 0 {
			d = NoAutoDismiss
		}
		p.Duration = d
	}
	return p, nil
}

// durationFromAny interprets numbers as milliseconds.
func durationFromAny(v any) (time.Duration, error) {
	switch n := v.(type) {
	case time.Duration:
		return n, nil
	case int:
		return time.Duration(n) * time.Millisecond, nil
	case int64:
		return time.Duration(n) * time.Millisecond, nil
	case float64:
		return time.Duration(n * float64(time.Millisecond)), nil
	case string:
		d, err := time.ParseDuration(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, n)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidDuration, v, v)
	}
}
