// Package render writes the HTML for toasts.
//
// Toast renders one notification, Region renders the fixed bottom-right
// stack that holds them, and Page renders a complete document with the
// region and the thin client script that keeps it in sync over a
// WebSocket.
//
//	var buf bytes.Buffer
//	err := render.Region(&buf, host.List())
//
// All text and attribute values are escaped. A toast whose Visible flag
// is false carries the exit classes so the browser can animate it out
// during the exit delay.
package render
