package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vango-dev/toastd/pkg/toast"
)

const (
	// RegionID is the element id of the toast region.
	RegionID = "toast-region"

	// RegionClass positions the stack in the bottom-right corner.
	RegionClass = "fixed bottom-6 right-6 z-50 flex flex-col gap-3"

	baseClass  = "toast flex items-start gap-3 w-80 p-4 rounded-lg border shadow-lg transition-all duration-300"
	enterClass = "opacity-100 translate-y-0"
	exitClass  = "opacity-0 translate-y-2"
)

// writer records the first write error and skips the rest.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Toast writes the HTML for one toast.
func Toast(w io.Writer, s toast.Snapshot) error {
	out := &writer{w: w}
	writeToast(out, s)
	return out.err
}

// ToastString returns the HTML for one toast.
func ToastString(s toast.Snapshot) string {
	var buf bytes.Buffer
	_ = Toast(&buf, s)
	return buf.String()
}

// Region writes the toast stack containing toasts in order.
func Region(w io.Writer, toasts []toast.Snapshot) error {
	out := &writer{w: w}
	writeRegion(out, toasts)
	return out.err
}

// RegionString returns the HTML for the toast stack.
func RegionString(toasts []toast.Snapshot) string {
	var buf bytes.Buffer
	_ = Region(&buf, toasts)
	return buf.String()
}

func writeRegion(out *writer, toasts []toast.Snapshot) {
	out.printf(`<div id="%s" class="%s" aria-live="polite">`, RegionID, RegionClass)
	for _, s := range toasts {
		writeToast(out, s)
	}
	out.str("</div>")
}

func writeToast(out *writer, s toast.Snapshot) {
	style := toast.StyleFor(s.Type)
	id := escapeAttr(s.ID)

	motion := enterClass
	if !s.Visible {
		motion = exitClass
	}

	out.printf(`<div class="%s %s %s" role="alert" data-toast-id="%s" data-type="%s" data-state="%s">`,
		baseClass, escapeAttr(style.Container), motion, id, escapeAttr(string(s.Type)), s.State)

	out.printf(`<span class="toast-icon flex-shrink-0 %s" data-icon="%s" aria-hidden="true">%s</span>`,
		escapeAttr(style.IconClass), escapeAttr(style.Icon), escapeHTML(style.Glyph))

	out.str(`<div class="flex-1 min-w-0">`)
	if s.Title != "" {
		out.printf(`<p class="toast-title font-semibold text-sm">%s</p>`, escapeHTML(s.Title))
	}
	out.printf(`<p class="toast-message text-sm">%s</p>`, escapeHTML(s.Message))
	if s.HasAction() {
		out.printf(`<button type="button" class="toast-action mt-2 text-sm font-medium underline %s" data-toast-action="%s">%s</button>`,
			escapeAttr(style.Accent), id, escapeHTML(s.ActionLabel))
	}
	out.str("</div>")

	out.printf(`<button type="button" class="toast-close flex-shrink-0 text-gray-400 hover:text-gray-600" data-toast-dismiss="%s" aria-label="Close">&times;</button>`, id)
	out.str("</div>")
}
