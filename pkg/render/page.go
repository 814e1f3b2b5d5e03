package render

import (
	"io"

	"github.com/vango-dev/toastd/pkg/toast"
)

// ClientScriptPath is where the server mounts ClientScript.
const ClientScriptPath = "/_toastd/client.js"

// PageData contains everything needed to render a full page.
type PageData struct {
	// Title is the page title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// Toasts are the toasts rendered into the region.
	Toasts []toast.Snapshot

	// StyleSheets are paths to external stylesheets.
	StyleSheets []string

	// Body is trusted HTML placed before the region.
	Body string

	// ClientScript is the path of the client script.
	// Defaults to ClientScriptPath.
	ClientScript string

	// SocketPath is the WebSocket endpoint the client connects to.
	// Defaults to "/ws".
	SocketPath string
}

// Page writes a complete HTML document.
func Page(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	script := page.ClientScript
	if script == "" {
		script = ClientScriptPath
	}
	socket := page.SocketPath
	if socket == "" {
		socket = "/ws"
	}

	out := &writer{w: w}
	out.str("<!DOCTYPE html>\n")
	out.printf(`<html lang="%s">`+"\n", escapeAttr(lang))

	out.str("<head>\n")
	out.str(`  <meta charset="utf-8">` + "\n")
	out.str(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		out.printf("  <title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, href := range page.StyleSheets {
		out.printf(`  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href))
	}
	out.str("</head>\n")

	out.str("<body>\n")
	out.str(page.Body)
	writeRegion(out, page.Toasts)
	out.str("\n")
	out.printf(`  <script src="%s" data-socket="%s" defer></script>`+"\n",
		escapeAttr(script), escapeAttr(socket))
	out.str("</body>\n</html>\n")

	return out.err
}
