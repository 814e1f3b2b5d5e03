package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toastd/pkg/render"
	"github.com/vango-dev/toastd/pkg/toast"
)

// Message is one server-to-client WebSocket message.
type Message struct {
	// Event is "sync", "error" or a toast.EventKind.
	Event string `json:"event"`

	// Toast is the toast the event is about.
	Toast *toast.Snapshot `json:"toast,omitempty"`

	// Toasts is the full list, only on "sync".
	Toasts []toast.Snapshot `json:"toasts,omitempty"`

	// HTML is the rendered toast, or the region on "sync".
	HTML string `json:"html,omitempty"`

	// Error describes a rejected client operation.
	Error string `json:"error,omitempty"`

	At time.Time `json:"at"`
}

// ClientMessage is one client-to-server WebSocket message.
type ClientMessage struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

const (
	eventSync  = "sync"
	eventError = "error"
)

// hub fans host events out to connected clients.
type hub struct {
	host    *toast.Host
	logger  *slog.Logger
	buffer  int
	onDrop  func()
	onJoin  func()
	onLeave func()

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	unsubscribe func()
}

func newHub(host *toast.Host, buffer int, logger *slog.Logger) *hub {
	h := &hub{
		host:    host,
		logger:  logger,
		buffer:  buffer,
		onDrop:  func() {},
		onJoin:  func() {},
		onLeave: func() {},
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = host.Subscribe(h.broadcast)
	return h
}

// register adds c and queues the sync message under the hub lock so no
// event can slip between the snapshot and the subscription.
func (h *hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	list := h.host.List()
	data, err := json.Marshal(Message{
		Event:  eventSync,
		Toasts: list,
		HTML:   render.RegionString(list),
		At:     time.Now(),
	})
	if err != nil {
		h.logger.Error("encode sync", "error", err)
		return false
	}
	c.send <- data
	h.clients[c] = struct{}{}
	h.onJoin()
	return true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.onLeave()
	}
}

func (h *hub) broadcast(ev toast.Event) {
	s := ev.Toast
	msg := Message{Event: string(ev.Kind), Toast: &s, At: ev.At}
	switch ev.Kind {
	case toast.EventShown, toast.EventHidden, toast.EventAction:
		msg.HTML = render.ToastString(s)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode event", "event", ev.Kind, "error", err)
		return
	}

	var dropped []*client
	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			c.closeErr = ErrSlowClient
			close(c.send)
			dropped = append(dropped, c)
		}
	}
	h.mu.Unlock()

	for _, c := range dropped {
		h.logger.Warn("dropping client", "remote", c.remote, "error", c.closeErr)
		h.onDrop()
		h.onLeave()
	}
}

// len returns the number of connected clients.
func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client and stops listening to the host.
func (h *hub) close() {
	h.unsubscribe()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	for c := range clients {
		close(c.send)
	}
	h.mu.Unlock()

	for range clients {
		h.onLeave()
	}
}

// client is one WebSocket connection.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string

	// closeErr is set before send is closed when the hub drops the
	// client; it becomes the close frame reason.
	closeErr error
}

// closeMessage returns the close frame sent once send is closed.
func (c *client) closeMessage() []byte {
	if c.closeErr != nil {
		return websocket.FormatCloseMessage(websocket.CloseTryAgainLater, c.closeErr.Error())
	}
	return websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
}

// writePump drains c.send to the connection and keeps it alive with
// pings. It owns every write on conn.
func (c *client) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, c.closeMessage())
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues data unless the buffer is full. It reports whether the
// message was queued.
func (c *client) trySend(h *hub, data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
