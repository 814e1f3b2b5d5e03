package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	opDismiss = "dismiss"
	opAction  = "action"
)

// HandleWebSocket upgrades the connection and streams lifecycle events.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, s.config.SendBuffer),
		remote: r.RemoteAddr,
	}
	if !s.hub.register(c) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	s.logger.Debug("client connected", "remote", c.remote)

	go c.writePump(s.config.WriteTimeout, s.config.PingInterval)
	s.readLoop(c)
}

// readLoop reads client operations until the connection closes.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.hub.unregister(c)
		s.logger.Debug("client disconnected", "remote", c.remote)
	}()

	readTimeout := 2 * s.config.PingInterval
	c.conn.SetReadLimit(s.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.replyError(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
			continue
		}
		s.handleClientMessage(c, msg)
	}
}

// handleClientMessage applies one client operation on the dispatcher.
func (s *Server) handleClientMessage(c *client, msg ClientMessage) {
	if msg.ID == "" {
		s.replyError(c, ErrMissingID)
		return
	}

	var op func(id string) error
	switch msg.Op {
	case opDismiss:
		op = s.host.Dismiss
	case opAction:
		op = s.host.Action
	default:
		s.replyError(c, fmt.Errorf("%w: %q", ErrUnknownOp, msg.Op))
		return
	}

	s.config.Dispatcher.Dispatch(func() {
		if err := op(msg.ID); err != nil {
			s.replyError(c, err)
		}
	})
}

func (s *Server) replyError(c *client, err error) {
	data, _ := json.Marshal(Message{Event: eventError, Error: err.Error(), At: time.Now()})
	if !c.trySend(s.hub, data) {
		s.logger.Debug("error reply dropped", "remote", c.remote, "error", err)
	}
}
