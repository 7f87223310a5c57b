package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/protocol"
)

// client is one websocket connection.
type client struct {
	id     string
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		server: s,
		send:   make(chan []byte, s.config.SendQueueSize),
		done:   make(chan struct{}),
	}
	c.logger = s.logger.With("client_id", c.id, "remote", r.RemoteAddr)

	// Register and snapshot in one loop task so no commit lands between
	// the Reset frame and the first Mutations frame this client sees.
	var (
		html    string
		nextSeq uint64
		rerr    error
	)
	err = s.loop.Do(r.Context(), func() {
		html, rerr = s.renderer.RenderChildren(s.doc.Root)
		if rerr != nil {
			return
		}
		nextSeq = s.seq + 1
		c.enqueue(protocol.NewFrame(protocol.FrameReset, protocol.EncodeReset(nextSeq, html)).Encode())
		s.register(c)
	})
	if err == nil {
		err = rerr
	}
	if err != nil {
		c.logger.Error("client setup failed", "error", err)
		c.close()
		return
	}

	go c.writeLoop()
	c.readLoop()
}

// enqueue queues a frame without blocking. It is called on the loop.
func (c *client) enqueue(frame []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// readLoop continuously reads messages from the connection and submits
// events to the loop. It blocks until the connection fails or closes.
func (c *client) readLoop() {
	defer c.close()

	cfg := c.server.config
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		if msgType != websocket.BinaryMessage {
			c.reject(errors.New("E160").WithDetail("text message"))
			continue
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.reject(err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			c.handleEventFrame(frame.Payload)
		default:
			c.reject(errors.New("E160").WithDetailf("unexpected %s frame from client", frame.Type))
		}
	}
}

// handleEventFrame decodes an event and dispatches it on the loop.
func (c *client) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		c.reject(err)
		return
	}

	s := c.server
	err = s.loop.Submit(func() {
		called, err := s.doc.DispatchID(ev.Node, ev.VDOM())
		if s.recorder != nil {
			s.recorder.EventReceived(eventLabel(ev.Type), err == nil)
		}
		if err != nil {
			c.reject(err)
			return
		}
		c.logger.Debug("event dispatched", "node", ev.Node, "type", ev.Type, "listeners", called)
	})
	if err != nil {
		c.logger.Warn("event dropped", "error", err, "type", ev.Type)
		c.sendError(protocol.NewErrorMessage(err, false))
	}
}

// reject reports a non-fatal client error.
func (c *client) reject(err error) {
	c.logger.Warn("client frame rejected", "error", err)
	c.sendError(protocol.NewErrorMessage(err, false))
}

func (c *client) sendError(em *protocol.ErrorMessage) {
	frame := protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)).Encode()
	if err := c.enqueue(frame); err != nil {
		c.logger.Debug("error frame dropped", "error", err)
	}
}

// writeLoop sends queued frames and heartbeat pings until the client
// closes.
func (c *client) writeLoop() {
	cfg := c.server.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.logger.Warn("write error", "error", err)
				return
			}
			if c.server.recorder != nil {
				c.server.recorder.FrameSent()
			}

		case <-ticker.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Warn("ping error", "error", err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// close unregisters the client and closes the connection. Safe to call
// more than once and from any goroutine.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.server.unregister(c)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
	})
}

// eventLabel bounds the cardinality of client supplied event types.
func eventLabel(t string) string {
	if len(t) > 24 {
		return "other"
	}
	for i := 0; i < len(t); i++ {
		if t[i] < 'a' || t[i] > 'z' {
			return "other"
		}
	}
	return t
}
