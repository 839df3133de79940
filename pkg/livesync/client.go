package livesync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/patchwork/pkg/component"
)

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string

	send chan []byte
	done chan struct{}
	once sync.Once
}

// queue hands data to the write loop without blocking. It reports false
// when the client's buffer is full.
func (c *client) queue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
		c.hub.mu.Lock()
		delete(c.hub.clients, c)
		c.hub.mu.Unlock()
	})
}

// HandleWebSocket upgrades the request and serves the client until it
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	rt, err := h.runtime()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	c := &client{
		hub:    h,
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, h.cfg.SendBuffer),
		done:   make(chan struct{}),
	}

	// Registering on the loop orders the snapshot before every later batch.
	err = rt.Loop().Do(r.Context(), func() {
		h.publish()
		c.send <- h.snapshotMessage()
		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()
	})
	if err != nil {
		h.log.Error("register client", "error", err)
		conn.Close()
		return
	}
	h.log.Debug("client connected", "remote", c.remote)

	go c.writeLoop()
	c.readLoop()
}

// readLoop reads client messages until the connection fails.
func (c *client) readLoop() {
	defer c.close()

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	})
	for {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.hub.log.Error("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Message{Type: TypeError, Error: "invalid message: " + err.Error()})
			continue
		}
		if err := c.handle(&msg); err != nil {
			c.hub.log.Warn("message failed", "type", msg.Type, "error", err)
			c.reply(Message{Type: TypeError, Error: err.Error()})
		}
	}
}

func (c *client) handle(msg *Message) error {
	h := c.hub
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.WriteTimeout)
	defer cancel()

	switch msg.Type {
	case TypeSet:
		v, err := decodeValue(msg.Value)
		if err != nil {
			return fmt.Errorf("set %q: %w", msg.Key, err)
		}
		return h.Set(ctx, msg.Key, v)

	case TypeDispatch:
		payload, err := decodeValue(msg.Value)
		if err != nil {
			return fmt.Errorf("dispatch %q: %w", msg.Event, err)
		}
		var found bool
		err = h.Apply(ctx, func(_ *component.Instance) {
			if n, ok := h.doc.NodeByID(msg.Node); ok {
				found = h.doc.Dispatch(n, msg.Event, payload)
			}
		})
		if err == nil && !found {
			err = fmt.Errorf("no %q listener on node #%d", msg.Event, msg.Node)
		}
		return err

	case TypeResync:
		rt, err := h.runtime()
		if err != nil {
			return err
		}
		return rt.Loop().Do(ctx, func() {
			h.publish()
			frames, ok := h.history.since(msg.Seq)
			if !ok {
				c.queue(h.snapshotMessage())
				return
			}
			for _, f := range frames {
				c.queue(f)
			}
		})

	case TypePing:
		c.reply(Message{Type: TypePong})
		return nil
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

func (c *client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if !c.queue(data) {
		c.close()
	}
}

// writeLoop sends queued frames and heartbeats until the client closes.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.hub.cfg.HeartbeatInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
