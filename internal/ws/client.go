package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

var errClientClosed = errors.New("client closed")

// Client is one websocket connection. Reads are handled in order on the
// read pump; writes go through Send to the write pump.
type Client struct {
	Handle string
	// UserID comes from a verified token, empty for anonymous players.
	UserID string

	conn       *websocket.Conn
	hub        *Hub
	dispatcher *Dispatcher
	log        *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, dispatcher *Dispatcher, userID string) *Client {
	handle := hub.NewHandle()
	return &Client{
		Handle:     handle,
		UserID:     userID,
		conn:       conn,
		hub:        hub,
		dispatcher: dispatcher,
		log:        dispatcher.log.With("connection", handle),
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run registers the client and blocks until the connection is gone.
func (c *Client) Run() {
	c.hub.Register(c)
	c.log.Info("client connected", "user_id", c.UserID)

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		defer c.hub.running.Done()
		c.Close()
		c.hub.Unregister(c)
		// the session store outlives the request, so cleanup gets its own context
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.dispatcher.Disconnected(ctx, c)
		c.log.Info("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", "error", err)
			}
			return
		}
		c.dispatcher.Handle(context.Background(), c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// enqueue hands a frame to the write pump, giving up after timeout.
func (c *Client) enqueue(data []byte, timeout time.Duration) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errClientClosed
	case <-t.C:
		return errors.New("send buffer full")
	}
}

// Close stops the write pump; the read pump exits once the socket closes.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.SetReadDeadline(time.Now())
	})
}
