package wschannel

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sowonglabs/swap-sdk/pkg/relay"
)

// Channel adapts a websocket connection to the relay's message channel.
// The browser's Origin header, captured at upgrade time, is attached to
// every inbound message.
type Channel struct {
	conn       *websocket.Conn
	origin     string
	production bool

	mu     sync.Mutex
	closed bool
}

func New(conn *websocket.Conn, origin string, production bool) *Channel {
	return &Channel{
		conn:       conn,
		origin:     origin,
		production: production,
	}
}

// Origin returns the connection's declared origin.
func (c *Channel) Origin() string {
	return c.origin
}

// Pump reads messages until the connection drops, delivering each to
// listener with the connection origin attached.
func (c *Channel) Pump(listener func(origin string, data []byte)) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}

		listener(c.origin, data)
	}
}

// Post writes data to the peer when the connection's origin is the
// requested target, or a permitted local development origin outside
// production. A wildcard target is always refused.
func (c *Channel) Post(data []byte, targetOrigin string) error {
	if targetOrigin == "" || targetOrigin == "*" {
		return errors.New("refusing to post to a wildcard origin")
	}

	if !relay.IsAllowed(c.origin, targetOrigin, c.production) {
		return errors.New("connection origin does not match target origin")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("channel is closed")
	}

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.conn.Close()
}
