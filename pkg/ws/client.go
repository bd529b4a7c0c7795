package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one websocket connection with buffered inbound and outbound
// channels. The reader pump closes R when the peer disconnects; the writer
// pump drains W until Close.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte
	W    chan []byte

	compression bool
	done        chan struct{}
	closeOnce   sync.Once
}

func NewClient(conn *websocket.Conn, compression bool) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn:        conn,
		R:           make(chan []byte, 128),
		W:           make(chan []byte, 128),
		compression: compression,
		done:        make(chan struct{}),
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t == websocket.CloseMessage {
			return
		}

		if t == websocket.TextMessage {
			if c.compression {
				msg, err = Decompress(msg)
				if err != nil {
					continue
				}
			}

			// Nobody reads R once the serving loop returned, so the send
			// gives up when the client is closed instead of blocking forever.
			select {
			case c.R <- msg:
			case <-c.done:
				return
			}
		}
	}
}

func (c *Client) runWriter() {
	for msg := range c.W {
		if c.compression {
			var err error
			msg, err = Compress(msg)
			if err != nil {
				continue
			}
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Write queues one outbound text frame. It returns an error instead of
// panicking if the client was already closed.
func (c *Client) Write(msg []byte) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if s, ok := r.(string); ok {
			err = errors.New(s)
		} else {
			err = errors.New("connection is closed")
		}
	}()

	c.W <- msg
	return nil
}

// Close shuts the connection down. The reader pump observes the closed
// connection and closes R, which is how serving loops learn about the
// disconnect. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.W)
		c.Conn.Close()
	})
}
