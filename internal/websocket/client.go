package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxCommandSize bounds inbound frames, which only ever carry a small command
	maxCommandSize = 512

	// sendBufferSize is the number of outbound events queued before the client counts as too slow
	sendBufferSize = 64
)

// ErrSlowClient is returned when a client's send queue is full. The client is closed.
var ErrSlowClient = errors.New("client is too slow")

// connRegistry is the part of the Hub a client talks back to
type connRegistry interface {
	Unregister(client ClientInterface)
	Dispatch(client ClientInterface, data []byte)
}

// Client is one socket of a signed-in user. ReadPump and WritePump each own one goroutine.
type Client struct {
	id       string
	subject  string
	conn     *websocket.Conn
	registry connRegistry
	send     chan []byte

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewClient creates a client for the signed-in user
func NewClient(conn *websocket.Conn, subject string, hub *Hub) *Client {
	return newClient(conn, subject, hub)
}

func newClient(conn *websocket.Conn, subject string, registry connRegistry) *Client {
	return &Client{
		id:       uuid.NewString(),
		subject:  subject,
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Subject() string {
	return c.subject
}

// Send queues data for WritePump. A full queue closes the client.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		_ = c.Close()
		return ErrSlowClient
	}
}

// Close stops both pumps and closes the socket. Later calls return the first result.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// ReadPump hands every inbound text frame to the hub as a command until the socket fails
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("subject", c.subject).
					Msg("WebSocket unexpected close")
			}
			return
		}
		if kind == websocket.TextMessage {
			c.registry.Dispatch(c, data)
		}
	}
}

// WritePump writes queued events and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("subject", c.subject).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
