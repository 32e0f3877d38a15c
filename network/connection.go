// network/connection.go
package network

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/drawbot/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	PingPeriod = 30 * time.Second
)

// Connection frames live-view events for one transport connection.
type Connection interface {
	SendEvent(ev session.Event) error
	Ping() error
	Close() error
	RemoteAddr() net.Addr
	WaitClosed() <-chan struct{}
}

// WSConnection sends events as JSON text messages over a websocket.
// Writes are serialized by a mutex; the read side only exists to learn
// when the peer went away.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	closed    chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn:   conn,
		closed: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop drains incoming frames until the peer disconnects. Live
// viewers never send application data; a read error is the disconnect
// signal.
func (c *WSConnection) readLoop() {
	defer c.markClosed()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WSConnection) SendEvent(ev session.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) Ping() error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// WaitClosed is closed once the peer disconnects.
func (c *WSConnection) WaitClosed() <-chan struct{} {
	return c.closed
}

func (c *WSConnection) markClosed() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
