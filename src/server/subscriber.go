package server

import (
	"sync/atomic"
	"time"

	"crypto-signals/src/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024 // 1MB for larger JSON messages
)

// Subscriber connection states.
const (
	SubConnecting int32 = iota
	SubOpen
	SubClosing
	SubClosed
)

var subStateNames = map[int32]string{
	SubConnecting: "CONNECTING",
	SubOpen:       "OPEN",
	SubClosing:    "CLOSING",
	SubClosed:     "CLOSED",
}

// -----------------------------------------------------------------------------
// Subscriber Structure
// -----------------------------------------------------------------------------

type Subscriber struct {
	ConnectionID string

	hub  *Server
	conn *websocket.Conn
	send chan *models.MMarketUpdate

	state     atomic.Int32
	lastAcked atomic.Uint64
}

// -----------------------------------------------------------------------------

func NewSubscriber(hub *Server, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{
		ConnectionID: uuid.NewString(),
		hub:          hub,
		conn:         conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MMarketUpdate, 256),
	}
	sub.state.Store(SubConnecting)
	return sub
}

// -----------------------------------------------------------------------------

func (c *Subscriber) setState(state int32) {
	c.state.Store(state)
}

// State returns the connection state name.
func (c *Subscriber) State() string {
	return subStateNames[c.state.Load()]
}

// LastAckedSequence is the sequence number of the last update whose write to
// this subscriber completed.
func (c *Subscriber) LastAckedSequence() uint64 {
	return c.lastAcked.Load()
}

// PendingQueueDepth reports how many updates are buffered but not yet
// written to this subscriber.
func (c *Subscriber) PendingQueueDepth() int {
	return len(c.send)
}

// detach hands the subscriber back to the hub for removal. Once the hub has
// shut down nobody drains the unregister channel, so the send must not block
// past that point.
func (c *Subscriber) detach() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from the subscriber.
// Acts as a watchdog for the connection.
// -----------------------------------------------------------------------------

func (c *Subscriber) readPump() {
	defer func() {
		c.state.Store(SubClosing)
		c.detach()
		c.conn.Close()
		c.hub.Logger.Info("Subscriber %s disconnected", c.ConnectionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Subscribers are read-only consumers; inbound frames only keep
		// the connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
	}
}

// -----------------------------------------------------------------------------
// writePump - sends updates to the subscriber.
// -----------------------------------------------------------------------------

func (c *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(update); err != nil {
				c.hub.Logger.Info("Write error for %s: %v", c.ConnectionID, err)
				return
			}
			c.lastAcked.Store(update.Data.Sequence)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
