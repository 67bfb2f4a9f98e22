package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-signals/src/logger"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Connection states.
// -----------------------------------------------------------------------------

const (
	StateDisconnected = "DISCONNECTED"
	StateConnecting   = "CONNECTING"
	StateOpen         = "OPEN"
	StateClosing      = "CLOSING"
	StateError        = "ERROR"
	StateReconnecting = "RECONNECTING"
	StateFailed       = "FAILED"
)

// Reconnect policy: a fixed delay between attempts, and a hard cap after
// which the client gives up for good. FAILED is terminal; recovery requires
// a new StreamClient.
const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 5 * time.Second
)

// -----------------------------------------------------------------------------
// Transport abstraction, so the state machine can be driven without a real
// server behind it.
// -----------------------------------------------------------------------------

type Connection interface {
	ReadMessage() ([]byte, error)
	Close() error
}

type Transport interface {
	Dial(ctx context.Context, url string) (Connection, error)
}

// -----------------------------------------------------------------------------
// WebsocketTransport is the production transport.
// -----------------------------------------------------------------------------

type WebsocketTransport struct {
	Dialer *websocket.Dialer
}

func NewWebsocketTransport() *WebsocketTransport {
	return &WebsocketTransport{Dialer: websocket.DefaultDialer}
}

func (t *WebsocketTransport) Dial(ctx context.Context, url string) (Connection, error) {
	conn, _, err := t.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConnection{conn: conn}, nil
}

type wsConnection struct {
	conn *websocket.Conn
}

func (c *wsConnection) ReadMessage() ([]byte, error) {
	_, message, err := c.conn.ReadMessage()
	return message, err
}

func (c *wsConnection) Close() error {
	return c.conn.Close()
}

// -----------------------------------------------------------------------------
// StreamClient consumes a market-update stream and owns the reconnect
// lifecycle: DISCONNECTED -> CONNECTING -> OPEN -> (CLOSING | ERROR) ->
// DISCONNECTED, with RECONNECTING between failed attempts.
// -----------------------------------------------------------------------------

type StreamClient struct {
	URL       string
	Transport Transport
	Logger    *logger.Logger

	MaxAttempts int
	RetryDelay  time.Duration

	// OnMessage receives every raw frame while OPEN.
	OnMessage func(message []byte)

	mu       sync.RWMutex
	state    string
	attempts int
}

// -----------------------------------------------------------------------------

func NewStreamClient(url string, transport Transport, log *logger.Logger) *StreamClient {
	return &StreamClient{
		URL:         url,
		Transport:   transport,
		Logger:      log,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		state:       StateDisconnected,
	}
}

// -----------------------------------------------------------------------------

// State returns the current connection state.
func (c *StreamClient) State() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *StreamClient) setState(state string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Attempts returns the current consecutive failed-attempt count.
func (c *StreamClient) Attempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts
}

// -----------------------------------------------------------------------------

// Run drives the connection until ctx is cancelled or the attempt cap is
// exhausted. Returns nil on clean shutdown, an error when the client ends
// FAILED.
func (c *StreamClient) Run(ctx context.Context) error {
	for {
		c.mu.Lock()
		c.attempts++
		attempt := c.attempts
		c.mu.Unlock()

		c.setState(StateConnecting)
		c.Logger.Info("Connecting to %s (attempt %d/%d)", c.URL, attempt, c.MaxAttempts)

		conn, err := c.Transport.Dial(ctx, c.URL)
		if err == nil {
			// Connected: the failure counter resets so a later outage gets
			// a fresh attempt budget.
			c.mu.Lock()
			c.attempts = 0
			c.mu.Unlock()
			c.setState(StateOpen)
			c.Logger.Info("Connected to %s", c.URL)

			readErr := c.consume(ctx, conn)
			if ctx.Err() != nil {
				c.setState(StateClosing)
				conn.Close()
				c.setState(StateDisconnected)
				return nil
			}

			c.setState(StateError)
			c.Logger.Warning("Connection lost: %v", readErr)
			conn.Close()
			c.setState(StateDisconnected)
			continue
		}

		c.Logger.Warning("Connection attempt %d/%d failed: %v", attempt, c.MaxAttempts, err)

		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return nil
		}

		if attempt >= c.MaxAttempts {
			c.setState(StateFailed)
			c.Logger.Error("Giving up on %s after %d attempts", c.URL, attempt)
			return fmt.Errorf("connection failed after %d attempts: %w", attempt, err)
		}

		c.setState(StateReconnecting)
		select {
		case <-ctx.Done():
			c.setState(StateDisconnected)
			return nil
		case <-time.After(c.RetryDelay):
		}
	}
}

// -----------------------------------------------------------------------------

// consume reads frames until the connection breaks or ctx is cancelled.
func (c *StreamClient) consume(ctx context.Context, conn Connection) error {
	readDone := make(chan error, 1)

	go func() {
		for {
			message, err := conn.ReadMessage()
			if err != nil {
				readDone <- err
				return
			}
			if c.OnMessage != nil {
				c.OnMessage(message)
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-readDone:
		return err
	}
}
