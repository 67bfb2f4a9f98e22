package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"crypto-signals/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// scriptedTransport fails a given number of dials, then hands out scripted
// connections.
type scriptedTransport struct {
	mu        sync.Mutex
	dials     int
	failDials int
	conns     []*scriptedConn
}

func (t *scriptedTransport) Dial(ctx context.Context, url string) (Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dials++
	if t.failDials > 0 {
		t.failDials--
		return nil, errors.New("connection refused")
	}
	if len(t.conns) == 0 {
		return nil, errors.New("connection refused")
	}
	conn := t.conns[0]
	t.conns = t.conns[1:]
	return conn, nil
}

func (t *scriptedTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

// scriptedConn serves queued messages then returns a read error.
type scriptedConn struct {
	messages chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newScriptedConn(messages ...[]byte) *scriptedConn {
	c := &scriptedConn{
		messages: make(chan []byte, len(messages)+1),
		closed:   make(chan struct{}),
	}
	for _, m := range messages {
		c.messages <- m
	}
	return c
}

func (c *scriptedConn) ReadMessage() ([]byte, error) {
	select {
	case m := <-c.messages:
		return m, nil
	case <-c.closed:
		return nil, errors.New("connection reset")
	}
}

func (c *scriptedConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// -----------------------------------------------------------------------------

func newTestClient(transport Transport) *StreamClient {
	c := NewStreamClient("ws://test/ws", transport, logger.NewLogger("ERROR", "test"))
	c.RetryDelay = time.Millisecond
	return c
}

// -----------------------------------------------------------------------------

func TestRunFailsAfterAttemptCap(t *testing.T) {
	transport := &scriptedTransport{failDials: 100}
	c := newTestClient(transport)

	err := c.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
	// Exactly the cap, not one more
	assert.Equal(t, DefaultMaxAttempts, transport.dialCount())
	assert.Equal(t, DefaultMaxAttempts, c.Attempts())
}

// -----------------------------------------------------------------------------

func TestFailedStateIsTerminal(t *testing.T) {
	transport := &scriptedTransport{failDials: 100}
	c := newTestClient(transport)

	_ = c.Run(context.Background())
	require.Equal(t, StateFailed, c.State())

	dials := transport.dialCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, dials, transport.dialCount())
	assert.Equal(t, StateFailed, c.State())
}

// -----------------------------------------------------------------------------

func TestSuccessfulConnectResetsAttemptBudget(t *testing.T) {
	// Four failures, one working connection, then permanent failure: the
	// reconnect budget starts over after the successful connect, so five
	// more dials happen before FAILED.
	conn := newScriptedConn()
	transport := &scriptedTransport{failDials: 4, conns: []*scriptedConn{conn}}
	c := newTestClient(transport)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	// Wait for the client to come up, then kill the connection
	require.Eventually(t, func() bool { return c.State() == StateOpen }, time.Second, time.Millisecond)
	assert.Equal(t, 0, c.Attempts())
	conn.Close()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not terminate")
	}

	assert.Equal(t, StateFailed, c.State())
	// 4 failed + 1 success + 5 fresh failures
	assert.Equal(t, 10, transport.dialCount())
}

// -----------------------------------------------------------------------------

func TestMessagesReachHandler(t *testing.T) {
	conn := newScriptedConn([]byte("one"), []byte("two"))
	transport := &scriptedTransport{conns: []*scriptedConn{conn}}
	c := newTestClient(transport)

	var mu sync.Mutex
	var got []string
	c.OnMessage = func(message []byte) {
		mu.Lock()
		got = append(got, string(message))
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}

	mu.Lock()
	assert.Equal(t, []string{"one", "two"}, got)
	mu.Unlock()
	assert.Equal(t, StateDisconnected, c.State())
}

// -----------------------------------------------------------------------------

func TestCancelDuringReconnectStopsCleanly(t *testing.T) {
	transport := &scriptedTransport{failDials: 100}
	c := newTestClient(transport)
	c.RetryDelay = time.Hour // park the client in RECONNECTING

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.State() == StateReconnecting }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
	assert.Equal(t, StateDisconnected, c.State())
}
