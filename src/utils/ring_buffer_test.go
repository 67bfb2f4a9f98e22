package utils

import (
	"testing"
	"time"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func tick(price float64) models.MTick {
	return models.MTick{
		Symbol:    "BTC-USD",
		Price:     price,
		Timestamp: time.Now().Unix(),
		SourceID:  "test",
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferAppendAndOrder(t *testing.T) {
	rb := NewRingBuffer(5)

	for _, p := range []float64{1, 2, 3} {
		rb.Append(tick(p))
	}

	assert.Equal(t, 3, rb.Size())
	assert.False(t, rb.IsFull())

	all := rb.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, 1.0, all[0].Price)
	assert.Equal(t, 3.0, all[2].Price)
}

// -----------------------------------------------------------------------------

func TestRingBufferEvictsOldest(t *testing.T) {
	rb := NewRingBuffer(3)

	for _, p := range []float64{1, 2, 3, 4, 5} {
		rb.Append(tick(p))
	}

	assert.Equal(t, 3, rb.Size())
	assert.True(t, rb.IsFull())

	all := rb.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, 3.0, all[0].Price)
	assert.Equal(t, 4.0, all[1].Price)
	assert.Equal(t, 5.0, all[2].Price)
}

// -----------------------------------------------------------------------------

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer(4)

	for _, p := range []float64{1, 2, 3, 4, 5, 6} {
		rb.Append(tick(p))
	}

	// Oldest first, bounded by size
	latest := rb.GetLatest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, 5.0, latest[0].Price)
	assert.Equal(t, 6.0, latest[1].Price)

	all := rb.GetLatest(100)
	assert.Len(t, all, 4)

	assert.Empty(t, rb.GetLatest(0))
}

// -----------------------------------------------------------------------------

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(3)

	_, ok := rb.Tail()
	assert.False(t, ok)

	rb.Append(tick(10))
	rb.Append(tick(20))

	last, ok := rb.Tail()
	require.True(t, ok)
	assert.Equal(t, 20.0, last.Price)
}

// -----------------------------------------------------------------------------

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Append(tick(1))
	rb.Clear()

	assert.Equal(t, 0, rb.Size())
	assert.Empty(t, rb.GetAll())
}

// -----------------------------------------------------------------------------

func TestHistoryStorePerSymbolIsolation(t *testing.T) {
	log := logger.NewLogger("ERROR", "test")
	hs := NewHistoryStore(5, log)

	hs.Append("BTC-USD", tick(100))
	hs.Append("BTC-USD", tick(101))
	hs.Append("ETH-USD", tick(4000))

	assert.Equal(t, 2, hs.Size("BTC-USD"))
	assert.Equal(t, 1, hs.Size("ETH-USD"))
	assert.Equal(t, 0, hs.Size("SOL-USD"))

	btc, ok := hs.Tail("BTC-USD")
	require.True(t, ok)
	assert.Equal(t, 101.0, btc.Price)
}

// -----------------------------------------------------------------------------

func TestHistoryStoreWindowIsCopy(t *testing.T) {
	log := logger.NewLogger("ERROR", "test")
	hs := NewHistoryStore(5, log)

	hs.Append("BTC-USD", tick(100))
	window := hs.Window("BTC-USD", 5)
	require.Len(t, window, 1)

	// Mutating the view must not leak into the store
	window[0].Price = -1
	again := hs.Window("BTC-USD", 5)
	assert.Equal(t, 100.0, again[0].Price)
}
