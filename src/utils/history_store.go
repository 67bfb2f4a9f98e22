package utils

import (
	"sync"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// HistoryStore manages per-symbol rolling tick history. Single-writer per
// symbol: only the aggregator for a symbol appends. Readers always get
// copied views, never a mid-mutation slice.
// -----------------------------------------------------------------------------

type HistoryStore struct {
	buffers  map[string]*RingBuffer
	capacity int
	Logger   *logger.Logger
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryStore(capacity int, log *logger.Logger) *HistoryStore {
	return &HistoryStore{
		buffers:  make(map[string]*RingBuffer),
		capacity: capacity,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Append adds a tick to the symbol's buffer, creating it on first use.
func (hs *HistoryStore) Append(symbol string, tick models.MTick) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	buf, ok := hs.buffers[symbol]
	if !ok {
		buf = NewRingBuffer(hs.capacity)
		hs.buffers[symbol] = buf
		hs.Logger.Debug("Created history buffer for %s (capacity %d)", symbol, hs.capacity)
	}

	buf.Append(tick)
}

// -----------------------------------------------------------------------------

// Window returns up to n most recent ticks for the symbol, oldest first.
// The returned slice is a copy and is safe to hold across cycles.
func (hs *HistoryStore) Window(symbol string, n int) []models.MTick {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buf, ok := hs.buffers[symbol]
	if !ok {
		return []models.MTick{}
	}
	return buf.GetLatest(n)
}

// -----------------------------------------------------------------------------

// Tail returns the most recent tick for the symbol, if any.
func (hs *HistoryStore) Tail(symbol string) (models.MTick, bool) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buf, ok := hs.buffers[symbol]
	if !ok {
		return models.MTick{}, false
	}
	return buf.Tail()
}

// -----------------------------------------------------------------------------

// Capacity returns the per-symbol buffer capacity.
func (hs *HistoryStore) Capacity() int {
	return hs.capacity
}

// -----------------------------------------------------------------------------

// Size returns the number of ticks held for the symbol.
func (hs *HistoryStore) Size(symbol string) int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buf, ok := hs.buffers[symbol]
	if !ok {
		return 0
	}
	return buf.Size()
}
