package utils

import (
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-capacity circular buffer of ticks. Oldest entry is
// evicted on overflow. Entries are ordered by arrival; gaps from missed
// cycles do not corrupt the ordering.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []models.MTick
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 100
	}

	return &RingBuffer{
		data:     make([]models.MTick, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a tick, evicting the oldest entry when full
func (rb *RingBuffer) Append(tick models.MTick) {
	rb.data[rb.index] = tick
	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n latest ticks, oldest first
func (rb *RingBuffer) GetLatest(n int) []models.MTick {
	if rb.size == 0 || n <= 0 {
		return []models.MTick{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MTick, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all ticks in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MTick {
	if rb.size == 0 {
		return []models.MTick{}
	}

	result := make([]models.MTick, rb.size)

	var startIdx int
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Tail returns the most recent tick and whether one exists
func (rb *RingBuffer) Tail() (models.MTick, bool) {
	if rb.size == 0 {
		return models.MTick{}, false
	}
	return rb.data[(rb.index-1+rb.capacity)%rb.capacity], true
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
