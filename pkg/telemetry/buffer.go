// Package telemetry pkg/telemetry/buffer.go
package telemetry

import (
	"sync/atomic"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// RingBuffer holds the most recent status samples for one printer. Writes
// overwrite the oldest entry once the buffer is full.
type RingBuffer struct {
	samples []models.StatusSample
	pos     int64
	size    int64
}

// NewRingBuffer creates a buffer holding size samples.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		samples: make([]models.StatusSample, size),
		size:    int64(size),
	}
}

// Add appends a sample, evicting the oldest when full.
func (b *RingBuffer) Add(s models.StatusSample) {
	pos := atomic.AddInt64(&b.pos, 1) - 1
	b.samples[pos%b.size] = s
}

// Points returns the stored samples, newest first.
func (b *RingBuffer) Points() []models.StatusSample {
	pos := atomic.LoadInt64(&b.pos)

	count := pos
	if count > b.size {
		count = b.size
	}

	points := make([]models.StatusSample, count)

	for i := int64(0); i < count; i++ {
		idx := (pos - i - 1 + b.size) % b.size
		points[i] = b.samples[idx]
	}

	return points
}
