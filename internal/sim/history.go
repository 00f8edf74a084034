// internal/sim/history.go
package sim

import (
	"time"

	"github.com/voxalab/pitchvillage/internal/models"
)

// History is a bounded FIFO buffer of graph snapshots taken at a fixed
// wall-clock interval. When the buffer is full the oldest snapshot is
// evicted first.
type History struct {
	cap   int
	snaps []models.GraphSnapshot
}

// NewHistory returns a history holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{cap: capacity, snaps: make([]models.GraphSnapshot, 0, capacity)}
}

// Capture appends a snapshot, evicting the oldest entry when full.
func (h *History) Capture(snap models.GraphSnapshot) {
	if len(h.snaps) == h.cap {
		copy(h.snaps, h.snaps[1:])
		h.snaps = h.snaps[:h.cap-1]
	}
	h.snaps = append(h.snaps, snap)
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snaps)
}

// Cap returns the configured capacity.
func (h *History) Cap() int {
	return h.cap
}

// At returns the snapshot at index (0 = oldest).
func (h *History) At(index int) (models.GraphSnapshot, bool) {
	if index < 0 || index >= len(h.snaps) {
		return models.GraphSnapshot{}, false
	}
	return h.snaps[index], true
}

// Nearest returns the snapshot whose timestamp is closest to ts.
func (h *History) Nearest(ts time.Time) (models.GraphSnapshot, bool) {
	if len(h.snaps) == 0 {
		return models.GraphSnapshot{}, false
	}
	best := 0
	bestDelta := absDuration(h.snaps[0].Timestamp.Sub(ts))
	for i := 1; i < len(h.snaps); i++ {
		delta := absDuration(h.snaps[i].Timestamp.Sub(ts))
		if delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	return h.snaps[best], true
}

// Clear drops every snapshot.
func (h *History) Clear() {
	h.snaps = h.snaps[:0]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
