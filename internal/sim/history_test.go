// internal/sim/history_test.go
package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxalab/pitchvillage/internal/models"
)

func snapAt(ts time.Time) models.GraphSnapshot {
	return models.GraphSnapshot{Timestamp: ts}
}

func TestHistoryCapAndFIFOEviction(t *testing.T) {
	h := NewHistory(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		h.Capture(snapAt(base.Add(time.Duration(i) * time.Second)))
	}

	require.Equal(t, 3, h.Len())
	assert.Equal(t, 3, h.Cap())

	// Oldest two were evicted; index 0 is now the third capture.
	oldest, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, base.Add(2*time.Second), oldest.Timestamp)

	newest, ok := h.At(2)
	require.True(t, ok)
	assert.Equal(t, base.Add(4*time.Second), newest.Timestamp)
}

func TestHistoryAtOutOfRange(t *testing.T) {
	h := NewHistory(2)
	h.Capture(snapAt(time.Now()))

	_, ok := h.At(-1)
	assert.False(t, ok)
	_, ok = h.At(1)
	assert.False(t, ok)
}

func TestHistoryNearest(t *testing.T) {
	h := NewHistory(10)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		h.Capture(snapAt(base.Add(time.Duration(i*10) * time.Second)))
	}

	got, ok := h.Nearest(base.Add(14 * time.Second))
	require.True(t, ok)
	assert.Equal(t, base.Add(10*time.Second), got.Timestamp)

	got, ok = h.Nearest(base.Add(-time.Hour))
	require.True(t, ok)
	assert.Equal(t, base, got.Timestamp)

	got, ok = h.Nearest(base.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, base.Add(30*time.Second), got.Timestamp)
}

func TestHistoryNearestEmpty(t *testing.T) {
	h := NewHistory(4)
	_, ok := h.Nearest(time.Now())
	assert.False(t, ok)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(4)
	h.Capture(snapAt(time.Now()))
	h.Clear()
	assert.Equal(t, 0, h.Len())
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Capture(snapAt(time.Now()))
	h.Capture(snapAt(time.Now()))
	assert.Equal(t, 1, h.Len())
}
