package memory

import (
	"testing"
	"time"

	"image-workbench/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestManagerTracksLifecycle(t *testing.T) {
	m := NewManager(logger.NewNop())

	m.TrackAllocation(1, 100, "a")
	m.TrackAllocation(2, 50, "b")
	m.TrackDeallocation(1, "a")

	stats := m.GetStats()
	assert.Equal(t, int64(150), stats.TotalAllocated)
	assert.Equal(t, int64(100), stats.TotalReleased)
	assert.Equal(t, int64(1), stats.ActiveMats)
	assert.Equal(t, int64(50), stats.InUse())
	assert.Equal(t, int64(150), stats.PeakBytes)
	assert.Equal(t, int64(2), stats.Allocations)

	leaks := m.Leaks(0)
	if assert.Len(t, leaks, 1) {
		assert.Equal(t, "b", leaks[0].Tag)
	}
}

func TestManagerIgnoresUnknownRelease(t *testing.T) {
	m := NewManager(logger.NewNop())
	m.TrackDeallocation(42, "ghost")

	stats := m.GetStats()
	assert.Zero(t, stats.TotalReleased)
	assert.Zero(t, stats.ActiveMats)
}

func TestManagerLeaksRespectsAge(t *testing.T) {
	m := NewManager(logger.NewNop())
	m.TrackAllocation(1, 10, "fresh")

	assert.Empty(t, m.Leaks(time.Hour))
	assert.Len(t, m.Leaks(0), 1)

	m.Shutdown()
}
