package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"image-workbench/internal/logger"
)

// DefaultMaxBytes is the soft ceiling above which the manager warns.
const DefaultMaxBytes = 2 * 1024 * 1024 * 1024

// Manager tracks every OpenCV Mat allocated through the safe package so
// leaks show up in the logs and in the metrics gauges.
type Manager struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
	logger      logger.Logger
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakBytes      int64
	Allocations    int64
	MaxAllowed     int64
}

// InUse returns the bytes held by live Mats.
func (s Stats) InUse() int64 {
	return s.TotalAllocated - s.TotalReleased
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		allocations: make(map[uint64]*AllocationRecord),
		stats: Stats{
			MaxAllowed: DefaultMaxBytes,
		},
		logger: log,
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
	m.stats.Allocations++

	inUse := m.stats.InUse()
	if inUse > m.stats.PeakBytes {
		m.stats.PeakBytes = inUse
	}
	if inUse > m.stats.MaxAllowed {
		m.logger.Warning("MemoryManager", "Mat memory above limit", map[string]interface{}{
			"in_use_bytes": inUse,
			"limit_bytes":  m.stats.MaxAllowed,
			"tag":          tag,
		})
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.allocations[id]
	if !exists {
		m.logger.Debug("MemoryManager", "release of untracked Mat", map[string]interface{}{
			"id":  id,
			"tag": tag,
		})
		return
	}

	delete(m.allocations, id)
	m.stats.TotalReleased += record.Size
	m.stats.ActiveMats--
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Leaks lists live allocations older than minAge, oldest first.
func (m *Manager) Leaks(minAge time.Duration) []AllocationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-minAge)
	var out []AllocationRecord
	for _, record := range m.allocations {
		if record.CreatedAt.Before(cutoff) || minAge == 0 {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Shutdown reports Mats that were never closed.
func (m *Manager) Shutdown() {
	leaks := m.Leaks(0)
	stats := m.GetStats()

	if len(leaks) == 0 {
		m.logger.Debug("MemoryManager", "all Mats released", map[string]interface{}{
			"allocations": stats.Allocations,
			"peak_bytes":  stats.PeakBytes,
		})
		return
	}

	tags := make([]string, 0, len(leaks))
	for _, leak := range leaks {
		tags = append(tags, fmt.Sprintf("%s(%d)", leak.Tag, leak.Size))
	}
	m.logger.Warning("MemoryManager", "Mats still allocated at shutdown", map[string]interface{}{
		"count": len(leaks),
		"mats":  tags,
	})
}
