package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/opencv/safe"
)

const component = "MemoryManager"

var _ safe.Tracker = (*Manager)(nil)

// Manager keeps a ledger of every live safe.Mat created with it as tracker.
type Manager struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
	log         logger.Logger
}

type AllocationRecord struct {
	Tag       string
	Size      int64
	CreatedAt time.Time
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakActive     int64
	MaxAllowed     int64
}

// InUse is the number of bytes currently held by live Mats.
func (s Stats) InUse() int64 {
	return s.TotalAllocated - s.TotalReleased
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		allocations: make(map[uint64]*AllocationRecord),
		stats: Stats{
			MaxAllowed: 2 * 1024 * 1024 * 1024,
		},
		log: log,
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocations[id] = &AllocationRecord{Tag: tag, Size: size, CreatedAt: time.Now()}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
	if m.stats.ActiveMats > m.stats.PeakActive {
		m.stats.PeakActive = m.stats.ActiveMats
	}

	if m.stats.InUse() > m.stats.MaxAllowed {
		m.log.Warning(component, "memory limit exceeded", map[string]interface{}{
			"in_use": m.stats.InUse(),
			"limit":  m.stats.MaxAllowed,
			"tag":    tag,
		})
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.allocations[id]
	if !exists {
		m.log.Warning(component, "release of untracked Mat", map[string]interface{}{"tag": tag})
		return
	}

	delete(m.allocations, id)
	m.stats.TotalReleased += record.Size
	m.stats.ActiveMats--
}

// CheckLimit fails when live Mats already exceed the configured budget.
func (m *Manager) CheckLimit() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stats.InUse() > m.stats.MaxAllowed {
		return fmt.Errorf("memory limit exceeded: %d bytes allocated", m.stats.InUse())
	}
	return nil
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Outstanding lists tags of Mats that have not been closed, oldest first.
func (m *Manager) Outstanding() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*AllocationRecord, 0, len(m.allocations))
	for _, r := range m.allocations {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	tags := make([]string, len(records))
	for i, r := range records {
		tags[i] = r.Tag
	}
	return tags
}

// Shutdown reports leaked Mats. It satisfies the shutdown manager contract.
func (m *Manager) Shutdown() {
	stats := m.GetStats()
	fields := map[string]interface{}{
		"allocated_bytes": stats.TotalAllocated,
		"released_bytes":  stats.TotalReleased,
		"active":          stats.ActiveMats,
		"peak":            stats.PeakActive,
	}

	if stats.ActiveMats > 0 {
		fields["outstanding"] = m.Outstanding()
		m.log.Warning(component, "Mats still open at shutdown", fields)
		return
	}

	m.log.Info(component, "all Mats released", fields)
}
