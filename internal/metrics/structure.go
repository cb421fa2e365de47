package metrics

import "github.com/nvasani/holonsim/internal/holon"

// MaxLevel tracks the highest hierarchy level any particle reached.
type MaxLevel struct {
	name string
	max  int
}

func NewMaxLevel() *MaxLevel {
	return &MaxLevel{name: "max_level"}
}

func (m *MaxLevel) Name() string { return m.name }

func (m *MaxLevel) Observe(s holon.Snapshot) {
	for _, p := range s.Particles {
		if p.Level > m.max {
			m.max = p.Level
		}
	}
}

func (m *MaxLevel) Value() float64 {
	return float64(m.max)
}

func (m *MaxLevel) Reset() {
	m.max = 0
}

// MergeCount totals fusion events across a run.
type MergeCount struct {
	name  string
	total int
}

func NewMergeCount() *MergeCount {
	return &MergeCount{name: "merge_count"}
}

func (m *MergeCount) Name() string { return m.name }

func (m *MergeCount) Observe(s holon.Snapshot) {
	m.total += s.Merges
}

func (m *MergeCount) Value() float64 {
	return float64(m.total)
}

func (m *MergeCount) Reset() {
	m.total = 0
}
