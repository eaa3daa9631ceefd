package topology

import "slices"

// Marks tracks which nodes of a graph are active (discovered) and which
// are infected. Ids outside the graph are ignored so both sets stay
// subsets of the graph's nodes.
//
// Marks is not safe for concurrent use; one goroutine owns it.
type Marks struct {
	size     int
	active   map[NodeID]struct{}
	infected map[NodeID]struct{}
}

// NewMarks returns empty marks for a graph of size nodes.
func NewMarks(size int) *Marks {
	return &Marks{
		size:     size,
		active:   make(map[NodeID]struct{}),
		infected: make(map[NodeID]struct{}),
	}
}

func (m *Marks) valid(id NodeID) bool {
	return id >= 0 && int(id) < m.size
}

// Activate marks id as discovered. It reports whether the set changed.
func (m *Marks) Activate(id NodeID) bool {
	if !m.valid(id) {
		return false
	}
	if _, ok := m.active[id]; ok {
		return false
	}
	m.active[id] = struct{}{}
	return true
}

// Infect marks id as infected. It reports whether the set changed.
func (m *Marks) Infect(id NodeID) bool {
	if !m.valid(id) {
		return false
	}
	if _, ok := m.infected[id]; ok {
		return false
	}
	m.infected[id] = struct{}{}
	return true
}

// IsActive reports whether id has been discovered.
func (m *Marks) IsActive(id NodeID) bool {
	_, ok := m.active[id]
	return ok
}

// IsInfected reports whether id has been infected.
func (m *Marks) IsInfected(id NodeID) bool {
	_, ok := m.infected[id]
	return ok
}

// Active returns the discovered ids in ascending order.
func (m *Marks) Active() []NodeID {
	return sortedKeys(m.active)
}

// Infected returns the infected ids in ascending order.
func (m *Marks) Infected() []NodeID {
	return sortedKeys(m.infected)
}

func sortedKeys(set map[NodeID]struct{}) []NodeID {
	out := make([]NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
