package topology

// HopResult holds the breadth-first neighbourhood of a source node.
type HopResult struct {
	Source         NodeID
	ByHop          map[int][]NodeID // hop distance → node ids at that distance
	Distances      map[NodeID]int   // node id → shortest hop count
	TotalReachable int
}

type bfsEntry struct {
	id  NodeID
	hop int
}

// Hops performs a BFS from source up to maxHops levels. maxHops <= 0 means
// unbounded. The source itself is never part of the result.
func (g *Graph) Hops(source NodeID, maxHops int) *HopResult {
	res := &HopResult{
		Source:    source,
		ByHop:     make(map[int][]NodeID),
		Distances: make(map[NodeID]int),
	}
	if !g.Contains(source) {
		return res
	}

	visited := make([]bool, len(g.nodes))
	visited[source] = true
	queue := []bfsEntry{{id: source}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if maxHops > 0 && current.hop >= maxHops {
			continue
		}

		for _, next := range g.adjacency[current.id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			hop := current.hop + 1
			res.Distances[next] = hop
			res.ByHop[hop] = append(res.ByHop[hop], next)
			res.TotalReachable++
			queue = append(queue, bfsEntry{id: next, hop: hop})
		}
	}

	return res
}

// Reachable reports which of ids can be reached from source.
func (g *Graph) Reachable(source NodeID, ids []NodeID) []NodeID {
	hops := g.Hops(source, 0)
	var out []NodeID
	for _, id := range ids {
		if id == source {
			out = append(out, id)
			continue
		}
		if _, ok := hops.Distances[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
