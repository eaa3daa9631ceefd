package topology

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

const (
	// DefaultNodeCount is used when the caller does not choose a size.
	DefaultNodeCount = 25

	// Margin keeps nodes away from the canvas border.
	Margin = 20

	minDegree = 2
	maxDegree = 4
)

// DefaultBounds is the canvas used when no size is known yet.
var DefaultBounds = Bounds{Width: 600, Height: 300}

var (
	ErrSelfLoop      = errors.New("edge connects node to itself")
	ErrDuplicateEdge = errors.New("duplicate edge")
	ErrUnknownNode   = errors.New("edge references unknown node")
)

// Graph is a generated network. It is immutable once returned from
// Generate and may be read from any goroutine.
type Graph struct {
	nodes     []Node
	edges     []Edge
	adjacency [][]NodeID
}

// Generate builds a random graph of nodeCount nodes inside bounds.
//
// For each node in ascending id order a target degree in [2,4] is drawn
// and that many distinct new neighbours are sampled from the nodes it is
// not yet connected to. Later nodes may end up below the target degree
// when the pool of fresh candidates runs out; that shortfall is kept.
func Generate(rng *rand.Rand, nodeCount int, bounds Bounds) *Graph {
	if nodeCount <= 0 {
		nodeCount = DefaultNodeCount
	}

	g := &Graph{
		nodes:     make([]Node, nodeCount),
		adjacency: make([][]NodeID, nodeCount),
	}

	for i := range g.nodes {
		g.nodes[i] = Node{
			ID:   NodeID(i),
			X:    randomCoord(rng, bounds.Width),
			Y:    randomCoord(rng, bounds.Height),
			Type: AllNodeTypes[rng.IntN(len(AllNodeTypes))],
		}
	}

	seen := make(map[Edge]struct{})
	for i := range g.nodes {
		id := NodeID(i)
		want := minDegree + rng.IntN(maxDegree-minDegree+1)

		pool := make([]NodeID, 0, nodeCount-1)
		for j := range g.nodes {
			other := NodeID(j)
			if other == id {
				continue
			}
			if _, ok := seen[NewEdge(id, other)]; ok {
				continue
			}
			pool = append(pool, other)
		}

		for n := 0; n < want && len(pool) > 0; n++ {
			k := rng.IntN(len(pool))
			target := pool[k]
			pool = slices.Delete(pool, k, k+1)

			e := NewEdge(id, target)
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			g.edges = append(g.edges, e)
			g.adjacency[e.A] = append(g.adjacency[e.A], e.B)
			g.adjacency[e.B] = append(g.adjacency[e.B], e.A)
		}
	}

	return g
}

// randomCoord returns an integer in [Margin, extent-Margin], collapsing to
// Margin when the canvas is too small to honour both borders.
func randomCoord(rng *rand.Rand, extent int) int {
	span := extent - 2*Margin
	if span <= 0 {
		return Margin
	}
	return Margin + rng.IntN(span+1)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns a copy of the node list, indexed by id.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Edges returns a copy of the edge list in creation order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.Contains(id) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Contains reports whether id is a node of g.
func (g *Graph) Contains(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Neighbors returns the nodes adjacent to id in edge creation order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	if !g.Contains(id) {
		return nil
	}
	return slices.Clone(g.adjacency[id])
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id NodeID) int {
	if !g.Contains(id) {
		return 0
	}
	return len(g.adjacency[id])
}

// HasEdge reports whether a and b are directly connected, in either order.
func (g *Graph) HasEdge(a, b NodeID) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	return slices.Contains(g.adjacency[a], b)
}

// NodesOfType returns, in id order, every node whose type is one of types.
func (g *Graph) NodesOfType(types ...NodeType) []NodeID {
	var out []NodeID
	for _, n := range g.nodes {
		if slices.Contains(types, n.Type) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Stats computes summary counts for g.
func (g *Graph) Stats() Stats {
	s := Stats{
		NodeCount: len(g.nodes),
		EdgeCount: len(g.edges),
		ByType:    make(map[NodeType]int, len(AllNodeTypes)),
	}
	for i, n := range g.nodes {
		s.ByType[n.Type]++
		d := len(g.adjacency[i])
		if i == 0 || d < s.MinDegree {
			s.MinDegree = d
		}
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
	}
	return s
}

// Validate checks the structural invariants of g: every edge joins two
// distinct existing nodes and no unordered pair appears twice.
func (g *Graph) Validate() error {
	seen := make(map[Edge]struct{}, len(g.edges))
	for _, e := range g.edges {
		if e.A == e.B {
			return fmt.Errorf("%w: %d", ErrSelfLoop, e.A)
		}
		if !g.Contains(e.A) || !g.Contains(e.B) {
			return fmt.Errorf("%w: {%d,%d}", ErrUnknownNode, e.A, e.B)
		}
		n := NewEdge(e.A, e.B)
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: {%d,%d}", ErrDuplicateEdge, e.A, e.B)
		}
		seen[n] = struct{}{}
	}
	return nil
}
