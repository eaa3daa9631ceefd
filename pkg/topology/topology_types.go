package topology

import "strings"

// NodeID identifies a node within one generated graph. IDs are dense:
// a graph of n nodes uses ids 0..n-1.
type NodeID int

// NodeType is the role a node plays in the fake network.
type NodeType int

const (
	Server NodeType = iota
	Router
	Firewall
	Database
	Endpoint
)

// AllNodeTypes lists every node type in declaration order.
var AllNodeTypes = []NodeType{Server, Router, Firewall, Database, Endpoint}

// String returns the lowercase name of the node type
func (t NodeType) String() string {
	switch t {
	case Server:
		return "server"
	case Router:
		return "router"
	case Firewall:
		return "firewall"
	case Database:
		return "database"
	case Endpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// Upper returns the type name in upper case, as used in narrative lines.
func (t NodeType) Upper() string {
	return strings.ToUpper(t.String())
}

// HighValue reports whether nodes of this type are infiltration objectives.
func (t NodeType) HighValue() bool {
	return t == Server || t == Database
}

// HighValueTypes returns, in declaration order, the types for which
// HighValue reports true.
func HighValueTypes() []NodeType {
	var out []NodeType
	for _, t := range AllNodeTypes {
		if t.HighValue() {
			out = append(out, t)
		}
	}
	return out
}

// Node is a single host in the network. Position is layout-only.
type Node struct {
	ID   NodeID
	X    int
	Y    int
	Type NodeType
}

// Edge is an undirected link. A is always the smaller id.
type Edge struct {
	A NodeID
	B NodeID
}

// NewEdge returns the normalized edge between a and b.
func NewEdge(a, b NodeID) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Other returns the endpoint opposite to id.
func (e Edge) Other(id NodeID) NodeID {
	if e.A == id {
		return e.B
	}
	return e.A
}

// Bounds is the canvas area nodes are placed in.
type Bounds struct {
	Width  int
	Height int
}

// Stats summarizes a generated graph.
type Stats struct {
	NodeCount int
	EdgeCount int
	MinDegree int
	MaxDegree int
	ByType    map[NodeType]int
}
