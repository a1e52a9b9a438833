package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.TopologicalSort] and
	// [Graph.Validate] when the graph contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
// Metadata maps are never nil once stored in a graph.
type Metadata map[string]any

// Node is a vertex of the dependency graph.
type Node struct {
	ID    string   // Unique identifier
	Label string   // Display label, defaults to ID
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge points from a node to a node that depends on it: the From node must be
// resolved before the To node.
type Edge struct {
	From string
	To   string
	Kind string   // Free-form edge label, e.g. "anchor" or "ratio"
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// Graph is a directed graph that may contain cycles.
//
// Nodes keep their insertion order, and every query that returns a list of
// IDs returns them in a deterministic order. The zero value is not usable;
// create graphs with [New]. Graph is not safe for concurrent use.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node. It returns [ErrInvalidNodeID] for an empty ID and
// [ErrDuplicateNodeID] when the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	node := &n
	g.nodes[n.ID] = node
	g.order = append(g.order, n.ID)
	return nil
}

// EnsureNode returns the node with the given ID, adding it first if needed.
func (g *Graph) EnsureNode(id string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	_ = g.AddNode(Node{ID: id})
	return g.nodes[id]
}

// AddEdge adds a directed edge between existing nodes. Duplicate edges
// between the same pair are ignored so adjacency lists stay sets.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.outgoing[e.From], e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes that depend on id.
// The returned slice should be treated as read-only.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes id depends on.
// The returned slice should be treated as read-only.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}
