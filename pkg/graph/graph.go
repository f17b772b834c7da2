// Package graph provides an undirected weighted graph with attributed nodes.
//
// The type in this package is the common currency of specnet: bipartite
// projections produce one, the coworking builder can convert to one, and the
// io and render packages consume one. Nodes carry an occurrence count plus
// arbitrary attributes; each unordered node pair has at most one edge with a
// single float64 weight.
package graph

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by edge operations when an endpoint does not
	// exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.SetEdge] when both endpoints are the
	// same node. Self-loops are never valid in specnet graphs.
	ErrSelfLoop = errors.New("self-loops are not allowed")
)

// Attrs stores arbitrary key-value pairs attached to a node. Attrs maps are
// never nil after AddNode.
type Attrs map[string]any

// Node represents a vertex with an occurrence count and free-form attributes.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID    string // Unique identifier
	Count int    // Number of input records the node appeared in
	Attrs Attrs  // Arbitrary key-value attributes (never nil after AddNode)
}

// Edge represents an undirected weighted connection between two nodes.
// U and V are ordered lexicographically (U < V) in all slices returned by
// [Graph.Edges], so each unordered pair appears exactly once.
type Edge struct {
	U      string
	V      string
	Weight float64
}

// Graph is an undirected weighted graph backed by adjacency maps.
//
// The zero value is not usable - use New to create a valid instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes map[string]*Node
	adj   map[string]map[string]float64 // u -> v -> weight, mirrored
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]float64),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Attrs field is
// automatically initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.adj[node.ID] = make(map[string]float64)
	return nil
}

// SetEdge sets the weight of the undirected edge u-v, creating it if absent.
// Returns ErrUnknownNode if either endpoint does not exist, or ErrSelfLoop
// if u == v.
func (g *Graph) SetEdge(u, v string, weight float64) error {
	if u == v {
		return ErrSelfLoop
	}
	if _, ok := g.nodes[u]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.nodes[v]; !ok {
		return ErrUnknownNode
	}
	g.adj[u][v] = weight
	g.adj[v][u] = weight
	return nil
}

// AddEdgeWeight adds delta to the weight of the undirected edge u-v,
// creating the edge with weight delta if absent. Endpoint and self-loop
// rules are the same as for [Graph.SetEdge].
func (g *Graph) AddEdgeWeight(u, v string, delta float64) error {
	cur, ok := g.Weight(u, v)
	if !ok {
		cur = 0
	}
	return g.SetEdge(u, v, cur+delta)
}

// RemoveNode removes a node and all its incident edges.
// Removing an unknown node is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for v := range g.adj[id] {
		delete(g.adj[v], id)
	}
	delete(g.adj, id)
	delete(g.nodes, id)
}

// RemoveEdge removes the undirected edge u-v if it exists.
// No error is returned if the edge does not exist.
func (g *Graph) RemoveEdge(u, v string) {
	if m, ok := g.adj[u]; ok {
		delete(m, v)
	}
	if m, ok := g.adj[v]; ok {
		delete(m, u)
	}
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Weight returns the weight of the undirected edge u-v and true, or 0 and
// false if the edge does not exist.
func (g *Graph) Weight(u, v string) (float64, bool) {
	m, ok := g.adj[u]
	if !ok {
		return 0, false
	}
	w, ok := m[v]
	return w, ok
}

// HasEdge reports whether the undirected edge u-v exists.
func (g *Graph) HasEdge(u, v string) bool {
	_, ok := g.Weight(u, v)
	return ok
}

// Nodes returns all nodes in the graph. The order is not guaranteed.
// The returned slice contains pointers to the actual node structs, so
// modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// NodeIDs returns all node IDs in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns all edges with U < V, sorted by (U, V) for deterministic
// output. Modifications to the returned slice do not affect the graph.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for u, m := range g.adj {
		for v, w := range m {
			if u < v {
				edges = append(edges, Edge{U: u, V: v, Weight: w})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})
	return edges
}

// Neighbors returns the IDs of nodes adjacent to id, in sorted order.
// Returns nil if the node has no neighbors or doesn't exist.
func (g *Graph) Neighbors(id string) []string {
	m, ok := g.adj[id]
	if !ok || len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of edges incident to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges in the graph.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, m := range g.adj {
		total += len(m)
	}
	return total / 2
}
