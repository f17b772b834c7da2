// Package coworking builds collaboration networks among collectors.
//
// Each input record is a team of collectors that worked together on one
// specimen; the team induces a clique in the network. Edges accumulate three
// attributes across records: the number of records the pair co-occurred in,
// the hyperbolic weight (each record contributes 1/(teamsize-1), so large
// teams dilute pairwise ties), and optionally the taxa recorded by the pair.
//
// Duplicate ids within one team are collapsed before the clique is expanded,
// so self-loops never arise and a team of one distinct collector contributes
// no edges at all.
package coworking

import (
	"sort"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/graph"
	"github.com/herblab/specnet/pkg/namesmap"
)

// Node is one collector in the network. Count is the number of teams the
// collector appeared in, with within-team duplicates counted once. FullName
// is empty until [Network.SetFullNames] assigns it.
type Node struct {
	ID       string
	Count    int
	FullName string
}

// Edge is one collaboration tie with its accumulated attributes.
// U and V are ordered lexicographically (U < V).
type Edge struct {
	U, V       string
	Count      int      // records in which the pair co-occurred
	Hyperbolic float64  // sum of 1/(teamsize-1) over those records
	Taxa       []string // taxa recorded by the pair, nil unless taxa were given
}

// Network is a clique-based collaboration graph over collectors.
//
// The zero value is not usable - use [New].
type Network struct {
	nodes map[string]*Node
	adj   map[string]map[string]*Edge // mirrored; both directions share one Edge
	edges int
}

type buildConfig struct {
	names namesmap.NamesMap
	taxa  []string
}

// Option configures network construction.
type Option func(*buildConfig)

// WithNamesMap normalizes every raw collector id through nm before cliques
// are expanded. A raw id absent from the map fails construction with a
// NAME_NOT_MAPPED error.
func WithNamesMap(nm namesmap.NamesMap) Option {
	return func(c *buildConfig) { c.names = nm }
}

// WithTaxa attaches the taxon recorded by each team. The slice must be
// parallel to the teams passed to [New]; every edge then accumulates the
// taxon of each record its pair co-occurred in, duplicates included.
func WithTaxa(taxa []string) Option {
	return func(c *buildConfig) { c.taxa = taxa }
}

// New builds a coworking network from collector teams. Each team becomes a
// clique after within-team duplicates are collapsed.
//
// Construction either fully succeeds or returns an INVALID_RECORDS /
// NAME_NOT_MAPPED error with no partially built network.
func New(teams [][]string, opts ...Option) (*Network, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, team := range teams {
		for _, id := range team {
			if err := errors.ValidateNodeID(id); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidRecords, err, "team %d", i)
			}
		}
	}
	if cfg.taxa != nil && len(cfg.taxa) != len(teams) {
		return nil, errors.New(errors.ErrCodeInvalidRecords,
			"got %d taxa for %d teams", len(cfg.taxa), len(teams))
	}

	if cfg.names != nil {
		normalized, err := namesmap.Normalize(cfg.names, teams)
		if err != nil {
			return nil, err
		}
		teams = normalized
	}

	n := &Network{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]*Edge),
	}

	for i, team := range teams {
		clique := dedup(team)
		for _, id := range clique {
			n.touch(id)
		}
		if len(clique) < 2 {
			continue
		}
		hyper := 1 / float64(len(clique)-1)
		for a := 0; a < len(clique); a++ {
			for b := a + 1; b < len(clique); b++ {
				e := n.edge(clique[a], clique[b])
				e.Count++
				e.Hyperbolic += hyper
				if cfg.taxa != nil {
					e.Taxa = append(e.Taxa, cfg.taxa[i])
				}
			}
		}
	}

	return n, nil
}

// dedup collapses duplicate ids, keeping first-seen order.
func dedup(team []string) []string {
	seen := make(map[string]bool, len(team))
	out := make([]string, 0, len(team))
	for _, id := range team {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// touch increments the team count of id, creating the node on first use.
func (n *Network) touch(id string) {
	node, ok := n.nodes[id]
	if !ok {
		node = &Node{ID: id}
		n.nodes[id] = node
		n.adj[id] = make(map[string]*Edge)
	}
	node.Count++
}

// edge returns the shared edge struct for the pair, creating it on first use.
func (n *Network) edge(a, b string) *Edge {
	if e, ok := n.adj[a][b]; ok {
		return e
	}
	u, v := a, b
	if v < u {
		u, v = v, u
	}
	e := &Edge{U: u, V: v}
	n.adj[a][b] = e
	n.adj[b][a] = e
	n.edges++
	return e
}

// Node returns a copy of the node with the given id.
func (n *Network) Node(id string) (Node, bool) {
	node, ok := n.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// HasNode reports whether id exists in the network.
func (n *Network) HasNode(id string) bool {
	_, ok := n.nodes[id]
	return ok
}

// NodeCount returns the number of collectors.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of distinct collaboration ties.
func (n *Network) EdgeCount() int { return n.edges }

// Degree returns the number of distinct collaborators of id, or 0 for
// unknown ids.
func (n *Network) Degree(id string) int { return len(n.adj[id]) }

// Edge returns a copy of the edge between u and v (in either order).
func (n *Network) Edge(u, v string) (Edge, bool) {
	e, ok := n.adj[u][v]
	if !ok {
		return Edge{}, false
	}
	out := *e
	out.Taxa = append([]string(nil), e.Taxa...)
	return out, true
}

// Collectors returns all collector ids.
// The order is not guaranteed to be stable across calls.
func (n *Network) Collectors() []string {
	out := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		out = append(out, id)
	}
	return out
}

// Collaborators returns the ids of the collectors that share at least one
// team with the given collector, in sorted order. Fails with a
// NOT_FOUND_NODE error for unknown ids.
func (n *Network) Collaborators(id string) ([]string, error) {
	if _, ok := n.nodes[id]; !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "collector %q not in network", id)
	}
	out := make([]string, 0, len(n.adj[id]))
	for v := range n.adj[id] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Edges returns copies of all edges sorted by (U, V).
func (n *Network) Edges() []Edge {
	out := make([]Edge, 0, n.edges)
	seen := make(map[*Edge]bool, n.edges)
	for _, m := range n.adj {
		for _, e := range m {
			if seen[e] {
				continue
			}
			seen[e] = true
			c := *e
			c.Taxa = append([]string(nil), e.Taxa...)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// SetFullNames assigns full names to collectors from a map keyed by id.
// Ids absent from the network are ignored.
func (n *Network) SetFullNames(names map[string]string) {
	for id, name := range names {
		if node, ok := n.nodes[id]; ok {
			node.FullName = name
		}
	}
}

// Weighting selects the edge attribute exported by [Network.ToGraph].
type Weighting int

const (
	// WeightCount exports the co-occurrence count as the edge weight.
	WeightCount Weighting = iota
	// WeightHyperbolic exports the hyperbolic weight.
	WeightHyperbolic
)

// ToGraph converts the network into a weighted graph using the selected
// edge weighting. Nodes keep their team count; collectors with a full name
// carry it as a "fullname" attribute.
func (n *Network) ToGraph(w Weighting) (*graph.Graph, error) {
	if w != WeightCount && w != WeightHyperbolic {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown weighting selector %d", int(w))
	}

	g := graph.New()
	for _, node := range n.nodes {
		attrs := graph.Attrs{}
		if node.FullName != "" {
			attrs["fullname"] = node.FullName
		}
		if err := g.AddNode(graph.Node{ID: node.ID, Count: node.Count, Attrs: attrs}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "exporting node %s", node.ID)
		}
	}
	for _, e := range n.Edges() {
		weight := float64(e.Count)
		if w == WeightHyperbolic {
			weight = e.Hyperbolic
		}
		if err := g.SetEdge(e.U, e.V, weight); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "exporting edge %s-%s", e.U, e.V)
		}
	}
	return g, nil
}
