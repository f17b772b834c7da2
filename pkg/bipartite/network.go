package bipartite

import (
	"sort"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/namesmap"
)

// Partition identifies one of the two node sets of the network.
type Partition int

const (
	// PartitionCollectors is the partition of collector nodes.
	PartitionCollectors Partition = iota
	// PartitionSpecies is the partition of species nodes.
	PartitionSpecies
)

// String returns the selector string used by CLI flags and the HTTP API.
func (p Partition) String() string {
	switch p {
	case PartitionCollectors:
		return "collectors"
	case PartitionSpecies:
		return "species"
	default:
		return "unknown"
	}
}

// ParsePartition converts a selector string into a Partition.
// Accepted values are "collectors" and "species"; anything else fails with
// an INVALID_PARTITION error.
func ParsePartition(s string) (Partition, error) {
	switch s {
	case "collectors":
		return PartitionCollectors, nil
	case "species":
		return PartitionSpecies, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidPartition,
			"partition must be %q or %q, got %q", "collectors", "species", s)
	}
}

// Node is one vertex of the network. The partition tag is assigned at
// construction and never changes; Count is the number of input records the
// id appeared in, with within-record duplicates counted once.
type Node struct {
	ID        string
	Partition Partition
	Count     int
}

// RemovePolicy controls how [Network.RemoveNodes] treats unknown ids.
type RemovePolicy int

const (
	// RemoveStrict fails the whole call when any id is unknown. Nothing is
	// removed in that case.
	RemoveStrict RemovePolicy = iota
	// RemoveIgnoreUnknown silently skips unknown ids.
	RemoveIgnoreUnknown
)

// Network is the species-collectors incidence graph. See the package
// documentation for the full model.
//
// The zero value is not usable - use [New] or [Restore].
type Network struct {
	nodes map[string]*Node
	adj   map[string]map[string]int // mirrored; values are pair multiplicities
	edges int

	matrix *Matrix // cached biadjacency view; nil until built, reset on mutation
}

type buildConfig struct {
	names namesmap.NamesMap
}

// Option configures network construction.
type Option func(*buildConfig)

// WithNamesMap normalizes every raw collector id through nm before the
// graph is built. A raw id absent from the map fails construction with a
// NAME_NOT_MAPPED error.
func WithNamesMap(nm namesmap.NamesMap) Option {
	return func(c *buildConfig) { c.names = nm }
}

// New builds a network from parallel record lists. species and collectors
// must have equal length; record i links species[i] to every id in
// collectors[i]. Duplicate collector ids within one record are counted
// once, for both node counts and edge multiplicities.
//
// Construction either fully succeeds or returns an INVALID_RECORDS /
// NAME_NOT_MAPPED error with no partially built network.
func New(species []string, collectors [][]string, opts ...Option) (*Network, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := errors.ValidateRecords(species, collectors); err != nil {
		return nil, err
	}

	if cfg.names != nil {
		normalized, err := namesmap.Normalize(cfg.names, collectors)
		if err != nil {
			return nil, err
		}
		collectors = normalized
	}

	n := &Network{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]int),
	}

	for i, sp := range species {
		if err := n.touch(sp, PartitionSpecies); err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(collectors[i]))
		for _, col := range collectors[i] {
			if seen[col] {
				continue
			}
			seen[col] = true
			if err := n.touch(col, PartitionCollectors); err != nil {
				return nil, err
			}
			n.bumpEdge(sp, col)
		}
	}

	return n, nil
}

// Restore rebuilds a network from previously exported nodes and edges, as
// produced by the io package. Edge counts must be positive and endpoints
// must exist and lie in opposite partitions.
func Restore(nodes []Node, edges []EdgeRecord) (*Network, error) {
	n := &Network{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]int),
	}

	for _, nd := range nodes {
		if err := errors.ValidateNodeID(nd.ID); err != nil {
			return nil, err
		}
		if _, exists := n.nodes[nd.ID]; exists {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", nd.ID)
		}
		if nd.Count < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has negative count", nd.ID)
		}
		node := nd
		n.nodes[node.ID] = &node
		n.adj[node.ID] = make(map[string]int)
	}

	for _, e := range edges {
		sp, okS := n.nodes[e.Species]
		col, okC := n.nodes[e.Collector]
		if !okS || !okC {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s-%s references unknown node", e.Species, e.Collector)
		}
		if sp.Partition != PartitionSpecies || col.Partition != PartitionCollectors {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s-%s does not cross partitions", e.Species, e.Collector)
		}
		if e.Count <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s-%s has non-positive count", e.Species, e.Collector)
		}
		if _, dup := n.adj[e.Species][e.Collector]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate edge %s-%s", e.Species, e.Collector)
		}
		n.adj[e.Species][e.Collector] = e.Count
		n.adj[e.Collector][e.Species] = e.Count
		n.edges++
	}

	return n, nil
}

// EdgeRecord is one species-collector edge with its record multiplicity,
// used for serialization and [Restore].
type EdgeRecord struct {
	Species   string
	Collector string
	Count     int
}

// touch increments the record count of id, creating the node on first use.
// An id already assigned to the other partition is rejected: it would merge
// a species and a collector into one node and, when they meet in a single
// record, produce a same-partition self-edge.
func (n *Network) touch(id string, p Partition) error {
	node, ok := n.nodes[id]
	if !ok {
		node = &Node{ID: id, Partition: p}
		n.nodes[id] = node
		n.adj[id] = make(map[string]int)
	} else if node.Partition != p {
		return errors.New(errors.ErrCodeInvalidRecords,
			"id %q used as both %s and %s", id, node.Partition, p)
	}
	node.Count++
	return nil
}

// bumpEdge increments the multiplicity of the species-collector pair,
// creating the edge on first use.
func (n *Network) bumpEdge(sp, col string) {
	if _, ok := n.adj[sp][col]; !ok {
		n.edges++
	}
	n.adj[sp][col]++
	n.adj[col][sp]++
}

// Node returns a copy of the node with the given id.
func (n *Network) Node(id string) (Node, bool) {
	node, ok := n.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// HasNode reports whether id exists in either partition.
func (n *Network) HasNode(id string) bool {
	_, ok := n.nodes[id]
	return ok
}

// NodeCount returns the total number of nodes across both partitions.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of distinct species-collector edges.
func (n *Network) EdgeCount() int { return n.edges }

// Multiplicity returns the number of records contributing the pair (u, v),
// or 0 if the two nodes share no edge.
func (n *Network) Multiplicity(u, v string) int {
	return n.adj[u][v]
}

// HasEdge reports whether nodes u and v share an edge.
func (n *Network) HasEdge(u, v string) bool {
	_, ok := n.adj[u][v]
	return ok
}

// Degree returns the number of distinct neighbors of id, or 0 for unknown ids.
func (n *Network) Degree(id string) int { return len(n.adj[id]) }

// Neighbors returns the ids adjacent to id, in sorted order.
// Returns nil for unknown or isolated nodes.
func (n *Network) Neighbors(id string) []string {
	m := n.adj[id]
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges sorted by (species, collector).
func (n *Network) Edges() []EdgeRecord {
	out := make([]EdgeRecord, 0, n.edges)
	for id, node := range n.nodes {
		if node.Partition != PartitionSpecies {
			continue
		}
		for col, count := range n.adj[id] {
			out = append(out, EdgeRecord{Species: id, Collector: col, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].Collector < out[j].Collector
	})
	return out
}

// RemoveNodes removes the given nodes and all incident edges, then prunes
// any node left with no neighbors as a side effect of this call. Nodes that
// were already isolated before the call are not touched.
//
// Under RemoveStrict an unknown id fails the whole call with a
// NOT_FOUND_NODE error before anything is removed; RemoveIgnoreUnknown
// skips unknown ids.
func (n *Network) RemoveNodes(ids []string, policy RemovePolicy) error {
	targets := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := n.nodes[id]; !ok {
			if policy == RemoveStrict {
				return errors.New(errors.ErrCodeNodeNotFound, "node %q not in network", id)
			}
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return nil
	}

	// Neighbors of the removed set are the only candidates for cascading:
	// a node can only become isolated by losing edges in this call.
	candidates := make(map[string]bool)
	for _, id := range targets {
		for v := range n.adj[id] {
			candidates[v] = true
		}
		n.drop(id)
	}

	for id := range candidates {
		if node, ok := n.nodes[id]; ok && len(n.adj[node.ID]) == 0 {
			n.drop(id)
		}
	}

	n.matrix = nil // mutation invalidates the biadjacency cache
	return nil
}

// drop removes one node and its incident edges without cascading.
func (n *Network) drop(id string) {
	for v := range n.adj[id] {
		delete(n.adj[v], id)
		n.edges--
	}
	delete(n.adj, id)
	delete(n.nodes, id)
}

// partitionIDs returns the ids of one partition, unsorted.
func (n *Network) partitionIDs(p Partition) []string {
	var out []string
	for id, node := range n.nodes {
		if node.Partition == p {
			out = append(out, id)
		}
	}
	return out
}
