package bipartite

import (
	"math"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/graph"
)

// Rule selects the weighting algorithm used by [Network.Project].
type Rule string

const (
	// RuleSimple weights a pair by the number of opposite-partition nodes
	// both connect to, ignoring multiplicities.
	RuleSimple Rule = "simple"
	// RuleAdditive weights a pair by the sum, over shared opposite-partition
	// neighbors, of the average of the two edge multiplicities.
	RuleAdditive Rule = "additive"
	// RuleCosine weights a pair by the cosine similarity of their
	// count-valued vectors over the opposite partition.
	RuleCosine Rule = "cosine"
)

// ParseRule converts a selector string into a Rule.
// Unknown selectors fail with an INVALID_RULE error.
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case RuleSimple, RuleAdditive, RuleCosine:
		return Rule(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidRule,
			"rule must be %q, %q or %q, got %q", RuleSimple, RuleAdditive, RuleCosine, s)
	}
}

type projectConfig struct {
	threshold float64
	hasThresh bool
}

// ProjectOption configures a projection.
type ProjectOption func(*projectConfig)

// WithThreshold keeps only edges whose weight is at least t (inclusive).
// Edges strictly below t are dropped from the result; nodes are always kept,
// even if thresholding leaves them isolated.
func WithThreshold(t float64) ProjectOption {
	return func(c *projectConfig) {
		c.threshold = t
		c.hasThresh = true
	}
}

// Project collapses the network onto one partition under the given rule,
// returning a fresh weighted graph over that partition's node set. Every
// node of the target partition is copied into the result (with its record
// count and a "partition" attribute), whether or not any edge survives.
//
// Projection is a pure function of the current network state: calling it
// twice with identical arguments and no intervening mutation yields
// identical node, edge and weight sets. The additive rule walks the stored
// adjacency directly; the other two rules read the cached biadjacency
// matrix (building it if needed).
//
// An unknown partition or rule fails with INVALID_PARTITION or
// INVALID_RULE; a NaN threshold fails with INVALID_THRESHOLD. A missing
// threshold means no filtering for all three rules.
func (n *Network) Project(target Partition, rule Rule, opts ...ProjectOption) (*graph.Graph, error) {
	if target != PartitionCollectors && target != PartitionSpecies {
		return nil, errors.New(errors.ErrCodeInvalidPartition, "unknown partition selector %d", int(target))
	}

	var cfg projectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasThresh && math.IsNaN(cfg.threshold) {
		return nil, errors.New(errors.ErrCodeInvalidThreshold, "threshold must not be NaN")
	}

	g := graph.New()
	for _, node := range n.partitionNodes(target) {
		err := g.AddNode(graph.Node{
			ID:    node.ID,
			Count: node.Count,
			Attrs: graph.Attrs{"partition": target.String()},
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "materializing node %s", node.ID)
		}
	}

	var weights map[pair]float64
	switch rule {
	case RuleSimple:
		weights = n.projectSimple(target)
	case RuleAdditive:
		weights = n.projectAdditive(target)
	case RuleCosine:
		weights = n.projectCosine(target)
	default:
		return nil, errors.New(errors.ErrCodeInvalidRule, "unknown rule %q", rule)
	}

	for p, w := range weights {
		if w == 0 {
			continue
		}
		if cfg.hasThresh && w < cfg.threshold {
			continue
		}
		if err := g.SetEdge(p.u, p.v, w); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "materializing edge %s-%s", p.u, p.v)
		}
	}

	return g, nil
}

// pair is an unordered node pair with u < v.
type pair struct{ u, v string }

func makePair(a, b string) pair {
	if a < b {
		return pair{a, b}
	}
	return pair{b, a}
}

// projectSimple computes the binarized matrix product (M Mᵗ for collectors,
// Mᵗ M for species) and keeps its strict upper triangle: for every
// same-partition pair, the number of opposite-partition nodes both connect
// to. Multiplicities are discarded by the binarization.
func (n *Network) projectSimple(target Partition) map[pair]float64 {
	m := n.matrixRef()
	if target == PartitionSpecies {
		m = m.Transpose()
	}

	// Each opposite-partition node corresponds to one column of m. Every
	// pair of rows sharing that column gains one unit of weight, which is
	// exactly the (i, j) cell of the binarized product.
	nRows, nCols := m.Dims()
	colToRows := make([][]int, nCols)
	for i := 0; i < nRows; i++ {
		ind, _ := m.sparseRow(i)
		for _, j := range ind {
			colToRows[j] = append(colToRows[j], i)
		}
	}

	weights := make(map[pair]float64)
	for _, rows := range colToRows {
		for a := 0; a < len(rows); a++ {
			for b := a + 1; b < len(rows); b++ {
				p := makePair(m.rows[rows[a]], m.rows[rows[b]])
				weights[p]++
			}
		}
	}
	return weights
}

// projectAdditive walks the stored adjacency: for each target node u, its
// 1-hop neighbors are opposite-partition nodes n, and their neighbors v
// (excluding u) are the same-partition nodes sharing n with u. Each shared
// neighbor contributes the average of the two edge multiplicities, summed
// over all shared neighbors.
func (n *Network) projectAdditive(target Partition) map[pair]float64 {
	weights := make(map[pair]float64)
	for _, node := range n.nodes {
		if node.Partition != target {
			continue
		}
		u := node.ID
		for mid, cu := range n.adj[u] {
			for v, cv := range n.adj[mid] {
				// Visit each unordered pair once.
				if v <= u {
					continue
				}
				weights[pair{u, v}] += (float64(cu) + float64(cv)) / 2
			}
		}
	}
	return weights
}

// projectCosine treats each target node's count-valued vector over the
// opposite partition as a feature vector and computes pairwise cosine
// similarity. Zero vectors have similarity 0 to everything and therefore
// never produce an edge.
func (n *Network) projectCosine(target Partition) map[pair]float64 {
	m := n.matrixRef()
	if target == PartitionSpecies {
		m = m.Transpose()
	}

	nRows, _ := m.Dims()
	norms := make([]float64, nRows)
	for i := 0; i < nRows; i++ {
		_, vals := m.sparseRow(i)
		var sq float64
		for _, v := range vals {
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}

	weights := make(map[pair]float64)
	for i := 0; i < nRows; i++ {
		if norms[i] == 0 {
			continue
		}
		for j := i + 1; j < nRows; j++ {
			if norms[j] == 0 {
				continue
			}
			dot := sparseDot(m, i, j)
			if dot == 0 {
				continue
			}
			sim := dot / (norms[i] * norms[j])
			// Guard against floating-point drift above 1.
			if sim > 1 {
				sim = 1
			}
			weights[makePair(m.rows[i], m.rows[j])] = sim
		}
	}
	return weights
}

// sparseDot computes the dot product of rows i and j by merging their
// sorted column indices.
func sparseDot(m *Matrix, i, j int) float64 {
	ia, va := m.sparseRow(i)
	ib, vb := m.sparseRow(j)
	var dot float64
	a, b := 0, 0
	for a < len(ia) && b < len(ib) {
		switch {
		case ia[a] == ib[b]:
			dot += va[a] * vb[b]
			a++
			b++
		case ia[a] < ib[b]:
			a++
		default:
			b++
		}
	}
	return dot
}
