package bipartite

import "github.com/herblab/specnet/pkg/errors"

// SpeciesBag returns the species bag of one collector: the list of species
// ids in the cached column order, and a parallel vector where vector[j] is
// the number of records in which the collector recorded species ids[j].
//
// Fails with a NOT_FOUND_NODE error if the collector is absent from the
// cached matrix's row index. Builds the matrix cache if needed.
func (n *Network) SpeciesBag(collector string) (ids []string, vector []float64, err error) {
	m := n.matrixRef()
	i, ok := m.rowIndex[collector]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeNodeNotFound, "collector %q not in network", collector)
	}
	return m.ColIDs(), m.Row(i), nil
}

// InterestVector returns the interest vector of one species: the list of
// collector ids in the cached row order, and a parallel vector where
// vector[i] is the number of records in which collector ids[i] recorded the
// species. This is the symmetric operation to [Network.SpeciesBag] on the
// transposed matrix.
//
// Fails with a NOT_FOUND_NODE error if the species is unknown.
func (n *Network) InterestVector(species string) (ids []string, vector []float64, err error) {
	m := n.matrixRef()
	j, ok := m.colIndex[species]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeNodeNotFound, "species %q not in network", species)
	}
	return m.RowIDs(), m.Col(j), nil
}

// Species returns the ids of the species partition.
// The order is not guaranteed to be stable across calls.
func (n *Network) Species() []string {
	return n.partitionIDs(PartitionSpecies)
}

// Collectors returns the ids of the collectors partition.
// The order is not guaranteed to be stable across calls.
func (n *Network) Collectors() []string {
	return n.partitionIDs(PartitionCollectors)
}

// SpeciesNodes returns copies of all species nodes with their attributes.
// The order is not guaranteed to be stable across calls.
func (n *Network) SpeciesNodes() []Node {
	return n.partitionNodes(PartitionSpecies)
}

// CollectorsNodes returns copies of all collector nodes with their
// attributes. The order is not guaranteed to be stable across calls.
func (n *Network) CollectorsNodes() []Node {
	return n.partitionNodes(PartitionCollectors)
}

// SpeciesCounts returns the record count of every species node.
func (n *Network) SpeciesCounts() map[string]int {
	return n.partitionCounts(PartitionSpecies)
}

// CollectorsCounts returns the record count of every collector node.
func (n *Network) CollectorsCounts() map[string]int {
	return n.partitionCounts(PartitionCollectors)
}

func (n *Network) partitionNodes(p Partition) []Node {
	var out []Node
	for _, node := range n.nodes {
		if node.Partition == p {
			out = append(out, *node)
		}
	}
	return out
}

func (n *Network) partitionCounts(p Partition) map[string]int {
	out := make(map[string]int)
	for id, node := range n.nodes {
		if node.Partition == p {
			out[id] = node.Count
		}
	}
	return out
}
