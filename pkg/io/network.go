// Package io provides JSON and CSV serialization for specnet structures.
//
// Two kinds of payload are supported: the bipartite species-collectors
// network (nodes with partitions and counts, edges with record
// multiplicities) and projected weighted graphs. Both round-trip through
// their JSON formats; projections additionally export a plain edge-list CSV
// for spreadsheet and scripting workflows.
package io

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/herblab/specnet/pkg/bipartite"
	"github.com/herblab/specnet/pkg/errors"
)

// networkDoc mirrors the on-disk JSON layout of a bipartite network:
//
//	{
//	  "nodes": [{"id": "s1", "partition": "species", "count": 2}],
//	  "edges": [{"species": "s1", "collector": "c1", "count": 1}]
//	}
type networkDoc struct {
	Nodes []networkNode `json:"nodes"`
	Edges []networkEdge `json:"edges"`
}

type networkNode struct {
	ID        string `json:"id"`
	Partition string `json:"partition"`
	Count     int    `json:"count"`
}

type networkEdge struct {
	Species   string `json:"species"`
	Collector string `json:"collector"`
	Count     int    `json:"count"`
}

// WriteNetworkJSON encodes a bipartite network as JSON and writes it to w.
// Nodes and edges are emitted in sorted order so the output is stable.
// The format round-trips through [ReadNetworkJSON].
func WriteNetworkJSON(n *bipartite.Network, w io.Writer) error {
	doc := networkDoc{
		Nodes: []networkNode{},
		Edges: []networkEdge{},
	}

	nodes := append(n.CollectorsNodes(), n.SpeciesNodes()...)
	for _, nd := range nodes {
		doc.Nodes = append(doc.Nodes, networkNode{
			ID:        nd.ID,
			Partition: nd.Partition.String(),
			Count:     nd.Count,
		})
	}
	sortNetworkNodes(doc.Nodes)

	for _, e := range n.Edges() {
		doc.Edges = append(doc.Edges, networkEdge{
			Species:   e.Species,
			Collector: e.Collector,
			Count:     e.Count,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding network")
	}
	return nil
}

// ReadNetworkJSON decodes a JSON network from r.
//
// Fails with INVALID_FORMAT for malformed JSON or unknown partition
// selectors, and with INVALID_INPUT for structural violations (duplicate
// ids, same-partition edges, non-positive counts).
func ReadNetworkJSON(r io.Reader) (*bipartite.Network, error) {
	var doc networkDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding network")
	}

	nodes := make([]bipartite.Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		p, err := bipartite.ParsePartition(nd.Partition)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", nd.ID)
		}
		nodes = append(nodes, bipartite.Node{ID: nd.ID, Partition: p, Count: nd.Count})
	}

	edges := make([]bipartite.EdgeRecord, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		edges = append(edges, bipartite.EdgeRecord{
			Species:   e.Species,
			Collector: e.Collector,
			Count:     e.Count,
		})
	}

	return bipartite.Restore(nodes, edges)
}

// ExportNetworkJSON writes a network to a JSON file at path.
func ExportNetworkJSON(n *bipartite.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", path)
	}
	defer f.Close()
	return WriteNetworkJSON(n, f)
}

// ImportNetworkJSON reads a network from a JSON file at path.
// A missing file fails with a NOT_FOUND_FILE error.
func ImportNetworkJSON(path string) (*bipartite.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening %s", path)
	}
	defer f.Close()
	return ReadNetworkJSON(f)
}

func sortNetworkNodes(nodes []networkNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Partition != nodes[j].Partition {
			return nodes[i].Partition < nodes[j].Partition
		}
		return nodes[i].ID < nodes[j].ID
	})
}
