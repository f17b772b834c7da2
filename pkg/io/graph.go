package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/graph"
)

// graphDoc mirrors the on-disk JSON layout of a weighted graph:
//
//	{
//	  "nodes": [{"id": "c1", "count": 2, "attrs": {"partition": "collectors"}}],
//	  "edges": [{"u": "c1", "v": "c2", "weight": 2}]
//	}
type graphDoc struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

type graphNode struct {
	ID    string      `json:"id"`
	Count int         `json:"count,omitempty"`
	Attrs graph.Attrs `json:"attrs,omitempty"`
}

type graphEdge struct {
	U      string  `json:"u"`
	V      string  `json:"v"`
	Weight float64 `json:"weight"`
}

// WriteGraphJSON encodes a weighted graph as JSON and writes it to w.
// Nodes are emitted in sorted id order and edges in (U, V) order, so the
// output is stable. The format round-trips through [ReadGraphJSON].
func WriteGraphJSON(g *graph.Graph, w io.Writer) error {
	doc := graphDoc{
		Nodes: []graphNode{},
		Edges: []graphEdge{},
	}

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		gn := graphNode{ID: n.ID, Count: n.Count}
		if len(n.Attrs) > 0 {
			gn.Attrs = n.Attrs
		}
		doc.Nodes = append(doc.Nodes, gn)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, graphEdge{U: e.U, V: e.V, Weight: e.Weight})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding graph")
	}
	return nil
}

// ReadGraphJSON decodes a JSON graph from r.
//
// Fails with INVALID_FORMAT for malformed JSON and INVALID_INPUT for
// structural violations (duplicate node ids, edges referencing unknown
// nodes, self-loops).
func ReadGraphJSON(r io.Reader) (*graph.Graph, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding graph")
	}

	g := graph.New()
	for _, n := range doc.Nodes {
		if err := g.AddNode(graph.Node{ID: n.ID, Count: n.Count, Attrs: n.Attrs}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}
	for _, e := range doc.Edges {
		if err := g.SetEdge(e.U, e.V, e.Weight); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s-%s", e.U, e.V)
		}
	}
	return g, nil
}

// ExportGraphJSON writes a graph to a JSON file at path.
func ExportGraphJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", path)
	}
	defer f.Close()
	return WriteGraphJSON(g, f)
}

// ImportGraphJSON reads a graph from a JSON file at path.
// A missing file fails with a NOT_FOUND_FILE error.
func ImportGraphJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening %s", path)
	}
	defer f.Close()
	return ReadGraphJSON(f)
}

// WriteEdgeCSV writes a graph's edges as a plain CSV edge list with a
// "u,v,weight" header, in the deterministic (U, V) order of [graph.Graph.Edges].
// Isolated nodes do not appear; use the JSON format to preserve them.
func WriteEdgeCSV(g *graph.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"u", "v", "weight"}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing csv header")
	}
	for _, e := range g.Edges() {
		row := []string{e.U, e.V, strconv.FormatFloat(e.Weight, 'g', -1, 64)}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "writing edge %s-%s", e.U, e.V)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flushing csv")
	}
	return nil
}

// ExportEdgeCSV writes a graph's edge list to a CSV file at path.
func ExportEdgeCSV(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", path)
	}
	defer f.Close()
	return WriteEdgeCSV(g, f)
}
