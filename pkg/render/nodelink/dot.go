// Package nodelink renders weighted graphs as node-link diagrams via
// Graphviz. Projections and coworking networks both pass through here on
// their way to SVG or PNG output.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/herblab/specnet/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Labels includes edge weights as labels. When false, weights only
	// affect line thickness.
	Labels bool

	// Detailed includes node counts and attributes in node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts a weighted graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Edge weights map to pen widths so heavier ties draw thicker, scaled
// relative to the maximum weight in the graph. Nodes and edges are emitted
// in sorted order so the output is stable.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		label := fmtLabel(n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, label)
	}

	maxWeight := 0.0
	for _, e := range g.Edges() {
		if e.Weight > maxWeight {
			maxWeight = e.Weight
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := []string{fmt.Sprintf("penwidth=%.2f", penwidth(e.Weight, maxWeight))}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("label=%q", trimFloat(e.Weight)))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.U, e.V, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{fmt.Sprintf("count: %d", n.Count)}
	if name, ok := n.Attrs["fullname"].(string); ok && name != "" {
		parts = append(parts, name)
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// penwidth maps a weight into [1, 5] relative to the heaviest edge.
func penwidth(w, max float64) float64 {
	if max <= 0 {
		return 1
	}
	return 1 + 4*w/max
}

func trimFloat(w float64) string {
	if w == math.Trunc(w) {
		return fmt.Sprintf("%d", int64(w))
	}
	return fmt.Sprintf("%.2f", w)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
