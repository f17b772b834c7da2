package coworking

import (
	"math"
	"reflect"
	"testing"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/namesmap"
)

func TestNewCountsAndHyperbolic(t *testing.T) {
	n, err := New([][]string{
		{"a", "b", "c"},
		{"d", "e"},
		{"a", "c"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantCounts := map[string]int{"a": 2, "b": 1, "c": 2, "d": 1, "e": 1}
	if got := n.NodeCount(); got != len(wantCounts) {
		t.Fatalf("NodeCount = %d, want %d", got, len(wantCounts))
	}
	for id, want := range wantCounts {
		node, ok := n.Node(id)
		if !ok {
			t.Fatalf("node %q missing", id)
		}
		if node.Count != want {
			t.Errorf("count(%s) = %d, want %d", id, node.Count, want)
		}
	}

	wantEdges := map[[2]string]struct {
		count int
		hyper float64
	}{
		{"a", "b"}: {1, 0.5},
		{"a", "c"}: {2, 1.5}, // 0.5 from the trio plus 1.0 from the pair
		{"b", "c"}: {1, 0.5},
		{"d", "e"}: {1, 1.0},
	}
	if got := n.EdgeCount(); got != len(wantEdges) {
		t.Fatalf("EdgeCount = %d, want %d", got, len(wantEdges))
	}
	for k, want := range wantEdges {
		e, ok := n.Edge(k[0], k[1])
		if !ok {
			t.Fatalf("edge %v missing", k)
		}
		if e.Count != want.count {
			t.Errorf("count%v = %d, want %d", k, e.Count, want.count)
		}
		if math.Abs(e.Hyperbolic-want.hyper) > 1e-12 {
			t.Errorf("hyperbolic%v = %v, want %v", k, e.Hyperbolic, want.hyper)
		}
		if e.Taxa != nil {
			t.Errorf("taxa%v = %v, want nil without WithTaxa", k, e.Taxa)
		}
	}
}

func TestNewWithTaxa(t *testing.T) {
	teams := [][]string{
		{"a", "b", "c"},
		{"d", "e"},
		{"a", "c"},
		{"a", "c"},
		{"c", "d", "e"},
		{"a", "b", "c", "d"},
		{"a"},
	}
	taxa := []string{"t1", "t2", "t1", "t3", "t1", "t1", "t4"}

	n, err := New(teams, WithTaxa(taxa))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The pair (a, c) co-occurs in four records; each contributes its
	// record's taxon, duplicates included.
	e, ok := n.Edge("a", "c")
	if !ok {
		t.Fatal("edge a-c missing")
	}
	if e.Count != 4 {
		t.Errorf("count = %d, want 4", e.Count)
	}
	if !reflect.DeepEqual(e.Taxa, []string{"t1", "t1", "t3", "t1"}) {
		t.Errorf("taxa = %v", e.Taxa)
	}
	// 1/2 + 1 + 1 + 1/3 from team sizes 3, 2, 2, 4.
	if math.Abs(e.Hyperbolic-2.8333333333333335) > 1e-12 {
		t.Errorf("hyperbolic = %v", e.Hyperbolic)
	}

	e, _ = n.Edge("d", "e")
	if !reflect.DeepEqual(e.Taxa, []string{"t2", "t1"}) {
		t.Errorf("taxa(d, e) = %v", e.Taxa)
	}
}

func TestNewTaxaLengthMismatch(t *testing.T) {
	_, err := New([][]string{{"a", "b"}}, WithTaxa([]string{"t1", "t2"}))
	if !errors.Is(err, errors.ErrCodeInvalidRecords) {
		t.Errorf("err = %v, want INVALID_RECORDS", err)
	}
}

func TestNewNoSelfLoops(t *testing.T) {
	// A team listing one collector twice collapses to a singleton: no
	// self-loop, no edge, and the count still rises once per team.
	n, err := New([][]string{
		{"col9", "col9"},
		{"col9", "col9"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	node, _ := n.Node("col9")
	if node.Count != 2 {
		t.Errorf("count = %d, want 2", node.Count)
	}
	if got := n.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount = %d, want 0", got)
	}
}

func TestNewIsolatedAndComponents(t *testing.T) {
	n, err := New([][]string{
		{"col1", "col2", "col3", "col4"},
		{"col1", "col2", "col3"},
		{"col1", "col2", "col3"},
		{"col1", "col3", "col2"},
		{"col1", "col2"},
		{"col1", "col2"},
		{"col1", "col2"},
		{"col1", "col3"},
		{"col2", "col3"},
		{"col2", "col4"},
		{"col2", "col4"},
		{"col4"},
		{"col5"},
		{"col5"},
		{"col7", "col8"},
		{"col7", "col8"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantCounts := map[string]int{"col1": 8, "col4": 4, "col5": 2}
	for id, want := range wantCounts {
		node, _ := n.Node(id)
		if node.Count != want {
			t.Errorf("count(%s) = %d, want %d", id, node.Count, want)
		}
	}
	if got := n.Degree("col5"); got != 0 {
		t.Errorf("Degree(col5) = %d, want 0 (isolated)", got)
	}

	collabs, err := n.Collaborators("col7")
	if err != nil {
		t.Fatalf("Collaborators: %v", err)
	}
	if !reflect.DeepEqual(collabs, []string{"col8"}) {
		t.Errorf("Collaborators(col7) = %v", collabs)
	}
}

func TestCollaboratorsUnknown(t *testing.T) {
	n, err := New([][]string{{"a", "b"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = n.Collaborators("ghost")
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND_NODE", err)
	}
}

func TestNewWithNamesMap(t *testing.T) {
	nm := namesmap.Static{"Silva, J.": "silva-j", "J. Silva": "silva-j", "Costa, M.": "costa-m"}

	n, err := New([][]string{
		{"Silva, J.", "Costa, M."},
		{"J. Silva", "Costa, M."},
	}, WithNamesMap(nm))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e, ok := n.Edge("silva-j", "costa-m")
	if !ok {
		t.Fatal("edge silva-j-costa-m missing")
	}
	if e.Count != 2 {
		t.Errorf("count = %d, want 2 (both raw variants map to one id)", e.Count)
	}
	if n.HasNode("Silva, J.") {
		t.Error("raw id leaked into the network")
	}
}

func TestEdgesSortedAndIsolated(t *testing.T) {
	n, err := New([][]string{{"b", "a"}, {"c", "a"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	edges := n.Edges()
	if len(edges) != 2 {
		t.Fatalf("len(edges) = %d, want 2", len(edges))
	}
	if edges[0].U != "a" || edges[0].V != "b" || edges[1].V != "c" {
		t.Errorf("edges not sorted with U < V: %+v", edges)
	}
}

func TestSetFullNamesAndToGraph(t *testing.T) {
	n, err := New([][]string{
		{"a", "b", "c"},
		{"a", "c"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.SetFullNames(map[string]string{"a": "Ana Alves", "ghost": "Nobody"})

	g, err := n.ToGraph(WeightHyperbolic)
	if err != nil {
		t.Fatalf("ToGraph: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("graph %d/%d nodes/edges, want 3/3", g.NodeCount(), g.EdgeCount())
	}

	node, _ := g.Node("a")
	if node.Attrs["fullname"] != "Ana Alves" {
		t.Errorf("fullname attr = %v", node.Attrs["fullname"])
	}
	if node.Count != 2 {
		t.Errorf("count = %d, want 2", node.Count)
	}

	// Hyperbolic: trio contributes 0.5 per pair, the a-c pair adds 1.0.
	w, _ := g.Weight("a", "c")
	if math.Abs(w-1.5) > 1e-12 {
		t.Errorf("weight(a, c) = %v, want 1.5", w)
	}

	gc, err := n.ToGraph(WeightCount)
	if err != nil {
		t.Fatalf("ToGraph: %v", err)
	}
	if w, _ := gc.Weight("a", "c"); w != 2 {
		t.Errorf("count weight(a, c) = %v, want 2", w)
	}

	if _, err := n.ToGraph(Weighting(9)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
