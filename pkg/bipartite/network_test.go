package bipartite

import (
	"sort"
	"testing"

	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/namesmap"
)

// fixture builds the reference network used across the core tests:
//
//	record 0: s1 by c1, c2
//	record 1: s2 by c1
//	record 2: s2 by c2, c3
func fixture(t *testing.T) *Network {
	t.Helper()
	n, err := New(
		[]string{"s1", "s2", "s2"},
		[][]string{{"c1", "c2"}, {"c1"}, {"c2", "c3"}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestNewNodeCounts(t *testing.T) {
	n := fixture(t)

	want := map[string]struct {
		partition Partition
		count     int
	}{
		"s1": {PartitionSpecies, 1},
		"s2": {PartitionSpecies, 2},
		"c1": {PartitionCollectors, 2},
		"c2": {PartitionCollectors, 2},
		"c3": {PartitionCollectors, 1},
	}

	if got := n.NodeCount(); got != len(want) {
		t.Fatalf("NodeCount = %d, want %d", got, len(want))
	}
	for id, w := range want {
		node, ok := n.Node(id)
		if !ok {
			t.Fatalf("node %q missing", id)
		}
		if node.Partition != w.partition {
			t.Errorf("node %q partition = %v, want %v", id, node.Partition, w.partition)
		}
		if node.Count != w.count {
			t.Errorf("node %q count = %d, want %d", id, node.Count, w.count)
		}
	}

	// Sum of collector counts equals the number of deduplicated
	// (record, collector) pairs.
	total := 0
	for _, c := range n.CollectorsCounts() {
		total += c
	}
	if total != 5 {
		t.Errorf("sum of collector counts = %d, want 5", total)
	}
}

func TestNewEdgeMultiplicities(t *testing.T) {
	n := fixture(t)

	wantEdges := map[[2]string]int{
		{"s1", "c1"}: 1,
		{"s1", "c2"}: 1,
		{"s2", "c1"}: 1,
		{"s2", "c2"}: 1,
		{"s2", "c3"}: 1,
	}
	if got := n.EdgeCount(); got != len(wantEdges) {
		t.Fatalf("EdgeCount = %d, want %d", got, len(wantEdges))
	}
	for e, count := range wantEdges {
		if got := n.Multiplicity(e[0], e[1]); got != count {
			t.Errorf("Multiplicity(%s, %s) = %d, want %d", e[0], e[1], got, count)
		}
		// Undirected: both lookup directions agree.
		if got := n.Multiplicity(e[1], e[0]); got != count {
			t.Errorf("Multiplicity(%s, %s) = %d, want %d", e[1], e[0], got, count)
		}
	}
	if n.HasEdge("s1", "c3") {
		t.Error("s1-c3 must not exist: the pair never co-occurs")
	}
}

func TestNewAccumulatesRepeatedPairs(t *testing.T) {
	// The same pair in three separate records yields one edge of count 3.
	n, err := New(
		[]string{"sp", "sp", "sp"},
		[][]string{{"col"}, {"col"}, {"col"}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := n.Multiplicity("sp", "col"); got != 3 {
		t.Errorf("Multiplicity = %d, want 3", got)
	}
	if got := n.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount = %d, want 1 (no parallel edges)", got)
	}
}

func TestNewDeduplicatesWithinRecord(t *testing.T) {
	// A collector listed twice in one record counts once.
	n, err := New(
		[]string{"sp"},
		[][]string{{"col", "col"}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	node, _ := n.Node("col")
	if node.Count != 1 {
		t.Errorf("collector count = %d, want 1", node.Count)
	}
	if got := n.Multiplicity("sp", "col"); got != 1 {
		t.Errorf("Multiplicity = %d, want 1", got)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name       string
		species    []string
		collectors [][]string
	}{
		{"LengthMismatch", []string{"s1", "s2"}, [][]string{{"c1"}}},
		{"EmptySpeciesID", []string{""}, [][]string{{"c1"}}},
		{"EmptyCollectorID", []string{"s1"}, [][]string{{""}}},
		{"SpeciesAsOwnCollector", []string{"x"}, [][]string{{"x"}}},
		{"IDReusedAcrossPartitions", []string{"s1", "s2"}, [][]string{{"c1"}, {"s1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.species, tt.collectors)
			if !errors.Is(err, errors.ErrCodeInvalidRecords) {
				t.Errorf("err = %v, want INVALID_RECORDS", err)
			}
		})
	}
}

func TestNewWithNamesMap(t *testing.T) {
	nm := namesmap.Static{"Silva, J.": "silva-j", "J. Silva": "silva-j"}

	n, err := New(
		[]string{"s1", "s2"},
		[][]string{{"Silva, J."}, {"J. Silva"}},
		WithNamesMap(nm),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	node, ok := n.Node("silva-j")
	if !ok {
		t.Fatal("canonical node silva-j missing")
	}
	if node.Count != 2 {
		t.Errorf("canonical count = %d, want 2 (both raw variants)", node.Count)
	}
	if n.HasNode("Silva, J.") {
		t.Error("raw id leaked into the network")
	}
}

func TestNewWithNamesMapUnmapped(t *testing.T) {
	nm := namesmap.Static{"known": "k"}
	_, err := New([]string{"s1"}, [][]string{{"unknown"}}, WithNamesMap(nm))
	if !errors.Is(err, errors.ErrCodeNameNotMapped) {
		t.Errorf("err = %v, want NAME_NOT_MAPPED", err)
	}
}

func TestRemoveNodesNoCascadeWhenNeighborsRemain(t *testing.T) {
	n := fixture(t)

	if err := n.RemoveNodes([]string{"c3"}, RemoveStrict); err != nil {
		t.Fatalf("RemoveNodes: %v", err)
	}

	// s2 still has c1 and c2: no cascade.
	if !n.HasNode("s2") {
		t.Error("s2 must survive: it still has neighbors")
	}
	if n.HasNode("c3") {
		t.Error("c3 not removed")
	}
}

func TestRemoveNodesCascades(t *testing.T) {
	n := fixture(t)

	if err := n.RemoveNodes([]string{"c1", "c2"}, RemoveStrict); err != nil {
		t.Fatalf("RemoveNodes: %v", err)
	}

	// s1 and s2 lose all their neighbors in this call and must be pruned.
	if n.HasNode("s1") {
		t.Error("s1 must be cascade-removed")
	}
	if n.HasNode("s2") {
		t.Error("s2 must be cascade-removed")
	}
	// c3 was not removed and keeps nothing? c3's only neighbor was s2,
	// which was pruned as part of this call, so c3 is now isolated - but it
	// was not itself a cascade candidate of the removal set. Its edge to s2
	// is gone either way.
	if got := n.Degree("c3"); got != 0 {
		t.Errorf("Degree(c3) = %d, want 0", got)
	}
}

func TestRemoveNodesKeepsPreexistingIsolates(t *testing.T) {
	// Record 1 has an empty collector team, so s2 is isolated from
	// construction onward. Pruning only applies to nodes that become
	// isolated as a result of a removal call, never to s2.
	n, err := New(
		[]string{"s1", "s2"},
		[][]string{{"c1"}, {}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := n.Degree("s2"); got != 0 {
		t.Fatalf("Degree(s2) = %d, want 0", got)
	}

	if err := n.RemoveNodes([]string{"c1"}, RemoveStrict); err != nil {
		t.Fatalf("RemoveNodes: %v", err)
	}

	// s1 became isolated by this call: cascaded.
	if n.HasNode("s1") {
		t.Error("s1 must be cascade-removed with c1")
	}
	// s2 was isolated before the call: untouched.
	if !n.HasNode("s2") {
		t.Error("pre-existing isolate s2 must survive")
	}
}

func TestRemoveNodesUnknownPolicy(t *testing.T) {
	t.Run("Strict", func(t *testing.T) {
		n := fixture(t)
		err := n.RemoveNodes([]string{"c1", "ghost"}, RemoveStrict)
		if !errors.Is(err, errors.ErrCodeNodeNotFound) {
			t.Fatalf("err = %v, want NOT_FOUND_NODE", err)
		}
		// Strict failure removes nothing.
		if !n.HasNode("c1") {
			t.Error("strict failure must not remove any node")
		}
	})

	t.Run("IgnoreUnknown", func(t *testing.T) {
		n := fixture(t)
		if err := n.RemoveNodes([]string{"c1", "ghost"}, RemoveIgnoreUnknown); err != nil {
			t.Fatalf("RemoveNodes: %v", err)
		}
		if n.HasNode("c1") {
			t.Error("c1 not removed under IgnoreUnknown")
		}
	})
}

func TestEdgesSorted(t *testing.T) {
	n := fixture(t)
	edges := n.Edges()
	if len(edges) != 5 {
		t.Fatalf("len(edges) = %d, want 5", len(edges))
	}
	sorted := sort.SliceIsSorted(edges, func(i, j int) bool {
		if edges[i].Species != edges[j].Species {
			return edges[i].Species < edges[j].Species
		}
		return edges[i].Collector < edges[j].Collector
	})
	if !sorted {
		t.Errorf("edges not sorted: %+v", edges)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	n := fixture(t)

	restored, err := Restore(append(n.SpeciesNodes(), n.CollectorsNodes()...), n.Edges())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.NodeCount() != n.NodeCount() || restored.EdgeCount() != n.EdgeCount() {
		t.Fatalf("restored %d/%d nodes/edges, want %d/%d",
			restored.NodeCount(), restored.EdgeCount(), n.NodeCount(), n.EdgeCount())
	}
	for _, e := range n.Edges() {
		if got := restored.Multiplicity(e.Species, e.Collector); got != e.Count {
			t.Errorf("restored Multiplicity(%s, %s) = %d, want %d", e.Species, e.Collector, got, e.Count)
		}
	}
}

func TestRestoreRejectsSamePartitionEdge(t *testing.T) {
	nodes := []Node{
		{ID: "s1", Partition: PartitionSpecies, Count: 1},
		{ID: "s2", Partition: PartitionSpecies, Count: 1},
	}
	_, err := Restore(nodes, []EdgeRecord{{Species: "s1", Collector: "s2", Count: 1}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
