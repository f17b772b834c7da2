package bipartite

import (
	"reflect"
	"testing"

	"github.com/herblab/specnet/pkg/errors"
)

func TestMatrixValues(t *testing.T) {
	n := fixture(t)
	m := n.Matrix()

	// Default order is sorted ids.
	if got := m.RowIDs(); !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
		t.Fatalf("RowIDs = %v", got)
	}
	if got := m.ColIDs(); !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Fatalf("ColIDs = %v", got)
	}

	want := [][]float64{
		{1, 1}, // c1: s1, s2
		{1, 1}, // c2: s1, s2
		{0, 1}, // c3: s2 only
	}
	for i, row := range want {
		for j, v := range row {
			if got := m.At(i, j); got != v {
				t.Errorf("At(%d, %d) = %v, want %v", i, j, got, v)
			}
		}
	}

	if got := m.NNZ(); got != 5 {
		t.Errorf("NNZ = %d, want 5", got)
	}
}

func TestMatrixRowAndCol(t *testing.T) {
	n := fixture(t)
	m := n.Matrix()

	if got := m.Row(2); !reflect.DeepEqual(got, []float64{0, 1}) {
		t.Errorf("Row(2) = %v, want [0 1]", got)
	}
	if got := m.Col(1); !reflect.DeepEqual(got, []float64{1, 1, 1}) {
		t.Errorf("Col(1) = %v, want [1 1 1]", got)
	}
	// Out of range yields zero vectors, not panics.
	if got := m.Row(99); !reflect.DeepEqual(got, []float64{0, 0}) {
		t.Errorf("Row(99) = %v, want zeros", got)
	}
}

func TestMatrixSnapshotIsolation(t *testing.T) {
	n := fixture(t)

	a := n.Matrix()
	a.values[0] = 999 // mutate the snapshot

	b := n.Matrix()
	if b.At(0, 0) == 999 {
		t.Error("mutating a snapshot leaked into the cache")
	}
}

func TestMatrixInvalidatedByRemoval(t *testing.T) {
	n := fixture(t)

	before := n.Matrix()
	if r, _ := before.Dims(); r != 3 {
		t.Fatalf("rows = %d, want 3", r)
	}

	if err := n.RemoveNodes([]string{"c3"}, RemoveStrict); err != nil {
		t.Fatalf("RemoveNodes: %v", err)
	}

	after := n.Matrix()
	if r, _ := after.Dims(); r != 2 {
		t.Errorf("rows after removal = %d, want 2", r)
	}
	if _, ok := after.RowIndex("c3"); ok {
		t.Error("removed collector still indexed")
	}
	// The old snapshot is stale but intact.
	if r, _ := before.Dims(); r != 3 {
		t.Error("earlier snapshot was mutated by removal")
	}
}

func TestBuildMatrixCustomOrder(t *testing.T) {
	n := fixture(t)

	if err := n.BuildMatrix([]string{"c3", "c1", "c2"}, []string{"s2", "s1"}); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	m := n.Matrix()

	if got := m.RowIDs(); !reflect.DeepEqual(got, []string{"c3", "c1", "c2"}) {
		t.Fatalf("RowIDs = %v", got)
	}
	// c3 row under the new order: s2 first.
	if got := m.Row(0); !reflect.DeepEqual(got, []float64{1, 0}) {
		t.Errorf("Row(0) = %v, want [1 0]", got)
	}
}

func TestBuildMatrixRejectsBadOrders(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		cols []string
	}{
		{"MissingRow", []string{"c1", "c2"}, []string{"s1", "s2"}},
		{"RepeatedRow", []string{"c1", "c1", "c2"}, []string{"s1", "s2"}},
		{"WrongPartition", []string{"c1", "c2", "s1"}, []string{"s1", "s2"}},
		{"UnknownID", []string{"c1", "c2", "cx"}, []string{"s1", "s2"}},
		{"BadCols", []string{"c1", "c2", "c3"}, []string{"s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := fixture(t)
			err := n.BuildMatrix(tt.rows, tt.cols)
			if !errors.Is(err, errors.ErrCodeInvalidOrder) {
				t.Errorf("err = %v, want INVALID_ORDER", err)
			}
		})
	}
}

func TestMatrixTranspose(t *testing.T) {
	n := fixture(t)
	m := n.Matrix()
	tr := m.Transpose()

	rows, cols := tr.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("transpose dims = %dx%d, want 2x3", rows, cols)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if m.At(i, j) != tr.At(j, i) {
				t.Errorf("m[%d][%d] != t[%d][%d]", i, j, j, i)
			}
		}
	}
	if got := tr.RowIDs(); !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Errorf("transpose RowIDs = %v", got)
	}
}
