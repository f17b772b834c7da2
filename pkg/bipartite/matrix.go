package bipartite

import (
	"sort"

	"github.com/herblab/specnet/pkg/errors"
)

// Matrix is a biadjacency view of the network in compressed sparse row
// form: rows are collectors, columns are species, and each stored value is
// the record multiplicity of one collector-species pair.
//
// A Matrix is a snapshot. Instances returned by [Network.Matrix] are deep
// copies that remain valid (but stale) after the network mutates.
type Matrix struct {
	rows []string // collector ids in row order
	cols []string // species ids in column order

	rowIndex map[string]int
	colIndex map[string]int

	// CSR storage: row i occupies colInd[rowPtr[i]:rowPtr[i+1]], with
	// column indices sorted ascending within each row.
	rowPtr []int
	colInd []int
	values []float64
}

// buildMatrix constructs the CSR matrix for the given row and column
// orders. Orders must already be validated.
func (n *Network) buildMatrix(rowOrder, colOrder []string) *Matrix {
	m := &Matrix{
		rows:     append([]string(nil), rowOrder...),
		cols:     append([]string(nil), colOrder...),
		rowIndex: make(map[string]int, len(rowOrder)),
		colIndex: make(map[string]int, len(colOrder)),
		rowPtr:   make([]int, 1, len(rowOrder)+1),
	}
	for i, id := range m.rows {
		m.rowIndex[id] = i
	}
	for j, id := range m.cols {
		m.colIndex[id] = j
	}

	for _, col := range m.rows {
		start := len(m.colInd)
		for sp, count := range n.adj[col] {
			j, ok := m.colIndex[sp]
			if !ok {
				continue
			}
			m.colInd = append(m.colInd, j)
			m.values = append(m.values, float64(count))
		}
		// Keep column indices sorted within the row.
		row := newlyAdded(m, start)
		sort.Sort(row)
		m.rowPtr = append(m.rowPtr, len(m.colInd))
	}
	return m
}

// newlyAdded views the tail of the CSR arrays starting at offset as a
// sortable (colInd, values) pair slice.
func newlyAdded(m *Matrix, offset int) csrRowSorter {
	return csrRowSorter{
		ind: m.colInd[offset:],
		val: m.values[offset:],
	}
}

type csrRowSorter struct {
	ind []int
	val []float64
}

func (s csrRowSorter) Len() int           { return len(s.ind) }
func (s csrRowSorter) Less(i, j int) bool { return s.ind[i] < s.ind[j] }
func (s csrRowSorter) Swap(i, j int) {
	s.ind[i], s.ind[j] = s.ind[j], s.ind[i]
	s.val[i], s.val[j] = s.val[j], s.val[i]
}

// matrixRef returns the cached matrix, building it with the default sorted
// orders if absent. Internal callers must treat the result as read-only.
func (n *Network) matrixRef() *Matrix {
	if n.matrix == nil {
		rows := n.partitionIDs(PartitionCollectors)
		cols := n.partitionIDs(PartitionSpecies)
		sort.Strings(rows)
		sort.Strings(cols)
		n.matrix = n.buildMatrix(rows, cols)
	}
	return n.matrix
}

// BuildMatrix builds and caches the biadjacency matrix with caller-supplied
// row (collector) and column (species) orders, replacing any cached view.
// Each order must be a permutation of the corresponding partition's ids;
// violations fail with an INVALID_ORDER error and leave the cache untouched.
func (n *Network) BuildMatrix(rowOrder, colOrder []string) error {
	if err := n.checkOrder(rowOrder, PartitionCollectors); err != nil {
		return err
	}
	if err := n.checkOrder(colOrder, PartitionSpecies); err != nil {
		return err
	}
	n.matrix = n.buildMatrix(rowOrder, colOrder)
	return nil
}

// checkOrder verifies that order is a permutation of partition p's ids.
func (n *Network) checkOrder(order []string, p Partition) error {
	want := n.partitionIDs(p)
	if len(order) != len(want) {
		return errors.New(errors.ErrCodeInvalidOrder,
			"%s order has %d ids, partition has %d", p, len(order), len(want))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		node, ok := n.nodes[id]
		if !ok || node.Partition != p {
			return errors.New(errors.ErrCodeInvalidOrder, "id %q is not a %s node", id, p)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidOrder, "id %q repeated in %s order", id, p)
		}
		seen[id] = true
	}
	return nil
}

// Matrix returns a deep copy of the cached biadjacency matrix, building the
// cache with sorted id orders if it does not exist yet. Mutating the
// returned snapshot never affects the cache.
func (n *Network) Matrix() *Matrix {
	return n.matrixRef().Clone()
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		rows:     append([]string(nil), m.rows...),
		cols:     append([]string(nil), m.cols...),
		rowIndex: make(map[string]int, len(m.rowIndex)),
		colIndex: make(map[string]int, len(m.colIndex)),
		rowPtr:   append([]int(nil), m.rowPtr...),
		colInd:   append([]int(nil), m.colInd...),
		values:   append([]float64(nil), m.values...),
	}
	for k, v := range m.rowIndex {
		c.rowIndex[k] = v
	}
	for k, v := range m.colIndex {
		c.colIndex[k] = v
	}
	return c
}

// Dims returns the number of rows (collectors) and columns (species).
func (m *Matrix) Dims() (rows, cols int) { return len(m.rows), len(m.cols) }

// NNZ returns the number of stored (nonzero) cells.
func (m *Matrix) NNZ() int { return len(m.values) }

// RowIDs returns a copy of the collector ids in row order.
func (m *Matrix) RowIDs() []string { return append([]string(nil), m.rows...) }

// ColIDs returns a copy of the species ids in column order.
func (m *Matrix) ColIDs() []string { return append([]string(nil), m.cols...) }

// RowIndex returns the row index of a collector id.
func (m *Matrix) RowIndex(id string) (int, bool) {
	i, ok := m.rowIndex[id]
	return i, ok
}

// ColIndex returns the column index of a species id.
func (m *Matrix) ColIndex(id string) (int, bool) {
	j, ok := m.colIndex[id]
	return j, ok
}

// At returns the cell value at (i, j), or 0 if the cell is not stored.
// Indices outside the matrix dimensions also yield 0.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= len(m.rows) {
		return 0
	}
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		if m.colInd[k] == j {
			return m.values[k]
		}
		if m.colInd[k] > j {
			break
		}
	}
	return 0
}

// Row returns row i as a dense vector of length Dims cols.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, len(m.cols))
	if i < 0 || i >= len(m.rows) {
		return out
	}
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		out[m.colInd[k]] = m.values[k]
	}
	return out
}

// Col returns column j as a dense vector of length Dims rows.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, len(m.rows))
	if j < 0 || j >= len(m.cols) {
		return out
	}
	for i := range m.rows {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			if m.colInd[k] == j {
				out[i] = m.values[k]
				break
			}
			if m.colInd[k] > j {
				break
			}
		}
	}
	return out
}

// sparseRow returns the column indices and values of row i without copying.
// Callers must not modify the returned slices.
func (m *Matrix) sparseRow(i int) ([]int, []float64) {
	return m.colInd[m.rowPtr[i]:m.rowPtr[i+1]], m.values[m.rowPtr[i]:m.rowPtr[i+1]]
}

// Transpose returns a new matrix with rows and columns swapped: rows become
// species, columns become collectors. Used for species-side projections.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		rows:     append([]string(nil), m.cols...),
		cols:     append([]string(nil), m.rows...),
		rowIndex: make(map[string]int, len(m.colIndex)),
		colIndex: make(map[string]int, len(m.rowIndex)),
		rowPtr:   make([]int, len(m.cols)+1),
		colInd:   make([]int, len(m.colInd)),
		values:   make([]float64, len(m.values)),
	}
	for k, v := range m.colIndex {
		t.rowIndex[k] = v
	}
	for k, v := range m.rowIndex {
		t.colIndex[k] = v
	}

	// Count entries per target row, then prefix-sum into rowPtr.
	counts := make([]int, len(m.cols))
	for _, j := range m.colInd {
		counts[j]++
	}
	for j, c := range counts {
		t.rowPtr[j+1] = t.rowPtr[j] + c
	}

	next := append([]int(nil), t.rowPtr[:len(m.cols)]...)
	for i := range m.rows {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			j := m.colInd[k]
			pos := next[j]
			t.colInd[pos] = i
			t.values[pos] = m.values[k]
			next[j]++
		}
	}
	return t
}
