package features

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/neuropulse/internal/models"
)

// Matrix is a dense row-major table of float64 values with named columns.
type Matrix struct {
	rows    int
	columns []string
	data    []float64
}

// NewMatrix allocates a zeroed rows × len(columns) matrix.
func NewMatrix(rows int, columns []string) *Matrix {
	return &Matrix{
		rows:    rows,
		columns: slices.Clone(columns),
		data:    make([]float64, rows*len(columns)),
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return len(m.columns) }

// Columns returns a copy of the column names in order.
func (m *Matrix) Columns() []string { return slices.Clone(m.columns) }

// ColumnIndex returns the position of a named column.
func (m *Matrix) ColumnIndex(name string) (int, bool) {
	i := slices.Index(m.columns, name)
	return i, i >= 0
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*len(m.columns)+j]
}

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*len(m.columns)+j] = v
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	c := len(m.columns)
	return slices.Clone(m.data[i*c : (i+1)*c])
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, m.rows)
	for i := range out {
		out[i] = m.At(i, j)
	}
	return out
}

// Dense copies the matrix into a gonum Dense. It is the hand-off point for
// training code that consumes the feature matrix in-process rather than
// through the Arrow export. An empty matrix has no Dense form and returns
// an error.
func (m *Matrix) Dense() (*mat.Dense, error) {
	if m.rows == 0 || len(m.columns) == 0 {
		return nil, fmt.Errorf("empty %dx%d matrix: %w", m.rows, len(m.columns), models.ErrInvalidArgument)
	}
	return mat.NewDense(m.rows, len(m.columns), slices.Clone(m.data)), nil
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		rows:    m.rows,
		columns: slices.Clone(m.columns),
		data:    slices.Clone(m.data),
	}
}
