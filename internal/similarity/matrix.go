package similarity

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmpty     = errors.New("similarity matrix is empty")
	ErrNotSquare = errors.New("similarity matrix is not square")
)

// Matrix is a read-only square matrix of pairwise item similarities.
type Matrix struct {
	dense *mat.Dense
}

// New validates d and wraps a private copy of it.
func New(d *mat.Dense) (*Matrix, error) {
	if d == nil || d.IsEmpty() {
		return nil, ErrEmpty
	}

	rows, cols := d.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, rows, cols)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(d.At(i, j)) {
				return nil, fmt.Errorf("similarity at (%d, %d) is NaN", i, j)
			}
		}
	}

	return &Matrix{dense: mat.DenseCopyOf(d)}, nil
}

// FromRows builds a matrix from row slices.
func FromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrEmpty
	}

	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
		data = append(data, row...)
	}

	return New(mat.NewDense(n, n, data))
}

// Dim returns the number of rows (and columns).
func (m *Matrix) Dim() int {
	if m == nil || m.dense == nil {
		return 0
	}
	rows, _ := m.dense.Dims()
	return rows
}

func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.dense)
}

// LoadFile reads a matrix from a JSON array of rows (".json") or from the gonum binary encoding
// produced by mat.Dense.MarshalBinary (any other extension).
func LoadFile(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open similarity matrix: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var rows [][]float64
		if err := json.NewDecoder(file).Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode similarity matrix %q: %w", path, err)
		}
		return FromRows(rows)
	}

	var dense mat.Dense
	if _, err := dense.UnmarshalBinaryFrom(bufio.NewReader(file)); err != nil {
		return nil, fmt.Errorf("decode similarity matrix %q: %w", path, err)
	}

	return New(&dense)
}
