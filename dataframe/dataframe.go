// Package dataframe provides a minimal named-column table of float64 values
// with caller-defined row identifiers.
//
// It exists to carry factor panels in and out of the SVD transforms: columns
// are accessed by name, row identifiers are preserved losslessly through every
// operation, and NaN encodes a missing observation. It is deliberately not a
// general dataframe; anything beyond selection and matrix conversion is out of
// scope.
package dataframe

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// DataFrame is an immutable-by-convention table: ordered float64 columns
// addressed by name, plus a row index. Constructors copy their inputs and
// accessors return copies, so a frame is never mutated after construction.
type DataFrame struct {
	index   []string
	columns []string
	data    map[string][]float64
	rows    int
}

// RangeIndex returns the default row identifiers "0".."n-1".
func RangeIndex(n int) []string {
	idx := make([]string, n)
	for i := range idx {
		idx[i] = strconv.Itoa(i)
	}
	return idx
}

// New builds a frame from named column slices. Column order follows the
// columns argument. A nil index gets a range index; otherwise its length must
// match the column length. Column names must be unique here (Select is the
// only way to produce a frame with repeated columns).
func New(index []string, columns []string, data map[string][]float64) (*DataFrame, error) {
	if len(columns) == 0 {
		return nil, errors.NewModelError("dataframe.New", "no columns", errors.ErrEmptyData)
	}

	seen := make(map[string]bool, len(columns))
	rows := -1
	frameData := make(map[string][]float64, len(columns))
	for _, name := range columns {
		if seen[name] {
			return nil, errors.NewValidationError("columns", "duplicate column name", name)
		}
		seen[name] = true

		col, ok := data[name]
		if !ok {
			return nil, errors.NewColumnNotFoundError("dataframe.New", name)
		}
		if rows == -1 {
			rows = len(col)
		} else if len(col) != rows {
			return nil, errors.NewDimensionError("dataframe.New", rows, len(col), 0)
		}
		frameData[name] = append([]float64(nil), col...)
	}
	if rows == 0 {
		return nil, errors.NewModelError("dataframe.New", "no rows", errors.ErrEmptyData)
	}

	idx, err := copyIndex(index, rows)
	if err != nil {
		return nil, err
	}

	return &DataFrame{
		index:   idx,
		columns: append([]string(nil), columns...),
		data:    frameData,
		rows:    rows,
	}, nil
}

// FromMatrix builds a frame from a dense matrix, one name per matrix column.
func FromMatrix(index []string, columns []string, m mat.Matrix) (*DataFrame, error) {
	r, c := m.Dims()
	if len(columns) != c {
		return nil, errors.NewDimensionError("dataframe.FromMatrix", c, len(columns), 1)
	}
	if r == 0 {
		return nil, errors.NewModelError("dataframe.FromMatrix", "no rows", errors.ErrEmptyData)
	}

	data := make(map[string][]float64, c)
	names := make([]string, 0, c)
	for j, name := range columns {
		if _, dup := data[name]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", name)
		}
		col := make([]float64, r)
		for i := 0; i < r; i++ {
			col[i] = m.At(i, j)
		}
		data[name] = col
		names = append(names, name)
	}

	idx, err := copyIndex(index, r)
	if err != nil {
		return nil, err
	}

	return &DataFrame{index: idx, columns: names, data: data, rows: r}, nil
}

func copyIndex(index []string, rows int) ([]string, error) {
	if index == nil {
		return RangeIndex(rows), nil
	}
	if len(index) != rows {
		return nil, errors.NewDimensionError("dataframe.index", rows, len(index), 0)
	}
	return append([]string(nil), index...), nil
}

// Rows returns the number of rows.
func (df *DataFrame) Rows() int { return df.rows }

// Cols returns the number of columns, counting repeats from Select.
func (df *DataFrame) Cols() int { return len(df.columns) }

// Dims returns (rows, cols).
func (df *DataFrame) Dims() (int, int) { return df.rows, len(df.columns) }

// Index returns a copy of the row identifiers.
func (df *DataFrame) Index() []string {
	return append([]string(nil), df.index...)
}

// Columns returns a copy of the ordered column names.
func (df *DataFrame) Columns() []string {
	return append([]string(nil), df.columns...)
}

// HasColumn reports whether the named column exists.
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.data[name]
	return ok
}

// Column returns a copy of the named column's values.
func (df *DataFrame) Column(name string) ([]float64, error) {
	col, ok := df.data[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("dataframe.Column", name)
	}
	return append([]float64(nil), col...), nil
}

// At returns the value at row i of the j-th column (in column order).
// Out-of-range arguments panic, matching gonum's mat access convention.
func (df *DataFrame) At(i, j int) float64 {
	return df.data[df.columns[j]][i]
}

// IsNaN reports whether the value at (i, j) is missing.
func (df *DataFrame) IsNaN(i, j int) bool {
	return math.IsNaN(df.At(i, j))
}

// Select returns a new frame containing the named columns, in the given
// order, with the row index preserved. Repeated names are kept repeated, not
// filtered. A name absent from the frame is a lookup failure.
func (df *DataFrame) Select(names []string) (*DataFrame, error) {
	if len(names) == 0 {
		return nil, errors.NewModelError("dataframe.Select", "no columns", errors.ErrEmptyData)
	}

	data := make(map[string][]float64, len(names))
	for _, name := range names {
		col, ok := df.data[name]
		if !ok {
			return nil, errors.NewColumnNotFoundError("dataframe.Select", name)
		}
		if _, done := data[name]; !done {
			data[name] = append([]float64(nil), col...)
		}
	}

	return &DataFrame{
		index:   append([]string(nil), df.index...),
		columns: append([]string(nil), names...),
		data:    data,
		rows:    df.rows,
	}, nil
}

// Matrix copies the frame's values into a dense rows×cols matrix in column
// order. Missing values stay NaN.
func (df *DataFrame) Matrix() *mat.Dense {
	m := mat.NewDense(df.rows, len(df.columns), nil)
	for j, name := range df.columns {
		col := df.data[name]
		for i := 0; i < df.rows; i++ {
			m.Set(i, j, col[i])
		}
	}
	return m
}
