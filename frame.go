package framez

import (
	"errors"
	"math"
	"time"
)

// Column is one named column of a frame. Cells are either float64 (NaN marks
// a missing observation) or string (opaque keys, typically for grouping).
type Column struct {
	name   string
	kind   Kind
	floats []float64
	strs   []string
}

// FloatColumn creates a numeric column.
func FloatColumn(name string, values ...float64) Column {
	vs := make([]float64, len(values))
	copy(vs, values)
	return Column{name: name, kind: Float64, floats: vs}
}

// StringColumn creates a key column.
func StringColumn(name string, values ...string) Column {
	vs := make([]string, len(values))
	copy(vs, values)
	return Column{name: name, kind: String, strs: vs}
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Kind returns the column cell kind.
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c Column) Len() int {
	if c.kind == String {
		return len(c.strs)
	}
	return len(c.floats)
}

// Float returns the numeric cell at position i.
func (c Column) Float(i int) float64 { return c.floats[i] }

// Str returns the key cell at position i.
func (c Column) Str(i int) string { return c.strs[i] }

// Frame is one immutable tabular batch: ordered columns over a shared index.
// Frames are value-like; batch operations return new frames and never mutate
// their receiver. Accumulators depend on this.
type Frame struct {
	index Index
	cols  []Column
}

var errRaggedColumns = errors.New("all columns must have the same length as the index")

// NewFrame creates a frame from an index and ordered columns. Every column
// must have exactly as many cells as the index has rows.
func NewFrame(index Index, cols ...Column) (*Frame, error) {
	for _, c := range cols {
		if c.Len() != index.Len() {
			return nil, errRaggedColumns
		}
	}
	cs := make([]Column, len(cols))
	copy(cs, cols)
	return &Frame{index: index, cols: cs}, nil
}

// emptyFrame creates a zero-row frame matching a schema.
func emptyFrame(schema Schema, kind IndexKind) *Frame {
	cols := make([]Column, 0, schema.Len())
	for _, f := range schema.Fields() {
		if f.Kind == String {
			cols = append(cols, StringColumn(f.Name))
		} else {
			cols = append(cols, FloatColumn(f.Name))
		}
	}
	var ix Index
	switch kind {
	case IndexLabel:
		ix = LabelIndex()
	case IndexTime:
		ix = TimeIndex()
	default:
		ix = OrdinalIndex(0)
	}
	return &Frame{index: ix, cols: cols}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.index.Len() }

// Index returns the row index.
func (f *Frame) Index() Index { return f.index }

// Schema returns the ordered column schema of the frame.
func (f *Frame) Schema() Schema {
	fields := make([]Field, len(f.cols))
	for i, c := range f.cols {
		fields[i] = Field{Name: c.name, Kind: c.kind}
	}
	return Schema{fields: fields}
}

// Columns returns the ordered column names.
func (f *Frame) Columns() []string {
	cols := make([]string, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.name
	}
	return cols
}

// Col extracts a single column as a series sharing the frame's index.
// Unknown names yield an UnknownColumnError.
func (f *Frame) Col(name string) (*Series, error) {
	for _, c := range f.cols {
		if c.name == name {
			return &Series{
				name:   c.name,
				kind:   c.kind,
				index:  f.index,
				floats: c.floats,
				strs:   c.strs,
			}, nil
		}
	}
	return nil, &UnknownColumnError{Column: name, Columns: f.Columns()}
}

// column returns the raw column by name.
func (f *Frame) column(name string) (Column, bool) {
	for _, c := range f.cols {
		if c.name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Sum reduces the frame to a per-column total over its numeric columns,
// skipping NaN cells. The result is a series labeled by column name.
func (f *Frame) Sum() *Series {
	var labels []string
	var values []float64
	for _, c := range f.cols {
		if c.kind != Float64 {
			continue
		}
		labels = append(labels, c.name)
		values = append(values, sumSkipNaN(c.floats))
	}
	return &Series{name: "", kind: Float64, index: LabelIndex(labels...), floats: values}
}

// Count reduces the frame to a per-column count of non-missing cells over
// its numeric columns. The result is a series labeled by column name.
func (f *Frame) Count() *Series {
	var labels []string
	var values []float64
	for _, c := range f.cols {
		if c.kind != Float64 {
			continue
		}
		labels = append(labels, c.name)
		values = append(values, float64(countNonNaN(c.floats)))
	}
	return &Series{name: "", kind: Float64, index: LabelIndex(labels...), floats: values}
}

// Size returns the number of cells (rows times columns).
func (f *Frame) Size() float64 {
	return float64(f.Len() * len(f.cols))
}

// Round returns a frame with every numeric cell rounded to the given number
// of decimal places. Key columns pass through unchanged.
func (f *Frame) Round(decimals int) *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		if c.kind != Float64 {
			cols[i] = c
			continue
		}
		vs := make([]float64, len(c.floats))
		for j, v := range c.floats {
			vs[j] = roundTo(v, decimals)
		}
		cols[i] = Column{name: c.name, kind: Float64, floats: vs}
	}
	return &Frame{index: f.index, cols: cols}
}

// Numeric returns the projection of the frame onto its numeric columns.
func (f *Frame) Numeric() *Frame {
	var cols []Column
	for _, c := range f.cols {
		if c.kind == Float64 {
			cols = append(cols, c)
		}
	}
	return &Frame{index: f.index, cols: cols}
}

// Tail returns the last n rows of the frame.
func (f *Frame) Tail(n int) *Frame {
	l := f.Len()
	if n >= l {
		return f
	}
	return f.sliceFrom(l - n)
}

var errNotTimeIndexed = errors.New("operation requires a time index")

// Since returns the rows whose timestamp is at or after t. The frame must
// carry a time index.
func (f *Frame) Since(t time.Time) (*Frame, error) {
	if f.index.kind != IndexTime {
		return nil, errNotTimeIndexed
	}
	return f.sliceFrom(f.index.sincePos(t)), nil
}

// sliceFrom returns the suffix of the frame starting at row from.
func (f *Frame) sliceFrom(from int) *Frame {
	n := f.Len()
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		nc := Column{name: c.name, kind: c.kind}
		if c.kind == String {
			nc.strs = c.strs[from:]
		} else {
			nc.floats = c.floats[from:]
		}
		cols[i] = nc
	}
	return &Frame{index: f.index.slice(from), cols: cols}
}

// ConcatFrames appends b to a in arrival order. Both frames must share the
// same schema and index kind.
func ConcatFrames(a, b *Frame) (*Frame, error) {
	if a == nil || a.Len() == 0 {
		return b, nil
	}
	if b == nil || b.Len() == 0 {
		return a, nil
	}
	if !a.Schema().Equal(b.Schema()) {
		return nil, &ShapeError{Want: a.Columns(), Got: b.Columns()}
	}
	ix, err := a.index.concat(b.index)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(a.cols))
	for i, c := range a.cols {
		nc := Column{name: c.name, kind: c.kind}
		if c.kind == String {
			nc.strs = append(append([]string{}, c.strs...), b.cols[i].strs...)
		} else {
			nc.floats = append(append([]float64{}, c.floats...), b.cols[i].floats...)
		}
		cols[i] = nc
	}
	return &Frame{index: ix, cols: cols}, nil
}

// withColumn returns a frame widened by one column sharing the same index.
func (f *Frame) withColumn(c Column) (*Frame, error) {
	if c.Len() != f.Len() {
		return nil, errRaggedColumns
	}
	cols := make([]Column, 0, len(f.cols)+1)
	cols = append(cols, f.cols...)
	cols = append(cols, c)
	return &Frame{index: f.index, cols: cols}, nil
}

func sumSkipNaN(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

func countNonNaN(vs []float64) int {
	n := 0
	for _, v := range vs {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func roundTo(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
