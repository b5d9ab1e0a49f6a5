package framez

import (
	"math"
	"time"
)

// Series is one immutable named column over an index. Like Frame, series
// values are never mutated in place; operations return new series.
type Series struct {
	name   string
	kind   Kind
	index  Index
	floats []float64
	strs   []string
}

// NewSeries creates a numeric series.
func NewSeries(name string, index Index, values ...float64) *Series {
	vs := make([]float64, len(values))
	copy(vs, values)
	return &Series{name: name, kind: Float64, index: index, floats: vs}
}

// NewKeySeries creates a key-valued series, used as a streaming grouper.
func NewKeySeries(name string, index Index, keys ...string) *Series {
	vs := make([]string, len(keys))
	copy(vs, keys)
	return &Series{name: name, kind: String, index: index, strs: vs}
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Kind returns the cell kind.
func (s *Series) Kind() Kind { return s.kind }

// Index returns the row index.
func (s *Series) Index() Index { return s.index }

// Len returns the number of cells.
func (s *Series) Len() int { return s.index.Len() }

// Float returns the numeric cell at position i.
func (s *Series) Float(i int) float64 { return s.floats[i] }

// Key returns the key cell at position i.
func (s *Series) Key(i int) string { return s.strs[i] }

// Values returns a copy of the numeric cells.
func (s *Series) Values() []float64 {
	vs := make([]float64, len(s.floats))
	copy(vs, s.floats)
	return vs
}

// Keys returns a copy of the key cells.
func (s *Series) Keys() []string {
	vs := make([]string, len(s.strs))
	copy(vs, s.strs)
	return vs
}

// Value looks up the numeric cell keyed by label in a label-indexed series.
func (s *Series) Value(label string) (float64, bool) {
	if s.index.kind != IndexLabel {
		return 0, false
	}
	for i, l := range s.index.labels {
		if l == label {
			return s.floats[i], true
		}
	}
	return 0, false
}

// Sum reduces the series to a scalar total, skipping NaN cells.
func (s *Series) Sum() float64 {
	return sumSkipNaN(s.floats)
}

// Count returns the number of non-missing cells.
func (s *Series) Count() float64 {
	return float64(countNonNaN(s.floats))
}

// Size returns the number of cells.
func (s *Series) Size() float64 {
	return float64(s.Len())
}

// Round returns a series with every numeric cell rounded to the given
// number of decimal places.
func (s *Series) Round(decimals int) *Series {
	if s.kind != Float64 {
		return s
	}
	vs := make([]float64, len(s.floats))
	for i, v := range s.floats {
		vs[i] = roundTo(v, decimals)
	}
	return &Series{name: s.name, kind: Float64, index: s.index, floats: vs}
}

// Tail returns the last n cells of the series.
func (s *Series) Tail(n int) *Series {
	l := s.Len()
	if n >= l {
		return s
	}
	return s.sliceFrom(l - n)
}

// Since returns the cells whose timestamp is at or after t. The series must
// carry a time index.
func (s *Series) Since(t time.Time) (*Series, error) {
	if s.index.kind != IndexTime {
		return nil, errNotTimeIndexed
	}
	return s.sliceFrom(s.index.sincePos(t)), nil
}

// sliceFrom returns the suffix of the series starting at position from.
func (s *Series) sliceFrom(from int) *Series {
	n := s.Len()
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	ns := &Series{name: s.name, kind: s.kind, index: s.index.slice(from)}
	if s.kind == String {
		ns.strs = s.strs[from:]
	} else {
		ns.floats = s.floats[from:]
	}
	return ns
}

// ConcatSeries appends b to a in arrival order. Both series must share the
// same name, kind, and index kind.
func ConcatSeries(a, b *Series) (*Series, error) {
	if a == nil || a.Len() == 0 {
		return b, nil
	}
	if b == nil || b.Len() == 0 {
		return a, nil
	}
	if a.name != b.name || a.kind != b.kind {
		return nil, &ShapeError{Want: []string{a.name}, Got: []string{b.name}}
	}
	ix, err := a.index.concat(b.index)
	if err != nil {
		return nil, err
	}
	ns := &Series{name: a.name, kind: a.kind, index: ix}
	if a.kind == String {
		ns.strs = append(append([]string{}, a.strs...), b.strs...)
	} else {
		ns.floats = append(append([]float64{}, a.floats...), b.floats...)
	}
	return ns, nil
}

// ToFrame widens the series into a single-column frame.
func (s *Series) ToFrame() *Frame {
	c := Column{name: s.name, kind: s.kind, floats: s.floats, strs: s.strs}
	return &Frame{index: s.index, cols: []Column{c}}
}

// addAligned adds two numeric series cell by cell. Both must be label
// indexed with identical label order; whole-history accumulators guarantee
// this by deriving both sides from the same schema.
func addAligned(a, b *Series) (*Series, error) {
	if a.index.kind != IndexLabel || b.index.kind != IndexLabel {
		return nil, errIndexKindMismatch
	}
	if len(a.index.labels) != len(b.index.labels) {
		return nil, &ShapeError{Want: a.index.Labels(), Got: b.index.Labels()}
	}
	vs := make([]float64, len(a.floats))
	for i := range a.floats {
		if a.index.labels[i] != b.index.labels[i] {
			return nil, &ShapeError{Want: a.index.Labels(), Got: b.index.Labels()}
		}
		vs[i] = a.floats[i] + b.floats[i]
	}
	return &Series{name: a.name, kind: Float64, index: a.index, floats: vs}, nil
}

// divideAligned divides two numeric series cell by cell, yielding NaN where
// the divisor is zero. Division by a zero count is not an error: the NaN
// propagates to consumers by design.
func divideAligned(num, den *Series) *Series {
	vs := make([]float64, len(num.floats))
	for i := range num.floats {
		if den.floats[i] == 0 {
			vs[i] = math.NaN()
		} else {
			vs[i] = num.floats[i] / den.floats[i]
		}
	}
	return &Series{name: num.name, kind: Float64, index: num.index, floats: vs}
}

// zeroSeries creates a label-indexed series of zeros, one per label.
func zeroSeries(labels []string) *Series {
	return &Series{
		name:   "",
		kind:   Float64,
		index:  LabelIndex(labels...),
		floats: make([]float64, len(labels)),
	}
}
