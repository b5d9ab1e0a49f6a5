package framez

import (
	"math"
	"testing"
	"time"
)

// frameOf builds an ordinal-indexed frame from columns, failing the test on
// shape errors. Row count is taken from the first column.
func frameOf(t *testing.T, cols ...Column) *Frame {
	t.Helper()
	n := 0
	if len(cols) > 0 {
		n = cols[0].Len()
	}
	f, err := NewFrame(OrdinalIndex(n), cols...)
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	return f
}

// timeFrameOf builds a time-indexed frame.
func timeFrameOf(t *testing.T, times []time.Time, cols ...Column) *Frame {
	t.Helper()
	f, err := NewFrame(TimeIndex(times...), cols...)
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	return f
}

func emitFrame(t *testing.T, sf *StreamingFrame, f *Frame) {
	t.Helper()
	if err := sf.Emit(f); err != nil {
		t.Fatalf("emit: %v", err)
	}
}

func emitSeries(t *testing.T, ss *StreamingSeries, s *Series) {
	t.Helper()
	if err := ss.Emit(s); err != nil {
		t.Fatalf("emit: %v", err)
	}
}

// labelValue reads one cell of a label-indexed series.
func labelValue(t *testing.T, s *Series, label string) float64 {
	t.Helper()
	v, ok := s.Value(label)
	if !ok {
		t.Fatalf("label %q not present (have %v)", label, s.Index().Labels())
	}
	return v
}

// frameValue reads one cell of a label-indexed frame column.
func frameValue(t *testing.T, f *Frame, col, label string) float64 {
	t.Helper()
	s, err := f.Col(col)
	if err != nil {
		t.Fatalf("column %q: %v", col, err)
	}
	return labelValue(t, s, label)
}

// colValues extracts a numeric column's cells, failing the test on error.
func colValues(t *testing.T, f *Frame, name string) []float64 {
	t.Helper()
	s, err := f.Col(name)
	if err != nil {
		t.Fatalf("column %q: %v", name, err)
	}
	return s.Values()
}

// approx fails the test unless got is within 1e-9 of want. NaN matches NaN.
func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Fatalf("got %v, want NaN", got)
		}
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// approxSlice compares aligned float slices with NaN-aware equality.
func approxSlice(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values %v, want %d values %v", len(got), got, len(want), want)
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Fatalf("position %d: got %v, want NaN (got %v, want %v)", i, got[i], got, want)
			}
			continue
		}
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("position %d: got %v, want %v (got %v, want %v)", i, got[i], want[i], got, want)
		}
	}
}
