package framez

import (
	"math"
	"sort"
)

// WindowFunc reduces the raw cells of one window to a single value. The
// slice includes NaN cells; built-in aggregations skip them. Custom
// functions passed to Aggregate receive the window as-is and must not
// retain the slice.
type WindowFunc func(values []float64) float64

// Rolling configures a rolling-window aggregation over a frame stream.
// Choosing an aggregation verb wires the accumulator and returns the
// derived facade; until then nothing is registered.
//
// The accumulator keeps a backlog of just enough recent rows to answer the
// next windowed aggregate, concatenating it with each arriving batch and
// re-trimming. The concatenation is a full copy every step, so cost per
// batch scales with window size plus batch size - bounded, but slow when
// the window is much larger than the average batch.
type Rolling struct {
	sf         *StreamingFrame
	window     Window
	minPeriods int
}

// WithMinPeriods sets the minimum number of observations a window needs
// before reporting a value; windows below the threshold yield NaN.
// Duration windows cannot gate partial results: the setting is ignored and
// min_periods stays 1.
func (r *Rolling) WithMinPeriods(n int) *Rolling {
	if n < 1 {
		n = 1
	}
	if !r.window.IsDuration() {
		r.minPeriods = n
	}
	return r
}

// Col narrows the rolling aggregation to a single numeric column before
// choosing an aggregation. Unknown names yield an UnknownColumnError.
func (r *Rolling) Col(name string) (*SeriesRolling, error) {
	field, ok := r.sf.schema.Field(name)
	if !ok {
		return nil, &UnknownColumnError{Column: name, Columns: r.sf.schema.Columns()}
	}
	if field.Kind != Float64 {
		return nil, errNotNumeric
	}
	ss, err := r.sf.Col(name)
	if err != nil {
		return nil, err
	}
	return &SeriesRolling{ss: ss, window: r.window, minPeriods: r.minPeriods}, nil
}

// Sum emits the rolling sum of each numeric column.
func (r *Rolling) Sum() *StreamingFrame { return r.apply("sum", windowSum) }

// Mean emits the rolling mean of each numeric column.
func (r *Rolling) Mean() *StreamingFrame { return r.apply("mean", windowMean) }

// Min emits the rolling minimum of each numeric column.
func (r *Rolling) Min() *StreamingFrame { return r.apply("min", windowMin) }

// Max emits the rolling maximum of each numeric column.
func (r *Rolling) Max() *StreamingFrame { return r.apply("max", windowMax) }

// Median emits the rolling median of each numeric column.
func (r *Rolling) Median() *StreamingFrame { return r.apply("median", windowMedian) }

// Std emits the rolling sample standard deviation (ddof=1).
func (r *Rolling) Std() *StreamingFrame { return r.apply("std", windowStd) }

// Var emits the rolling sample variance (ddof=1).
func (r *Rolling) Var() *StreamingFrame { return r.apply("var", windowVar) }

// Count emits the rolling count of non-missing cells.
func (r *Rolling) Count() *StreamingFrame { return r.apply("count", windowCount) }

// Quantile emits the rolling q-quantile (linear interpolation, 0 <= q <= 1).
func (r *Rolling) Quantile(q float64) *StreamingFrame {
	return r.apply("quantile", windowQuantile(q))
}

// Aggregate emits a custom windowed aggregation. The name labels the
// derived stream for debugging.
func (r *Rolling) Aggregate(name string, fn WindowFunc) *StreamingFrame {
	return r.apply(name, fn)
}

func (r *Rolling) apply(op string, fn WindowFunc) *StreamingFrame {
	step := rollingFrameStep(r.window, r.minPeriods, fn)
	src := accumulate(r.sf.src, "rolling-"+op, (*Frame)(nil), step)
	return derivedFrame(r.sf.schema.Numeric(), src)
}

// SeriesRolling is the single-column counterpart of Rolling.
type SeriesRolling struct {
	ss         *StreamingSeries
	window     Window
	minPeriods int
}

// WithMinPeriods sets the minimum observation count, as on Rolling.
func (r *SeriesRolling) WithMinPeriods(n int) *SeriesRolling {
	if n < 1 {
		n = 1
	}
	if !r.window.IsDuration() {
		r.minPeriods = n
	}
	return r
}

// Sum emits the rolling sum of the series.
func (r *SeriesRolling) Sum() *StreamingSeries { return r.apply("sum", windowSum) }

// Mean emits the rolling mean of the series.
func (r *SeriesRolling) Mean() *StreamingSeries { return r.apply("mean", windowMean) }

// Min emits the rolling minimum of the series.
func (r *SeriesRolling) Min() *StreamingSeries { return r.apply("min", windowMin) }

// Max emits the rolling maximum of the series.
func (r *SeriesRolling) Max() *StreamingSeries { return r.apply("max", windowMax) }

// Median emits the rolling median of the series.
func (r *SeriesRolling) Median() *StreamingSeries { return r.apply("median", windowMedian) }

// Std emits the rolling sample standard deviation (ddof=1).
func (r *SeriesRolling) Std() *StreamingSeries { return r.apply("std", windowStd) }

// Var emits the rolling sample variance (ddof=1).
func (r *SeriesRolling) Var() *StreamingSeries { return r.apply("var", windowVar) }

// Count emits the rolling count of non-missing cells.
func (r *SeriesRolling) Count() *StreamingSeries { return r.apply("count", windowCount) }

// Quantile emits the rolling q-quantile (linear interpolation).
func (r *SeriesRolling) Quantile(q float64) *StreamingSeries {
	return r.apply("quantile", windowQuantile(q))
}

// Aggregate emits a custom windowed aggregation.
func (r *SeriesRolling) Aggregate(name string, fn WindowFunc) *StreamingSeries {
	return r.apply(name, fn)
}

func (r *SeriesRolling) apply(op string, fn WindowFunc) *StreamingSeries {
	step := rollingSeriesStep(r.window, r.minPeriods, fn)
	src := accumulate(r.ss.src, "rolling-"+op, (*Series)(nil), step)
	return derivedSeries(Field{Name: r.ss.field.Name, Kind: Float64}, src)
}

// rollingFrameStep builds the backlog state machine for frame streams.
//
// Each step concatenates the retained backlog with the new batch, applies
// the windowed aggregation aligned row-for-row with the concatenation,
// trims the concatenation down to the rows the next window can still
// reach, and emits only the rows contributed by the new batch. The old
// backlog's rows are recomputed for correctness but never re-emitted.
func rollingFrameStep(w Window, minPeriods int, fn WindowFunc) func(*Frame, *Frame) (*Frame, *Frame, error) {
	return func(state, b *Frame) (*Frame, *Frame, error) {
		concat, err := ConcatFrames(state, b)
		if err != nil {
			return state, nil, err
		}
		if w.IsDuration() && concat.index.kind != IndexTime {
			return state, nil, errNotTimeIndexed
		}

		num := concat.Numeric()
		cols := make([]Column, len(num.cols))
		for i, c := range num.cols {
			cols[i] = Column{
				name:   c.name,
				kind:   Float64,
				floats: rollWindow(c.floats, concat.index, w, minPeriods, fn),
			}
		}
		result := &Frame{index: concat.index, cols: cols}

		backlog, err := trimFrame(concat, w)
		if err != nil {
			return state, nil, err
		}
		emitted := result.sliceFrom(concat.Len() - b.Len())
		return backlog, emitted, nil
	}
}

// rollingSeriesStep is the series-shaped variant of rollingFrameStep.
func rollingSeriesStep(w Window, minPeriods int, fn WindowFunc) func(*Series, *Series) (*Series, *Series, error) {
	return func(state, s *Series) (*Series, *Series, error) {
		if s.kind != Float64 {
			return state, nil, errNotNumeric
		}
		concat, err := ConcatSeries(state, s)
		if err != nil {
			return state, nil, err
		}
		if w.IsDuration() && concat.index.kind != IndexTime {
			return state, nil, errNotTimeIndexed
		}

		result := &Series{
			name:   concat.name,
			kind:   Float64,
			index:  concat.index,
			floats: rollWindow(concat.floats, concat.index, w, minPeriods, fn),
		}

		backlog, err := trimSeries(concat, w)
		if err != nil {
			return state, nil, err
		}
		emitted := result.sliceFrom(concat.Len() - s.Len())
		return backlog, emitted, nil
	}
}

// trimFrame keeps the minimal suffix of the concatenation the next batch's
// windows can still reach: the last W rows for count windows, or every row
// within the span of the newest timestamp for duration windows. The
// retained span is always at least the window size whenever that much
// history exists.
func trimFrame(concat *Frame, w Window) (*Frame, error) {
	if w.IsDuration() {
		if concat.Len() == 0 {
			return concat, nil
		}
		return concat.Since(concat.index.maxTime().Add(-w.span))
	}
	return concat.Tail(w.rows), nil
}

func trimSeries(concat *Series, w Window) (*Series, error) {
	if w.IsDuration() {
		if concat.Len() == 0 {
			return concat, nil
		}
		return concat.Since(concat.index.maxTime().Add(-w.span))
	}
	return concat.Tail(w.rows), nil
}

// rollWindow evaluates a windowed aggregation over one column, producing a
// result aligned cell-for-cell with the input. Count windows cover the last
// w.rows cells; duration windows cover (t - span, t], relying on the
// documented caller obligation that the time index is non-decreasing.
// Windows with fewer than minPeriods observations yield NaN.
func rollWindow(values []float64, ix Index, w Window, minPeriods int, fn WindowFunc) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		var start int
		if w.IsDuration() {
			cutoff := ix.times[i].Add(-w.span)
			start = i
			for start > 0 && ix.times[start-1].After(cutoff) {
				start--
			}
		} else {
			start = i - w.rows + 1
			if start < 0 {
				start = 0
			}
		}
		win := values[start : i+1]
		if countNonNaN(win) < minPeriods {
			out[i] = math.NaN()
		} else {
			out[i] = fn(win)
		}
	}
	return out
}

func windowSum(vs []float64) float64 {
	return sumSkipNaN(vs)
}

func windowMean(vs []float64) float64 {
	n := countNonNaN(vs)
	if n == 0 {
		return math.NaN()
	}
	return sumSkipNaN(vs) / float64(n)
}

func windowMin(vs []float64) float64 {
	best := math.NaN()
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(best) || v < best {
			best = v
		}
	}
	return best
}

func windowMax(vs []float64) float64 {
	best := math.NaN()
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(best) || v > best {
			best = v
		}
	}
	return best
}

func windowCount(vs []float64) float64 {
	return float64(countNonNaN(vs))
}

func windowVar(vs []float64) float64 {
	n := countNonNaN(vs)
	if n < 2 {
		return math.NaN()
	}
	mean := sumSkipNaN(vs) / float64(n)
	var ss float64
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-1)
}

func windowStd(vs []float64) float64 {
	return math.Sqrt(windowVar(vs))
}

func windowMedian(vs []float64) float64 {
	return windowQuantile(0.5)(vs)
}

// windowQuantile returns a WindowFunc computing the q-quantile with linear
// interpolation between order statistics.
func windowQuantile(q float64) WindowFunc {
	return func(vs []float64) float64 {
		obs := make([]float64, 0, len(vs))
		for _, v := range vs {
			if !math.IsNaN(v) {
				obs = append(obs, v)
			}
		}
		if len(obs) == 0 {
			return math.NaN()
		}
		sort.Float64s(obs)
		if q <= 0 {
			return obs[0]
		}
		if q >= 1 {
			return obs[len(obs)-1]
		}
		pos := q * float64(len(obs)-1)
		lo := int(math.Floor(pos))
		frac := pos - float64(lo)
		if lo+1 >= len(obs) {
			return obs[lo]
		}
		return obs[lo] + (obs[lo+1]-obs[lo])*frac
	}
}
