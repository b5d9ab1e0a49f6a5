package framez

import (
	"errors"
	"math"
)

var errNotNumeric = errors.New("aggregation requires numeric cells")

// Whole-history accumulator steps. Each is a pure function from (state,
// batch) to new state, invoked once per arriving batch. Results after n
// batches equal the same aggregate computed over the concatenation of all
// n batches, independent of how the data was partitioned.

// sumFrameStep folds a frame batch into running per-column totals.
// State and result are the same series, so the collapsed (fold) form is used.
func sumFrameStep(state *Series, b *Frame) (*Series, error) {
	return addAligned(state, b.Numeric().Sum())
}

// sumSeriesStep folds a series batch into a running scalar total.
func sumSeriesStep(state float64, s *Series) (float64, error) {
	if s.kind != Float64 {
		return state, errNotNumeric
	}
	return state + s.Sum(), nil
}

// sizeFrameStep folds a frame batch into a running cell count.
func sizeFrameStep(state float64, b *Frame) (float64, error) {
	return state + b.Size(), nil
}

// sizeSeriesStep folds a series batch into a running cell count.
func sizeSeriesStep(state float64, s *Series) (float64, error) {
	return state + s.Size(), nil
}

// meanState carries the two running slots of the mean accumulator: one
// (sum, count) pair per output column. Seeded to zero for every column in
// the schema, so the first result is already aligned with the prototype.
type meanState struct {
	sums   *Series
	counts *Series
}

// newMeanState seeds the mean accumulator for the given numeric columns.
func newMeanState(columns []string) meanState {
	return meanState{sums: zeroSeries(columns), counts: zeroSeries(columns)}
}

// meanFrameStep folds a frame batch into running (sums, counts) and emits
// sums/counts elementwise. A column with zero observations yields NaN,
// which propagates rather than raising.
func meanFrameStep(state meanState, b *Frame) (meanState, *Series, error) {
	num := b.Numeric()
	sums, err := addAligned(state.sums, num.Sum())
	if err != nil {
		return state, nil, err
	}
	counts, err := addAligned(state.counts, num.Count())
	if err != nil {
		return state, nil, err
	}
	next := meanState{sums: sums, counts: counts}
	return next, divideAligned(sums, counts), nil
}

// scalarMeanState is the series-shaped variant of meanState.
type scalarMeanState struct {
	sum   float64
	count float64
}

// meanSeriesStep folds a series batch into a running scalar mean.
func meanSeriesStep(state scalarMeanState, s *Series) (scalarMeanState, float64, error) {
	if s.kind != Float64 {
		return state, 0, errNotNumeric
	}
	next := scalarMeanState{
		sum:   state.sum + s.Sum(),
		count: state.count + s.Count(),
	}
	if next.count == 0 {
		return next, math.NaN(), nil
	}
	return next, next.sum / next.count, nil
}
