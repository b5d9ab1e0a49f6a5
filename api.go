// Package framez provides incremental analogues of tabular dataframe and
// series operations over streams of batches. As successive batches arrive,
// running aggregates (sum, mean, grouped sum/mean, rolling-window statistics)
// are maintained without ever re-scanning the full history.
//
// The core abstraction is the accumulator: a pure step function that folds
// one batch into running state and produces the next result. Accumulators
// are registered on a stream and invoked exactly once per arriving batch,
// strictly in arrival order. Facades (StreamingFrame, StreamingSeries) hold
// the stream graph and dispatch aggregation verbs to the right accumulator.
//
// Basic usage:
//
//	schema := framez.NewSchema(
//		framez.Field{Name: "x", Kind: framez.Float64},
//		framez.Field{Name: "y", Kind: framez.Float64},
//	)
//
//	sf := framez.NewStreamingFrame(schema)
//	means := sf.Rolling(framez.CountWindow(20)).Mean()
//	means.Frames().Each(func(f *framez.Frame) error {
//		fmt.Println(f)
//		return nil
//	})
//
//	// Deliver batches; each Emit runs every registered accumulator step
//	// synchronously and returns the first error encountered.
//	if err := sf.Emit(batch); err != nil {
//		log.Fatal(err)
//	}
//
// The package provides:
//   - Whole-history accumulators (sum, size, mean)
//   - Rolling-window aggregations over row-count or duration windows
//   - Grouped aggregations keyed by a column or a second key stream
//   - Approximate streaming quantiles backed by DDSketch
//   - Micro-batching of row events into frames (FrameBatcher)
//   - A periodic random-frame source for demos and tests
package framez

import "time"

// Window specifies the extent of a rolling aggregation: either a fixed
// number of rows or a time duration. Duration windows require batches to
// carry a time index; the index is assumed non-decreasing across batches
// and this is not validated.
type Window struct {
	rows int
	span time.Duration
}

// CountWindow returns a window covering the last n rows.
func CountWindow(n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{rows: n}
}

// DurationWindow returns a window covering all rows whose index falls
// within d of the newest row. Duration windows always report from the
// first observation onward: min_periods is forced to 1.
func DurationWindow(d time.Duration) Window {
	if d < 0 {
		d = 0
	}
	return Window{span: d}
}

// IsDuration reports whether the window is time-based.
func (w Window) IsDuration() bool {
	return w.span > 0
}

// Rows returns the row count for count-based windows (0 for duration windows).
func (w Window) Rows() int { return w.rows }

// Span returns the duration for time-based windows (0 for count windows).
func (w Window) Span() time.Duration { return w.span }

// BatchConfig configures the FrameBatcher's micro-batching behavior.
type BatchConfig struct {
	// MaxLatency is the maximum time to wait before emitting a partial frame.
	// If set, a frame is emitted after this duration even if it's not full.
	MaxLatency time.Duration

	// MaxSize is the maximum number of rows in a frame.
	// A frame is emitted immediately when it reaches this size.
	MaxSize int
}
