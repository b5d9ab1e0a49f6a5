package framez

import "fmt"

// StreamingFrame is the logical handle an application holds over a stream
// of frame batches. It carries the stream's schema (computed once, never
// from live data) and dispatches aggregation verbs to the matching
// accumulator, wrapping each result in a facade of the correct shape.
//
// Deriving facades (Sum, Mean, Rolling, GroupBy, ...) wires accumulators
// into the dataflow graph; delivering data happens separately through Emit.
// All accumulator state is created when the derived facade is constructed,
// touched only inside that facade's own step, and never shared.
type StreamingFrame struct {
	schema Schema
	src    *stream[*Frame]
}

// NewStreamingFrame creates a root frame facade with the given schema.
// Batches delivered through Emit must match the schema exactly.
func NewStreamingFrame(schema Schema) *StreamingFrame {
	return &StreamingFrame{schema: schema, src: newStream[*Frame]("frame")}
}

func derivedFrame(schema Schema, src *stream[*Frame]) *StreamingFrame {
	return &StreamingFrame{schema: schema, src: src}
}

// Schema returns the stream's column schema.
func (sf *StreamingFrame) Schema() Schema {
	return sf.schema
}

// Emit delivers one batch to the stream. The batch is validated against the
// schema first: on a shape mismatch the error returns immediately and no
// accumulator state changes. Otherwise every registered accumulator step
// runs synchronously, in registration order, and the first step error is
// returned.
func (sf *StreamingFrame) Emit(b *Frame) error {
	if err := sf.schema.Validate(b); err != nil {
		return err
	}
	return sf.src.emit(b)
}

// Frames returns the read side of the stream for observing batches or
// per-step results.
func (sf *StreamingFrame) Frames() *Stream[*Frame] {
	return &Stream[*Frame]{src: sf.src}
}

// Col narrows the stream to a single column. Unknown names yield an
// UnknownColumnError.
func (sf *StreamingFrame) Col(name string) (*StreamingSeries, error) {
	field, ok := sf.schema.Field(name)
	if !ok {
		return nil, &UnknownColumnError{Column: name, Columns: sf.schema.Columns()}
	}
	src := mapStream(sf.src, "col:"+name, func(b *Frame) (*Series, error) {
		return b.Col(name)
	})
	return derivedSeries(field, src), nil
}

// Sum maintains running per-column totals over the numeric columns.
// The emitted series is labeled by column name; state and result coincide.
func (sf *StreamingFrame) Sum() *StreamingSeries {
	cols := sf.schema.NumericColumns()
	src := fold(sf.src, "sum", zeroSeries(cols), sumFrameStep)
	return derivedSeries(Field{Kind: Float64}, src)
}

// Mean maintains running (sums, counts) per numeric column and emits
// sums/counts each step. Columns with no observations yet report NaN.
func (sf *StreamingFrame) Mean() *StreamingSeries {
	cols := sf.schema.NumericColumns()
	src := accumulate(sf.src, "mean", newMeanState(cols), meanFrameStep)
	return derivedSeries(Field{Kind: Float64}, src)
}

// Size maintains a running count of cells seen.
func (sf *StreamingFrame) Size() *ScalarStream {
	return &ScalarStream{src: fold(sf.src, "size", 0, sizeFrameStep)}
}

// Round applies decimal rounding to every batch as it passes through.
func (sf *StreamingFrame) Round(decimals int) *StreamingFrame {
	src := mapStream(sf.src, "round", func(b *Frame) (*Frame, error) {
		return b.Round(decimals), nil
	})
	return derivedFrame(sf.schema, src)
}

// ToFrame returns the facade itself; it exists for symmetry with
// StreamingSeries.ToFrame.
func (sf *StreamingFrame) ToFrame() *StreamingFrame {
	return sf
}

// Rolling begins a rolling-window aggregation over the stream. The window
// is either a row count or a duration; pick the aggregation with one of
// the verbs on the returned Rolling. Count windows default to min_periods
// of 1.
func (sf *StreamingFrame) Rolling(w Window) *Rolling {
	return &Rolling{sf: sf, window: w, minPeriods: 1}
}

// GroupBy begins a grouped aggregation keyed by one of the stream's own
// columns. The grouping column is excluded from the aggregated values.
func (sf *StreamingFrame) GroupBy(column string) (*GroupBy, error) {
	if _, ok := sf.schema.Field(column); !ok {
		return nil, &UnknownColumnError{Column: column, Columns: sf.schema.Columns()}
	}
	return &GroupBy{sf: sf, column: column}, nil
}

// GroupByStream begins a grouped aggregation keyed by a second streaming
// series. The two streams are paired batch-for-batch in arrival order and
// must emit at the same cadence; a mismatched cadence is undefined
// behavior, not detected.
func (sf *StreamingFrame) GroupByStream(keys *StreamingSeries) *GroupBy {
	return &GroupBy{sf: sf, keys: keys}
}

// Assign builds a wider facade with one additional column taken from a
// second stream. The underlying streams are zipped batch-for-batch; each
// paired (frame, series) must agree on row count or the step fails.
func (sf *StreamingFrame) Assign(name string, col *StreamingSeries) (*StreamingFrame, error) {
	if _, exists := sf.schema.Field(name); exists {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	fields := append(sf.schema.Fields(), Field{Name: name, Kind: col.field.Kind})
	schema := NewSchema(fields...)

	zipped := zip2(sf.src, col.src, "assign:"+name)
	src := mapStream(zipped, "assign:"+name, func(p pair[*Frame, *Series]) (*Frame, error) {
		c := Column{name: name, kind: p.b.kind, floats: p.b.floats, strs: p.b.strs}
		return p.a.withColumn(c)
	})
	return derivedFrame(schema, src), nil
}
