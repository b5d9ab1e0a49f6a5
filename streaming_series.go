package framez

// StreamingSeries is the single-column counterpart of StreamingFrame: the
// logical handle over a stream of series batches. Facade shape (frame vs.
// series) is always decided from the schema at construction, never by
// inspecting live data.
type StreamingSeries struct {
	field Field
	src   *stream[*Series]
}

// NewStreamingSeries creates a root series facade. Series delivered through
// Emit must match the field's name and kind.
func NewStreamingSeries(field Field) *StreamingSeries {
	return &StreamingSeries{field: field, src: newStream[*Series]("series")}
}

func derivedSeries(field Field, src *stream[*Series]) *StreamingSeries {
	return &StreamingSeries{field: field, src: src}
}

// Field returns the single-column schema of the stream.
func (ss *StreamingSeries) Field() Field {
	return ss.field
}

// Emit delivers one series batch to the stream, validating its name and
// kind against the facade's field first. A rejected batch leaves all
// accumulator state unchanged.
func (ss *StreamingSeries) Emit(s *Series) error {
	if err := validateSeries(ss.field, s); err != nil {
		return err
	}
	return ss.src.emit(s)
}

// Series returns the read side of the stream for observing batches or
// per-step results.
func (ss *StreamingSeries) Series() *Stream[*Series] {
	return &Stream[*Series]{src: ss.src}
}

// Sum maintains a running scalar total.
func (ss *StreamingSeries) Sum() *ScalarStream {
	return &ScalarStream{src: fold(ss.src, "sum", 0, sumSeriesStep)}
}

// Mean maintains running (sum, count) and emits sum/count each step.
// With no observations yet the result is NaN.
func (ss *StreamingSeries) Mean() *ScalarStream {
	return &ScalarStream{src: accumulate(ss.src, "mean", scalarMeanState{}, meanSeriesStep)}
}

// Size maintains a running count of cells seen.
func (ss *StreamingSeries) Size() *ScalarStream {
	return &ScalarStream{src: fold(ss.src, "size", 0, sizeSeriesStep)}
}

// Round applies decimal rounding to every batch as it passes through.
func (ss *StreamingSeries) Round(decimals int) *StreamingSeries {
	src := mapStream(ss.src, "round", func(s *Series) (*Series, error) {
		return s.Round(decimals), nil
	})
	return derivedSeries(ss.field, src)
}

// Rolling begins a rolling-window aggregation over the series.
func (ss *StreamingSeries) Rolling(w Window) *SeriesRolling {
	return &SeriesRolling{ss: ss, window: w, minPeriods: 1}
}

// ToFrame widens the stream into a single-column frame facade.
func (ss *StreamingSeries) ToFrame() *StreamingFrame {
	src := mapStream(ss.src, "to-frame", func(s *Series) (*Frame, error) {
		return s.ToFrame(), nil
	})
	return derivedFrame(NewSchema(ss.field), src)
}

// ScalarStream carries scalar per-step results (series sums, running sizes,
// quantile estimates). It is the third closed facade variant, for results
// with no tabular shape left.
type ScalarStream struct {
	src *stream[float64]
}

// Name returns the underlying node name.
func (s *ScalarStream) Name() string {
	return s.src.name
}

// Each registers a consumer invoked synchronously for every emitted value.
func (s *ScalarStream) Each(fn func(float64) error) {
	s.src.subscribe(fn)
}
