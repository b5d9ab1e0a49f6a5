package framez

import (
	"context"
	"math"
	"time"
)

// Row is one row-shaped event before micro-batching: an optional timestamp
// and a value per column name. Missing numeric values become NaN; missing
// keys become the empty string.
type Row struct {
	Time   time.Time
	Values map[string]any
}

// FrameBatcher collects row events from a channel and groups them into
// frames based on size or time constraints. A frame is emitted when either
// the maximum row count is reached or the maximum latency expires,
// whichever comes first. This is the bridge between event-at-a-time
// producers and the batch-at-a-time accumulators: feed the output to a
// StreamingFrame with Drive.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type FrameBatcher struct {
	schema Schema
	config BatchConfig
	name   string
	clock  Clock
}

// NewFrameBatcher creates a processor that assembles rows into frames.
// Frames are emitted when either the size limit is reached OR the time
// limit expires, whichever comes first, balancing batch size against
// result latency.
//
// Example:
//
//	batcher := framez.NewFrameBatcher(schema, framez.BatchConfig{
//		MaxSize:    500,
//		MaxLatency: time.Second,
//	}, framez.RealClock)
//
//	frames := batcher.Process(ctx, rows)
//	err := framez.Drive(ctx, frames, sf.Emit)
//
// Parameters:
//   - schema: Column layout of the produced frames
//   - config: Batch configuration with size and latency constraints
//   - clock: Clock interface for time operations
//
// Returns a new FrameBatcher.
func NewFrameBatcher(schema Schema, config BatchConfig, clock Clock) *FrameBatcher {
	return &FrameBatcher{
		schema: schema,
		config: config,
		name:   "frame-batcher",
		clock:  clock,
	}
}

func (b *FrameBatcher) Process(ctx context.Context, in <-chan Row) <-chan *Frame {
	out := make(chan *Frame)

	go func() {
		defer close(out)

		rows := make([]Row, 0, b.config.MaxSize)
		timer := b.clock.NewTimer(b.config.MaxLatency)
		timer.Stop()

		flush := func() bool {
			frame := b.build(rows)
			rows = make([]Row, 0, b.config.MaxSize)
			select {
			case out <- frame:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				if len(rows) > 0 {
					flush()
				}
				return

			case row, ok := <-in:
				if !ok {
					if len(rows) > 0 {
						flush()
					}
					return
				}

				rows = append(rows, row)

				if len(rows) == 1 {
					timer.Reset(b.config.MaxLatency)
				}

				if len(rows) >= b.config.MaxSize {
					timer.Stop()
					if !flush() {
						return
					}
				}

			case <-timer.C():
				if len(rows) > 0 {
					if !flush() {
						return
					}
				}
			}
		}
	}()

	return out
}

// build assembles buffered rows into a frame matching the batcher's schema.
// The frame carries a time index when the first row is timestamped, an
// ordinal index otherwise.
func (b *FrameBatcher) build(rows []Row) *Frame {
	var index Index
	if len(rows) > 0 && !rows[0].Time.IsZero() {
		times := make([]time.Time, len(rows))
		for i, r := range rows {
			times[i] = r.Time
		}
		index = TimeIndex(times...)
	} else {
		index = OrdinalIndex(len(rows))
	}

	cols := make([]Column, 0, b.schema.Len())
	for _, f := range b.schema.Fields() {
		if f.Kind == String {
			vs := make([]string, len(rows))
			for i, r := range rows {
				if s, ok := r.Values[f.Name].(string); ok {
					vs[i] = s
				}
			}
			cols = append(cols, Column{name: f.Name, kind: String, strs: vs})
			continue
		}
		vs := make([]float64, len(rows))
		for i, r := range rows {
			if v, ok := r.Values[f.Name].(float64); ok {
				vs[i] = v
			} else {
				vs[i] = math.NaN()
			}
		}
		cols = append(cols, Column{name: f.Name, kind: Float64, floats: vs})
	}

	frame := &Frame{index: index, cols: cols}
	return frame
}

// Name returns the processor name.
func (b *FrameBatcher) Name() string {
	return b.name
}
