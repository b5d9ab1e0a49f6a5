package framez

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RandomSource periodically emits frames of random data, useful for demos
// and tests. Each frame carries a time index spaced by freq and three
// numeric columns:
//   - x is uniformly distributed on [0, 1)
//   - y is Poisson distributed with mean 1
//   - z is normally distributed with mean 0 and deviation 1
//
// A new frame is produced every interval, covering the rows since the
// previous one; interval should be significantly larger than freq.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type RandomSource struct {
	freq     time.Duration
	interval time.Duration
	name     string
	clock    Clock
	rng      *rand.Rand
}

// RandomSchema returns the column layout RandomSource emits.
func RandomSchema() Schema {
	return NewSchema(
		Field{Name: "x", Kind: Float64},
		Field{Name: "y", Kind: Float64},
		Field{Name: "z", Kind: Float64},
	)
}

// NewRandomSource creates a random frame source.
//
// Parameters:
//   - freq: Time spacing between consecutive rows
//   - interval: Time between emitted frames
//   - clock: Clock interface for time operations
func NewRandomSource(freq, interval time.Duration, clock Clock) *RandomSource {
	return &RandomSource{
		freq:     freq,
		interval: interval,
		name:     "random-source",
		clock:    clock,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed fixes the random seed for reproducible output.
func (r *RandomSource) WithSeed(seed int64) *RandomSource {
	r.rng = rand.New(rand.NewSource(seed))
	return r
}

// Schema returns the column layout of emitted frames.
func (r *RandomSource) Schema() Schema {
	return RandomSchema()
}

// Process emits random frames on the returned channel every interval until
// the context is canceled.
func (r *RandomSource) Process(ctx context.Context) <-chan *Frame {
	out := make(chan *Frame)

	go func() {
		defer close(out)

		last := r.clock.Now()

		ticker := r.clock.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C():
				now := r.clock.Now()
				frame := r.next(last, now)
				last = now
				if frame.Len() == 0 {
					continue
				}
				select {
				case out <- frame:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Run feeds the source into a frame facade until the context is canceled,
// returning the first emit error. The facade's schema must be RandomSchema.
func (r *RandomSource) Run(ctx context.Context, sf *StreamingFrame) error {
	return Drive(ctx, r.Process(ctx), sf.Emit)
}

// Name returns the source name.
func (r *RandomSource) Name() string {
	return r.name
}

// next builds one frame of rows spaced by freq over (last, now].
func (r *RandomSource) next(last, now time.Time) *Frame {
	var times []time.Time
	for t := last.Add(r.freq); !t.After(now); t = t.Add(r.freq) {
		times = append(times, t)
	}

	n := len(times)
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = r.rng.Float64()
		ys[i] = r.poisson(1)
		zs[i] = r.rng.NormFloat64()
	}

	return &Frame{
		index: TimeIndex(times...),
		cols: []Column{
			{name: "x", kind: Float64, floats: xs},
			{name: "y", kind: Float64, floats: ys},
			{name: "z", kind: Float64, floats: zs},
		},
	}
}

// poisson draws from a Poisson distribution via Knuth's method, fine for
// the small means this source uses.
func (r *RandomSource) poisson(lambda float64) float64 {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= r.rng.Float64()
		if p <= limit {
			return float64(k)
		}
		k++
	}
}
