package framez

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
)

// sketchRelativeAccuracy is the DDSketch relative accuracy used by
// ApproxQuantile: estimates are within 1% of the true quantile value.
const sketchRelativeAccuracy = 0.01

// ApproxQuantile maintains a whole-history streaming estimate of the
// q-quantile backed by a DDSketch. Unlike the rolling Quantile, which is
// exact over its window, this accumulator never retains rows: each batch's
// observations are folded into the sketch and discarded. Before any
// observation arrives the estimate is NaN.
func (ss *StreamingSeries) ApproxQuantile(q float64) *ScalarStream {
	step := func(state *ddsketch.DDSketch, s *Series) (*ddsketch.DDSketch, float64, error) {
		if s.kind != Float64 {
			return state, 0, errNotNumeric
		}
		if state == nil {
			sk, err := ddsketch.NewDefaultDDSketch(sketchRelativeAccuracy)
			if err != nil {
				return nil, 0, err
			}
			state = sk
		}
		for _, v := range s.floats {
			if math.IsNaN(v) {
				continue
			}
			if err := state.Add(v); err != nil {
				return state, 0, err
			}
		}
		estimate, err := state.GetValueAtQuantile(q)
		if err != nil {
			// Empty sketch: no observations yet. Propagate NaN, not an error,
			// matching the mean accumulator's zero-count behavior.
			estimate = math.NaN()
		}
		return state, estimate, nil
	}
	src := accumulate(ss.src, "approx-quantile", (*ddsketch.DDSketch)(nil), step)
	return &ScalarStream{src: src}
}
