package iterator

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/selector"
)

// Field is the part of a volume hit refinement depends on
type Field interface {
	Sample(p core.Vec3f) float32
	BoundingBox() core.Box3f
	Accelerator() *accel.Grid
}

// RefineConfig bounds the root search for one crossing
type RefineConfig struct {
	MaxIterations int     // refinement samples after the initial estimate
	Tolerance     float32 // stop once |sample - iso| is at most this
}

// DefaultRefineConfig returns 32 iterations and a 1e-6 tolerance
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{MaxIterations: 32, Tolerance: 1e-6}
}

// Hit is an iso-surface crossing along a ray
type Hit struct {
	T      float32
	Sample float32 // field value at T
}

// HitIterator yields the crossings of a ray with the selector's iso-values
// in strictly increasing t order. Within a macrocell interval the field is
// assumed monotonic; crossings near local extrema can be missed.
type HitIterator struct {
	field     Field
	ray       core.Ray
	bounds    core.Box3f
	cfg       RefineConfig
	sel       *selector.ValueSelector
	intervals *IntervalIterator

	state State

	// active interval
	t0, t1  float32
	v0, v1  float32
	pending []float32 // iso-values left to refine, in crossing order

	current Hit
	hasLast bool
	stats   Stats
}

// NewHitIterator creates a hit iterator over field. Ranges on sel are
// ignored; a nil selector or one without values yields no hits.
func NewHitIterator(field Field, ray core.Ray, sel *selector.ValueSelector, cfg RefineConfig) *HitIterator {
	it := &HitIterator{
		field: field,
		ray:   ray,
		cfg:   cfg,
		sel:   sel,
	}
	if sel != nil && sel.HasValues() && field.Accelerator() != nil {
		it.bounds = field.BoundingBox()
		it.intervals = NewIntervalIterator(field.Accelerator(), ray, sel.ValuesOnly())
	}
	return it
}

// State returns the current lifecycle state
func (it *HitIterator) State() State {
	return it.state
}

// Done returns true once the iterator is exhausted
func (it *HitIterator) Done() bool {
	return it.state == StateExhausted
}

// Hit returns the hit produced by the last successful Next
func (it *HitIterator) Hit() Hit {
	return it.current
}

// Stats returns the counters of this iterator and its interval traversal
func (it *HitIterator) Stats() Stats {
	s := it.stats
	if it.intervals != nil {
		s.Add(it.intervals.Stats())
	}
	return s
}

// Next refines the next crossing. Intervals without a matching iso-value are
// skipped within the same call.
func (it *HitIterator) Next() bool {
	if it.state == StateExhausted {
		return false
	}
	if it.intervals == nil {
		it.state = StateExhausted
		return false
	}

	for {
		if len(it.pending) == 0 {
			it.state = StateSeeking
			if !it.intervals.Next() {
				it.state = StateExhausted
				return false
			}
			it.load(it.intervals.Interval())
			continue
		}

		iso := it.pending[0]
		it.pending = it.pending[1:]

		t, v := it.refine(iso)
		if math32.IsNaN(v) {
			continue
		}
		if it.hasLast && t <= it.current.T {
			// same crossing reported by the neighboring interval
			continue
		}

		it.current = Hit{T: t, Sample: v}
		it.hasLast = true
		it.stats.Hits++
		it.state = StateActive
		return true
	}
}

// load samples the interval end points and queues the iso-values between them
func (it *HitIterator) load(iv Interval) {
	it.t0, it.t1 = iv.TRange.Lower, iv.TRange.Upper
	it.v0, it.v1 = it.sample(it.t0), it.sample(it.t1)
	it.pending = it.pending[:0]
	if math32.IsNaN(it.v0) || math32.IsNaN(it.v1) {
		return
	}

	span := core.NewRange1f(math32.Min(it.v0, it.v1), math32.Max(it.v0, it.v1))
	values := it.sel.ValuesIn(span)
	if it.v0 <= it.v1 {
		it.pending = append(it.pending, values...)
		return
	}
	for i := len(values) - 1; i >= 0; i-- {
		it.pending = append(it.pending, values[i])
	}
}

// refine finds t in [t0, t1] where the field equals iso. It starts from the
// linear estimate and alternates bisection and regula falsi on the shrinking
// bracket, returning the closest sample seen when the iterations run out.
func (it *HitIterator) refine(iso float32) (float32, float32) {
	a, b := it.t0, it.t1
	fa, fb := it.v0-iso, it.v1-iso
	switch {
	case fa == 0:
		return a, it.v0
	case fb == 0:
		return b, it.v1
	case fa == fb:
		return a, it.v0
	}

	t := falsePosition(a, b, fa, fb)
	v := it.sample(t)
	bestT, bestV := t, v

	for i := 0; i < it.cfg.MaxIterations; i++ {
		f := v - iso
		if math32.IsNaN(f) {
			break
		}
		if math32.Abs(f) < math32.Abs(bestV-iso) || math32.IsNaN(bestV) {
			bestT, bestV = t, v
		}
		if math32.Abs(f) <= it.cfg.Tolerance {
			break
		}

		if (f < 0) == (fa < 0) {
			a, fa = t, f
		} else {
			b, fb = t, f
		}
		if !(b > a) {
			break
		}

		if i%2 == 0 {
			t = 0.5 * (a + b)
		} else {
			t = falsePosition(a, b, fa, fb)
		}
		v = it.sample(t)
	}

	if f := v - iso; !math32.IsNaN(f) && math32.Abs(f) < math32.Abs(bestV-iso) {
		bestT, bestV = t, v
	}
	return bestT, bestV
}

func (it *HitIterator) sample(t float32) float32 {
	it.stats.RefineSamples++
	return it.field.Sample(it.bounds.Clamp(it.ray.At(t)))
}

// falsePosition returns the root of the line through (a, fa) and (b, fb),
// kept inside [a, b]
func falsePosition(a, b, fa, fb float32) float32 {
	t := a + (b-a)*fa/(fa-fb)
	return math32.Max(a, math32.Min(t, b))
}
