package iterator

import (
	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/simd"
)

// IntervalN receives one interval per lane
type IntervalN struct {
	TRange        simd.VRange1f
	ValueRange    simd.VRange1f
	NominalDeltaT []float32
}

// NewIntervalN allocates interval output for width lanes
func NewIntervalN(width int) IntervalN {
	return IntervalN{
		TRange:        simd.NewVRange1f(width),
		ValueRange:    simd.NewVRange1f(width),
		NominalDeltaT: make([]float32, width),
	}
}

// Width returns the lane count, or -1 if the components disagree
func (o IntervalN) Width() int {
	w := o.TRange.Width()
	if o.ValueRange.Width() != w || len(o.NominalDeltaT) != w {
		return -1
	}
	return w
}

// Lane returns the interval stored in lane i
func (o IntervalN) Lane(i int) Interval {
	return Interval{
		TRange:        o.TRange.Lane(i),
		ValueRange:    o.ValueRange.Lane(i),
		NominalDeltaT: o.NominalDeltaT[i],
	}
}

func (o IntervalN) setLane(i int, iv Interval) {
	o.TRange.SetLane(i, iv.TRange)
	o.ValueRange.SetLane(i, iv.ValueRange)
	o.NominalDeltaT[i] = iv.NominalDeltaT
}

// HitN receives one hit per lane
type HitN struct {
	T      []float32
	Sample []float32
}

// NewHitN allocates hit output for width lanes
func NewHitN(width int) HitN {
	return HitN{T: make([]float32, width), Sample: make([]float32, width)}
}

// Width returns the lane count, or -1 if the components disagree
func (o HitN) Width() int {
	if len(o.T) != len(o.Sample) {
		return -1
	}
	return len(o.T)
}

// Lane returns the hit stored in lane i
func (o HitN) Lane(i int) Hit {
	return Hit{T: o.T[i], Sample: o.Sample[i]}
}

func (o HitN) setLane(i int, h Hit) {
	o.T[i], o.Sample[i] = h.T, h.Sample
}

// lanesFromBatch unpacks the rays of a batch, one per lane, checking widths
func lanesFromBatch(valid simd.Mask, origins, directions simd.VVec3f, tRanges simd.VRange1f) ([]core.Ray, error) {
	width := len(valid)
	if err := simd.CheckLanes(width, origins.Width(), directions.Width(), tRanges.Width()); err != nil {
		return nil, err
	}
	rays := make([]core.Ray, width)
	for i := range rays {
		rays[i] = core.NewRayRange(origins.Lane(i), directions.Lane(i), tRanges.Lane(i))
	}
	return rays, nil
}

// IntervalIteratorN advances the interval iterators of a batch of rays.
// Each lane runs the scalar algorithm, so a ray produces the same intervals
// at every width.
type IntervalIteratorN struct {
	lanes []*IntervalIterator // nil for lanes invalid at init
}

// NewIntervalIteratorN creates one interval iterator per lane set in valid
func NewIntervalIteratorN(valid simd.Mask, grid *accel.Grid, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector) (*IntervalIteratorN, error) {
	rays, err := lanesFromBatch(valid, origins, directions, tRanges)
	if err != nil {
		return nil, err
	}
	it := &IntervalIteratorN{lanes: make([]*IntervalIterator, len(valid))}
	for i, on := range valid {
		if on {
			it.lanes[i] = NewIntervalIterator(grid, rays[i], sel)
		}
	}
	return it, nil
}

// Width returns the batch width
func (it *IntervalIteratorN) Width() int {
	return len(it.lanes)
}

// Lane returns the iterator of lane i, nil if the lane was invalid at init
func (it *IntervalIteratorN) Lane(i int) *IntervalIterator {
	return it.lanes[i]
}

// Iterate advances every lane set in valid and writes result[i] = true for
// lanes that produced an interval. Outputs of other lanes are left untouched.
func (it *IntervalIteratorN) Iterate(valid simd.Mask, out IntervalN, result simd.Mask) error {
	if err := simd.CheckLanes(it.Width(), len(valid), out.Width(), len(result)); err != nil {
		return err
	}
	for i, lane := range it.lanes {
		result[i] = false
		if !valid[i] || lane == nil {
			continue
		}
		if lane.Next() {
			out.setLane(i, lane.Interval())
			result[i] = true
		}
	}
	return nil
}

// Done returns true once every lane is exhausted
func (it *IntervalIteratorN) Done() bool {
	for _, lane := range it.lanes {
		if lane != nil && !lane.Done() {
			return false
		}
	}
	return true
}

// Stats sums the counters of all lanes
func (it *IntervalIteratorN) Stats() Stats {
	var s Stats
	for _, lane := range it.lanes {
		if lane != nil {
			s.Add(lane.Stats())
		}
	}
	return s
}

// HitIteratorN advances the hit iterators of a batch of rays
type HitIteratorN struct {
	lanes []*HitIterator
}

// NewHitIteratorN creates one hit iterator per lane set in valid
func NewHitIteratorN(valid simd.Mask, field Field, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector, cfg RefineConfig) (*HitIteratorN, error) {
	rays, err := lanesFromBatch(valid, origins, directions, tRanges)
	if err != nil {
		return nil, err
	}
	it := &HitIteratorN{lanes: make([]*HitIterator, len(valid))}
	for i, on := range valid {
		if on {
			it.lanes[i] = NewHitIterator(field, rays[i], sel, cfg)
		}
	}
	return it, nil
}

// Width returns the batch width
func (it *HitIteratorN) Width() int {
	return len(it.lanes)
}

// Lane returns the iterator of lane i, nil if the lane was invalid at init
func (it *HitIteratorN) Lane(i int) *HitIterator {
	return it.lanes[i]
}

// Iterate advances every lane set in valid and writes result[i] = true for
// lanes that produced a hit. Outputs of other lanes are left untouched.
func (it *HitIteratorN) Iterate(valid simd.Mask, out HitN, result simd.Mask) error {
	if err := simd.CheckLanes(it.Width(), len(valid), out.Width(), len(result)); err != nil {
		return err
	}
	for i, lane := range it.lanes {
		result[i] = false
		if !valid[i] || lane == nil {
			continue
		}
		if lane.Next() {
			out.setLane(i, lane.Hit())
			result[i] = true
		}
	}
	return nil
}

// Done returns true once every lane is exhausted
func (it *HitIteratorN) Done() bool {
	for _, lane := range it.lanes {
		if lane != nil && !lane.Done() {
			return false
		}
	}
	return true
}

// Stats sums the counters of all lanes
func (it *HitIteratorN) Stats() Stats {
	var s Stats
	for _, lane := range it.lanes {
		if lane != nil {
			s.Add(lane.Stats())
		}
	}
	return s
}
