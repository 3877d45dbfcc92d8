// Package iterator implements the per-ray traversal state machines: an
// interval iterator that walks the macrocell grid with a 3D DDA and skips
// cells that cannot hold selected values, and a hit iterator that refines
// those intervals into iso-surface crossings.
//
// Iterators are pull-based. Each call to Next advances the state by at most
// one result; an iterator owns all of its mutable state, so any number of
// them can share one grid and one selector from different goroutines.
package iterator

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/selector"
)

// State is the lifecycle position of an iterator
type State int

const (
	StateCreated State = iota
	StateSeeking
	StateActive
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSeeking:
		return "seeking"
	case StateActive:
		return "active"
	default:
		return "exhausted"
	}
}

// Interval is a t-sub-range of a ray that lies inside one macrocell
type Interval struct {
	TRange     core.Range1f
	ValueRange core.Range1f // value range of the macrocell
	// NominalDeltaT is the t extent of one voxel along the ray, a hint for
	// samplers that step through the interval
	NominalDeltaT float32
	Cell          core.Vec3i
}

// IntervalIterator yields, in increasing t order, the macrocell intervals of
// a ray whose value range overlaps the selector. A nil selector yields every
// cell holding at least one value.
type IntervalIterator struct {
	grid *accel.Grid
	ray  core.Ray
	sel  *selector.ValueSelector

	state   State
	tRange  core.Range1f // ray range clipped to the grid bounds
	tEnter  float32      // entry t of the current cell
	cell    core.Vec3i
	step    [3]int
	tNext   [3]float32 // t at which the ray crosses the next boundary per axis
	tDelta  [3]float32 // t span of one macrocell per axis
	outside bool       // the cursor has left the grid

	nominalDeltaT float32
	current       Interval
	stats         Stats
}

// NewIntervalIterator creates an iterator in the created state. No work is
// done until the first call to Next.
func NewIntervalIterator(grid *accel.Grid, ray core.Ray, sel *selector.ValueSelector) *IntervalIterator {
	return &IntervalIterator{grid: grid, ray: ray, sel: sel}
}

// State returns the current lifecycle state
func (it *IntervalIterator) State() State {
	return it.state
}

// Done returns true once the iterator is exhausted
func (it *IntervalIterator) Done() bool {
	return it.state == StateExhausted
}

// Interval returns the interval produced by the last successful Next
func (it *IntervalIterator) Interval() Interval {
	return it.current
}

// Stats returns the traversal counters accumulated so far
func (it *IntervalIterator) Stats() Stats {
	return it.stats
}

// Next advances to the next overlapping interval. It returns false once the
// ray has left the grid; further calls keep returning false.
func (it *IntervalIterator) Next() bool {
	switch it.state {
	case StateExhausted:
		return false
	case StateCreated:
		if !it.start() {
			it.state = StateExhausted
			return false
		}
		it.state = StateActive
	}

	for {
		if it.outside || it.tEnter >= it.tRange.Upper {
			it.state = StateExhausted
			return false
		}

		cell := it.cell
		tEnter := it.tEnter
		tExit := it.advance()
		if !(tExit > tEnter) {
			// grazed an edge or corner
			continue
		}

		it.stats.CellsVisited++
		values := it.grid.CellRange(cell)
		if !it.selects(values) {
			it.stats.CellsSkipped++
			continue
		}

		it.stats.Intervals++
		it.current = Interval{
			TRange:        core.NewRange1f(tEnter, tExit),
			ValueRange:    values,
			NominalDeltaT: it.nominalDeltaT,
			Cell:          cell,
		}
		return true
	}
}

func (it *IntervalIterator) selects(values core.Range1f) bool {
	if it.sel == nil {
		return !values.IsEmpty()
	}
	return it.sel.Overlaps(values)
}

// start clips the ray against the grid and sets up the DDA cursor
func (it *IntervalIterator) start() bool {
	if it.grid == nil || (it.sel != nil && it.sel.IsEmpty()) {
		return false
	}
	tRange, ok := it.grid.Bounds().Clip(it.ray)
	if !ok {
		return false
	}

	it.tRange = tRange
	it.tEnter = tRange.Lower
	it.cell = it.grid.CellAt(it.ray.At(tRange.Lower))
	it.nominalDeltaT = it.grid.Spacing().ReduceMin() / it.ray.Direction.Length()

	cellDims := it.grid.CellDims()
	cellSpan := it.grid.Spacing().Multiply(float32(it.grid.CellWidth()))
	for axis := 0; axis < 3; axis++ {
		d := it.ray.Direction.Axis(axis)
		switch {
		case d > 0:
			it.step[axis] = 1
		case d < 0:
			it.step[axis] = -1
		default:
			it.step[axis] = 0
			it.tNext[axis] = math32.Inf(1)
			it.tDelta[axis] = math32.Inf(1)
			continue
		}
		it.tDelta[axis] = cellSpan.Axis(axis) / math32.Abs(d)
		it.settle(axis, cellDims.Axis(axis))
	}
	return true
}

// settle corrects the starting cell along axis so the entry t lies between
// the cell's entry and exit planes, then records the exit plane crossing.
// The position-based lookup can be off by one cell near a plane.
func (it *IntervalIterator) settle(axis, n int) {
	k := it.cell.Axis(axis)
	step := it.step[axis]
	for {
		exit, entry := k+1, k
		if step < 0 {
			exit, entry = k, k+1
		}
		switch {
		case it.planeT(axis, exit) <= it.tEnter && k+step >= 0 && k+step < n:
			k += step
		case it.planeT(axis, entry) > it.tEnter && k-step >= 0 && k-step < n:
			k -= step
		default:
			it.cell = it.cell.WithAxis(axis, k)
			it.tNext[axis] = it.planeT(axis, exit)
			return
		}
	}
}

// advance moves the cursor into the next cell and returns the exit t of the
// cell it left. Ties go to the axis with the smallest t increment, then to
// the lowest axis.
func (it *IntervalIterator) advance() float32 {
	axis := 0
	for a := 1; a < 3; a++ {
		if it.tNext[a] < it.tNext[axis] ||
			(it.tNext[a] == it.tNext[axis] && it.tDelta[a] < it.tDelta[axis]) {
			axis = a
		}
	}

	k := it.cell.Axis(axis) + it.step[axis]
	tExit := math32.Max(it.tEnter, math32.Min(it.tNext[axis], it.tRange.Upper))
	if it.step[axis] == 0 || k < 0 || k >= it.grid.CellDims().Axis(axis) {
		// the last cell runs to the end of the clipped range
		it.outside = true
		tExit = it.tRange.Upper
	} else {
		it.cell = it.cell.WithAxis(axis, k)
		exit := k + 1
		if it.step[axis] < 0 {
			exit = k
		}
		it.tNext[axis] = it.planeT(axis, exit)
	}
	it.tEnter = tExit
	return tExit
}

// planeT returns the ray parameter at macrocell boundary k along axis
func (it *IntervalIterator) planeT(axis, k int) float32 {
	return (it.grid.CellPlane(axis, k) - it.ray.Origin.Axis(axis)) / it.ray.Direction.Axis(axis)
}
