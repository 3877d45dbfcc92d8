// Package simd defines the lane-batched calling convention shared by the
// traversal API: a batch holds W independent rays (W in SupportedWidths),
// stored structure-of-arrays, plus a per-lane validity mask.
package simd

import (
	"errors"
	"fmt"

	"github.com/df07/go-volume-iterators/pkg/core"
)

// SupportedWidths lists the batch widths the traversal API accepts
var SupportedWidths = []int{1, 4, 8, 16}

var (
	ErrUnsupportedWidth = errors.New("unsupported lane width")
	ErrLaneCount        = errors.New("lane count does not match batch width")
)

// ValidateWidth returns ErrUnsupportedWidth unless width is one of SupportedWidths
func ValidateWidth(width int) error {
	for _, w := range SupportedWidths {
		if w == width {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
}

// Mask marks which lanes of a batch take part in a call
type Mask []bool

// NewMask returns a mask of the given width with the first active lanes set
func NewMask(width, active int) Mask {
	m := make(Mask, width)
	for i := 0; i < active && i < width; i++ {
		m[i] = true
	}
	return m
}

// Count returns the number of set lanes
func (m Mask) Count() int {
	n := 0
	for _, on := range m {
		if on {
			n++
		}
	}
	return n
}

// Any returns true if at least one lane is set
func (m Mask) Any() bool {
	for _, on := range m {
		if on {
			return true
		}
	}
	return false
}

// Clear unsets every lane
func (m Mask) Clear() {
	for i := range m {
		m[i] = false
	}
}

// VVec3f is a batch of 3D vectors, one per lane
type VVec3f struct {
	X, Y, Z []float32
}

// NewVVec3f allocates a zeroed batch of the given width
func NewVVec3f(width int) VVec3f {
	return VVec3f{
		X: make([]float32, width),
		Y: make([]float32, width),
		Z: make([]float32, width),
	}
}

// Width returns the lane count, or -1 if the components disagree
func (v VVec3f) Width() int {
	if len(v.X) != len(v.Y) || len(v.X) != len(v.Z) {
		return -1
	}
	return len(v.X)
}

// Lane returns the vector in lane i
func (v VVec3f) Lane(i int) core.Vec3f {
	return core.NewVec3f(v.X[i], v.Y[i], v.Z[i])
}

// SetLane stores p in lane i
func (v VVec3f) SetLane(i int, p core.Vec3f) {
	v.X[i], v.Y[i], v.Z[i] = p.X, p.Y, p.Z
}

// VRange1f is a batch of scalar ranges, one per lane
type VRange1f struct {
	Lower, Upper []float32
}

// NewVRange1f allocates a zeroed batch of the given width
func NewVRange1f(width int) VRange1f {
	return VRange1f{
		Lower: make([]float32, width),
		Upper: make([]float32, width),
	}
}

// Width returns the lane count, or -1 if the components disagree
func (r VRange1f) Width() int {
	if len(r.Lower) != len(r.Upper) {
		return -1
	}
	return len(r.Lower)
}

// Lane returns the range in lane i
func (r VRange1f) Lane(i int) core.Range1f {
	return core.NewRange1f(r.Lower[i], r.Upper[i])
}

// SetLane stores rng in lane i
func (r VRange1f) SetLane(i int, rng core.Range1f) {
	r.Lower[i], r.Upper[i] = rng.Lower, rng.Upper
}

// CheckLanes validates width and makes sure every batch argument has exactly
// width lanes. Pass -1 (from Width()) for malformed batches.
func CheckLanes(width int, lanes ...int) error {
	if err := ValidateWidth(width); err != nil {
		return err
	}
	for _, n := range lanes {
		if n != width {
			return fmt.Errorf("%w: want %d, got %d", ErrLaneCount, width, n)
		}
	}
	return nil
}
