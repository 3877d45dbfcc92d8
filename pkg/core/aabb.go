package core

import "github.com/chewxy/math32"

// Range1f is a closed scalar interval [Lower, Upper]
type Range1f struct {
	Lower float32
	Upper float32
}

// NewRange1f creates a new range
func NewRange1f(lower, upper float32) Range1f {
	return Range1f{Lower: lower, Upper: upper}
}

// EmptyRange returns a range that contains nothing and extends correctly
func EmptyRange() Range1f {
	return Range1f{Lower: math32.Inf(1), Upper: math32.Inf(-1)}
}

// IsEmpty returns true if the range contains no value (NaN bounds count as empty)
func (r Range1f) IsEmpty() bool {
	return !(r.Lower <= r.Upper)
}

// Contains returns true if v lies within the range, endpoints inclusive
func (r Range1f) Contains(v float32) bool {
	return r.Lower <= v && v <= r.Upper
}

// Overlaps returns true if the two closed ranges share at least one value
func (r Range1f) Overlaps(other Range1f) bool {
	return r.Lower <= other.Upper && other.Lower <= r.Upper
}

// Extend returns the range grown to include v; NaN is ignored
func (r Range1f) Extend(v float32) Range1f {
	if math32.IsNaN(v) {
		return r
	}
	return Range1f{Lower: math32.Min(r.Lower, v), Upper: math32.Max(r.Upper, v)}
}

// Union returns a range that bounds both ranges
func (r Range1f) Union(other Range1f) Range1f {
	if other.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return other
	}
	return Range1f{Lower: math32.Min(r.Lower, other.Lower), Upper: math32.Max(r.Upper, other.Upper)}
}

// Size returns Upper - Lower
func (r Range1f) Size() float32 {
	return r.Upper - r.Lower
}

// Box3f represents an axis-aligned bounding box
type Box3f struct {
	Min Vec3f // Minimum corner
	Max Vec3f // Maximum corner
}

// NewBox3f creates a new box from min and max points
func NewBox3f(min, max Vec3f) Box3f {
	return Box3f{Min: min, Max: max}
}

// Clip intersects the ray's t-range with this box using the slab method.
// The second return value is false when the clipped range is empty.
func (b Box3f) Clip(ray Ray) (Range1f, bool) {
	tMin := ray.TRange.Lower
	tMax := ray.TRange.Upper

	lower := b.Min.Array()
	upper := b.Max.Array()
	origin := ray.Origin.Array()
	direction := ray.Direction.Array()

	for axis := 0; axis < 3; axis++ {
		// Ray is parallel to this slab
		if direction[axis] == 0 {
			if origin[axis] < lower[axis] || origin[axis] > upper[axis] {
				return Range1f{}, false
			}
			continue
		}

		t1 := (lower[axis] - origin[axis]) / direction[axis]
		t2 := (upper[axis] - origin[axis]) / direction[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)

		if !(tMin <= tMax) {
			return Range1f{}, false
		}
	}

	return Range1f{Lower: tMin, Upper: tMax}, true
}

// Contains returns true if p lies inside the box, boundary inclusive
func (b Box3f) Contains(p Vec3f) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Clamp returns p moved onto the box if it lies outside
func (b Box3f) Clamp(p Vec3f) Vec3f {
	return p.Max(b.Min).Min(b.Max)
}

// Size returns the extent of the box along each axis
func (b Box3f) Size() Vec3f {
	return b.Max.Subtract(b.Min)
}

// Center returns the center point of the box
func (b Box3f) Center() Vec3f {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// IsValid returns true if min <= max for all axes
func (b Box3f) IsValid() bool {
	return b.Min.X <= b.Max.X &&
		b.Min.Y <= b.Max.Y &&
		b.Min.Z <= b.Max.Z
}
