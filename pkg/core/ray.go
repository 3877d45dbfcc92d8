package core

import "github.com/chewxy/math32"

// Ray represents a ray with an origin, direction and the parametric range of interest
type Ray struct {
	Origin    Vec3f
	Direction Vec3f
	TRange    Range1f
}

// NewRay creates a ray covering [0, +inf)
func NewRay(origin, direction Vec3f) Ray {
	return Ray{Origin: origin, Direction: direction, TRange: Range1f{Lower: 0, Upper: math32.Inf(1)}}
}

// NewRayRange creates a ray restricted to the given t-range
func NewRayRange(origin, direction Vec3f, tRange Range1f) Ray {
	return Ray{Origin: origin, Direction: direction, TRange: tRange}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) Vec3f {
	return r.Origin.Add(r.Direction.Multiply(t))
}
