package core

import "github.com/chewxy/math32"

// Vec3f represents a 3D vector in single precision
type Vec3f struct {
	X, Y, Z float32
}

// NewVec3f creates a new Vec3f
func NewVec3f(x, y, z float32) Vec3f {
	return Vec3f{X: x, Y: y, Z: z}
}

// Splat3f returns a vector with all components set to v
func Splat3f(v float32) Vec3f {
	return Vec3f{v, v, v}
}

// Add returns the sum of two vectors
func (v Vec3f) Add(other Vec3f) Vec3f {
	return Vec3f{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3f) Subtract(other Vec3f) Vec3f {
	return Vec3f{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3f) Multiply(scalar float32) Vec3f {
	return Vec3f{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3f) MultiplyVec(other Vec3f) Vec3f {
	return Vec3f{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// DivideVec returns component-wise division of two vectors
func (v Vec3f) DivideVec(other Vec3f) Vec3f {
	return Vec3f{v.X / other.X, v.Y / other.Y, v.Z / other.Z}
}

// Dot returns the dot product of two vectors
func (v Vec3f) Dot(other Vec3f) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3f) Cross(other Vec3f) Vec3f {
	return Vec3f{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vec3f) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector in the same direction
func (v Vec3f) Normalize() Vec3f {
	length := v.Length()
	if length == 0 {
		return Vec3f{0, 0, 0}
	}
	return Vec3f{v.X / length, v.Y / length, v.Z / length}
}

// Min returns the component-wise minimum of two vectors
func (v Vec3f) Min(other Vec3f) Vec3f {
	return Vec3f{math32.Min(v.X, other.X), math32.Min(v.Y, other.Y), math32.Min(v.Z, other.Z)}
}

// Max returns the component-wise maximum of two vectors
func (v Vec3f) Max(other Vec3f) Vec3f {
	return Vec3f{math32.Max(v.X, other.X), math32.Max(v.Y, other.Y), math32.Max(v.Z, other.Z)}
}

// ReduceMin returns the smallest component
func (v Vec3f) ReduceMin() float32 {
	return math32.Min(v.X, math32.Min(v.Y, v.Z))
}

// Axis returns the component for axis 0=X, 1=Y, 2=Z
func (v Vec3f) Axis(axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Array returns the components as an array, handy for per-axis loops
func (v Vec3f) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vec3f) IsFinite() bool {
	return !math32.IsNaN(v.X) && !math32.IsNaN(v.Y) && !math32.IsNaN(v.Z) &&
		!math32.IsInf(v.X, 0) && !math32.IsInf(v.Y, 0) && !math32.IsInf(v.Z, 0)
}

// Vec3i represents a 3D integer vector, used for grid dimensions and indices
type Vec3i struct {
	X, Y, Z int
}

// NewVec3i creates a new Vec3i
func NewVec3i(x, y, z int) Vec3i {
	return Vec3i{X: x, Y: y, Z: z}
}

// Product returns X*Y*Z
func (v Vec3i) Product() int {
	return v.X * v.Y * v.Z
}

// Axis returns the component for axis 0=X, 1=Y, 2=Z
func (v Vec3i) Axis(axis int) int {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithAxis returns a copy of v with the given axis set to value
func (v Vec3i) WithAxis(axis, value int) Vec3i {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// Array returns the components as an array
func (v Vec3i) Array() [3]int {
	return [3]int{v.X, v.Y, v.Z}
}

// ToVec3f converts to floating point
func (v Vec3i) ToVec3f() Vec3f {
	return Vec3f{float32(v.X), float32(v.Y), float32(v.Z)}
}
