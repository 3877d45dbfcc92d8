package volume

import (
	"context"

	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/core"
)

// FieldFunc returns the scalar value at a world position
type FieldFunc func(p core.Vec3f) float32

// ZRamp returns the z coordinate; a unit-cube grid becomes a 0..1 ramp along z
func ZRamp(p core.Vec3f) float32 {
	return p.Z
}

// Wavelet is a smooth periodic field in [-3, 3] with plenty of iso-surface structure
func Wavelet(p core.Vec3f) float32 {
	const frequency = 3.0
	return math32.Sin(frequency*p.X) + math32.Sin(frequency*p.Y) + math32.Cos(frequency*p.Z)
}

// SphereDistance returns a field whose iso-surfaces are spheres around center
func SphereDistance(center core.Vec3f) FieldFunc {
	return func(p core.Vec3f) float32 {
		return p.Subtract(center).Length()
	}
}

// Constant returns a field that is v everywhere
func Constant(v float32) FieldFunc {
	return func(core.Vec3f) float32 { return v }
}

// GenerateVoxels evaluates fn at every voxel position of the grid, x fastest
func GenerateVoxels(dims core.Vec3i, origin, spacing core.Vec3f, fn FieldFunc) []float32 {
	data := make([]float32, dims.Product())
	i := 0
	for z := 0; z < dims.Z; z++ {
		for y := 0; y < dims.Y; y++ {
			for x := 0; x < dims.X; x++ {
				p := origin.Add(core.NewVec3i(x, y, z).ToVec3f().MultiplyVec(spacing))
				data[i] = fn(p)
				i++
			}
		}
	}
	return data
}

// NewProcedural builds and commits a structured volume sampled from fn
func NewProcedural(ctx context.Context, dims core.Vec3i, origin, spacing core.Vec3f, fn FieldFunc) (*StructuredVolume, error) {
	params := DefaultStructuredParams()
	params.Dimensions = dims
	params.GridOrigin = origin
	params.GridSpacing = spacing
	params.VoxelData = GenerateVoxels(dims, origin, spacing, fn)

	v := NewStructuredVolumeFromParams(params)
	if err := v.Commit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// UnitCubeSpacing returns the spacing that maps dims voxels onto [0,1]^3
func UnitCubeSpacing(dims core.Vec3i) core.Vec3f {
	return core.NewVec3f(
		1/float32(dims.X-1),
		1/float32(dims.Y-1),
		1/float32(dims.Z-1),
	)
}
