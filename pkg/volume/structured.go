// Package volume implements structured regular scalar volumes: voxel storage,
// coordinate mapping, sampling and the commit step that builds the macrocell
// accelerator.
package volume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
)

var (
	ErrNoVoxelData  = errors.New("no voxel data set on volume")
	ErrNotCommitted = errors.New("volume has not been committed")
	ErrFilter       = errors.New("unknown sampling filter")
)

// Volume is a committed scalar field that can be sampled and traversed
type Volume interface {
	// Commit validates the staged parameters and rebuilds the accelerator.
	// On error the previously committed state stays in effect.
	Commit(ctx context.Context) error
	BoundingBox() core.Box3f
	ValueRange() core.Range1f
	// Sample returns the interpolated value at world position p, NaN outside the volume
	Sample(p core.Vec3f) float32
	Gradient(p core.Vec3f) core.Vec3f
	// Accelerator returns the macrocell grid, nil before the first successful commit
	Accelerator() *accel.Grid
}

// Filter selects the sampling reconstruction
type Filter int

const (
	FilterTrilinear Filter = iota
	FilterNearest
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	default:
		return "trilinear"
	}
}

// ParseFilter converts a config string to a Filter
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "", "trilinear", "linear":
		return FilterTrilinear, nil
	case "nearest":
		return FilterNearest, nil
	default:
		return FilterTrilinear, fmt.Errorf("%w: %q", ErrFilter, s)
	}
}

// StructuredParams are the staged parameters of a StructuredVolume
type StructuredParams struct {
	Dimensions     core.Vec3i
	GridOrigin     core.Vec3f
	GridSpacing    core.Vec3f
	VoxelData      []float32
	Filter         Filter
	MacrocellWidth int
	BuildWorkers   int // 0 = use CPU count
}

// DefaultStructuredParams returns unit spacing, trilinear filtering and 16-voxel macrocells
func DefaultStructuredParams() StructuredParams {
	return StructuredParams{
		GridSpacing:    core.Splat3f(1),
		Filter:         FilterTrilinear,
		MacrocellWidth: accel.DefaultCellWidth,
	}
}

// StructuredVolume is a regular grid of float32 voxels
type StructuredVolume struct {
	params StructuredParams
	state  *structuredState // nil until committed
}

// structuredState is the immutable result of a successful commit
type structuredState struct {
	field  accel.Field
	filter Filter
	bounds core.Box3f
	grid   *accel.Grid
}

// NewStructuredVolume creates an uncommitted volume with default parameters
func NewStructuredVolume() *StructuredVolume {
	return &StructuredVolume{params: DefaultStructuredParams()}
}

// NewStructuredVolumeFromParams creates an uncommitted volume with the given parameters
func NewStructuredVolumeFromParams(params StructuredParams) *StructuredVolume {
	return &StructuredVolume{params: params}
}

func (v *StructuredVolume) SetDimensions(dims core.Vec3i)     { v.params.Dimensions = dims }
func (v *StructuredVolume) SetGridOrigin(origin core.Vec3f)   { v.params.GridOrigin = origin }
func (v *StructuredVolume) SetGridSpacing(spacing core.Vec3f) { v.params.GridSpacing = spacing }
func (v *StructuredVolume) SetVoxelData(data []float32)       { v.params.VoxelData = data }
func (v *StructuredVolume) SetFilter(filter Filter)           { v.params.Filter = filter }
func (v *StructuredVolume) SetMacrocellWidth(width int)       { v.params.MacrocellWidth = width }
func (v *StructuredVolume) SetBuildWorkers(workers int)       { v.params.BuildWorkers = workers }

// Commit copies the voxel data, validates it and builds the macrocell grid
func (v *StructuredVolume) Commit(ctx context.Context) error {
	p := v.params
	if p.VoxelData == nil {
		return ErrNoVoxelData
	}

	field := accel.Field{
		Dimensions: p.Dimensions,
		Origin:     p.GridOrigin,
		Spacing:    p.GridSpacing,
		Data:       append([]float32(nil), p.VoxelData...),
	}
	grid, err := accel.Build(ctx, field, p.MacrocellWidth, p.BuildWorkers)
	if err != nil {
		return fmt.Errorf("committing structured volume: %w", err)
	}

	v.state = &structuredState{
		field:  field,
		filter: p.Filter,
		bounds: field.Bounds(),
		grid:   grid,
	}
	return nil
}

// IsCommitted returns true after the first successful commit
func (v *StructuredVolume) IsCommitted() bool {
	return v.state != nil
}

// Dimensions returns the committed voxel dimensions
func (v *StructuredVolume) Dimensions() core.Vec3i {
	if v.state == nil {
		return core.Vec3i{}
	}
	return v.state.field.Dimensions
}

// Filter returns the committed sampling filter
func (v *StructuredVolume) Filter() Filter {
	if v.state == nil {
		return v.params.Filter
	}
	return v.state.filter
}

func (v *StructuredVolume) BoundingBox() core.Box3f {
	if v.state == nil {
		return core.Box3f{}
	}
	return v.state.bounds
}

func (v *StructuredVolume) ValueRange() core.Range1f {
	if v.state == nil {
		return core.EmptyRange()
	}
	return v.state.grid.ValueRange()
}

func (v *StructuredVolume) Accelerator() *accel.Grid {
	if v.state == nil {
		return nil
	}
	return v.state.grid
}

func (v *StructuredVolume) Sample(p core.Vec3f) float32 {
	s := v.state
	if s == nil || !s.bounds.Contains(p) {
		return math32.NaN()
	}
	return s.sample(p)
}

// Gradient returns central differences with one voxel of spacing per axis,
// narrowed to one-sided differences at the volume boundary
func (v *StructuredVolume) Gradient(p core.Vec3f) core.Vec3f {
	s := v.state
	if s == nil || !s.bounds.Contains(p) {
		return core.Splat3f(math32.NaN())
	}

	var g [3]float32
	spacing := s.field.Spacing.Array()
	for axis := 0; axis < 3; axis++ {
		offset := unitAxis(axis).Multiply(spacing[axis])
		hi := s.bounds.Clamp(p.Add(offset))
		lo := s.bounds.Clamp(p.Subtract(offset))
		dist := hi.Axis(axis) - lo.Axis(axis)
		if dist <= 0 {
			continue
		}
		g[axis] = (s.sample(hi) - s.sample(lo)) / dist
	}
	return core.NewVec3f(g[0], g[1], g[2])
}

func unitAxis(axis int) core.Vec3f {
	switch axis {
	case 0:
		return core.NewVec3f(1, 0, 0)
	case 1:
		return core.NewVec3f(0, 1, 0)
	default:
		return core.NewVec3f(0, 0, 1)
	}
}

// sample assumes p lies inside the bounds
func (s *structuredState) sample(p core.Vec3f) float32 {
	local := p.Subtract(s.field.Origin).DivideVec(s.field.Spacing)
	if s.filter == FilterNearest {
		return s.nearest(local)
	}
	return s.trilinear(local)
}

func (s *structuredState) voxel(x, y, z int) float32 {
	dims := s.field.Dimensions
	return s.field.Data[x+dims.X*(y+dims.Y*z)]
}

func (s *structuredState) nearest(local core.Vec3f) float32 {
	dims := s.field.Dimensions
	x := clampIndex(int(math32.Floor(local.X+0.5)), dims.X)
	y := clampIndex(int(math32.Floor(local.Y+0.5)), dims.Y)
	z := clampIndex(int(math32.Floor(local.Z+0.5)), dims.Z)
	return s.voxel(x, y, z)
}

func (s *structuredState) trilinear(local core.Vec3f) float32 {
	dims := s.field.Dimensions
	x0, fx := lowerCorner(local.X, dims.X)
	y0, fy := lowerCorner(local.Y, dims.Y)
	z0, fz := lowerCorner(local.Z, dims.Z)

	v000 := s.voxel(x0, y0, z0)
	v100 := s.voxel(x0+1, y0, z0)
	v010 := s.voxel(x0, y0+1, z0)
	v110 := s.voxel(x0+1, y0+1, z0)
	v001 := s.voxel(x0, y0, z0+1)
	v101 := s.voxel(x0+1, y0, z0+1)
	v011 := s.voxel(x0, y0+1, z0+1)
	v111 := s.voxel(x0+1, y0+1, z0+1)

	v00 := lerp(v000, v100, fx)
	v10 := lerp(v010, v110, fx)
	v01 := lerp(v001, v101, fx)
	v11 := lerp(v011, v111, fx)

	v0 := lerp(v00, v10, fy)
	v1 := lerp(v01, v11, fy)

	return lerp(v0, v1, fz)
}

// lowerCorner returns the lower voxel index of the cell holding x and the
// fractional offset inside it; n >= 2
func lowerCorner(x float32, n int) (int, float32) {
	x = math32.Max(0, math32.Min(x, float32(n-1)))
	i := min(int(math32.Floor(x)), n-2)
	return i, x - float32(i)
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
