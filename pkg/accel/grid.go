// Package accel builds and queries the macrocell grid used for empty-space
// skipping. A macrocell summarizes the min/max scalar value of a block of
// voxels, padded by one voxel on the upper side so the summary stays sound for
// trilinear sampling.
package accel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-volume-iterators/pkg/core"
)

// DefaultCellWidth is the macrocell edge length in voxels
const DefaultCellWidth = 16

var (
	ErrCellWidth  = errors.New("macrocell width must be at least 1")
	ErrDimensions = errors.New("grid dimensions must be at least 2 on every axis")
	ErrDataSize   = errors.New("voxel data size does not match grid dimensions")
	ErrSpacing    = errors.New("grid spacing must be strictly positive")
)

// Field is the voxel data a Grid is built from. Data is laid out x fastest, then y, then z.
type Field struct {
	Dimensions core.Vec3i
	Origin     core.Vec3f
	Spacing    core.Vec3f
	Data       []float32
}

// Validate checks the field invariants required for a build
func (f Field) Validate() error {
	if f.Dimensions.X < 2 || f.Dimensions.Y < 2 || f.Dimensions.Z < 2 {
		return fmt.Errorf("%w: got %v", ErrDimensions, f.Dimensions)
	}
	if len(f.Data) != f.Dimensions.Product() {
		return fmt.Errorf("%w: have %d values, need %d", ErrDataSize, len(f.Data), f.Dimensions.Product())
	}
	if !(f.Spacing.X > 0 && f.Spacing.Y > 0 && f.Spacing.Z > 0) {
		return fmt.Errorf("%w: got %v", ErrSpacing, f.Spacing)
	}
	return nil
}

// Bounds returns the world-space box spanned by the voxel centers
func (f Field) Bounds() core.Box3f {
	extent := core.NewVec3f(
		float32(f.Dimensions.X-1)*f.Spacing.X,
		float32(f.Dimensions.Y-1)*f.Spacing.Y,
		float32(f.Dimensions.Z-1)*f.Spacing.Z,
	)
	return core.NewBox3f(f.Origin, f.Origin.Add(extent))
}

// Grid is the macrocell acceleration structure. It is read-only once built
// and safe to share across any number of iterators.
type Grid struct {
	dims      core.Vec3i // voxel dimensions
	origin    core.Vec3f
	spacing   core.Vec3f
	cellWidth int
	cellDims  core.Vec3i
	bounds    core.Box3f
	ranges    []core.Range1f // one slot per macrocell, x fastest
}

// Build computes the macrocell summaries for a field. Rows of cells are
// computed by independent tasks, at most workers at a time (runtime.NumCPU()
// when workers <= 0). Each task only writes its own slots, so the result does
// not depend on the number of workers.
func Build(ctx context.Context, field Field, cellWidth, workers int) (*Grid, error) {
	if cellWidth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrCellWidth, cellWidth)
	}
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cellDims := core.NewVec3i(
		ceilDiv(field.Dimensions.X, cellWidth),
		ceilDiv(field.Dimensions.Y, cellWidth),
		ceilDiv(field.Dimensions.Z, cellWidth),
	)

	g := &Grid{
		dims:      field.Dimensions,
		origin:    field.Origin,
		spacing:   field.Spacing,
		cellWidth: cellWidth,
		cellDims:  cellDims,
		bounds:    field.Bounds(),
		ranges:    make([]core.Range1f, cellDims.Product()),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for cz := 0; cz < cellDims.Z; cz++ {
		for cy := 0; cy < cellDims.Y; cy++ {
			cz, cy := cz, cy
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				for cx := 0; cx < cellDims.X; cx++ {
					c := core.NewVec3i(cx, cy, cz)
					g.ranges[g.cellIndex(c)] = summarizeCell(field, c, cellWidth)
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("building macrocell grid: %w", err)
	}
	return g, nil
}

// summarizeCell returns the value range of every voxel whose sampling stencil
// can reach into the macrocell.
func summarizeCell(field Field, c core.Vec3i, cellWidth int) core.Range1f {
	dims := field.Dimensions
	x0, x1 := cellWidth*c.X, min(cellWidth*(c.X+1), dims.X-1)
	y0, y1 := cellWidth*c.Y, min(cellWidth*(c.Y+1), dims.Y-1)
	z0, z1 := cellWidth*c.Z, min(cellWidth*(c.Z+1), dims.Z-1)

	r := core.EmptyRange()
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			row := (z*dims.Y + y) * dims.X
			for x := x0; x <= x1; x++ {
				r = r.Extend(field.Data[row+x])
			}
		}
	}
	return r
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (g *Grid) cellIndex(c core.Vec3i) int {
	return c.X + g.cellDims.X*(c.Y+g.cellDims.Y*c.Z)
}

// Bounds returns the world-space bounding box of the underlying grid
func (g *Grid) Bounds() core.Box3f {
	return g.bounds
}

// Dimensions returns the voxel dimensions
func (g *Grid) Dimensions() core.Vec3i {
	return g.dims
}

// Origin returns the world position of voxel (0,0,0)
func (g *Grid) Origin() core.Vec3f {
	return g.origin
}

// Spacing returns the world distance between neighboring voxels
func (g *Grid) Spacing() core.Vec3f {
	return g.spacing
}

// CellWidth returns the macrocell edge length in voxels
func (g *Grid) CellWidth() int {
	return g.cellWidth
}

// CellDims returns the number of macrocells per axis
func (g *Grid) CellDims() core.Vec3i {
	return g.cellDims
}

// InCellRange reports whether c is a valid macrocell index
func (g *Grid) InCellRange(c core.Vec3i) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X < g.cellDims.X && c.Y < g.cellDims.Y && c.Z < g.cellDims.Z
}

// CellRange returns the value range of macrocell c. Out of range indices
// return an empty range.
func (g *Grid) CellRange(c core.Vec3i) core.Range1f {
	if !g.InCellRange(c) {
		return core.EmptyRange()
	}
	return g.ranges[g.cellIndex(c)]
}

// CellPlane returns the world coordinate of macrocell boundary k along axis
func (g *Grid) CellPlane(axis, k int) float32 {
	return g.origin.Axis(axis) + float32(k*g.cellWidth)*g.spacing.Axis(axis)
}

// CellBounds returns the world-space box of macrocell c, clipped to the grid bounds
func (g *Grid) CellBounds(c core.Vec3i) core.Box3f {
	lower := core.NewVec3f(g.CellPlane(0, c.X), g.CellPlane(1, c.Y), g.CellPlane(2, c.Z))
	upper := core.NewVec3f(g.CellPlane(0, c.X+1), g.CellPlane(1, c.Y+1), g.CellPlane(2, c.Z+1))
	return core.NewBox3f(lower.Max(g.bounds.Min), upper.Min(g.bounds.Max))
}

// CellAt returns the macrocell containing world position p, clamped to the grid
func (g *Grid) CellAt(p core.Vec3f) core.Vec3i {
	local := p.Subtract(g.origin).DivideVec(g.spacing).Array()
	var c [3]int
	for axis := 0; axis < 3; axis++ {
		k := int(math32.Floor(local[axis] / float32(g.cellWidth)))
		c[axis] = max(0, min(k, g.cellDims.Axis(axis)-1))
	}
	return core.NewVec3i(c[0], c[1], c[2])
}

// ValueRange returns the global value range, reduced from the cell summaries
func (g *Grid) ValueRange() core.Range1f {
	r := core.EmptyRange()
	for _, cell := range g.ranges {
		r = r.Union(cell)
	}
	return r
}

// NumCells returns the total number of macrocells
func (g *Grid) NumCells() int {
	return len(g.ranges)
}

// SizeBytes returns the memory held by the cell summaries
func (g *Grid) SizeBytes() uint64 {
	return uint64(len(g.ranges)) * uint64(unsafe.Sizeof(core.Range1f{}))
}
