package driver

import (
	"fmt"

	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/iterator"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/simd"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

const (
	// NameGo runs every supported width up to the configured maximum
	NameGo = "go"
	// NameScalar accepts width 1 only
	NameScalar = "scalar"
)

// laneDriver executes every batch lane by lane on the scalar iterators
type laneDriver struct {
	name        string
	nativeWidth int
	maxWidth    int
	refine      iterator.RefineConfig
	logger      core.Logger
}

func newGoDriver(opts Options) (Driver, error) {
	return &laneDriver{
		name:        NameGo,
		nativeWidth: opts.NativeWidth,
		maxWidth:    opts.MaxWidth,
		refine:      opts.Refine,
		logger:      opts.Logger,
	}, nil
}

func newScalarDriver(opts Options) (Driver, error) {
	return &laneDriver{
		name:        NameScalar,
		nativeWidth: 1,
		maxWidth:    1,
		refine:      opts.Refine,
		logger:      opts.Logger,
	}, nil
}

func (d *laneDriver) Name() string         { return d.name }
func (d *laneDriver) NativeSIMDWidth() int { return d.nativeWidth }

func (d *laneDriver) SupportsWidth(width int) bool {
	return simd.ValidateWidth(width) == nil && width <= d.maxWidth
}

// checkWidth distinguishes malformed widths from widths this driver lacks
func (d *laneDriver) checkWidth(op string, width int) error {
	if err := simd.ValidateWidth(width); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if width > d.maxWidth {
		return fmt.Errorf("%w: %s driver has no %s for width %d", ErrNotImplemented, d.name, op, width)
	}
	return nil
}

func (d *laneDriver) NewVolume(typeName string) (volume.Volume, error) {
	vol, err := volume.New(typeName)
	if err != nil {
		return nil, err
	}
	d.logger.Printf("%s driver: created %s volume\n", d.name, typeName)
	return vol, nil
}

func (d *laneDriver) NewValueSelector(vol volume.Volume) (*selector.ValueSelector, error) {
	if vol == nil {
		return nil, ErrNilVolume
	}
	return selector.New(), nil
}

func (d *laneDriver) BoundingBox(vol volume.Volume) core.Box3f {
	return vol.BoundingBox()
}

func (d *laneDriver) ValueRange(vol volume.Volume) core.Range1f {
	return vol.ValueRange()
}

func (d *laneDriver) InitIntervalIterator(valid simd.Mask, vol volume.Volume, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector) (*iterator.IntervalIteratorN, error) {
	if err := d.checkWidth("interval iterator", len(valid)); err != nil {
		return nil, err
	}
	grid, err := accelerator(vol)
	if err != nil {
		return nil, err
	}
	return iterator.NewIntervalIteratorN(valid, grid, origins, directions, tRanges, sel)
}

func (d *laneDriver) IterateInterval(valid simd.Mask, it *iterator.IntervalIteratorN, out iterator.IntervalN, result simd.Mask) error {
	if err := d.checkWidth("interval iteration", len(valid)); err != nil {
		return err
	}
	return it.Iterate(valid, out, result)
}

func (d *laneDriver) InitHitIterator(valid simd.Mask, vol volume.Volume, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector) (*iterator.HitIteratorN, error) {
	if err := d.checkWidth("hit iterator", len(valid)); err != nil {
		return nil, err
	}
	if _, err := accelerator(vol); err != nil {
		return nil, err
	}
	return iterator.NewHitIteratorN(valid, vol, origins, directions, tRanges, sel, d.refine)
}

func (d *laneDriver) IterateHit(valid simd.Mask, it *iterator.HitIteratorN, out iterator.HitN, result simd.Mask) error {
	if err := d.checkWidth("hit iteration", len(valid)); err != nil {
		return err
	}
	return it.Iterate(valid, out, result)
}

func (d *laneDriver) ComputeSample(valid simd.Mask, vol volume.Volume, coords simd.VVec3f, out []float32) error {
	width := len(valid)
	if err := d.checkWidth("sample", width); err != nil {
		return err
	}
	if err := simd.CheckLanes(width, coords.Width(), len(out)); err != nil {
		return err
	}
	if vol == nil {
		return ErrNilVolume
	}
	for i, on := range valid {
		if on {
			out[i] = vol.Sample(coords.Lane(i))
		}
	}
	return nil
}

func (d *laneDriver) ComputeGradient(valid simd.Mask, vol volume.Volume, coords simd.VVec3f, out simd.VVec3f) error {
	width := len(valid)
	if err := d.checkWidth("gradient", width); err != nil {
		return err
	}
	if err := simd.CheckLanes(width, coords.Width(), out.Width()); err != nil {
		return err
	}
	if vol == nil {
		return ErrNilVolume
	}
	for i, on := range valid {
		if on {
			out.SetLane(i, vol.Gradient(coords.Lane(i)))
		}
	}
	return nil
}

func accelerator(vol volume.Volume) (*accel.Grid, error) {
	if vol == nil {
		return nil, ErrNilVolume
	}
	grid := vol.Accelerator()
	if grid == nil {
		return nil, volume.ErrNotCommitted
	}
	return grid, nil
}
