// Package driver provides the width-indexed calling convention renderers use
// to create volumes and run traversal queries. Drivers are looked up by name
// from a registry.
package driver

import (
	"errors"
	"fmt"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/iterator"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/simd"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

var (
	ErrNotImplemented = errors.New("not implemented on this driver")
	ErrUnknownDriver  = errors.New("unknown driver")
	ErrNilVolume      = errors.New("nil volume")
)

// Driver creates volumes and executes batched queries against them. Every
// batch call takes a validity mask; lanes cleared in the mask are neither
// read nor written.
type Driver interface {
	Name() string
	// SupportsWidth reports whether batch calls accept width lanes
	SupportsWidth(width int) bool
	// NativeSIMDWidth is the batch width the renderer should prefer
	NativeSIMDWidth() int

	NewVolume(typeName string) (volume.Volume, error)
	NewValueSelector(vol volume.Volume) (*selector.ValueSelector, error)
	BoundingBox(vol volume.Volume) core.Box3f
	ValueRange(vol volume.Volume) core.Range1f

	InitIntervalIterator(valid simd.Mask, vol volume.Volume, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector) (*iterator.IntervalIteratorN, error)
	IterateInterval(valid simd.Mask, it *iterator.IntervalIteratorN, out iterator.IntervalN, result simd.Mask) error
	InitHitIterator(valid simd.Mask, vol volume.Volume, origins, directions simd.VVec3f, tRanges simd.VRange1f, sel *selector.ValueSelector) (*iterator.HitIteratorN, error)
	IterateHit(valid simd.Mask, it *iterator.HitIteratorN, out iterator.HitN, result simd.Mask) error

	ComputeSample(valid simd.Mask, vol volume.Volume, coords simd.VVec3f, out []float32) error
	ComputeGradient(valid simd.Mask, vol volume.Volume, coords simd.VVec3f, out simd.VVec3f) error
}

// Options configure a driver instance
type Options struct {
	NativeWidth int // preferred batch width
	MaxWidth    int // widest batch accepted
	Refine      iterator.RefineConfig
	Logger      core.Logger
}

// DefaultOptions returns width 8 native, 16 max and the default refinement
func DefaultOptions() Options {
	return Options{
		NativeWidth: 8,
		MaxWidth:    16,
		Refine:      iterator.DefaultRefineConfig(),
		Logger:      core.NopLogger{},
	}
}

// Validate checks that both widths are supported and consistent
func (o Options) Validate() error {
	if err := simd.ValidateWidth(o.NativeWidth); err != nil {
		return fmt.Errorf("native width: %w", err)
	}
	if err := simd.ValidateWidth(o.MaxWidth); err != nil {
		return fmt.Errorf("max width: %w", err)
	}
	if o.NativeWidth > o.MaxWidth {
		return fmt.Errorf("native width %d exceeds max width %d", o.NativeWidth, o.MaxWidth)
	}
	if o.Refine.MaxIterations < 0 {
		return fmt.Errorf("refine iterations must not be negative, got %d", o.Refine.MaxIterations)
	}
	return nil
}
