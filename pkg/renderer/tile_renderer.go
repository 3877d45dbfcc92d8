package renderer

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/iterator"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/simd"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

// TileRenderer traces the pixels of a tile in lane batches through a driver.
// Each worker owns one; the batch buffers are reused between batches.
type TileRenderer struct {
	driver        driver.Driver
	volume        volume.Volume
	selector      *selector.ValueSelector
	camera        *Camera
	width, height int
	lanes         int

	origins    simd.VVec3f
	directions simd.VVec3f
	tRanges    simd.VRange1f
	valid      simd.Mask
	active     simd.Mask
	result     simd.Mask
	hits       iterator.HitN
	positions  simd.VVec3f
	gradients  simd.VVec3f
}

// NewTileRenderer creates a tile renderer issuing batches of lanes rays
func NewTileRenderer(drv driver.Driver, vol volume.Volume, sel *selector.ValueSelector, camera *Camera, width, height, lanes int) *TileRenderer {
	return &TileRenderer{
		driver:     drv,
		volume:     vol,
		selector:   sel,
		camera:     camera,
		width:      width,
		height:     height,
		lanes:      lanes,
		origins:    simd.NewVVec3f(lanes),
		directions: simd.NewVVec3f(lanes),
		tRanges:    simd.NewVRange1f(lanes),
		valid:      make(simd.Mask, lanes),
		active:     make(simd.Mask, lanes),
		result:     make(simd.Mask, lanes),
		hits:       iterator.NewHitN(lanes),
		positions:  simd.NewVVec3f(lanes),
		gradients:  simd.NewVVec3f(lanes),
	}
}

// RenderTileBounds traces every pixel within bounds and writes the results to frame
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, frame *Frame) (RenderStats, error) {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	pixels := make([]int, 0, tr.lanes)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, frame.index(x, y))
			if len(pixels) == tr.lanes {
				if err := tr.traceBatch(pixels, frame, &stats); err != nil {
					return stats, err
				}
				pixels = pixels[:0]
			}
		}
	}
	if len(pixels) > 0 {
		if err := tr.traceBatch(pixels, frame, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// traceBatch runs one hit query for up to tr.lanes pixels; spare lanes stay invalid
func (tr *TileRenderer) traceBatch(pixels []int, frame *Frame, stats *RenderStats) error {
	tr.valid.Clear()
	for lane, pixel := range pixels {
		ray := tr.camera.PixelRay(pixel%frame.Width, pixel/frame.Width, tr.width, tr.height)
		tr.origins.SetLane(lane, ray.Origin)
		tr.directions.SetLane(lane, ray.Direction)
		tr.tRanges.SetLane(lane, ray.TRange)
		tr.valid[lane] = true
	}

	it, err := tr.driver.InitHitIterator(tr.valid, tr.volume, tr.origins, tr.directions, tr.tRanges, tr.selector)
	if err != nil {
		return fmt.Errorf("initializing hit iterator: %w", err)
	}
	stats.Batches++

	// lanes still producing crossings
	copy(tr.active, tr.valid)
	first := make(simd.Mask, tr.lanes)
	for tr.active.Any() {
		if err := tr.driver.IterateHit(tr.active, it, tr.hits, tr.result); err != nil {
			return fmt.Errorf("iterating hits: %w", err)
		}
		for lane := range tr.active {
			tr.active[lane] = tr.result[lane]
			if !tr.result[lane] {
				continue
			}
			pixel := pixels[lane]
			frame.Hits[pixel]++
			stats.TotalHits++
			if frame.Hits[pixel] == 1 {
				t := tr.hits.T[lane]
				frame.Depth[pixel] = t
				p := tr.origins.Lane(lane).Add(tr.directions.Lane(lane).Multiply(t))
				tr.positions.SetLane(lane, p)
				first[lane] = true
			}
		}
	}
	stats.Traversal.Add(it.Stats())

	if !first.Any() {
		return nil
	}
	if err := tr.driver.ComputeGradient(first, tr.volume, tr.positions, tr.gradients); err != nil {
		return fmt.Errorf("computing gradients: %w", err)
	}
	for lane, on := range first {
		if !on {
			continue
		}
		stats.PixelsHit++
		g := tr.gradients.Lane(lane)
		if length := g.Length(); length > 0 && !math32.IsNaN(length) {
			frame.Shade[pixels[lane]] = math32.Abs(g.Multiply(1 / length).Dot(tr.directions.Lane(lane)))
		}
	}
	return nil
}
