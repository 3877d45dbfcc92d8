package renderer

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// Frame holds per-pixel traversal results. Tiles write disjoint pixels.
type Frame struct {
	Width, Height int
	Depth         []float32 // t of the first crossing, +Inf for none
	Hits          []int     // crossings along the pixel ray
	Shade         []float32 // |cos| between the view ray and the surface normal at the first crossing
}

// NewFrame creates an empty frame
func NewFrame(width, height int) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Depth:  make([]float32, width*height),
		Hits:   make([]int, width*height),
		Shade:  make([]float32, width*height),
	}
	for i := range f.Depth {
		f.Depth[i] = math32.Inf(1)
	}
	return f
}

func (f *Frame) index(x, y int) int {
	return y*f.Width + x
}

// At returns the depth, crossing count and shade of pixel (x, y)
func (f *Frame) At(x, y int) (float32, int, float32) {
	i := f.index(x, y)
	return f.Depth[i], f.Hits[i], f.Shade[i]
}

// Image converts the frame to a shaded grayscale image on a dark background
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	background := color.RGBA{R: 20, G: 22, B: 28, A: 255}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.index(x, y)
			if f.Hits[i] == 0 {
				img.SetRGBA(x, y, background)
				continue
			}
			// more crossings behind the first surface read slightly warmer
			layers := math32.Min(float32(f.Hits[i]-1)/8, 1)
			g := 0.15 + 0.85*math32.Max(0, math32.Min(f.Shade[i], 1))
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(g),
				G: toByte(g * (1 - 0.25*layers)),
				B: toByte(g * (1 - 0.5*layers)),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(math32.Max(0, math32.Min(v, 1))*255 + 0.5)
}
