package renderer

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/scene"
)

// Camera generates primary rays for an image
type Camera struct {
	origin          core.Vec3f
	lowerLeftCorner core.Vec3f
	horizontal      core.Vec3f
	vertical        core.Vec3f
}

// NewCamera creates a pinhole camera from a scene camera config
func NewCamera(cfg scene.CameraConfig, aspectRatio float32) *Camera {
	theta := cfg.VFov * math32.Pi / 180
	viewportHeight := 2 * math32.Tan(theta/2)
	viewportWidth := aspectRatio * viewportHeight

	w := cfg.Position.Subtract(cfg.LookAt).Normalize()
	u := cfg.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := cfg.Position
	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := origin.Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}
}

// GetRay generates a unit-direction ray for screen coordinates (s, t) where 0 <= s,t <= 1
func (c *Camera) GetRay(s, t float32) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction.Normalize())
}

// PixelRay returns the ray through the center of pixel (x, y), y growing downwards
func (c *Camera) PixelRay(x, y, width, height int) core.Ray {
	s := (float32(x) + 0.5) / float32(width)
	t := 1 - (float32(y)+0.5)/float32(height)
	return c.GetRay(s, t)
}
