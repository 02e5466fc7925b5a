package renderer

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ViewportCamera places a virtual viewport one unit in front of the origin
// and aims rays at points on it. It needs no matrices, and its directions are
// not normalized.
type ViewportCamera struct {
	origin          core.Vec3
	forward         core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	vfov            float64
	width, height   int
	directions      []core.Vec3
}

// NewViewportCamera creates a viewport camera with a vertical field of view in degrees
func NewViewportCamera(width int, aspectRatio float64, origin, forward core.Vec3, vfov float64) *ViewportCamera {
	c := &ViewportCamera{
		origin:  origin,
		forward: forward.Normalize(),
		vfov:    vfov,
		width:   width,
		height:  int(float64(width) / aspectRatio),
	}
	c.recalculate()
	return c
}

func (c *ViewportCamera) recalculate() {
	aspectRatio := float64(c.width) / float64(c.height)
	viewportHeight := 2.0 * math.Tan(c.vfov*math.Pi/360.0)
	viewportWidth := aspectRatio * viewportHeight

	// Orthonormal basis: w points backwards, u right, v up
	w := c.forward.Negate()
	u := upFor(c.forward).Cross(w).Normalize()
	v := w.Cross(u)

	c.horizontal = u.Multiply(viewportWidth)
	c.vertical = v.Multiply(viewportHeight)
	c.lowerLeftCorner = c.origin.
		Subtract(c.horizontal.Multiply(0.5)).
		Subtract(c.vertical.Multiply(0.5)).
		Subtract(w)

	c.directions = make([]core.Vec3, c.width*c.height)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			c.directions[x+y*c.width] = c.RayDirectionAt(float64(x), float64(y))
		}
	}
}

// Position returns the camera origin
func (c *ViewportCamera) Position() core.Vec3 { return c.origin }

// Size returns the image dimensions
func (c *ViewportCamera) Size() (int, int) { return c.width, c.height }

// RayDirection returns the cached direction for pixel (x, y)
func (c *ViewportCamera) RayDirection(x, y int) core.Vec3 {
	return c.directions[x+y*c.width]
}

// RayDirectionAt maps a continuous pixel coordinate to (s, t) in [0,1] and
// returns lowerLeft + s·horizontal + t·vertical - origin
func (c *ViewportCamera) RayDirectionAt(px, py float64) core.Vec3 {
	s := px / float64(c.width)
	t := py / float64(c.height)
	return c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)
}

// SetPosition moves the camera and reports whether anything changed
func (c *ViewportCamera) SetPosition(origin core.Vec3) bool {
	if origin == c.origin {
		return false
	}
	c.origin = origin
	c.recalculate()
	return true
}

// Resize changes the image dimensions and reports whether they changed
func (c *ViewportCamera) Resize(width, height int) bool {
	if width == c.width && height == c.height {
		return false
	}
	c.width = width
	c.height = height
	c.recalculate()
	return true
}
