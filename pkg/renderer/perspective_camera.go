package renderer

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	verticalFOV = 45.0 // degrees
	nearClip    = 0.1
	farClip     = 100.0

	mouseSensitivity = 0.002
	rotationSpeed    = 0.3

	// Mouse look stops this far short of straight up or down (radians)
	maxPitch = 89 * math.Pi / 180
	// Forward vectors closer than this to world up use fallbackUp
	verticalDot = 1 - 1e-6
)

var (
	worldUp    = core.NewVec3(0, 1, 0)
	fallbackUp = core.NewVec3(0, 0, -1)
)

// upFor returns the up vector used to build a view basis around forward.
// World up is parallel to a vertical forward, so those views use -Z instead.
func upFor(forward core.Vec3) core.Vec3 {
	if math.Abs(forward.Dot(worldUp)) > verticalDot {
		return fallbackUp
	}
	return worldUp
}

// PerspectiveCamera unprojects normalized device coordinates through inverse
// projection and view matrices. Directions for every pixel corner are cached
// and rebuilt whenever the camera moves or is resized.
type PerspectiveCamera struct {
	position core.Vec3
	forward  core.Vec3
	width    int
	height   int

	inverseProjection mgl64.Mat4
	inverseView       mgl64.Mat4
	directions        []core.Vec3

	lastMouse core.Vec2
}

// NewPerspectiveCamera creates a camera looking down -Z. The image height is
// derived from width and aspect ratio.
func NewPerspectiveCamera(width int, aspectRatio float64, position core.Vec3) *PerspectiveCamera {
	c := &PerspectiveCamera{
		position: position,
		forward:  core.NewVec3(0, 0, -1),
		width:    width,
		height:   int(float64(width) / aspectRatio),
	}
	c.recalculate()
	return c
}

// Position returns the camera origin
func (c *PerspectiveCamera) Position() core.Vec3 { return c.position }

// Forward returns the unit view direction
func (c *PerspectiveCamera) Forward() core.Vec3 { return c.forward }

// Size returns the image dimensions
func (c *PerspectiveCamera) Size() (int, int) { return c.width, c.height }

// RayDirection returns the cached direction for pixel (x, y)
func (c *PerspectiveCamera) RayDirection(x, y int) core.Vec3 {
	return c.directions[x+y*c.width]
}

// RayDirectionAt unprojects a continuous pixel coordinate
func (c *PerspectiveCamera) RayDirectionAt(px, py float64) core.Vec3 {
	ndcX := px/float64(c.width)*2 - 1
	ndcY := py/float64(c.height)*2 - 1

	target := c.inverseProjection.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	local := target.Vec3().Mul(1 / target.W()).Normalize()
	world := c.inverseView.Mul4x1(local.Vec4(0))

	return core.Vec3{X: world.X(), Y: world.Y(), Z: world.Z()}
}

// SetPosition moves the camera and reports whether anything changed
func (c *PerspectiveCamera) SetPosition(position core.Vec3) bool {
	if position == c.position {
		return false
	}
	c.position = position
	c.recalculate()
	return true
}

// SetForward points the camera along direction and reports whether anything changed
func (c *PerspectiveCamera) SetForward(direction core.Vec3) bool {
	direction = direction.Normalize()
	if direction == c.forward || direction == (core.Vec3{}) || direction.IsNaN() {
		return false
	}
	c.forward = direction
	c.recalculate()
	return true
}

// Resize changes the image dimensions and reports whether they changed
func (c *PerspectiveCamera) Resize(width, height int) bool {
	if width == c.width && height == c.height {
		return false
	}
	c.width = width
	c.height = height
	c.recalculate()
	return true
}

// Update applies one frame of navigation input. Holding Look enables WASD
// movement of one unit per update along the view and right vectors, and turns
// mouse motion into pitch about the right vector and yaw about world up.
// Pitch is clamped to maxPitch either side of the horizon. The cursor
// position is tracked even when Look is released so the first frame of a
// drag does not jump. Update returns true if the camera moved.
func (c *PerspectiveCamera) Update(input Input) bool {
	delta := input.Mouse.Subtract(c.lastMouse).Multiply(mouseSensitivity)
	c.lastMouse = input.Mouse

	if !input.Look {
		return false
	}

	right := c.forward.Cross(upFor(c.forward))
	moved := false

	if input.Forward {
		c.position = c.position.Add(c.forward)
		moved = true
	}
	if input.Backward {
		c.position = c.position.Subtract(c.forward)
		moved = true
	}
	if input.Left {
		c.position = c.position.Subtract(right)
		moved = true
	}
	if input.Right {
		c.position = c.position.Add(right)
		moved = true
	}

	if !delta.IsZero() {
		pitch := delta.Y * rotationSpeed
		yaw := delta.X * rotationSpeed

		forward := toMGL(c.forward)
		if pitch != 0 {
			elevation := math.Asin(max(-1, min(1, c.forward.Dot(worldUp))))
			target := max(-maxPitch, min(maxPitch, elevation-pitch))
			forward = mgl64.QuatRotate(target-elevation, toMGL(right.Normalize())).Rotate(forward)
		}
		if yaw != 0 {
			forward = mgl64.QuatRotate(-yaw, toMGL(worldUp)).Rotate(forward)
		}
		c.forward = fromMGL(forward).Normalize()
		moved = true
	}

	if moved {
		c.recalculate()
	}

	return moved
}

// recalculate rebuilds both matrices and the direction cache
func (c *PerspectiveCamera) recalculate() {
	projection := mgl64.Perspective(mgl64.DegToRad(verticalFOV), float64(c.width)/float64(c.height), nearClip, farClip)
	c.inverseProjection = projection.Inv()

	view := mgl64.LookAtV(toMGL(c.position), toMGL(c.position.Add(c.forward)), toMGL(upFor(c.forward)))
	c.inverseView = view.Inv()

	if cap(c.directions) >= c.width*c.height {
		c.directions = c.directions[:c.width*c.height]
	} else {
		c.directions = make([]core.Vec3, c.width*c.height)
	}
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			c.directions[x+y*c.width] = c.RayDirectionAt(float64(x), float64(y))
		}
	}
}

func toMGL(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMGL(v mgl64.Vec3) core.Vec3 {
	return core.Vec3{X: v.X(), Y: v.Y(), Z: v.Z()}
}
