package geometry

import "github.com/df07/go-pathtracer/pkg/core"

// Box represents an axis-aligned box. Its origin is the box center.
type Box struct {
	Object
	Bounds core.AABB
}

// NewBox creates a box spanning two opposite corners
func NewBox(min, max core.Vec3, material int) *Box {
	bounds := core.NewAABB(min, max)
	return &Box{
		Object: Object{Position: bounds.Center(), Material: material},
		Bounds: bounds,
	}
}

// NewBoxAt creates a box centered on center with the given half-extents
func NewBoxAt(center, halfSize core.Vec3, material int) *Box {
	return NewBox(center.Subtract(halfSize), center.Add(halfSize), material)
}

// Hit runs the slab test and reports the entry distance. A ray starting
// inside the box enters behind its origin and is treated as a miss.
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	tNear, tFar, axis := b.Bounds.Slab(ray)
	if tFar < max(0, tNear) || !inRange(tNear, tMin, tMax) {
		return HitRecord{}, false
	}

	// The entry face normal opposes the ray along the entry axis
	var normal core.Vec3
	sign := 1.0
	if ray.Direction.Axis(axis) > 0 {
		sign = -1.0
	}
	switch axis {
	case 0:
		normal = core.Vec3{X: sign}
	case 1:
		normal = core.Vec3{Y: sign}
	default:
		normal = core.Vec3{Z: sign}
	}

	return HitRecord{T: tNear, Normal: normal, FrontFace: true}, true
}

// BoundingBox returns the box itself
func (b *Box) BoundingBox() core.AABB {
	return b.Bounds
}

// MoveTo translates the box so its center lands on origin
func (b *Box) MoveTo(origin core.Vec3) {
	b.Bounds = b.Bounds.Translate(origin.Subtract(b.Position))
	b.Position = origin
}

func (b *Box) Kind() Kind { return KindBox }
