package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// planeEpsilon is the minimum cosine between the ray and the plane normal for
// the plane to be visible
const planeEpsilon = 1e-6

// Plane represents an infinite one-sided plane through Position.
// Normal points along the rays the plane accepts: a ray is tested only when
// dot(normalize(Normal), normalize(direction)) > planeEpsilon, so a floor
// seen from above has Normal (0,-1,0).
type Plane struct {
	Object
	Normal core.Vec3 // Unit normal
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, material int) *Plane {
	return &Plane{
		Object: Object{Position: point, Material: material},
		Normal: normal.Normalize(),
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if p.Normal.Dot(ray.Direction.Normalize()) <= planeEpsilon {
		return HitRecord{}, false
	}

	t := p.Position.Subtract(ray.Origin).Dot(p.Normal) / p.Normal.Dot(ray.Direction)
	if !inRange(t, tMin, tMax) {
		return HitRecord{}, false
	}

	// The visible side faces against Normal
	hit := HitRecord{T: t}
	hit.SetFaceNormal(ray, p.Normal.Negate())

	return hit, true
}

// BoundingBox returns a large box around the plane. Planes are unbounded, so
// the box is only meaningful for scene extents.
func (p *Plane) BoundingBox() core.AABB {
	const largeValue = 1e6
	const thickness = 0.001

	half := core.Splat(largeValue)
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p.Normal.Axis(axis)) > 1-1e-9 {
			switch axis {
			case 0:
				half.X = thickness
			case 1:
				half.Y = thickness
			case 2:
				half.Z = thickness
			}
		}
	}

	return core.NewAABB(p.Position.Subtract(half), p.Position.Add(half))
}

// MoveTo moves the plane's reference point to origin
func (p *Plane) MoveTo(origin core.Vec3) {
	p.Position = origin
}

func (p *Plane) Kind() Kind { return KindPlane }
