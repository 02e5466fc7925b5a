package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Object
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material int) *Sphere {
	return &Sphere{
		Object: Object{Position: center, Material: material},
		Radius: radius,
	}
}

// Hit tests the ray against the near side of the sphere only. A ray that
// starts inside the sphere has its near root behind the origin and misses.
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	oc := ray.Origin.Subtract(s.Position)

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return HitRecord{}, false
	}

	root := (-halfB - math.Sqrt(discriminant)) / a
	if !inRange(root, tMin, tMax) {
		return HitRecord{}, false
	}

	hit := HitRecord{T: root}
	outwardNormal := ray.At(root).Subtract(s.Position).Divide(s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.Splat(s.Radius)
	return core.NewAABB(s.Position.Subtract(radius), s.Position.Add(radius))
}

// MoveTo places the sphere's center at origin
func (s *Sphere) MoveTo(origin core.Vec3) {
	s.Position = origin
}

func (s *Sphere) Kind() Kind { return KindSphere }
