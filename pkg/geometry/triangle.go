package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// triangleEpsilon rejects rays nearly parallel to the triangle's plane
const triangleEpsilon = 1e-6

// Triangle represents a single triangle defined by three vertices.
// Its origin is the centroid.
type Triangle struct {
	Object
	V0, V1, V2 core.Vec3 // The three vertices
	normal     core.Vec3 // Cached normal vector
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material int) *Triangle {
	t := &Triangle{
		Object: Object{Material: material},
		V0:     v0,
		V1:     v1,
		V2:     v2,
	}
	t.update()
	return t
}

// update recomputes the cached normal and centroid from the vertices
func (t *Triangle) update() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
	t.Position = t.V0.Add(t.V1).Add(t.V2).Divide(3)
}

// Hit intersects the ray with the triangle's plane and then applies the
// edge test: the hit point must lie on the inner side of v0→v1, v1→v2 and
// v2→v0 in that order. Reversing the winding flips both the normal and every
// edge cross product, so classification does not depend on vertex order.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	nDotD := t.normal.Dot(ray.Direction)
	if math.Abs(nDotD) < triangleEpsilon*ray.Direction.Length() {
		return HitRecord{}, false
	}

	d := -t.normal.Dot(t.V0)
	dist := -(t.normal.Dot(ray.Origin) + d) / nDotD
	if !inRange(dist, tMin, tMax) {
		return HitRecord{}, false
	}

	p := ray.At(dist)
	if !t.inside(p) {
		return HitRecord{}, false
	}

	hit := HitRecord{T: dist}
	hit.SetFaceNormal(ray, t.normal)

	return hit, true
}

// inside reports whether p, a point on the triangle's plane, lies within all three edges
func (t *Triangle) inside(p core.Vec3) bool {
	if t.normal.Dot(t.V1.Subtract(t.V0).Cross(p.Subtract(t.V0))) < 0 {
		return false
	}
	if t.normal.Dot(t.V2.Subtract(t.V1).Cross(p.Subtract(t.V1))) < 0 {
		return false
	}
	if t.normal.Dot(t.V0.Subtract(t.V2).Cross(p.Subtract(t.V2))) < 0 {
		return false
	}
	return true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Normal returns the triangle's geometric normal, following the winding v0→v1→v2
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// MoveTo translates all three vertices so the centroid lands on origin
func (t *Triangle) MoveTo(origin core.Vec3) {
	t.Translate(origin.Subtract(t.Position))
}

// Translate moves the triangle by offset
func (t *Triangle) Translate(offset core.Vec3) {
	t.V0 = t.V0.Add(offset)
	t.V1 = t.V1.Add(offset)
	t.V2 = t.V2.Add(offset)
	t.update()
}

func (t *Triangle) Kind() Kind { return KindTriangle }
