package geometry

import "github.com/df07/go-pathtracer/pkg/core"

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T         float64   // Parameter t along the ray
	Normal    core.Vec3 // Unit surface normal, facing against the ray
	FrontFace bool      // Whether ray hit the outward-facing side
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Kind identifies a primitive variant
type Kind int

const (
	KindSphere Kind = iota
	KindPlane
	KindTriangle
	KindBox
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindTriangle:
		return "triangle"
	case KindBox:
		return "box"
	case KindMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Shape is a renderable primitive. Hit returns the smallest t in [tMin, tMax]
// where the ray meets the surface; hits at t <= 0 are never reported.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool)
	BoundingBox() core.AABB
	Origin() core.Vec3
	MaterialIndex() int
	MoveTo(origin core.Vec3)
	Kind() Kind
}

// Object holds the fields every primitive shares: its world-space origin and
// the index of its material in the owning scene's material list.
type Object struct {
	Position core.Vec3
	Material int
}

// Origin returns the object's world-space origin
func (o *Object) Origin() core.Vec3 {
	return o.Position
}

// MaterialIndex returns the index into the scene's material list
func (o *Object) MaterialIndex() int {
	return o.Material
}

// inRange reports whether t is in front of the ray origin and inside [tMin, tMax]
func inRange(t, tMin, tMax float64) bool {
	return t > 0 && t >= tMin && t <= tMax
}
