package geometry

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Mesh is a triangle soup behind a bounding box. Rays that miss the box are
// rejected early; otherwise every triangle is tested and the closest hit wins.
// The mesh's origin is the center of its bounds at construction time.
type Mesh struct {
	Object
	Triangles []*Triangle
	Bounds    core.AABB
}

// MeshOptions contains optional parameters for mesh creation
type MeshOptions struct {
	Rotation *core.Vec3 // Euler rotation in radians, applied around Center
	Center   *core.Vec3 // Rotation pivot; defaults to the vertex bounds center
	Scale    float64    // Uniform scale around the pivot; zero means 1
}

// NewMesh creates a mesh from vertices and triangle indices.
// It panics if len(indices) is not a multiple of 3 or an index is out of range;
// loaders validate input with ValidateIndices first.
func NewMesh(vertices []core.Vec3, indices []int, material int, options *MeshOptions) *Mesh {
	if err := ValidateIndices(len(vertices), indices); err != nil {
		panic(err.Error())
	}

	working := vertices
	if options != nil && (options.Rotation != nil || (options.Scale != 0 && options.Scale != 1)) {
		pivot := core.NewAABBFromPoints(vertices...).Center()
		if options.Center != nil {
			pivot = *options.Center
		}
		scale := options.Scale
		if scale == 0 {
			scale = 1
		}

		working = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			local := vertex.Subtract(pivot).Multiply(scale)
			if options.Rotation != nil {
				local = local.Rotate(*options.Rotation)
			}
			working[i] = local.Add(pivot)
		}
	}

	triangles := make([]*Triangle, len(indices)/3)
	for i := range triangles {
		triangles[i] = NewTriangle(
			working[indices[i*3]],
			working[indices[i*3+1]],
			working[indices[i*3+2]],
			material,
		)
	}

	return NewMeshFromTriangles(triangles, material)
}

// NewMeshFromTriangles wraps existing triangles in a mesh. The triangles take
// the mesh's material.
func NewMeshFromTriangles(triangles []*Triangle, material int) *Mesh {
	m := &Mesh{
		Object:    Object{Material: material},
		Triangles: triangles,
	}
	for _, tri := range triangles {
		tri.Material = material
	}
	m.computeBounds()
	m.Position = m.Bounds.Center()
	return m
}

// ValidateIndices checks that indices describe whole triangles over vertexCount vertices
func ValidateIndices(vertexCount int, indices []int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a multiple of 3", len(indices))
	}
	for i, index := range indices {
		if index < 0 || index >= vertexCount {
			return fmt.Errorf("mesh: index %d at position %d out of range [0, %d)", index, i, vertexCount)
		}
	}
	return nil
}

func (m *Mesh) computeBounds() {
	if len(m.Triangles) == 0 {
		m.Bounds = core.AABB{}
		return
	}
	m.Bounds = m.Triangles[0].BoundingBox()
	for _, tri := range m.Triangles[1:] {
		m.Bounds = m.Bounds.Union(tri.BoundingBox())
	}
}

// Hit tests if a ray intersects with any triangle in the mesh
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if len(m.Triangles) == 0 || !m.Bounds.Hit(ray, tMax) {
		return HitRecord{}, false
	}

	var closest HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, tri := range m.Triangles {
		if hit, ok := tri.Hit(ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (m *Mesh) BoundingBox() core.AABB {
	return m.Bounds
}

// MoveTo translates every triangle by the same offset so the mesh origin
// lands on origin, then recomputes the bounds
func (m *Mesh) MoveTo(origin core.Vec3) {
	offset := origin.Subtract(m.Position)
	for _, tri := range m.Triangles {
		tri.Translate(offset)
	}
	m.Position = origin
	m.computeBounds()
}

// TriangleCount returns the number of triangles in this mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

func (m *Mesh) Kind() Kind { return KindMesh }
