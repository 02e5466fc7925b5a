package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// NewTriangleMeshScene shows the procedural meshes side by side on a ground plane
func NewTriangleMeshScene() *Scene {
	s := New("triangle-meshes")
	s.Sky = DefaultSky()
	s.Camera = CameraConfig{
		Position:    core.NewVec3(0, 1.5, 6),
		Forward:     core.NewVec3(0, -0.15, -1),
		Width:       640,
		AspectRatio: 16.0 / 9.0,
	}

	ground := s.AddMaterial(Material{Albedo: core.Splat(0.7), Roughness: 1})
	redMetal := s.AddMaterial(Material{Albedo: core.NewVec3(0.8, 0.2, 0.2), Roughness: 0.1, Metallic: 1})
	blue := s.AddMaterial(Material{Albedo: core.NewVec3(0.2, 0.3, 0.8), Roughness: 1})
	gold := s.AddMaterial(Material{Albedo: core.NewVec3(0.8, 0.6, 0.2), Roughness: 0.05, Metallic: 1})

	s.AddShape(NewGroundPlane(0, ground))
	s.AddShape(NewBoxMesh(core.NewVec3(-2, 0.5, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, math.Pi/6, 0), redMetal))
	s.AddShape(NewPyramidMesh(core.NewVec3(0, 1, 0), 1.5, 2.0, core.NewVec3(0, math.Pi/4, 0), blue))
	s.AddShape(NewIcosahedronMesh(core.NewVec3(2, 0.8, 0), 0.8, 0, gold))

	return s
}

// NewBoxMesh creates a triangulated box of the given full size, rotated about its center
func NewBoxMesh(center, size, rotation core.Vec3, material int) *geometry.Mesh {
	h := size.Multiply(0.5)
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-h.X, -h.Y, -h.Z)), // 0: left-bottom-back
		center.Add(core.NewVec3(+h.X, -h.Y, -h.Z)), // 1: right-bottom-back
		center.Add(core.NewVec3(+h.X, +h.Y, -h.Z)), // 2: right-top-back
		center.Add(core.NewVec3(-h.X, +h.Y, -h.Z)), // 3: left-top-back
		center.Add(core.NewVec3(-h.X, -h.Y, +h.Z)), // 4: left-bottom-front
		center.Add(core.NewVec3(+h.X, -h.Y, +h.Z)), // 5: right-bottom-front
		center.Add(core.NewVec3(+h.X, +h.Y, +h.Z)), // 6: right-top-front
		center.Add(core.NewVec3(-h.X, +h.Y, +h.Z)), // 7: left-top-front
	}

	faces := []int{
		0, 1, 2, 0, 2, 3, // back
		4, 6, 5, 4, 7, 6, // front
		0, 3, 7, 0, 7, 4, // left
		1, 5, 6, 1, 6, 2, // right
		0, 4, 5, 0, 5, 1, // bottom
		3, 2, 6, 3, 6, 7, // top
	}

	return geometry.NewMesh(vertices, faces, material, rotationOptions(center, rotation))
}

// NewPyramidMesh creates a square-based pyramid centered on center
func NewPyramidMesh(center core.Vec3, baseSize, height float64, rotation core.Vec3, material int) *geometry.Mesh {
	halfBase := baseSize * 0.5
	halfHeight := height * 0.5

	vertices := []core.Vec3{
		center.Add(core.NewVec3(-halfBase, -halfHeight, -halfBase)), // 0: left-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, -halfBase)), // 1: right-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, +halfBase)), // 2: right-front
		center.Add(core.NewVec3(-halfBase, -halfHeight, +halfBase)), // 3: left-front
		center.Add(core.NewVec3(0, +halfHeight, 0)),                 // 4: apex
	}

	faces := []int{
		0, 2, 1, 0, 3, 2, // base
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
		3, 0, 4,
	}

	return geometry.NewMesh(vertices, faces, material, rotationOptions(center, rotation))
}

// NewIcosahedronMesh creates an icosphere: an icosahedron whose faces are split
// into four, subdivisions times, with every vertex pushed out to radius
func NewIcosahedronMesh(center core.Vec3, radius float64, subdivisions int, material int) *geometry.Mesh {
	phi := (1 + math.Sqrt(5)) / 2

	vertices := []core.Vec3{
		core.NewVec3(-1, phi, 0), core.NewVec3(1, phi, 0), core.NewVec3(-1, -phi, 0), core.NewVec3(1, -phi, 0),
		core.NewVec3(0, -1, phi), core.NewVec3(0, 1, phi), core.NewVec3(0, -1, -phi), core.NewVec3(0, 1, -phi),
		core.NewVec3(phi, 0, -1), core.NewVec3(phi, 0, 1), core.NewVec3(-phi, 0, -1), core.NewVec3(-phi, 0, 1),
	}
	for i := range vertices {
		vertices[i] = vertices[i].Normalize()
	}

	faces := []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for level := 0; level < subdivisions; level++ {
		vertices, faces = subdivide(vertices, faces)
	}

	for i := range vertices {
		vertices[i] = center.Add(vertices[i].Multiply(radius))
	}

	return geometry.NewMesh(vertices, faces, material, nil)
}

// subdivide splits every triangle of a unit-sphere mesh into four,
// sharing midpoints between neighbouring faces
func subdivide(vertices []core.Vec3, faces []int) ([]core.Vec3, []int) {
	type edge struct{ a, b int }
	midpoints := make(map[edge]int)

	midpoint := func(a, b int) int {
		if a > b {
			a, b = b, a
		}
		if idx, ok := midpoints[edge{a, b}]; ok {
			return idx
		}
		vertices = append(vertices, vertices[a].Add(vertices[b]).Normalize())
		midpoints[edge{a, b}] = len(vertices) - 1
		return len(vertices) - 1
	}

	out := make([]int, 0, len(faces)*4)
	for i := 0; i < len(faces); i += 3 {
		v0, v1, v2 := faces[i], faces[i+1], faces[i+2]
		a := midpoint(v0, v1)
		b := midpoint(v1, v2)
		c := midpoint(v2, v0)
		out = append(out,
			v0, a, c,
			v1, b, a,
			v2, c, b,
			a, b, c,
		)
	}

	return vertices, out
}

func rotationOptions(center, rotation core.Vec3) *geometry.MeshOptions {
	if rotation == (core.Vec3{}) {
		return nil
	}
	return &geometry.MeshOptions{Rotation: &rotation, Center: &center}
}
