package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// NewCornellScene creates a Cornell box built from thin axis-aligned boxes,
// lit only by an emissive panel under the ceiling
func NewCornellScene() *Scene {
	s := New("cornell-box")
	s.Camera = CameraConfig{
		Position:    core.NewVec3(0, 0, 3.4),
		Forward:     core.NewVec3(0, 0, -1),
		Width:       512,
		AspectRatio: 1,
	}

	white := s.AddMaterial(Material{Albedo: core.Splat(0.73), Roughness: 1})
	red := s.AddMaterial(Material{Albedo: core.NewVec3(0.65, 0.05, 0.05), Roughness: 1})
	green := s.AddMaterial(Material{Albedo: core.NewVec3(0.12, 0.45, 0.15), Roughness: 1})
	light := s.AddMaterial(Material{
		Albedo:           core.Splat(0),
		EmissionColor:    core.NewVec3(1, 0.95, 0.85),
		EmissionStrength: 6,
	})
	mirror := s.AddMaterial(Material{Albedo: core.NewVec3(0.8, 0.8, 0.9), Roughness: 0.02, Metallic: 1})
	matte := s.AddMaterial(Material{Albedo: core.Splat(0.73), Roughness: 0.9})

	// Interior spans [-1,1] on every axis; the front (+Z) is open
	const wall = 0.05
	s.AddShape(geometry.NewBox(core.NewVec3(-1, -1-wall, -1), core.NewVec3(1, -1, 1), white))         // floor
	s.AddShape(geometry.NewBox(core.NewVec3(-1, 1, -1), core.NewVec3(1, 1+wall, 1), white))           // ceiling
	s.AddShape(geometry.NewBox(core.NewVec3(-1, -1, -1-wall), core.NewVec3(1, 1, -1), white))         // back
	s.AddShape(geometry.NewBox(core.NewVec3(-1-wall, -1, -1), core.NewVec3(-1, 1, 1), red))           // left
	s.AddShape(geometry.NewBox(core.NewVec3(1, -1, -1), core.NewVec3(1+wall, 1, 1), green))           // right
	s.AddShape(geometry.NewBox(core.NewVec3(-0.25, 0.98, -0.25), core.NewVec3(0.25, 1, 0.25), light)) // ceiling panel

	s.AddShape(geometry.NewSphere(core.NewVec3(-0.4, -0.65, -0.3), 0.35, mirror))
	s.AddShape(geometry.NewBoxAt(core.NewVec3(0.4, -0.5, 0.1), core.NewVec3(0.3, 0.5, 0.3), matte))

	return s
}
