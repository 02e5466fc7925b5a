package scene

import "github.com/df07/go-pathtracer/pkg/core"

// NewDefaultScene creates the emissive icosphere hovering over a green floor
func NewDefaultScene() *Scene {
	s := New("default")
	s.Sky = DefaultSky()
	s.Camera = CameraConfig{
		Position:    core.NewVec3(0, 1.25, 0),
		Forward:     core.NewVec3(0, 0, -1),
		Width:       1280,
		AspectRatio: 16.0 / 9.0,
	}

	glow := s.AddMaterial(Material{
		Albedo:           core.Splat(0),
		Roughness:        0.1,
		EmissionColor:    core.NewVec3(0.9, 0.4, 0.8),
		EmissionStrength: 1,
	})
	floor := s.AddMaterial(Material{
		Albedo:    core.NewVec3(0.2, 0.8, 0.2),
		Roughness: 0.1,
	})

	s.AddShape(NewIcosahedronMesh(core.NewVec3(0, 1.25, -5), 1.5, 2, glow))

	// One-sided ground: visible from above
	s.AddShape(NewGroundPlane(-1, floor))

	return s
}

// NewEmptyScene has no primitives; every pixel shows the sky
func NewEmptyScene() *Scene {
	s := New("empty")
	s.Sky = DefaultSky()
	return s
}
