package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Gradient is a background that blends from Bottom to Top on the vertical
// component of the ray direction
type Gradient struct {
	Bottom core.Vec3 `json:"bottom"`
	Top    core.Vec3 `json:"top"`
}

// DefaultSky returns the white-to-light-blue sky gradient
func DefaultSky() *Gradient {
	return &Gradient{
		Bottom: core.NewVec3(1, 1, 1),
		Top:    core.NewVec3(0.5, 0.7, 1.0),
	}
}

// At returns the background color seen along direction
func (g *Gradient) At(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Normalize().Y + 1)
	return core.Lerp(g.Bottom, g.Top, t)
}

// CameraConfig is where a scene would like to be viewed from
type CameraConfig struct {
	Position    core.Vec3 `json:"position"`
	Forward     core.Vec3 `json:"forward"`
	Width       int       `json:"width"`
	AspectRatio float64   `json:"aspectRatio"`
}

// DefaultCameraConfig returns a camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:    core.NewVec3(0, 0, 0),
		Forward:     core.NewVec3(0, 0, -1),
		Width:       640,
		AspectRatio: 16.0 / 9.0,
	}
}

// Scene owns the primitives and the materials they reference by index.
// Both lists are append-only so indices stay stable once handed out.
type Scene struct {
	Name      string
	Shapes    []geometry.Shape
	Materials []Material
	Sky       *Gradient // nil renders a black background
	Camera    CameraConfig
}

// New creates an empty scene with the default camera and no background
func New(name string) *Scene {
	return &Scene{
		Name:   name,
		Camera: DefaultCameraConfig(),
	}
}

// AddMaterial appends a material and returns its index
func (s *Scene) AddMaterial(m Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddShape appends a primitive and returns its index
func (s *Scene) AddShape(shape geometry.Shape) int {
	s.Shapes = append(s.Shapes, shape)
	return len(s.Shapes) - 1
}

// Material returns the material referenced by a shape. An out-of-range
// index panics.
func (s *Scene) Material(shape geometry.Shape) *Material {
	return &s.Materials[shape.MaterialIndex()]
}

// Validate reports the first primitive whose material index does not
// refer to an existing material
func (s *Scene) Validate() error {
	for i, shape := range s.Shapes {
		if idx := shape.MaterialIndex(); idx < 0 || idx >= len(s.Materials) {
			return fmt.Errorf("%w: shape %d (%s) uses material %d, scene has %d",
				ErrMaterialIndex, i, shape.Kind(), idx, len(s.Materials))
		}
		if mesh, ok := shape.(*geometry.Mesh); ok {
			for _, tri := range mesh.Triangles {
				if tri.MaterialIndex() != mesh.MaterialIndex() {
					return fmt.Errorf("%w: mesh %d triangle material %d differs from mesh material %d",
						ErrMaterialIndex, i, tri.MaterialIndex(), mesh.MaterialIndex())
				}
			}
		}
	}
	return nil
}

// PrimitiveCount returns the number of intersection tests a ray that reaches
// every mesh would perform
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		switch obj := shape.(type) {
		case *geometry.Mesh:
			count += obj.TriangleCount()
		default:
			count++
		}
	}
	return count
}

// NewGroundPlane creates a horizontal plane at height y that is visible from above
func NewGroundPlane(y float64, material int) *geometry.Plane {
	return geometry.NewPlane(core.NewVec3(0, y, 0), core.NewVec3(0, -1, 0), material)
}
