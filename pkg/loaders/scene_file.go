package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// vec3 is a JSON [x, y, z] triple
type vec3 [3]float64

func (v vec3) toCore() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// sceneFile is the on-disk JSON layout of a scene
type sceneFile struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Group       string         `json:"group"`
	Camera      *cameraFile    `json:"camera"`
	Sky         *skyFile       `json:"sky"` // Omitted means a black background
	Materials   []materialFile `json:"materials"`
	Shapes      []shapeFile    `json:"shapes"`
}

type cameraFile struct {
	Position    *vec3   `json:"position"`
	Forward     *vec3   `json:"forward"`
	Width       int     `json:"width"`
	AspectRatio float64 `json:"aspectRatio"`
}

type skyFile struct {
	Bottom *vec3 `json:"bottom"`
	Top    *vec3 `json:"top"`
}

type materialFile struct {
	Name             string  `json:"name"`
	Albedo           *vec3   `json:"albedo"`
	Roughness        float64 `json:"roughness"`
	Metallic         float64 `json:"metallic"`
	EmissionColor    vec3    `json:"emissionColor"`
	EmissionStrength float64 `json:"emissionStrength"`
}

// shapeFile holds the union of every primitive's fields; Type selects which apply
type shapeFile struct {
	Type     string `json:"type"`
	Material string `json:"material"`

	// sphere
	Center vec3    `json:"center"`
	Radius float64 `json:"radius"`

	// plane
	Point  vec3 `json:"point"`
	Normal vec3 `json:"normal"`

	// triangle, mesh
	Vertices []vec3 `json:"vertices"`

	// box
	Min vec3 `json:"min"`
	Max vec3 `json:"max"`

	// mesh
	Indices  []int   `json:"indices"`
	File     string  `json:"file"`     // .ply, .gltf or .glb, relative to the scene file
	Rotation *vec3   `json:"rotation"` // Euler angles in degrees about the mesh center
	Scale    float64 `json:"scale"`
	Position *vec3   `json:"position"` // Moves the mesh center here after loading
}

// LoadScene reads a JSON scene file. Mesh files are resolved relative to
// the scene file's directory.
func LoadScene(path string) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	sc, err := ParseScene(file, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Infof("loaded scene %q from %s: %d shapes, %d materials, %d primitives",
		sc.Name, path, len(sc.Shapes), len(sc.Materials), sc.PrimitiveCount())
	return sc, nil
}

// ParseScene decodes a scene description. baseDir resolves relative mesh paths.
func ParseScene(r io.Reader, baseDir string) (*scene.Scene, error) {
	var desc sceneFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	sc := scene.New(desc.Name)
	applyCamera(&sc.Camera, desc.Camera)
	if desc.Sky != nil {
		sc.Sky = scene.DefaultSky()
		if desc.Sky.Bottom != nil {
			sc.Sky.Bottom = desc.Sky.Bottom.toCore()
		}
		if desc.Sky.Top != nil {
			sc.Sky.Top = desc.Sky.Top.toCore()
		}
	}

	materials := make(map[string]int, len(desc.Materials))
	for i, m := range desc.Materials {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: material %d has no name", ErrInvalidScene, i)
		}
		if _, dup := materials[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidScene, m.Name)
		}
		materials[m.Name] = sc.AddMaterial(m.toMaterial())
	}

	defaultMaterial := -1
	for i, s := range desc.Shapes {
		material, ok := materials[s.Material]
		switch {
		case ok:
		case s.Material == "":
			if defaultMaterial < 0 {
				defaultMaterial = sc.AddMaterial(scene.DefaultMaterial())
			}
			material = defaultMaterial
		default:
			return nil, fmt.Errorf("%w: shape %d references unknown material %q", ErrInvalidScene, i, s.Material)
		}

		shape, err := s.build(material, baseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %d (%s): %w", ErrInvalidScene, i, s.Type, err)
		}
		sc.AddShape(shape)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func applyCamera(cfg *scene.CameraConfig, desc *cameraFile) {
	if desc == nil {
		return
	}
	if desc.Position != nil {
		cfg.Position = desc.Position.toCore()
	}
	if desc.Forward != nil {
		cfg.Forward = desc.Forward.toCore()
	}
	if desc.Width > 0 {
		cfg.Width = desc.Width
	}
	if desc.AspectRatio > 0 {
		cfg.AspectRatio = desc.AspectRatio
	}
}

func (m materialFile) toMaterial() scene.Material {
	material := scene.Material{
		Albedo:           core.Splat(1),
		Roughness:        m.Roughness,
		Metallic:         m.Metallic,
		EmissionColor:    m.EmissionColor.toCore(),
		EmissionStrength: m.EmissionStrength,
	}
	if m.Albedo != nil {
		material.Albedo = m.Albedo.toCore()
	}
	return material
}

func (s shapeFile) build(material int, baseDir string) (geometry.Shape, error) {
	switch s.Type {
	case "sphere":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("radius must be positive, got %g", s.Radius)
		}
		return geometry.NewSphere(s.Center.toCore(), s.Radius, material), nil

	case "plane":
		normal := s.Normal.toCore()
		if normal.LengthSquared() == 0 {
			return nil, fmt.Errorf("plane normal must be non-zero")
		}
		return geometry.NewPlane(s.Point.toCore(), normal, material), nil

	case "triangle":
		if len(s.Vertices) != 3 {
			return nil, fmt.Errorf("triangle needs 3 vertices, got %d", len(s.Vertices))
		}
		return geometry.NewTriangle(s.Vertices[0].toCore(), s.Vertices[1].toCore(), s.Vertices[2].toCore(), material), nil

	case "box":
		return geometry.NewBox(s.Min.toCore(), s.Max.toCore(), material), nil

	case "mesh":
		mesh, err := s.buildMesh(material, baseDir)
		if err != nil {
			return nil, err
		}
		return mesh, nil

	default:
		return nil, fmt.Errorf("unknown shape type %q", s.Type)
	}
}

func (s shapeFile) buildMesh(material int, baseDir string) (*geometry.Mesh, error) {
	var data *MeshData
	switch {
	case s.File != "" && len(s.Vertices) > 0:
		return nil, fmt.Errorf("mesh has both a file and inline vertices")
	case s.File != "":
		path := s.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		loaded, err := LoadMesh(path)
		if err != nil {
			return nil, err
		}
		data = loaded
	default:
		data = &MeshData{Indices: s.Indices}
		for _, v := range s.Vertices {
			data.Vertices = append(data.Vertices, v.toCore())
		}
	}

	if err := geometry.ValidateIndices(len(data.Vertices), data.Indices); err != nil {
		return nil, err
	}
	if len(data.Indices) == 0 {
		return nil, ErrNoGeometry
	}

	options := &geometry.MeshOptions{Scale: s.Scale}
	if s.Rotation != nil {
		radians := s.Rotation.toCore().Multiply(math.Pi / 180)
		options.Rotation = &radians
	}

	mesh := geometry.NewMesh(data.Vertices, data.Indices, material, options)
	if s.Position != nil {
		mesh.MoveTo(s.Position.toCore())
	}
	return mesh, nil
}

// Resolve builds a scene from a registry id: a built-in name, or
// "file:<name>" for <name>.json inside dir
func Resolve(id, dir string) (*scene.Scene, error) {
	if name, ok := scene.IsFileScene(id); ok {
		if name == "" || filepath.Base(name) != name {
			return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, id)
		}
		return LoadScene(filepath.Join(dir, name+".json"))
	}
	return scene.Builtin(id)
}
