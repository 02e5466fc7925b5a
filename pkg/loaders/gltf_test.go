package loaders

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func vecNear(a, b core.Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// newQuadDocument builds a document with one indexed unit quad referenced
// by a child node under root
func newQuadDocument(root, child *gltf.Node) *gltf.Document {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})

	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: map[string]int{gltf.POSITION: positions},
		}},
	}}

	root.Children = []int{1}
	child.Mesh = gltf.Index(0)
	doc.Nodes = []*gltf.Node{root, child}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}

func TestLoadGLTF_NodeTransforms(t *testing.T) {
	doc := newQuadDocument(
		&gltf.Node{Name: "root", Translation: [3]float64{0, 0, -2}},
		&gltf.Node{Name: "child", Scale: [3]float64{2, 2, 2}},
	)
	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("Failed to write GLB: %v", err)
	}

	data, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("Failed to load GLB: %v", err)
	}

	// Child scale applies first, then the root translation
	expected := []core.Vec3{
		core.NewVec3(0, 0, -2),
		core.NewVec3(2, 0, -2),
		core.NewVec3(0, 2, -2),
		core.NewVec3(2, 2, -2),
	}
	if len(data.Vertices) != len(expected) {
		t.Fatalf("Expected %d vertices, got %d", len(expected), len(data.Vertices))
	}
	for i, want := range expected {
		if !vecNear(data.Vertices[i], want, 1e-12) {
			t.Errorf("Vertex %d: expected %v, got %v", i, want, data.Vertices[i])
		}
	}

	wantIndices := []int{0, 1, 2, 2, 1, 3}
	for i, want := range wantIndices {
		if data.Indices[i] != want {
			t.Errorf("Index %d: expected %d, got %d", i, want, data.Indices[i])
		}
	}
}

func TestReadGLTF_Rotation(t *testing.T) {
	// Quarter turn about +Y maps +X to -Z
	s := math.Sqrt(0.5)
	doc := newQuadDocument(
		&gltf.Node{Name: "root", Rotation: [4]float64{0, s, 0, s}},
		&gltf.Node{Name: "child"},
	)

	data, err := ReadGLTF(doc)
	if err != nil {
		t.Fatalf("ReadGLTF failed: %v", err)
	}
	if !vecNear(data.Vertices[1], core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected (1,0,0) rotated to (0,0,-1), got %v", data.Vertices[1])
	}
	if !vecNear(data.Vertices[2], core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("Expected (0,1,0) unchanged, got %v", data.Vertices[2])
	}
}

func TestReadGLTF_NonIndexed(t *testing.T) {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: positions}}},
	}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	data, err := ReadGLTF(doc)
	if err != nil {
		t.Fatalf("ReadGLTF failed: %v", err)
	}
	if data.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", data.TriangleCount())
	}
}

func TestReadGLTF_Errors(t *testing.T) {
	if _, err := ReadGLTF(gltf.NewDocument()); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Expected ErrNoGeometry for an empty document, got %v", err)
	}

	if _, err := LoadMesh("model.obj"); !errors.Is(err, ErrUnsupportedMesh) {
		t.Errorf("Expected ErrUnsupportedMesh, got %v", err)
	}

	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
