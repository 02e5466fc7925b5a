package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
)

var logger = log.New("loaders")

// MeshData is an indexed triangle list read from a mesh file
type MeshData struct {
	Vertices []core.Vec3
	Indices  []int // Three per triangle
}

// TriangleCount returns the number of triangles described by Indices
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// LoadMesh reads a triangle mesh, choosing the format from the file extension
func LoadMesh(path string) (*MeshData, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ply":
		return LoadPLY(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMesh, ext)
	}
}
