package loaders

import (
	"fmt"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF opens a .gltf or .glb file and flattens every triangle primitive
// reachable from the default scene into one world-space triangle list.
// Node transforms are applied; materials, textures and non-triangle
// primitives are ignored.
func LoadGLTF(path string) (*MeshData, error) {
	startTime := time.Now()

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	data, err := ReadGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}

	logger.Infof("loaded glTF %s: %d vertices, %d triangles in %v",
		path, len(data.Vertices), data.TriangleCount(), time.Since(startTime))

	return data, nil
}

// ReadGLTF flattens the triangle geometry of an already decoded document
func ReadGLTF(doc *gltf.Document) (*MeshData, error) {
	data := &MeshData{}

	for _, root := range gltfRoots(doc) {
		if err := appendGLTFNode(doc, root, mgl64.Ident4(), data, 0); err != nil {
			return nil, err
		}
	}

	if len(data.Indices) == 0 {
		return nil, ErrNoGeometry
	}
	return data, nil
}

// gltfRoots returns the default scene's root nodes, or every parentless
// node if the document has no default scene
func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if child < len(hasParent) {
				hasParent[child] = true
			}
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxNodeDepth guards against cyclic node graphs in malformed files
const maxNodeDepth = 64

func appendGLTFNode(doc *gltf.Document, index int, parent mgl64.Mat4, data *MeshData, depth int) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}

	node := doc.Nodes[index]
	world := parent.Mul4(nodeTransform(node))

	if node.Mesh != nil {
		if *node.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("node %d: mesh index %d out of range", index, *node.Mesh)
		}
		for pi, prim := range doc.Meshes[*node.Mesh].Primitives {
			if err := appendGLTFPrimitive(doc, prim, world, data); err != nil {
				return fmt.Errorf("mesh %d prim %d: %w", *node.Mesh, pi, err)
			}
		}
	}

	for _, child := range node.Children {
		if err := appendGLTFNode(doc, child, world, data, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the node's local matrix: the explicit matrix if
// set, otherwise translation · rotation · scale
func nodeTransform(node *gltf.Node) mgl64.Mat4 {
	if m := mgl64.Mat4(node.MatrixOrDefault()); m != mgl64.Ident4() {
		return m
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault() // [x, y, z, w]
	s := node.ScaleOrDefault()

	rotation := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()

	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

func appendGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl64.Mat4, data *MeshData) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		logger.Debugf("skipping non-triangle primitive (mode %v)", prim.Mode)
		return nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	base := len(data.Vertices)
	for _, p := range positions {
		v := world.Mul4x1(mgl64.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1})
		data.Vertices = append(data.Vertices, core.NewVec3(v.X(), v.Y(), v.Z()))
	}

	if prim.Indices == nil {
		// Non-indexed: consecutive vertex triples
		for i := 0; i+2 < len(positions); i += 3 {
			data.Indices = append(data.Indices, base+i, base+i+1, base+i+2)
		}
		return nil
	}

	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%d indices is not a multiple of 3", len(indices))
	}
	for _, index := range indices {
		if int(index) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d positions", index, len(positions))
		}
		data.Indices = append(data.Indices, base+int(index))
	}
	return nil
}
