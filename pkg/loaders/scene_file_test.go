package loaders

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const testSceneJSON = `{
  "name": "Test Room",
  "description": "every primitive type",
  "group": "Tests",
  "camera": {"position": [0, 1, 4], "forward": [0, 0, -1], "width": 320, "aspectRatio": 2},
  "sky": {"top": [0, 0, 1]},
  "materials": [
    {"name": "floor", "albedo": [0.5, 0.5, 0.5], "roughness": 1},
    {"name": "lamp", "albedo": [0, 0, 0], "emissionColor": [1, 0.9, 0.8], "emissionStrength": 3}
  ],
  "shapes": [
    {"type": "plane", "point": [0, 0, 0], "normal": [0, -1, 0], "material": "floor"},
    {"type": "sphere", "center": [0, 1, 0], "radius": 0.5, "material": "lamp"},
    {"type": "box", "min": [-1, 0, -1], "max": [-0.5, 0.5, -0.5]},
    {"type": "triangle", "vertices": [[0, 0, -2], [1, 0, -2], [0, 1, -2]], "material": "floor"},
    {"type": "mesh", "vertices": [[0, 0, 0], [1, 0, 0], [0, 1, 0]], "indices": [0, 1, 2],
     "rotation": [0, 90, 0], "position": [3, 0, 0], "material": "floor"},
    {"type": "mesh", "file": "square.ply", "scale": 2, "material": "lamp"}
  ]
}`

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	createTestPLY(t, filepath.Join(dir, "square.ply"), binary.LittleEndian, false)
	path := filepath.Join(dir, "room.json")
	if err := os.WriteFile(path, []byte(testSceneJSON), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	sc, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	if sc.Name != "Test Room" {
		t.Errorf("Expected name 'Test Room', got %q", sc.Name)
	}
	if sc.Camera.Position != core.NewVec3(0, 1, 4) || sc.Camera.Width != 320 || sc.Camera.AspectRatio != 2 {
		t.Errorf("Unexpected camera: %+v", sc.Camera)
	}
	if sc.Sky == nil || sc.Sky.Top != core.NewVec3(0, 0, 1) || sc.Sky.Bottom != scene.DefaultSky().Bottom {
		t.Errorf("Expected sky with custom top and default bottom, got %+v", sc.Sky)
	}

	wantKinds := []geometry.Kind{
		geometry.KindPlane, geometry.KindSphere, geometry.KindBox,
		geometry.KindTriangle, geometry.KindMesh, geometry.KindMesh,
	}
	if len(sc.Shapes) != len(wantKinds) {
		t.Fatalf("Expected %d shapes, got %d", len(wantKinds), len(sc.Shapes))
	}
	for i, kind := range wantKinds {
		if sc.Shapes[i].Kind() != kind {
			t.Errorf("Shape %d: expected %s, got %s", i, kind, sc.Shapes[i].Kind())
		}
	}

	// Two named materials plus the default for the unassigned box
	if len(sc.Materials) != 3 {
		t.Fatalf("Expected 3 materials, got %d", len(sc.Materials))
	}
	lamp := sc.Material(sc.Shapes[1])
	if lamp.EmissionStrength != 3 || lamp.Albedo != core.NewVec3(0, 0, 0) {
		t.Errorf("Unexpected lamp material: %+v", lamp)
	}
	if box := sc.Material(sc.Shapes[2]); *box != scene.DefaultMaterial() {
		t.Errorf("Expected default material on box, got %+v", box)
	}

	if origin := sc.Shapes[4].Origin(); !vecNear(origin, core.NewVec3(3, 0, 0), 1e-12) {
		t.Errorf("Expected inline mesh moved to (3,0,0), got %v", origin)
	}

	square := sc.Shapes[5].(*geometry.Mesh)
	if square.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles from the PLY file, got %d", square.TriangleCount())
	}
	if size := square.BoundingBox().Size(); !vecNear(size, core.NewVec3(2, 2, 0), 1e-9) {
		t.Errorf("Expected PLY square scaled to 2x2, got %v", size)
	}
}

func TestParseScene_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"shapes": [`},
		{"unknown field", `{"lights": []}`},
		{"unknown material", `{"shapes": [{"type": "sphere", "radius": 1, "material": "gold"}]}`},
		{"unknown type", `{"shapes": [{"type": "cone"}]}`},
		{"zero radius", `{"shapes": [{"type": "sphere"}]}`},
		{"zero normal", `{"shapes": [{"type": "plane"}]}`},
		{"short triangle", `{"shapes": [{"type": "triangle", "vertices": [[0,0,0],[1,0,0]]}]}`},
		{"bad indices", `{"shapes": [{"type": "mesh", "vertices": [[0,0,0]], "indices": [0, 1, 2]}]}`},
		{"unnamed material", `{"materials": [{"albedo": [1,1,1]}]}`},
		{"duplicate material", `{"materials": [{"name": "a"}, {"name": "a"}]}`},
		{"missing mesh file", `{"shapes": [{"type": "mesh", "file": "nope.ply"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene(strings.NewReader(tt.json), t.TempDir())
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected ErrInvalidScene, got %v", err)
			}
		})
	}
}

func TestParseScene_Minimal(t *testing.T) {
	sc, err := ParseScene(strings.NewReader(`{"name": "bare"}`), "")
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	if sc.Sky != nil {
		t.Error("Expected no sky when none is declared")
	}
	if sc.Camera != scene.DefaultCameraConfig() {
		t.Errorf("Expected default camera, got %+v", sc.Camera)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ball.json"),
		[]byte(`{"name": "Ball", "shapes": [{"type": "sphere", "radius": 1}]}`), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	tests := []struct {
		id      string
		want    string
		wantErr error
	}{
		{"default", "default", nil},
		{"file:ball", "Ball", nil},
		{"missing", "", scene.ErrUnknownScene},
		{"file:../ball", "", scene.ErrUnknownScene},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			sc, err := Resolve(tt.id, dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if sc.Name != tt.want {
				t.Errorf("Expected scene %q, got %q", tt.want, sc.Name)
			}
		})
	}
}
