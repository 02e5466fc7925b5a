package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func TestPerspectiveCamera_Size(t *testing.T) {
	cam := NewPerspectiveCamera(640, 16.0/9.0, core.NewVec3(0, 0, 0))
	w, h := cam.Size()
	if w != 640 || h != 360 {
		t.Errorf("Expected 640x360, got %dx%d", w, h)
	}
}

func TestPerspectiveCamera_Directions(t *testing.T) {
	cam := NewPerspectiveCamera(40, 2, core.NewVec3(1, 2, 3))
	w, h := cam.Size()

	center := cam.RayDirection(w/2, h/2)
	if !vecNear(center, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected center direction (0,0,-1), got %v", center)
	}

	// Row 0 is the bottom of the image and column 0 is the left
	corner := cam.RayDirection(0, 0)
	if corner.X >= 0 || corner.Y >= 0 || corner.Z >= 0 {
		t.Errorf("Expected bottom-left corner direction to point left, down and forward, got %v", corner)
	}
	if math.Abs(corner.Length()-1) > 1e-9 {
		t.Errorf("Expected unit direction, got length %f", corner.Length())
	}

	// Half the vertical field of view at the top edge
	top := cam.RayDirectionAt(float64(w)/2, float64(h))
	angle := math.Atan2(top.Y, -top.Z) * 180 / math.Pi
	if math.Abs(angle-verticalFOV/2) > 1e-6 {
		t.Errorf("Expected top edge at %.1f degrees, got %f", verticalFOV/2, angle)
	}

	if cached, computed := cam.RayDirection(7, 3), cam.RayDirectionAt(7, 3); cached != computed {
		t.Errorf("Cached direction %v differs from computed %v", cached, computed)
	}
}

func TestPerspectiveCamera_Resize(t *testing.T) {
	cam := NewPerspectiveCamera(40, 2, core.NewVec3(0, 0, 0))

	if cam.Resize(40, 20) {
		t.Error("Resize to the same size should report no change")
	}
	if !cam.Resize(30, 30) {
		t.Fatal("Resize to a new size should report a change")
	}
	if w, h := cam.Size(); w != 30 || h != 30 {
		t.Errorf("Expected 30x30, got %dx%d", w, h)
	}
	// Highest pixel must be addressable after growing
	_ = cam.RayDirection(29, 29)
}

func TestPerspectiveCamera_Update(t *testing.T) {
	tests := []struct {
		name      string
		input     Input
		wantMoved bool
		wantPos   core.Vec3
	}{
		{"idle", Input{Look: true}, false, core.NewVec3(0, 0, 0)},
		{"keys ignored without look", Input{Forward: true, Right: true}, false, core.NewVec3(0, 0, 0)},
		{"forward", Input{Look: true, Forward: true}, true, core.NewVec3(0, 0, -1)},
		{"backward", Input{Look: true, Backward: true}, true, core.NewVec3(0, 0, 1)},
		{"left", Input{Look: true, Left: true}, true, core.NewVec3(-1, 0, 0)},
		{"right", Input{Look: true, Right: true}, true, core.NewVec3(1, 0, 0)},
		{"forward and right", Input{Look: true, Forward: true, Right: true}, true, core.NewVec3(1, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewPerspectiveCamera(16, 1, core.NewVec3(0, 0, 0))
			moved := cam.Update(tt.input)
			if moved != tt.wantMoved {
				t.Errorf("Expected moved=%v, got %v", tt.wantMoved, moved)
			}
			if !vecNear(cam.Position(), tt.wantPos, 1e-12) {
				t.Errorf("Expected position %v, got %v", tt.wantPos, cam.Position())
			}
		})
	}
}

func TestPerspectiveCamera_MouseLook(t *testing.T) {
	cam := NewPerspectiveCamera(16, 1, core.NewVec3(0, 0, 0))
	before := cam.RayDirection(8, 8)

	// Moving the cursor without the look button only records its position
	if cam.Update(Input{Mouse: core.NewVec2(100, 0)}) {
		t.Fatal("Mouse motion without look should not move the camera")
	}
	if cam.Update(Input{Look: true, Mouse: core.NewVec2(100, 0)}) {
		t.Fatal("Pressing look without moving the cursor should not rotate the camera")
	}

	// Dragging right yaws the view towards +X
	if !cam.Update(Input{Look: true, Mouse: core.NewVec2(200, 0)}) {
		t.Fatal("Dragging with look held should rotate the camera")
	}
	forward := cam.Forward()
	if forward.X <= 0 || math.Abs(forward.Y) > 1e-9 {
		t.Errorf("Expected a yaw towards +X, got forward %v", forward)
	}
	if math.Abs(forward.Length()-1) > 1e-9 {
		t.Errorf("Expected unit forward, got length %f", forward.Length())
	}
	wantYaw := 100 * mouseSensitivity * rotationSpeed
	if got := math.Atan2(forward.X, -forward.Z); math.Abs(got-wantYaw) > 1e-9 {
		t.Errorf("Expected yaw %f, got %f", wantYaw, got)
	}
	if cam.RayDirection(8, 8) == before {
		t.Error("Expected direction cache to be rebuilt after rotation")
	}

	// Dragging down pitches the view
	if !cam.Update(Input{Look: true, Mouse: core.NewVec2(200, 100)}) {
		t.Fatal("Vertical drag should rotate the camera")
	}
	if cam.Forward().Y == 0 {
		t.Error("Expected pitch to tilt the forward vector")
	}
}

func TestNewCameraFromConfig(t *testing.T) {
	cfg := scene.CameraConfig{
		Position:    core.NewVec3(0, 1, 2),
		Forward:     core.NewVec3(2, 0, 0),
		Width:       64,
		AspectRatio: 2,
	}
	cam := NewCameraFromConfig(cfg)

	if w, h := cam.Size(); w != 64 || h != 32 {
		t.Errorf("Expected 64x32, got %dx%d", w, h)
	}
	if !vecNear(cam.Forward(), core.NewVec3(1, 0, 0), 1e-12) {
		t.Errorf("Expected normalized forward (1,0,0), got %v", cam.Forward())
	}
	if !vecNear(cam.RayDirection(32, 16), core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("Expected center ray along +X, got %v", cam.RayDirection(32, 16))
	}
	if cam.SetForward(core.NewVec3(1, 0, 0)) {
		t.Error("Setting the same forward should report no change")
	}

	defaults := NewCameraFromConfig(scene.CameraConfig{})
	if w, _ := defaults.Size(); w != scene.DefaultCameraConfig().Width {
		t.Errorf("Expected default width, got %d", w)
	}
}

func TestViewportCamera(t *testing.T) {
	cam := NewViewportCamera(40, 2, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 90)
	w, h := cam.Size()
	if w != 40 || h != 20 {
		t.Fatalf("Expected 40x20, got %dx%d", w, h)
	}

	if center := cam.RayDirectionAt(20, 10); !vecNear(center, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected center direction (0,0,-1), got %v", center)
	}
	// A 90 degree vertical field of view puts the top edge one unit up
	if top := cam.RayDirectionAt(20, 20); !vecNear(top, core.NewVec3(0, 1, -1), 1e-9) {
		t.Errorf("Expected top edge direction (0,1,-1), got %v", top)
	}
	if left := cam.RayDirection(0, 10); !vecNear(left, core.NewVec3(-2, 0, -1), 1e-9) {
		t.Errorf("Expected left edge direction (-2,0,-1), got %v", left)
	}

	cam.SetPosition(core.NewVec3(5, 5, 5))
	if center := cam.RayDirectionAt(20, 10); !vecNear(center, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected moved camera to keep its direction, got %v", center)
	}

	// Both camera models drive the same renderer
	sc := singleSphereScene()
	moved := NewViewportCamera(40, 2, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 90)
	payload := TraceRay(sc, core.NewRay(moved.Position(), moved.RayDirectionAt(20, 10)))
	if payload.Missed() || math.Abs(payload.HitDistance-0.5) > 1e-9 {
		t.Errorf("Expected viewport center ray to hit the sphere at 0.5, got %+v", payload)
	}
}

// assertFiniteDirections fails if any cached direction is NaN or zero
func assertFiniteDirections(t *testing.T, cam Camera) {
	t.Helper()
	w, h := cam.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := cam.RayDirection(x, y)
			if d.IsNaN() || d.LengthSquared() == 0 {
				t.Fatalf("Invalid direction %v at pixel (%d, %d)", d, x, y)
			}
		}
	}
}

func TestCamera_VerticalForward(t *testing.T) {
	tests := []struct {
		name    string
		forward core.Vec3
	}{
		{"straight down", core.NewVec3(0, -1, 0)},
		{"straight up", core.NewVec3(0, 1, 0)},
		{"almost down", core.NewVec3(1e-9, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewPerspectiveCamera(16, 1, core.NewVec3(0, 0, 0))
			if !cam.SetForward(tt.forward) {
				t.Fatal("Expected a vertical forward to be applied")
			}
			assertFiniteDirections(t, cam)
			if center := cam.RayDirection(8, 8); !vecNear(center, tt.forward.Normalize(), 1e-6) {
				t.Errorf("Expected center direction %v, got %v", tt.forward, center)
			}

			// Navigation from a vertical view keeps the camera valid
			cam.Update(Input{Look: true, Right: true, Mouse: core.NewVec2(0, 0)})
			cam.Update(Input{Look: true, Mouse: core.NewVec2(50, 50)})
			if cam.Position().IsNaN() || cam.Forward().IsNaN() {
				t.Fatalf("Expected finite camera after navigation, got position %v forward %v", cam.Position(), cam.Forward())
			}
			assertFiniteDirections(t, cam)

			viewport := NewViewportCamera(16, 1, core.NewVec3(0, 0, 0), tt.forward, 60)
			assertFiniteDirections(t, viewport)
			if center := viewport.RayDirectionAt(8, 8); !vecNear(center, tt.forward.Normalize(), 1e-6) {
				t.Errorf("Expected viewport center direction %v, got %v", tt.forward, center)
			}
		})
	}
}

func TestPerspectiveCamera_PitchClamped(t *testing.T) {
	tests := []struct {
		name string
		step float64
	}{
		{"drag down", 1000},
		{"drag up", -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewPerspectiveCamera(16, 1, core.NewVec3(0, 0, 0))
			cam.Update(Input{Look: true})

			for i := 1; i <= 20; i++ {
				cam.Update(Input{Look: true, Mouse: core.NewVec2(0, tt.step*float64(i))})

				elevation := math.Asin(cam.Forward().Y)
				if math.Abs(elevation) > maxPitch+1e-9 {
					t.Fatalf("Update %d: elevation %f exceeds the pitch limit %f", i, elevation, maxPitch)
				}
				// Pitch never flips the view over the pole
				if cam.Forward().Z > 0 {
					t.Fatalf("Update %d: view flipped to forward %v", i, cam.Forward())
				}
			}

			if got := math.Abs(math.Asin(cam.Forward().Y)); math.Abs(got-maxPitch) > 1e-9 {
				t.Errorf("Expected pitch to settle at the limit %f, got %f", maxPitch, got)
			}
			assertFiniteDirections(t, cam)
		})
	}
}
