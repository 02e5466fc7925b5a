package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Camera generates primary rays. Pixel coordinates are continuous: the
// integer point (x, y) is the lower-left corner of pixel (x, y), and row 0
// is at the bottom of the image.
type Camera interface {
	// Position is the origin shared by every primary ray
	Position() core.Vec3
	// Size returns the image dimensions the camera was set up for
	Size() (width, height int)
	// RayDirection returns the precomputed direction through the corner of pixel (x, y)
	RayDirection(x, y int) core.Vec3
	// RayDirectionAt computes the direction through a continuous pixel coordinate
	RayDirectionAt(px, py float64) core.Vec3
}

// Input is one snapshot of the navigation controls
type Input struct {
	Look     bool      // Navigation only happens while the look button is held
	Forward  bool      // W
	Backward bool      // S
	Left     bool      // A
	Right    bool      // D
	Mouse    core.Vec2 // Cursor position in window pixels
}

// NewCameraFromConfig builds a perspective camera from a scene's preferred view
func NewCameraFromConfig(cfg scene.CameraConfig) *PerspectiveCamera {
	width := cfg.Width
	if width <= 0 {
		width = scene.DefaultCameraConfig().Width
	}
	aspect := cfg.AspectRatio
	if aspect <= 0 {
		aspect = scene.DefaultCameraConfig().AspectRatio
	}

	cam := NewPerspectiveCamera(width, aspect, cfg.Position)
	if cfg.Forward != (core.Vec3{}) {
		cam.SetForward(cfg.Forward)
	}
	return cam
}
