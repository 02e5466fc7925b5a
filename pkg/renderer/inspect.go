package renderer

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PixelInspection describes what the primary ray through one pixel sees
type PixelInspection struct {
	X             int             `json:"x"`
	Y             int             `json:"y"`
	Origin        core.Vec3       `json:"origin"`
	Direction     core.Vec3       `json:"direction"`
	Hit           bool            `json:"hit"`
	Payload       HitPayload      `json:"payload"`
	Shape         string          `json:"shape,omitempty"`
	Material      *scene.Material `json:"material,omitempty"`
	MaterialIndex int             `json:"materialIndex"` // -1 on a miss
	Color         core.Vec3       `json:"color"`         // Currently displayed value, if an image is bound
}

// Inspect traces the un-jittered primary ray of pixel (x, y), where y counts
// from the bottom row
func (r *Renderer) Inspect(sc *scene.Scene, cam Camera, x, y int) (PixelInspection, error) {
	if sc == nil {
		return PixelInspection{}, ErrSceneNotDefined
	}
	if cam == nil {
		return PixelInspection{}, ErrCameraNotDefined
	}
	width, height := cam.Size()
	if x < 0 || y < 0 || x >= width || y >= height {
		return PixelInspection{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrPixelOutOfRange, x, y, width, height)
	}

	ray := core.NewRay(cam.Position(), cam.RayDirection(x, y))
	payload := TraceRay(sc, ray)

	result := PixelInspection{
		X:             x,
		Y:             y,
		Origin:        ray.Origin,
		Direction:     ray.Direction,
		Hit:           !payload.Missed(),
		Payload:       payload,
		MaterialIndex: -1,
	}
	if result.Hit {
		shape := sc.Shapes[payload.ObjectIndex]
		material := *sc.Material(shape)
		result.Shape = shape.Kind().String()
		result.Material = &material
		result.MaterialIndex = shape.MaterialIndex()
	}
	if r.image != nil && r.image.Width == width && r.image.Height == height {
		result.Color = r.image.Color(x, y)
	}

	return result, nil
}
