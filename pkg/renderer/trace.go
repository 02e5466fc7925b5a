package renderer

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// HitPayload is the result of a nearest-hit query
type HitPayload struct {
	WorldPosition core.Vec3
	WorldNormal   core.Vec3 // Unit normal facing against the ray
	HitDistance   float64   // Negative on a miss
	ObjectIndex   int       // Index into Scene.Shapes, -1 on a miss
}

// Missed reports whether the ray escaped the scene
func (p HitPayload) Missed() bool {
	return p.HitDistance < 0
}

// TraceRay tests every primitive in the scene and keeps the strictly closest
// positive hit. There is no acceleration structure: cost is linear in the
// number of primitives.
func TraceRay(sc *scene.Scene, ray core.Ray) HitPayload {
	closest := math.MaxFloat64
	closestIndex := -1
	var normal core.Vec3

	for i, shape := range sc.Shapes {
		hit, ok := shape.Hit(ray, 0, closest)
		if !ok || hit.T >= closest {
			continue
		}
		closest = hit.T
		closestIndex = i
		normal = hit.Normal
	}

	if closestIndex < 0 {
		return miss()
	}
	return closestHit(sc, ray, closest, closestIndex, normal)
}

func closestHit(sc *scene.Scene, ray core.Ray, distance float64, index int, normal core.Vec3) HitPayload {
	// Position relative to the object's origin, then back to world space
	origin := sc.Shapes[index].Origin()
	local := ray.Origin.Subtract(origin).Add(ray.Direction.Multiply(distance))

	return HitPayload{
		WorldPosition: local.Add(origin),
		WorldNormal:   normal,
		HitDistance:   distance,
		ObjectIndex:   index,
	}
}

func miss() HitPayload {
	return HitPayload{HitDistance: -1, ObjectIndex: -1}
}
