package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, 0)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_AimedAtCenter(t *testing.T) {
	tests := []struct {
		name   string
		center core.Vec3
		radius float64
		origin core.Vec3
	}{
		{"unit sphere on z axis", core.NewVec3(0, 0, -1), 0.5, core.NewVec3(0, 0, 0)},
		{"offset sphere", core.NewVec3(3, -2, 5), 1.5, core.NewVec3(-1, 4, 2)},
		{"large distant sphere", core.NewVec3(0, -100, 0), 99, core.NewVec3(0, 2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, tt.radius, 0)
			direction := tt.center.Subtract(tt.origin).Normalize()
			ray := core.NewRay(tt.origin, direction)

			hit, ok := sphere.Hit(ray, 0, math.Inf(1))
			if !ok {
				t.Fatal("Expected hit, but got miss")
			}

			expected := tt.center.Subtract(tt.origin).Length() - tt.radius
			if math.Abs(hit.T-expected) > 1e-6 {
				t.Errorf("Expected t=%f, got t=%f", expected, hit.T)
			}

			// The point must lie on the surface
			distance := ray.At(hit.T).Subtract(tt.center).Length()
			if math.Abs(distance-tt.radius) > 1e-4 {
				t.Errorf("Hit point is %f from center, expected %f", distance, tt.radius)
			}

			// Aimed away: miss
			away := core.NewRay(tt.origin, direction.Negate())
			if _, ok := sphere.Hit(away, 0, math.Inf(1)); ok {
				t.Error("Expected miss for ray aimed away from sphere")
			}
		})
	}
}

func TestSphere_Hit_NormalFacesRay(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, ok := sphere.Hit(ray, 0, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-0.5) > tolerance {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
	if !vecNear(hit.Normal, core.NewVec3(0, 0, 1), tolerance) {
		t.Errorf("Expected normal (0,0,1), got %v", hit.Normal)
	}
	if !hit.FrontFace {
		t.Error("Expected front face")
	}
}

func TestSphere_Hit_FromInsideMisses(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	if hit, ok := sphere.Hit(ray, 0, math.Inf(1)); ok {
		t.Errorf("Expected near root behind origin to miss, got t=%f", hit.T)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	if hit, ok := sphere.Hit(ray, 0.001, 0.5); ok {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	if hit, ok := sphere.Hit(ray, 1.5, 1000.0); ok {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}
}

func TestSphere_MoveTo(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, 2)
	sphere.MoveTo(core.NewVec3(0, 0, -5))

	if sphere.Origin() != core.NewVec3(0, 0, -5) {
		t.Errorf("Expected origin (0,0,-5), got %v", sphere.Origin())
	}
	if sphere.MaterialIndex() != 2 {
		t.Errorf("Expected material 2, got %d", sphere.MaterialIndex())
	}

	hit, ok := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	if !ok || math.Abs(hit.T-4) > tolerance {
		t.Errorf("Expected hit at t=4 after move, got ok=%v t=%f", ok, hit.T)
	}
}
