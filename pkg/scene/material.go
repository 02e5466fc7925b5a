package scene

import "github.com/df07/go-pathtracer/pkg/core"

// Material describes how a surface attenuates and emits light.
// Roughness perturbs the mirror reflection: 0 is a perfect mirror, 1 is
// close to diffuse. Metallic is carried for editors and scene files; the
// integrator does not read it.
type Material struct {
	Albedo           core.Vec3 `json:"albedo"`
	Roughness        float64   `json:"roughness"`
	Metallic         float64   `json:"metallic"`
	EmissionColor    core.Vec3 `json:"emissionColor"`
	EmissionStrength float64   `json:"emissionStrength"`
}

// DefaultMaterial returns a white, fully rough, non-emissive material
func DefaultMaterial() Material {
	return Material{
		Albedo:    core.Splat(1),
		Roughness: 1,
	}
}

// Emission returns the emitted radiance, EmissionColor scaled by EmissionStrength
func (m Material) Emission() core.Vec3 {
	return m.EmissionColor.Multiply(m.EmissionStrength)
}

// IsEmissive reports whether the material emits any light
func (m Material) IsEmissive() bool {
	e := m.Emission()
	return e.X > 0 || e.Y > 0 || e.Z > 0
}
