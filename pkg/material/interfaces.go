package material

import (
	"fmt"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

// Kind identifies which scattering model a Material uses
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Material is a closed set of surface scattering models. Only the fields
// relevant to Kind are used. Values are immutable once constructed.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian and Metal
	Fuzz            float64   // Metal, clamped to [0,1] when scattering
	RefractiveIndex float64   // Dielectric
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// Scatter computes the continuation of rayIn at hit. It returns false when the
// ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		panic(fmt.Sprintf("material: unknown kind %d", int(m.Kind)))
	}
}

func (m Material) String() string {
	switch m.Kind {
	case KindLambertian:
		return fmt.Sprintf("lambertian(albedo=%v)", m.Albedo)
	case KindMetal:
		return fmt.Sprintf("metal(albedo=%v, fuzz=%g)", m.Albedo, m.Fuzz)
	case KindDielectric:
		return fmt.Sprintf("dielectric(ior=%g)", m.RefractiveIndex)
	default:
		return m.Kind.String()
	}
}
