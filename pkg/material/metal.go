package material

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

// NewMetal creates a metal material. Fuzz is stored as given and clamped
// to [0,1] when scattering.
func NewMetal(albedo core.Vec3, fuzz float64) Material {
	return Material{Kind: KindMetal, Albedo: albedo, Fuzz: fuzz}
}

// ClampedFuzz returns the fuzz actually applied when scattering
func (m Material) ClampedFuzz() float64 {
	return max(0.0, min(1.0, m.Fuzz))
}

func (m Material) scatterMetal(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)
	direction := reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.ClampedFuzz()))
	scattered := core.NewRay(hit.Point, direction)

	// Fuzzed reflections that dig below the surface are absorbed
	if scattered.Direction.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, true
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
