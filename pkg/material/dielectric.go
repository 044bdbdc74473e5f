package material

import (
	"math"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

// NewDielectric creates a transparent material like glass that can both reflect and refract
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

func (m Material) scatterDielectric(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass never tints
	attenuation := core.NewVec3(1.0, 1.0, 1.0)
	eta := m.RefractiveIndex

	reflected := Reflect(rayIn.Direction, hit.Normal)

	var outwardNormal core.Vec3
	var niOverNt, cosine float64
	dirDotNormal := rayIn.Direction.Dot(hit.Normal)
	if dirDotNormal > 0 {
		// Exiting the medium
		outwardNormal = hit.Normal.Negate()
		niOverNt = eta
		cosine = eta * dirDotNormal / rayIn.Direction.Length()
	} else {
		// Entering the medium
		outwardNormal = hit.Normal
		niOverNt = 1.0 / eta
		cosine = -dirDotNormal / rayIn.Direction.Length()
	}

	direction := reflected
	if refracted, ok := Refract(rayIn.Direction, outwardNormal, niOverNt); ok {
		if sampler.Get1D() >= Schlick(cosine, eta) {
			direction = refracted
		}
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Refract bends v through a surface with normal n using Snell's law. It returns
// false on total internal reflection.
func Refract(v, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	unit := v.Normalize()
	dt := unit.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return unit.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant))), true
}

// Schlick calculates the Fresnel reflectance using Schlick's approximation
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
