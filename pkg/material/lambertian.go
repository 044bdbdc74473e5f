package material

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

// NewLambertian creates a diffuse material with the given albedo
func NewLambertian(albedo core.Vec3) Material {
	return Material{Kind: KindLambertian, Albedo: albedo}
}

// scatterLambertian offsets the normal by a point inside the unit sphere.
// This is the uniform-in-tangent-sphere approximation, not cosine sampling.
func (m Material) scatterLambertian(hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomInUnitSphere(sampler))
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: m.Albedo,
	}, true
}
