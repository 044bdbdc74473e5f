package integrator

import (
	"math"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

const (
	// MaxDepth is the number of bounces after which a path contributes black
	MaxDepth = 50

	// ShadowAcneEpsilon is the minimum hit distance, suppressing
	// self-intersection right after a bounce
	ShadowAcneEpsilon = 1e-4
)

var (
	skyWhite = core.NewVec3(1.0, 1.0, 1.0)
	skyBlue  = core.NewVec3(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements recursive unidirectional path tracing
// against a sky gradient
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a primary ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.rayColorRecursive(ray, s, sampler, 0)
}

// rayColorRecursive returns the radiance along r after depth bounces
func (pt *PathTracingIntegrator) rayColorRecursive(r core.Ray, s *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := s.Hit(r, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return SkyColor(r)
	}

	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth >= MaxDepth {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	scatter, didScatter := s.MaterialAt(hit.Object).Scatter(r, hit, sampler)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(
		pt.rayColorRecursive(scatter.Scattered, s, sampler, depth+1))
}

// SkyColor returns the background gradient for a ray that escapes the scene.
// It depends only on the y component of the normalized direction.
func SkyColor(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()
	t := 0.5*unitDirection.Y + 1.0
	return skyWhite.Lerp(skyBlue, t)
}
