package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

func newTestScene(shapes ...geometry.Shape) *scene.Scene {
	s := scene.NewScene(scene.DefaultCameraFor(1, 1), scene.SamplingConfig{})
	s.Add(shapes...)
	return s
}

func newTestSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

func assertColorNear(t *testing.T, got, expected core.Vec3, tolerance float64) {
	t.Helper()
	if math.Abs(got.X-expected.X) > tolerance ||
		math.Abs(got.Y-expected.Y) > tolerance ||
		math.Abs(got.Z-expected.Z) > tolerance {
		t.Errorf("Expected color %v, got %v", expected, got)
	}
}

func TestSkyColor(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.5, 0.7, 1.0)},
		{"zenith", core.NewVec3(0, 1, 0), core.NewVec3(0.25, 0.55, 1.0)},
		{"nadir", core.NewVec3(0, -1, 0), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized zenith", core.NewVec3(0, 10, 0), core.NewVec3(0.25, 0.55, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkyColor(core.NewRay(core.Vec3{}, tt.direction))
			assertColorNear(t, got, tt.expected, 1e-12)
		})
	}
}

func TestSkyColor_DependsOnlyOnNormalizedY(t *testing.T) {
	a := SkyColor(core.NewRay(core.NewVec3(5, -3, 2), core.NewVec3(3, 4, 0)))
	b := SkyColor(core.NewRay(core.NewVec3(-100, 7, 0), core.NewVec3(0, 8, 6)))
	assertColorNear(t, a, b, 1e-12)
}

func TestRayColor_MissReturnsSky(t *testing.T) {
	pt := NewPathTracingIntegrator()
	s := newTestScene(geometry.MustSphere(core.NewVec3(0, 0, -1), 0.5,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	// Ray pointing away from the only sphere
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0.2, 0.3, 1))
	got := pt.RayColor(ray, s, newTestSampler())
	assertColorNear(t, got, SkyColor(ray), 0)

	// Empty scene shows pure sky in every direction
	empty := newTestScene()
	for _, dir := range []core.Vec3{{X: 1}, {Y: -1}, {X: 0.3, Y: 0.9, Z: -0.1}} {
		ray := core.NewRay(core.Vec3{}, dir)
		assertColorNear(t, pt.RayColor(ray, empty, newTestSampler()), SkyColor(ray), 0)
	}
}

func TestRayColor_DiffuseAttenuatesSky(t *testing.T) {
	pt := NewPathTracingIntegrator()
	albedo := core.NewVec3(0.9, 0.1, 0.1)
	s := newTestScene(geometry.MustSphere(core.NewVec3(0, 0, -3), 1.0, material.NewLambertian(albedo)))
	sampler := newTestSampler()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	for i := 0; i < 100; i++ {
		got := pt.RayColor(ray, s, sampler)

		// One bounce off a convex sphere always escapes to the sky, which is
		// bounded by (0.25..1, 0.55..1, 1)
		if got.X < albedo.X*0.25-1e-12 || got.X > albedo.X+1e-12 ||
			got.Y < albedo.Y*0.55-1e-12 || got.Y > albedo.Y+1e-12 ||
			math.Abs(got.Z-albedo.Z) > 1e-12 {
			t.Fatalf("Color %v is not albedo times a sky color", got)
		}
	}
}

func TestRayColor_SingleMirrorBounce(t *testing.T) {
	pt := NewPathTracingIntegrator()
	albedo := core.NewVec3(0.8, 0.8, 0.8)
	s := newTestScene(geometry.MustSphere(core.NewVec3(3, 0, 0), 1, material.NewMetal(albedo, 0)))

	// Reflects straight back along -x, toward the horizon
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	got := pt.RayColor(ray, s, newTestSampler())
	expected := albedo.MultiplyVec(core.NewVec3(0.5, 0.7, 1.0))
	assertColorNear(t, got, expected, 1e-12)
}

func TestRayColor_AbsorptionIsBlack(t *testing.T) {
	pt := NewPathTracingIntegrator()

	// From inside a mirror sphere the reflection always points against the
	// outward normal, so every scatter is absorbed
	s := newTestScene(geometry.MustSphere(core.NewVec3(0, 0, 0), 1, material.NewMetal(core.NewVec3(1, 1, 1), 0)))

	got := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), s, newTestSampler())
	assertColorNear(t, got, core.Vec3{}, 0)
}

func TestRayColor_DepthCapBetweenMirrors(t *testing.T) {
	pt := NewPathTracingIntegrator()
	mirror := material.NewMetal(core.NewVec3(1, 1, 1), 0)

	// Two mirrors facing each other along the x axis trap an on-axis ray
	s := newTestScene(
		geometry.MustSphere(core.NewVec3(-3, 0, 0), 1, mirror),
		geometry.MustSphere(core.NewVec3(3, 0, 0), 1, mirror),
	)

	got := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)), s, newTestSampler())
	assertColorNear(t, got, core.Vec3{}, 0)
}

func TestRayColor_DepthCapBoundary(t *testing.T) {
	pt := NewPathTracingIntegrator()
	mirror := material.NewMetal(core.NewVec3(1, 1, 1), 0)
	s := newTestScene(geometry.MustSphere(core.NewVec3(3, 0, 0), 1, mirror))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))

	// One bounce left still reaches the sky, none left is black
	got := pt.rayColorRecursive(ray, s, newTestSampler(), MaxDepth-1)
	assertColorNear(t, got, core.NewVec3(0.5, 0.7, 1.0), 1e-12)

	got = pt.rayColorRecursive(ray, s, newTestSampler(), MaxDepth)
	assertColorNear(t, got, core.Vec3{}, 0)

	// A miss at the cap still shows the sky
	miss := core.NewRay(core.Vec3{}, core.NewVec3(-1, 0, 0))
	got = pt.rayColorRecursive(miss, s, newTestSampler(), MaxDepth)
	assertColorNear(t, got, SkyColor(miss), 0)
}

func TestRayColor_NestedDielectricsTerminate(t *testing.T) {
	pt := NewPathTracingIntegrator()
	glass := material.NewDielectric(1.5)
	s := newTestScene(
		geometry.MustSphere(core.NewVec3(0, 0, -2), 1.0, glass),
		geometry.MustSphere(core.NewVec3(0, 0, -2), -0.9, glass),
		geometry.MustSphere(core.NewVec3(0, 0, -2), 0.5, glass),
	)
	sampler := newTestSampler()

	for i := 0; i < 200; i++ {
		ray := core.NewRay(core.Vec3{}, core.NewVec3(0.1*float64(i%5), 0.05, -1))
		got := pt.RayColor(ray, s, sampler)
		if !got.IsFinite() || got.X < 0 || got.Y < 0 || got.Z < 0 {
			t.Fatalf("Expected finite non-negative radiance, got %v", got)
		}
		if got.X > 1+1e-9 || got.Y > 1+1e-9 || got.Z > 1+1e-9 {
			t.Fatalf("Clear glass cannot brighten the sky, got %v", got)
		}
	}
}
