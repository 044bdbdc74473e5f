package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

func TestDielectricBasicBehavior(t *testing.T) {
	glass := NewDielectric(1.5)

	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0).Normalize())
	hit := core.HitRecord{
		T:      1.0,
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 1, 0),
	}

	hasReflection := false
	hasRefraction := false
	white := core.NewVec3(1, 1, 1)

	for seed := int64(0); seed < 1000; seed++ {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
		result, scattered := glass.Scatter(ray, hit, sampler)
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if !result.Attenuation.Equals(white) {
			t.Fatalf("Expected attenuation %v, got %v", white, result.Attenuation)
		}

		if result.Scattered.Direction.Y > 0 {
			hasReflection = true
		} else {
			hasRefraction = true
		}
	}

	if !hasRefraction {
		t.Error("Expected to see refraction in at least some cases")
	}
	// Reflection at 45° is only ~5% likely, but 1000 seeds should find it
	if !hasReflection {
		t.Error("Expected to see reflection in at least some cases")
	}
}

func TestDielectricSchlickChoice(t *testing.T) {
	glass := NewDielectric(1.5)

	// Normal incidence entering the glass: Schlick reflectance is 0.04
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	tests := []struct {
		name     string
		draw     float64
		expected core.Vec3
	}{
		{"Draw below reflectance reflects", 0.01, core.NewVec3(0, 1, 0)},
		{"Draw above reflectance refracts", 0.5, core.NewVec3(0, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := glass.Scatter(ray, hit, newSequenceSampler(tt.draw))
			if !vecNear(result.Scattered.Direction, tt.expected, 1e-12) {
				t.Errorf("Expected direction %v, got %v", tt.expected, result.Scattered.Direction)
			}
			if !result.Scattered.Origin.Equals(hit.Point) {
				t.Errorf("Scattered ray should start at hit point, got %v", result.Scattered.Origin)
			}
		})
	}
}

func TestDielectricExitingStraightThrough(t *testing.T) {
	glass := NewDielectric(1.5)

	// Travelling with the outward normal means the ray is leaving the medium
	ray := core.NewRay(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 2, 0))
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	result, _ := glass.Scatter(ray, hit, newSequenceSampler(0.5))
	expected := core.NewVec3(0, 1, 0)
	if !vecNear(result.Scattered.Direction, expected, 1e-12) {
		t.Errorf("Expected direction %v, got %v", expected, result.Scattered.Direction)
	}
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// 60° from the normal while exiting glass is past the ~41.8° critical angle
	direction := core.NewVec3(math.Sin(math.Pi/3), math.Cos(math.Pi/3), 0)
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	if _, ok := Refract(direction, hit.Normal.Negate(), 1.5); ok {
		t.Fatal("Test setup error: this angle should cause total internal reflection")
	}

	expected := Reflect(direction, hit.Normal)
	for seed := int64(0); seed < 100; seed++ {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
		result, scattered := glass.Scatter(ray, hit, sampler)
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if !vecNear(result.Scattered.Direction, expected, 1e-12) {
			t.Fatalf("Seed %d: expected reflected direction %v, got %v", seed, expected, result.Scattered.Direction)
		}
	}

	// A draw that would otherwise choose refraction still reflects
	result, _ := glass.Scatter(ray, hit, newSequenceSampler(0.999))
	if !vecNear(result.Scattered.Direction, expected, 1e-12) {
		t.Errorf("Expected reflection under total internal reflection, got %v", result.Scattered.Direction)
	}
}

func TestRefract_SnellsLaw(t *testing.T) {
	normal := core.NewVec3(0, 1, 0)
	incoming := core.NewVec3(1, -1, 0) // 45°, unnormalized
	ratio := 1.0 / 1.5

	refracted, ok := Refract(incoming, normal, ratio)
	if !ok {
		t.Fatal("Air to glass refraction should always be possible")
	}

	sinIn := math.Sin(math.Pi / 4)
	sinOut := math.Abs(refracted.Normalize().X)
	if math.Abs(sinOut-sinIn*ratio) > 1e-12 {
		t.Errorf("Snell's law violated: sin(out)=%f, expected %f", sinOut, sinIn*ratio)
	}
	if math.Abs(refracted.Length()-1) > 1e-12 {
		t.Errorf("Refracted direction should be unit length, got %f", refracted.Length())
	}
}

func TestSchlick(t *testing.T) {
	if r0 := Schlick(1.0, 1.5); math.Abs(r0-0.04) > 1e-12 {
		t.Errorf("Normal incidence reflectance = %.4f, expected 0.04", r0)
	}
	if r90 := Schlick(0.0, 1.5); math.Abs(r90-1.0) > 1e-12 {
		t.Errorf("Grazing incidence reflectance = %.4f, expected 1.0", r90)
	}

	r45 := Schlick(math.Cos(math.Pi/4), 1.5)
	if r45 <= 0.04 || r45 >= 1.0 {
		t.Errorf("45° reflectance = %.4f, expected between 0.04 and 1", r45)
	}
}
