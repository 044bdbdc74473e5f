package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

func TestMetal_FuzzClampedAtUse(t *testing.T) {
	tests := []struct {
		name         string
		inputFuzz    float64
		expectedFuzz float64
	}{
		{"Valid fuzz 0.0", 0.0, 0.0},
		{"Valid fuzz 0.5", 0.5, 0.5},
		{"Valid fuzz 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
		{"Clamp large positive", 10.0, 1.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzz)
			if metal.Fuzz != tt.inputFuzz {
				t.Errorf("Stored fuzz should be unmodified: expected %f, got %f", tt.inputFuzz, metal.Fuzz)
			}
			if metal.ClampedFuzz() != tt.expectedFuzz {
				t.Errorf("Expected clamped fuzz %f, got %f", tt.expectedFuzz, metal.ClampedFuzz())
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Ray hitting surface at 45 degrees, unnormalized on purpose
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -3, -3))
	hit := core.HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 0, 1),
	}

	scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
	if !didScatter {
		t.Fatal("Metal should scatter")
	}

	// Reflection of the normalized incoming direction
	expected := core.NewVec3(0, -1, 1).Normalize()
	if !vecNear(scatter.Scattered.Direction, expected, 1e-10) {
		t.Errorf("Perfect reflection failed: expected %v, got %v", expected, scatter.Scattered.Direction)
	}

	if !scatter.Attenuation.Equals(albedo) {
		t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
	}
}

func TestMetal_NormalIncidenceNeverAbsorbed(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	for i := 0; i < 1000; i++ {
		if _, ok := metal.Scatter(rayIn, hit, sampler); !ok {
			t.Fatalf("Fuzz 0 at normal incidence should never absorb (iteration %d)", i)
		}
	}
}

func TestMetal_GrazingFuzzyAbsorbs(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(2)))

	// Nearly parallel to the surface
	rayIn := core.NewRay(core.NewVec3(-1, 0.05, 0), core.NewVec3(1, -0.05, 0))
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	const trials = 2000
	absorbed := 0
	for i := 0; i < trials; i++ {
		scatter, ok := metal.Scatter(rayIn, hit, sampler)
		if !ok {
			absorbed++
			continue
		}
		if scatter.Scattered.Direction.Dot(hit.Normal) <= 0 {
			t.Fatalf("Accepted scatter points into the surface: %v", scatter.Scattered.Direction)
		}
	}

	if absorbed == 0 {
		t.Error("Expected some absorption for grazing incidence with fuzz 1")
	}
	if absorbed == trials {
		t.Error("Expected some rays to survive grazing incidence with fuzz 1")
	}
	t.Logf("Absorbed %d of %d grazing rays", absorbed, trials)
}

func TestMetal_FuzzAboveOneBehavesAsOne(t *testing.T) {
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0))
	hit := core.HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}

	one := NewMetal(core.NewVec3(1, 1, 1), 1.0)
	huge := NewMetal(core.NewVec3(1, 1, 1), 25.0)

	for seed := int64(0); seed < 20; seed++ {
		a, okA := one.Scatter(rayIn, hit, core.NewSeededSampler(seed))
		b, okB := huge.Scatter(rayIn, hit, core.NewSeededSampler(seed))
		if okA != okB || !a.Scattered.Direction.Equals(b.Scattered.Direction) {
			t.Fatalf("Seed %d: fuzz 25 should scatter like fuzz 1", seed)
		}
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0))
	expected := core.NewVec3(1, 1, 0)
	if !got.Equals(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
