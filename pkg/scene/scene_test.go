package scene

import (
	"math"
	"testing"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

func TestScene_HitReturnsNearest(t *testing.T) {
	front := material.NewLambertian(core.NewVec3(1, 0, 0))
	back := material.NewLambertian(core.NewVec3(0, 0, 1))

	tests := []struct {
		name   string
		shapes []geometry.Shape
		front  int
	}{
		{
			name: "front sphere first",
			shapes: []geometry.Shape{
				geometry.MustSphere(core.NewVec3(0, 0, -2), 0.5, front),
				geometry.MustSphere(core.NewVec3(0, 0, -5), 1.0, back),
			},
			front: 0,
		},
		{
			name: "front sphere last",
			shapes: []geometry.Shape{
				geometry.MustSphere(core.NewVec3(0, 0, -5), 1.0, back),
				geometry.MustSphere(core.NewVec3(0, 0, -2), 0.5, front),
			},
			front: 1,
		},
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene(DefaultCameraFor(1, 1), SamplingConfig{})
			s.Add(tt.shapes...)

			hit, isHit := s.Hit(ray, 0.0001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected a hit")
			}
			if math.Abs(hit.T-1.5) > 1e-9 {
				t.Errorf("Expected nearest t=1.5, got %f", hit.T)
			}
			if hit.Object != tt.front {
				t.Errorf("Expected object %d, got %d", tt.front, hit.Object)
			}
			if s.MaterialAt(hit.Object) != front {
				t.Errorf("Expected front material, got %v", s.MaterialAt(hit.Object))
			}
		})
	}
}

func TestScene_HitNestedSpheres(t *testing.T) {
	outer := material.NewDielectric(1.5)
	inner := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	s := NewScene(DefaultCameraFor(1, 1), SamplingConfig{})
	s.Add(
		geometry.MustSphere(core.NewVec3(0, 0, -3), 0.5, inner),
		geometry.MustSphere(core.NewVec3(0, 0, -3), 1.0, outer),
	)

	hit, isHit := s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.0001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected a hit")
	}
	if hit.Object != 1 || math.Abs(hit.T-2.0) > 1e-9 {
		t.Errorf("Expected outer sphere at t=2, got object %d at t=%f", hit.Object, hit.T)
	}
}

func TestScene_EmptyMisses(t *testing.T) {
	s := NewScene(DefaultCameraFor(1, 1), SamplingConfig{})
	if _, isHit := s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), 0.0001, math.Inf(1)); isHit {
		t.Error("Empty scene should never report a hit")
	}
}

func TestScene_SetImageSize(t *testing.T) {
	s := NewDefaultScene()
	s.SetImageSize(300, 100)

	if s.SamplingConfig.Width != 300 || s.SamplingConfig.Height != 100 {
		t.Errorf("Expected 300x100, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.CameraConfig.AspectRatio != 3.0 {
		t.Errorf("Expected aspect ratio 3, got %f", s.CameraConfig.AspectRatio)
	}
}

func TestBuiltinScenes(t *testing.T) {
	for _, info := range ListScenes() {
		t.Run(info.Name, func(t *testing.T) {
			s, err := Create(info.Name, 42)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Error("Scene should contain shapes")
			}
			if s.GetCamera() == nil {
				t.Error("Scene should have a camera")
			}
			if err := s.CameraConfig.Validate(); err != nil {
				t.Errorf("Scene camera is invalid: %v", err)
			}
			cfg := s.SamplingConfig
			if cfg.Width <= 0 || cfg.Height <= 0 || cfg.SamplesPerPixel <= 0 {
				t.Errorf("Scene sampling config should be positive, got %+v", cfg)
			}
		})
	}

	if _, err := Create("nonexistent", 0); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestCoverScene_SeedDeterminesLayout(t *testing.T) {
	a := NewCoverScene(3)
	b := NewCoverScene(3)

	if len(a.Shapes) != len(b.Shapes) {
		t.Fatalf("Same seed produced %d and %d shapes", len(a.Shapes), len(b.Shapes))
	}
	for i := range a.Shapes {
		sa := a.Shapes[i].(*geometry.Sphere)
		sb := b.Shapes[i].(*geometry.Sphere)
		if *sa != *sb {
			t.Fatalf("Shape %d differs between identical seeds", i)
		}
	}
}

func TestDefaultScene_HollowGlass(t *testing.T) {
	s := NewDefaultScene()

	negative := 0
	for _, shape := range s.Shapes {
		if sphere := shape.(*geometry.Sphere); sphere.Radius < 0 {
			negative++
			if sphere.Material.Kind != material.KindDielectric {
				t.Errorf("Inner shell should be dielectric, got %v", sphere.Material.Kind)
			}
		}
	}
	if negative != 1 {
		t.Errorf("Expected one inward-facing shell, got %d", negative)
	}
}

func TestGlassScene_NestedShells(t *testing.T) {
	s := NewGlassScene()

	dielectrics := 0
	for i := range s.Shapes {
		if s.MaterialAt(i).Kind == material.KindDielectric {
			dielectrics++
		}
	}
	if dielectrics != 4 {
		t.Errorf("Expected 4 dielectric spheres, got %d", dielectrics)
	}

	// A ray straight down onto the shells hits the outer glass first
	ray := core.NewRay(core.NewVec3(0, 5, -1), core.NewVec3(0, -1, 0))
	hit, ok := s.Hit(ray, 1e-4, math.Inf(1))
	if !ok || hit.Object != 1 {
		t.Fatalf("Expected to hit the outer shell, got %+v (hit=%v)", hit, ok)
	}
	if math.Abs(hit.T-3.6) > 1e-9 {
		t.Errorf("Expected t=3.6, got %f", hit.T)
	}
}
