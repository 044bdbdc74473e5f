package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

// ErrInvalidRadius is returned when a sphere would have a zero or non-finite radius
var ErrInvalidRadius = errors.New("sphere radius must be finite and non-zero")

// Sphere represents a sphere shape. A negative radius is valid and flips the
// normal inward, which models the inner wall of a hollow shell.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere, rejecting degenerate geometry
func NewSphere(center core.Vec3, radius float64, mat material.Material) (*Sphere, error) {
	if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if !center.IsFinite() {
		return nil, fmt.Errorf("sphere center must be finite: got %v", center)
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}, nil
}

// MustSphere is like NewSphere but panics on invalid input. It is meant for
// scenes built from literals.
func MustSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	s, err := NewSphere(center, radius, mat)
	if err != nil {
		panic(err)
	}
	return s
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return core.HitRecord{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return core.HitRecord{}, false
		}
	}

	point := ray.At(root)

	// Dividing by the signed radius gives inward normals for hollow spheres
	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)

	return core.HitRecord{
		T:      root,
		Point:  point,
		Normal: normal,
	}, true
}

// GetMaterial returns the sphere's material
func (s *Sphere) GetMaterial() material.Material {
	return s.Material
}
