package geometry

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the nearest intersection with t in [tMin, tMax]. The
	// record's Object field is left for the owning scene to fill in.
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)
	GetMaterial() material.Material
}
