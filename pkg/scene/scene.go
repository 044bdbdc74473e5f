package scene

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering. It must not be
// modified while a render is in progress.
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape // Objects in the scene, in insertion order
	SamplingConfig SamplingConfig
}

// SamplingConfig contains the scene's recommended render settings
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
}

// NewScene creates an empty scene viewed through the given camera
func NewScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	return &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Shapes:         make([]geometry.Shape, 0),
		SamplingConfig: samplingConfig,
	}
}

// Add appends shapes to the scene
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// Hit returns the nearest intersection among all shapes with t in [tMin, tMax]
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closestHit core.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for i, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			hit.Object = i
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}

// MaterialAt returns the material of the shape at index, as referenced by
// HitRecord.Object
func (s *Scene) MaterialAt(index int) material.Material {
	return s.Shapes[index].GetMaterial()
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *geometry.Camera {
	return s.Camera
}

// SetImageSize changes the recommended resolution and rebuilds the camera so
// its aspect ratio matches
func (s *Scene) SetImageSize(width, height int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = height
	if width > 0 && height > 0 {
		s.CameraConfig.AspectRatio = float64(width) / float64(height)
	}
	s.Camera = geometry.NewCamera(s.CameraConfig)
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// DefaultCameraFor returns a pinhole camera for an image of the given size
// looking down -z from the origin
func DefaultCameraFor(width, height int) geometry.CameraConfig {
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}
	return geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: aspect,
	}
}

