package scene

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

// NewDefaultScene creates the classic five-sphere scene: a diffuse sphere on a
// large diffuse ground, a fuzzy metal sphere and a hollow glass sphere
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 2.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene(cameraConfig, SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
	})

	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.5)
	glass := material.NewDielectric(1.5)

	s.Add(
		geometry.MustSphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue),
		geometry.MustSphere(core.NewVec3(0, -100.5, -1), 100, lambertianGround),
		geometry.MustSphere(core.NewVec3(1, 0, -1), 0.5, metalGold),
		// Hollow glass: outer surface plus an inward-facing inner wall
		geometry.MustSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.MustSphere(core.NewVec3(-1, 0, -1), -0.45, glass),
	)

	return s
}
