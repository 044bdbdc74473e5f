package scene

import (
	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
)

// NewGlassScene creates nested dielectric shells resting on a large mirror
// sphere. It stresses refraction, total internal reflection and the depth cap.
func NewGlassScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 1.5, 4),
		LookAt:      core.NewVec3(0, 0.6, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        35.0,
		AspectRatio: 16.0 / 9.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene(cameraConfig, SamplingConfig{
		Width:           320,
		Height:          180,
		SamplesPerPixel: 100,
	})

	mirror := material.NewMetal(core.NewVec3(0.85, 0.85, 0.9), 0.02)
	glass := material.NewDielectric(1.5)
	diamond := material.NewDielectric(2.4)
	water := material.NewDielectric(1.33)

	center := core.NewVec3(0, 0.7, -1)
	s.Add(
		geometry.MustSphere(core.NewVec3(0, -500, -1), 500, mirror),

		// Thick glass shell with a diamond core
		geometry.MustSphere(center, 0.7, glass),
		geometry.MustSphere(center, -0.6, glass),
		geometry.MustSphere(center, 0.3, diamond),

		// Flanking water drops and a matte reference
		geometry.MustSphere(core.NewVec3(-1.5, 0.35, -0.6), 0.35, water),
		geometry.MustSphere(core.NewVec3(1.5, 0.35, -0.6), 0.35,
			material.NewLambertian(core.NewVec3(0.7, 0.3, 0.2))),
	)

	return s
}
