package loaders

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// SceneFile is the JSON scene description
type SceneFile struct {
	Camera  *CameraFile  `json:"camera,omitempty"`
	Width   int          `json:"width,omitempty"`
	Height  int          `json:"height,omitempty"`
	Samples int          `json:"samples,omitempty"`
	Objects []ObjectFile `json:"objects"`
}

// CameraFile describes the camera. Omitted fields keep the defaults of
// scene.DefaultCameraFor.
type CameraFile struct {
	LookFrom      []float64 `json:"lookFrom,omitempty"`
	LookAt        []float64 `json:"lookAt,omitempty"`
	Up            []float64 `json:"up,omitempty"`
	VFov          float64   `json:"vfov,omitempty"`
	Aperture      float64   `json:"aperture,omitempty"`
	FocusDistance float64   `json:"focusDistance,omitempty"`
}

// ObjectFile describes one primitive
type ObjectFile struct {
	Type     string       `json:"type"`
	Center   []float64    `json:"center"`
	Radius   float64      `json:"radius"`
	Material MaterialFile `json:"material"`
}

// MaterialFile describes a material. Type is lambertian, metal or dielectric.
type MaterialFile struct {
	Type            string    `json:"type"`
	Albedo          []float64 `json:"albedo,omitempty"`
	Fuzz            float64   `json:"fuzz,omitempty"`
	RefractiveIndex float64   `json:"refractiveIndex,omitempty"`
}

// Defaults for fields a JSON scene leaves out
const (
	defaultJSONWidth   = 200
	defaultJSONHeight  = 100
	defaultJSONSamples = 100
)

// ParseScene decodes a JSON scene description. Unknown fields, unknown object
// or material types and invalid spheres are errors.
func ParseScene(reader io.Reader) (*scene.Scene, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var file SceneFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode scene JSON: %w", err)
	}
	return file.Build()
}

// Build converts the description into a scene
func (f SceneFile) Build() (*scene.Scene, error) {
	sampling := scene.SamplingConfig{
		Width:           orDefault(f.Width, defaultJSONWidth),
		Height:          orDefault(f.Height, defaultJSONHeight),
		SamplesPerPixel: orDefault(f.Samples, defaultJSONSamples),
	}
	if sampling.Width < 0 || sampling.Height < 0 || sampling.SamplesPerPixel < 0 {
		return nil, fmt.Errorf("image size and samples must not be negative")
	}

	cameraConfig, err := f.cameraConfig(sampling.Width, sampling.Height)
	if err != nil {
		return nil, err
	}

	s := scene.NewScene(cameraConfig, sampling)
	for i, obj := range f.Objects {
		shape, err := obj.build()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.Add(shape)
	}
	return s, nil
}

func (f SceneFile) cameraConfig(width, height int) (geometry.CameraConfig, error) {
	config := scene.DefaultCameraFor(width, height)
	if f.Camera == nil {
		return config, nil
	}

	var err error
	if f.Camera.LookFrom != nil {
		if config.LookFrom, err = toVec3("camera.lookFrom", f.Camera.LookFrom); err != nil {
			return config, err
		}
	}
	if f.Camera.LookAt != nil {
		if config.LookAt, err = toVec3("camera.lookAt", f.Camera.LookAt); err != nil {
			return config, err
		}
	}
	if f.Camera.Up != nil {
		if config.Up, err = toVec3("camera.up", f.Camera.Up); err != nil {
			return config, err
		}
	}
	if f.Camera.VFov != 0 {
		config.VFov = f.Camera.VFov
	}
	config.Aperture = f.Camera.Aperture
	config.FocusDistance = f.Camera.FocusDistance

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid camera: %w", err)
	}
	return config, nil
}

func (o ObjectFile) build() (geometry.Shape, error) {
	if o.Type != "sphere" {
		return nil, fmt.Errorf("unknown object type %q", o.Type)
	}

	center, err := toVec3("center", o.Center)
	if err != nil {
		return nil, err
	}
	mat, err := o.Material.build()
	if err != nil {
		return nil, err
	}
	sphere, err := geometry.NewSphere(center, o.Radius, mat)
	if err != nil {
		return nil, err
	}
	return sphere, nil
}

func (m MaterialFile) build() (material.Material, error) {
	switch m.Type {
	case "lambertian":
		albedo, err := toVec3("albedo", m.Albedo)
		if err != nil {
			return material.Material{}, err
		}
		return material.NewLambertian(albedo), nil
	case "metal":
		albedo, err := toVec3("albedo", m.Albedo)
		if err != nil {
			return material.Material{}, err
		}
		return material.NewMetal(albedo, m.Fuzz), nil
	case "dielectric":
		if m.RefractiveIndex <= 0 {
			return material.Material{}, fmt.Errorf("dielectric refractive index must be positive, got %v", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return material.Material{}, fmt.Errorf("unknown material type %q", m.Type)
	}
}

func toVec3(name string, values []float64) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%s must have 3 components, got %d", name, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func orDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
