package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually 0,1,0)
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the focal plane, 0 to focus on LookAt
}

// Validate reports configurations that cannot produce a camera basis
func (c CameraConfig) Validate() error {
	var errs []error
	view := c.LookFrom.Subtract(c.LookAt)
	if view.LengthSquared() == 0 {
		errs = append(errs, errors.New("camera look-from and look-at coincide"))
	} else if c.Up.Cross(view).LengthSquared() == 0 {
		errs = append(errs, errors.New("camera up vector is parallel to the view direction"))
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		errs = append(errs, fmt.Errorf("vertical field of view must be in (0, 180) degrees, got %v", c.VFov))
	}
	if c.AspectRatio <= 0 || math.IsInf(c.AspectRatio, 0) || math.IsNaN(c.AspectRatio) {
		errs = append(errs, fmt.Errorf("aspect ratio must be positive and finite, got %v", c.AspectRatio))
	}
	if c.Aperture < 0 {
		errs = append(errs, fmt.Errorf("aperture must not be negative, got %v", c.Aperture))
	}
	if c.FocusDistance < 0 {
		errs = append(errs, fmt.Errorf("focus distance must not be negative, got %v", c.FocusDistance))
	}
	return errors.Join(errs...)
}

// Camera generates rays for rendering with a thin-lens depth of field model
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	// Orthonormal basis with w pointing away from the scene
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	lowerLeftCorner := origin.Subtract(
		u.Multiply(halfWidth).Add(v.Multiply(halfHeight)).Add(w).Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focusDistance),
		vertical:        v.Multiply(2 * halfHeight * focusDistance),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}
}

// GetRay generates a ray for image-plane coordinates (s, t) where 0 <= s,t <= 1
// and (0,0) is the lower-left corner
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the direction the camera is looking
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// LensRadius returns the radius of the thin lens
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}
	if override.LookFrom != zero {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}
