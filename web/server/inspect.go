package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/integrator"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// InspectResponse describes what the ray through a pixel center hits first
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	X            int                    `json:"x"`
	Y            int                    `json:"y"`
	Object       int                    `json:"object"`
	GeometryType string                 `json:"geometryType,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// handleInspect reports the first surface seen through pixel (x, y), where
// (0, 0) is the top-left corner of the rendered image
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, config, err := s.setupScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	values := r.URL.Query()
	if values.Get("x") == "" || values.Get("y") == "" {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	x, err := parseIntParam(values, "x", 0, 0, config.Width-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(values, "y", 0, 0, config.Height-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, config.Width, config.Height, x, y, req.Seed))
}

// inspectPixel traces the ray through the center of pixel (x, y)
func inspectPixel(s *scene.Scene, width, height, x, y int, seed int64) InspectResponse {
	u := (float64(x) + 0.5) / float64(width)
	v := (float64(height-1-y) + 0.5) / float64(height)
	ray := s.GetCamera().GetRay(u, v, core.NewSeededSampler(seed))

	response := InspectResponse{X: x, Y: y, Object: -1}
	hit, isHit := s.Hit(ray, integrator.ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return response
	}

	mat := s.MaterialAt(hit.Object)
	response.Hit = true
	response.Object = hit.Object
	response.MaterialType = mat.Kind.String()
	response.Point = [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z}
	response.Normal = [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z}
	response.Distance = hit.T * ray.Direction.Length()
	response.FrontFace = ray.Direction.Dot(hit.Normal) < 0
	response.Properties = materialProperties(mat)

	if sphere, ok := s.Shapes[hit.Object].(*geometry.Sphere); ok {
		response.GeometryType = "sphere"
		response.Properties["center"] = [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z}
		response.Properties["radius"] = sphere.Radius
	} else {
		response.GeometryType = fmt.Sprintf("%T", s.Shapes[hit.Object])
	}

	return response
}

func materialProperties(mat material.Material) map[string]interface{} {
	properties := make(map[string]interface{})
	switch mat.Kind {
	case material.KindLambertian:
		properties["albedo"] = [3]float64{mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z}
	case material.KindMetal:
		properties["albedo"] = [3]float64{mat.Albedo.X, mat.Albedo.Y, mat.Albedo.Z}
		properties["fuzz"] = mat.ClampedFuzz()
	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
	}
	return properties
}
