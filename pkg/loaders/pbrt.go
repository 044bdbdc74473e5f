package loaders

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/df07/go-montecarlo-raytracer/pkg/core"
	"github.com/df07/go-montecarlo-raytracer/pkg/geometry"
	"github.com/df07/go-montecarlo-raytracer/pkg/material"
	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// PBRT scenes read by ParsePBRT use this subset of the format:
//
//	LookAt ex ey ez  lx ly lz  ux uy uz
//	Camera "perspective" "float fov" [..] "float lensradius" [..] "float focaldistance" [..]
//	Film "rgb" "integer xresolution" [..] "integer yresolution" [..]
//	Sampler "random" "integer pixelsamples" [..]
//	WorldBegin / WorldEnd / AttributeBegin / AttributeEnd
//	Translate x y z
//	ReverseOrientation
//	Material "diffuse" | "conductor" | "dielectric"
//	Shape "sphere" "float radius" [..]
//
// Other directives (lights, integrators, textures) are skipped. Rotations and
// scaling are rejected since they cannot be applied to an analytic sphere
// without changing its shape.

// pbrtToken is a lexical token with the line it started on
type pbrtToken struct {
	text   string
	quoted bool
	line   int
}

// isNumber reports whether an unquoted token parses as a float
func (t pbrtToken) isNumber() bool {
	if t.quoted {
		return false
	}
	_, err := strconv.ParseFloat(t.text, 64)
	return err == nil
}

// isDirective reports whether the token starts a new statement
func (t pbrtToken) isDirective() bool {
	return !t.quoted && t.text != "[" && t.text != "]" && !t.isNumber()
}

// pbrtParam is a typed parameter list such as "float radius" [ 2 ]
type pbrtParam struct {
	Type   string
	Values []string
}

// pbrtGraphicsState is the attribute state saved by AttributeBegin
type pbrtGraphicsState struct {
	material    material.Material
	translation core.Vec3
	reverse     bool
}

// pbrtParser turns a token stream into a scene
type pbrtParser struct {
	tokens []pbrtToken
	pos    int

	state   pbrtGraphicsState
	stack   []pbrtGraphicsState
	inWorld bool

	cameraConfig geometry.CameraConfig
	fov          float64
	sampling     scene.SamplingConfig
	shapes       []geometry.Shape
}

// Defaults for settings a PBRT file leaves out
const (
	defaultPBRTResolution = 400
	defaultPBRTSamples    = 100
	defaultPBRTFov        = 90.0
)

// ParsePBRT reads a PBRT scene restricted to spheres and the three supported
// materials
func ParsePBRT(reader io.Reader) (*scene.Scene, error) {
	tokens, err := tokenizePBRT(reader)
	if err != nil {
		return nil, err
	}

	p := &pbrtParser{
		tokens: tokens,
		state: pbrtGraphicsState{
			material: material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
		},
		cameraConfig: scene.DefaultCameraFor(1, 1),
		fov:          defaultPBRTFov,
		sampling: scene.SamplingConfig{
			Width:           defaultPBRTResolution,
			Height:          defaultPBRTResolution,
			SamplesPerPixel: defaultPBRTSamples,
		},
	}

	for p.pos < len(p.tokens) {
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}
	if len(p.stack) > 0 {
		return nil, fmt.Errorf("%d AttributeBegin without matching AttributeEnd", len(p.stack))
	}

	return p.build()
}

// tokenizePBRT splits the input into quoted strings, brackets and bare words,
// dropping # comments
func tokenizePBRT(reader io.Reader) ([]pbrtToken, error) {
	var tokens []pbrtToken
	scanner := bufio.NewScanner(reader)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		var current strings.Builder

		flush := func() {
			if current.Len() > 0 {
				tokens = append(tokens, pbrtToken{text: current.String(), line: lineNumber})
				current.Reset()
			}
		}

		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case c == '#':
				i = len(line)
			case c == '"':
				flush()
				end := strings.IndexByte(line[i+1:], '"')
				if end < 0 {
					return nil, fmt.Errorf("line %d: unterminated string", lineNumber)
				}
				tokens = append(tokens, pbrtToken{text: line[i+1 : i+1+end], quoted: true, line: lineNumber})
				i += end + 1
			case c == '[' || c == ']':
				flush()
				tokens = append(tokens, pbrtToken{text: string(c), line: lineNumber})
			case c == ' ' || c == '\t' || c == '\r':
				flush()
			default:
				current.WriteByte(c)
			}
		}
		flush()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return tokens, nil
}

func (p *pbrtParser) next() pbrtToken {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *pbrtParser) peek() (pbrtToken, bool) {
	if p.pos >= len(p.tokens) {
		return pbrtToken{}, false
	}
	return p.tokens[p.pos], true
}

// parseStatement consumes one directive and its arguments
func (p *pbrtParser) parseStatement() error {
	t := p.next()
	if !t.isDirective() {
		return fmt.Errorf("line %d: expected a directive, got %q", t.line, t.text)
	}

	switch t.text {
	case "WorldBegin":
		p.inWorld = true
		p.state.translation = core.Vec3{}
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stack = append(p.stack, p.state)
	case "AttributeEnd":
		if len(p.stack) == 0 {
			return fmt.Errorf("line %d: AttributeEnd without AttributeBegin", t.line)
		}
		p.state = p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
	case "ReverseOrientation":
		p.state.reverse = !p.state.reverse
	case "LookAt":
		return p.parseLookAt(t)
	case "Translate":
		values, err := p.readNumbers(t, 3)
		if err != nil {
			return err
		}
		p.state.translation = p.state.translation.Add(core.NewVec3(values[0], values[1], values[2]))
	case "Rotate", "Scale", "Transform", "ConcatTransform", "CoordinateSystem", "CoordSysTransform":
		return fmt.Errorf("line %d: %s is not supported", t.line, t.text)
	case "Camera", "Film", "Sampler", "Material", "Shape":
		subtype, params, err := p.readSubtypeAndParams(t)
		if err != nil {
			return err
		}
		return p.apply(t, subtype, params)
	default:
		p.skipArguments()
	}
	return nil
}

func (p *pbrtParser) parseLookAt(t pbrtToken) error {
	v, err := p.readNumbers(t, 9)
	if err != nil {
		return err
	}
	p.cameraConfig.LookFrom = core.NewVec3(v[0], v[1], v[2])
	p.cameraConfig.LookAt = core.NewVec3(v[3], v[4], v[5])
	p.cameraConfig.Up = core.NewVec3(v[6], v[7], v[8])
	return nil
}

// readNumbers reads exactly n bare numbers following directive t
func (p *pbrtParser) readNumbers(t pbrtToken, n int) ([]float64, error) {
	values := make([]float64, 0, n)
	for len(values) < n {
		next, ok := p.peek()
		if !ok || !next.isNumber() {
			return nil, fmt.Errorf("line %d: %s requires %d numbers, got %d", t.line, t.text, n, len(values))
		}
		p.pos++
		v, _ := strconv.ParseFloat(next.text, 64)
		values = append(values, v)
	}
	return values, nil
}

// readSubtypeAndParams reads `"subtype" "type name" value...` after directive t
func (p *pbrtParser) readSubtypeAndParams(t pbrtToken) (string, map[string]pbrtParam, error) {
	subtype, ok := p.peek()
	if !ok || !subtype.quoted {
		return "", nil, fmt.Errorf("line %d: %s requires a quoted type", t.line, t.text)
	}
	p.pos++

	params := make(map[string]pbrtParam)
	for {
		decl, ok := p.peek()
		if !ok || !decl.quoted {
			break
		}
		p.pos++

		fields := strings.Fields(decl.text)
		if len(fields) != 2 {
			return "", nil, fmt.Errorf("line %d: malformed parameter declaration %q", decl.line, decl.text)
		}

		values, err := p.readParamValues(decl)
		if err != nil {
			return "", nil, err
		}
		params[fields[1]] = pbrtParam{Type: fields[0], Values: values}
	}
	return subtype.text, params, nil
}

// readParamValues reads a bracketed list or a single value
func (p *pbrtParser) readParamValues(decl pbrtToken) ([]string, error) {
	first, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("line %d: parameter %q has no value", decl.line, decl.text)
	}
	p.pos++
	if first.quoted || first.text != "[" {
		return []string{first.text}, nil
	}

	var values []string
	for {
		t, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("line %d: unterminated [ for parameter %q", decl.line, decl.text)
		}
		p.pos++
		if !t.quoted && t.text == "]" {
			return values, nil
		}
		values = append(values, t.text)
	}
}

// skipArguments discards everything up to the next directive
func (p *pbrtParser) skipArguments() {
	for {
		t, ok := p.peek()
		if !ok || t.isDirective() {
			return
		}
		p.pos++
	}
}

// apply records a Camera, Film, Sampler, Material or Shape statement
func (p *pbrtParser) apply(t pbrtToken, subtype string, params map[string]pbrtParam) error {
	switch t.text {
	case "Camera":
		if subtype != "perspective" {
			return fmt.Errorf("line %d: unsupported camera %q", t.line, subtype)
		}
		return p.applyCamera(t, params)

	case "Film":
		for name, target := range map[string]*int{"xresolution": &p.sampling.Width, "yresolution": &p.sampling.Height} {
			if v, ok, err := floatParam(params, name); err != nil {
				return fmt.Errorf("line %d: %w", t.line, err)
			} else if ok {
				if v < 1 || v > 8192 {
					return fmt.Errorf("line %d: invalid %s %v: must be between 1 and 8192", t.line, name, v)
				}
				*target = int(v)
			}
		}

	case "Sampler":
		if v, ok, err := floatParam(params, "pixelsamples"); err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		} else if ok {
			if v < 1 {
				return fmt.Errorf("line %d: pixelsamples must be positive, got %v", t.line, v)
			}
			p.sampling.SamplesPerPixel = int(v)
		}

	case "Material":
		mat, err := convertPBRTMaterial(subtype, params)
		if err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		}
		p.state.material = mat

	case "Shape":
		if !p.inWorld {
			return fmt.Errorf("line %d: Shape outside WorldBegin", t.line)
		}
		if subtype != "sphere" {
			return fmt.Errorf("line %d: unsupported shape %q", t.line, subtype)
		}
		radius := 1.0
		if v, ok, err := floatParam(params, "radius"); err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		} else if ok {
			radius = v
		}
		// Reversed orientation maps to the inward-facing negative radius
		if p.state.reverse {
			radius = -radius
		}
		sphere, err := geometry.NewSphere(p.state.translation, radius, p.state.material)
		if err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		}
		p.shapes = append(p.shapes, sphere)
	}
	return nil
}

func (p *pbrtParser) applyCamera(t pbrtToken, params map[string]pbrtParam) error {
	if fov, ok, err := floatParam(params, "fov"); err != nil {
		return fmt.Errorf("line %d: %w", t.line, err)
	} else if ok {
		if fov <= 0 || fov >= 180 {
			return fmt.Errorf("line %d: invalid camera fov %v: must be between 0 and 180 degrees", t.line, fov)
		}
		p.fov = fov
	}
	if lensRadius, ok, err := floatParam(params, "lensradius"); err != nil {
		return fmt.Errorf("line %d: %w", t.line, err)
	} else if ok {
		p.cameraConfig.Aperture = 2 * lensRadius
	}
	if focus, ok, err := floatParam(params, "focaldistance"); err != nil {
		return fmt.Errorf("line %d: %w", t.line, err)
	} else if ok {
		p.cameraConfig.FocusDistance = focus
	}
	return nil
}

// build assembles the scene once the whole file has been read
func (p *pbrtParser) build() (*scene.Scene, error) {
	config := p.cameraConfig
	config.AspectRatio = float64(p.sampling.Width) / float64(p.sampling.Height)
	config.VFov = verticalFov(p.fov, config.AspectRatio)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera: %w", err)
	}

	s := scene.NewScene(config, p.sampling)
	s.Add(p.shapes...)
	return s, nil
}

// verticalFov converts a PBRT field of view, which spans the shorter image
// axis, to a vertical field of view
func verticalFov(fov, aspect float64) float64 {
	if aspect >= 1 {
		return fov
	}
	halfTan := math.Tan(fov*math.Pi/360) / aspect
	return 2 * math.Atan(halfTan) * 180 / math.Pi
}

// convertPBRTMaterial maps the supported PBRT materials onto the closed material set
func convertPBRTMaterial(subtype string, params map[string]pbrtParam) (material.Material, error) {
	switch subtype {
	case "diffuse":
		albedo := core.NewVec3(0.5, 0.5, 0.5)
		if rgb, ok, err := rgbParam(params, "reflectance"); err != nil {
			return material.Material{}, err
		} else if ok {
			albedo = rgb
		}
		return material.NewLambertian(albedo), nil

	case "conductor":
		albedo := core.NewVec3(0.7, 0.6, 0.5)
		if rgb, ok, err := rgbParam(params, "reflectance"); err != nil {
			return material.Material{}, err
		} else if ok {
			albedo = rgb
		}
		fuzz := 0.0
		if roughness, ok, err := floatParam(params, "roughness"); err != nil {
			return material.Material{}, err
		} else if ok {
			if roughness < 0 || roughness > 1 {
				return material.Material{}, fmt.Errorf("invalid conductor roughness %v: must be between 0 and 1", roughness)
			}
			fuzz = roughness
		}
		return material.NewMetal(albedo, fuzz), nil

	case "dielectric":
		eta := 1.5
		if v, ok, err := floatParam(params, "eta"); err != nil {
			return material.Material{}, err
		} else if ok {
			if v <= 0 {
				return material.Material{}, fmt.Errorf("invalid dielectric eta %v: must be positive", v)
			}
			eta = v
		}
		return material.NewDielectric(eta), nil

	default:
		return material.Material{}, fmt.Errorf("unsupported material %q", subtype)
	}
}

// floatParam reads the first value of a numeric parameter
func floatParam(params map[string]pbrtParam, name string) (float64, bool, error) {
	param, ok := params[name]
	if !ok || len(param.Values) == 0 {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", name, param.Values[0], err)
	}
	return v, true, nil
}

// rgbParam reads a three-component color parameter
func rgbParam(params map[string]pbrtParam, name string) (core.Vec3, bool, error) {
	param, ok := params[name]
	if !ok {
		return core.Vec3{}, false, nil
	}
	if len(param.Values) != 3 {
		return core.Vec3{}, false, fmt.Errorf("%s needs 3 values, got %d", name, len(param.Values))
	}
	var rgb [3]float64
	for i, s := range param.Values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Vec3{}, false, fmt.Errorf("invalid %s component %q: %w", name, s, err)
		}
		rgb[i] = v
	}
	return core.NewVec3(rgb[0], rgb[1], rgb[2]), true, nil
}
