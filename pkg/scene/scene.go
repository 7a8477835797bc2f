// Package scene reads YAML scene descriptions and turns them into the
// camera, light and objects the rasterizer draws.
//
// Angles in a scene file are degrees; positions use the renderer's
// left-handed convention (X right, Y up, Z forward).
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/softraster/pkg/math3d"
)

var (
	ErrUnknownPrimitive = errors.New("unknown primitive")
	ErrNoGeometry       = errors.New("object needs exactly one of model or primitive")
)

// Scene is the decoded scene file.
type Scene struct {
	Camera  CameraConfig   `yaml:"camera"`
	Light   LightConfig    `yaml:"light"`
	Objects []ObjectConfig `yaml:"objects"`

	// Dir resolves relative model and texture paths. Load sets it to the
	// directory of the scene file.
	Dir string `yaml:"-"`
}

// CameraConfig places the camera. LookAt, when set, overrides Rotation.
type CameraConfig struct {
	Position     Vec3    `yaml:"position"`
	Rotation     Vec3    `yaml:"rotation"` // pitch, yaw, roll
	LookAt       *Vec3   `yaml:"look_at,omitempty"`
	FOV          float64 `yaml:"fov"` // vertical, degrees
	Orthographic bool    `yaml:"orthographic"`
	OrthoSize    float64 `yaml:"ortho_size"`
	Near         float64 `yaml:"near"`
	Far          float64 `yaml:"far"`
}

// LightConfig describes the directional light.
type LightConfig struct {
	Direction Vec3     `yaml:"direction"`
	Color     *Color   `yaml:"color,omitempty"`
	Intensity *float64 `yaml:"intensity,omitempty"`
}

// ObjectConfig describes one object. Exactly one of Model or Primitive
// must be set.
type ObjectConfig struct {
	Name      string  `yaml:"name"`
	Model     string  `yaml:"model"`     // glTF/GLB path
	Primitive string  `yaml:"primitive"` // "cube" or "quad"
	Size      float64 `yaml:"size"`      // primitive side length, default 1
	Fit       float64 `yaml:"fit"`       // recenter a model and scale it to this extent
	// Texture is an image path, or "checker" for a procedural pattern.
	// Empty uses the model's embedded texture, if any.
	Texture  string `yaml:"texture"`
	Wrap     string `yaml:"wrap"` // "repeat" (default) or "clamp"
	Color    *Color `yaml:"color,omitempty"`
	Position Vec3   `yaml:"position"`
	Rotation Vec3   `yaml:"rotation"`
	Scale    *Vec3  `yaml:"scale,omitempty"`
	Active   *bool  `yaml:"active,omitempty"`
	Spin     Vec3   `yaml:"spin"` // degrees per second around each axis
}

// Vec3 is written as a three-element sequence: [x, y, z].
type Vec3 math3d.Vec3

// UnmarshalYAML implements yaml.Unmarshaler for Vec3.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var xyz []float64
	if err := value.Decode(&xyz); err != nil {
		return fmt.Errorf("line %d: vector must be [x, y, z]: %w", value.Line, err)
	}
	if len(xyz) != 3 {
		return fmt.Errorf("line %d: vector needs 3 components, got %d", value.Line, len(xyz))
	}
	*v = Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return nil
}

// MarshalYAML implements yaml.Marshaler for Vec3.
func (v Vec3) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range [3]float64{v.X, v.Y, v.Z} {
		var n yaml.Node
		if err := n.Encode(f); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &n)
	}
	return node, nil
}

// Vec returns the math3d vector.
func (v Vec3) Vec() math3d.Vec3 { return math3d.Vec3(v) }

// Color is written either as a hex string ("#ff8800") or as a sequence of
// three floats in [0, 1].
type Color colorful.Color

// UnmarshalYAML implements yaml.Unmarshaler for Color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		parsed, err := colorful.Hex(s)
		if err != nil {
			return fmt.Errorf("line %d: invalid color %q: %w", value.Line, s, err)
		}
		*c = Color(parsed)
		return nil
	}
	var v Vec3
	if err := v.UnmarshalYAML(value); err != nil {
		return err
	}
	*c = Color{R: v.X, G: v.Y, B: v.Z}
	return nil
}

// MarshalYAML implements yaml.Marshaler for Color. Output is always the
// float sequence form.
func (c Color) MarshalYAML() (any, error) {
	return Vec3{X: c.R, Y: c.G, Z: c.B}.MarshalYAML()
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Parse decodes a scene from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the object list.
func (s *Scene) Validate() error {
	for i, o := range s.Objects {
		if (o.Model == "") == (o.Primitive == "") {
			return fmt.Errorf("object %d (%s): %w", i, o.Name, ErrNoGeometry)
		}
		if o.Primitive != "" {
			if _, ok := primitives[o.Primitive]; !ok {
				return fmt.Errorf("object %d (%s): %w %q", i, o.Name, ErrUnknownPrimitive, o.Primitive)
			}
		}
		switch o.Wrap {
		case "", "repeat", "clamp":
		default:
			return fmt.Errorf("object %d (%s): invalid wrap mode %q", i, o.Name, o.Wrap)
		}
	}
	return nil
}

// Marshal encodes the scene back to YAML.
func (s *Scene) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	return buf.Bytes(), nil
}

// Default is the scene shown when no file is given: a checkered cube
// turning in front of the camera.
func Default() *Scene {
	return &Scene{
		Camera: CameraConfig{
			Position: Vec3{X: 0, Y: 1.5, Z: -4},
			LookAt:   &Vec3{},
		},
		Light: LightConfig{Direction: Vec3{X: 1, Y: -1, Z: 1}},
		Objects: []ObjectConfig{{
			Name:      "cube",
			Primitive: "cube",
			Size:      1.5,
			Texture:   "checker",
			Spin:      Vec3{X: 15, Y: 40},
		}},
	}
}
