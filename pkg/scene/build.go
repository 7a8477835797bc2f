package scene

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

var primitives = map[string]func(size float64) *models.Mesh{
	"cube": models.NewCube,
	"quad": models.NewQuad,
}

// Procedural texture for `texture: checker`.
const (
	checkerSize  = 64
	checkerCells = 8
)

// World is a built scene, ready to render.
type World struct {
	Camera  render.Camera
	Light   render.Light
	Objects []*render.Object

	placements []Placement
}

// Placement is an object's transform as written in the scene file, in
// radians, plus its spin rate in radians per second.
type Placement struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
	Scale    math3d.Vec3
	Spin     math3d.Vec3
}

// Model returns the model matrix after t seconds of spin, with extra
// rotation (radians) added on top.
func (p Placement) Model(t float64, extra math3d.Vec3) math3d.Mat4 {
	rot := p.Rotation.Add(p.Spin.Scale(t)).Add(extra)
	return math3d.TRS(p.Position, rot, p.Scale)
}

// Placement returns the placement of object i.
func (w *World) Placement(i int) Placement {
	return w.placements[i]
}

// Animate sets every object's model matrix to its placement after t
// seconds, with extra rotation applied to all of them.
func (w *World) Animate(t float64, extra math3d.Vec3) {
	for i, o := range w.Objects {
		o.Model = w.placements[i].Model(t, extra)
	}
}

// TriangleCount sums the triangles of every object.
func (w *World) TriangleCount() int {
	n := 0
	for _, o := range w.Objects {
		n += len(o.Mesh.Indices()) / 3
	}
	return n
}

// Build loads every model and texture and returns the world at t = 0.
// Relative paths are resolved against dir; an empty dir uses s.Dir.
func (s *Scene) Build(dir string) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = s.Dir
	}

	w := &World{
		Camera: s.Camera.build(),
		Light:  s.Light.build(),
	}
	for i, oc := range s.Objects {
		o, err := oc.build(dir)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, oc.Name, err)
		}
		w.Objects = append(w.Objects, o)
		w.placements = append(w.placements, oc.placement())
	}
	w.Animate(0, math3d.Vec3{})
	return w, nil
}

func (c CameraConfig) build() render.Camera {
	cam := render.NewCamera()
	cam.Position = c.Position.Vec()
	rot := c.Rotation.Vec().Radians()
	cam.Pitch, cam.Yaw, cam.Roll = rot.X, rot.Y, rot.Z
	if c.FOV > 0 {
		cam.FOV = c.FOV * math.Pi / 180
	}
	cam.Orthographic = c.Orthographic
	cam.OrthoSize = c.OrthoSize
	if cam.Orthographic && cam.OrthoSize <= 0 {
		cam.OrthoSize = 5
	}
	if c.Near > 0 {
		cam.Near = c.Near
	}
	if c.Far > 0 {
		cam.Far = c.Far
	}
	if c.LookAt != nil {
		cam = cam.LookAt(c.LookAt.Vec())
	}
	return cam
}

func (l LightConfig) build() render.Light {
	dir := l.Direction.Vec()
	if dir == (math3d.Vec3{}) {
		dir = math3d.V3(0, 0, 1)
	}
	light := render.NewLight(dir)
	if l.Color != nil {
		light.Color = colorful.Color(*l.Color)
	}
	if l.Intensity != nil {
		light.Intensity = *l.Intensity
	}
	return light
}

func (o ObjectConfig) placement() Placement {
	scale := math3d.V3(1, 1, 1)
	if o.Scale != nil {
		scale = o.Scale.Vec()
	}
	return Placement{
		Position: o.Position.Vec(),
		Rotation: o.Rotation.Vec().Radians(),
		Scale:    scale,
		Spin:     o.Spin.Vec().Radians(),
	}
}

func (o ObjectConfig) build(dir string) (*render.Object, error) {
	var (
		mesh *models.Mesh
		tex  *render.Texture
	)
	if o.Primitive != "" {
		size := o.Size
		if size <= 0 {
			size = 1
		}
		mesh = primitives[o.Primitive](size)
	} else {
		m, img, err := models.LoadGLBWithTexture(resolve(dir, o.Model))
		if err != nil {
			return nil, fmt.Errorf("loading model: %w", err)
		}
		if o.Fit > 0 {
			m.Fit(o.Fit)
		}
		mesh = m
		if img != nil {
			tex = render.TextureFromImage(img)
		}
	}

	switch o.Texture {
	case "":
	case "checker":
		tex = render.NewCheckerTexture(checkerSize, checkerSize, checkerSize/checkerCells,
			render.ColorWhite, render.RGB(40, 40, 160))
	default:
		t, err := render.LoadTexture(resolve(dir, o.Texture))
		if err != nil {
			return nil, err
		}
		tex = t
	}
	if tex != nil && o.Wrap == "clamp" {
		tex.WrapU, tex.WrapV = render.WrapClamp, render.WrapClamp
	}

	name := o.Name
	if name == "" {
		name = mesh.Name
	}
	obj := render.NewObject(name, mesh, tex)
	if o.Color != nil {
		obj.Color = colorful.Color(*o.Color)
	} else if mat := mesh.GetMaterial(0); mat != nil {
		obj.Color = colorful.Color{R: mat.BaseColor[0], G: mat.BaseColor[1], B: mat.BaseColor[2]}
	}
	if o.Active != nil {
		obj.Active = *o.Active
	}
	return obj, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
