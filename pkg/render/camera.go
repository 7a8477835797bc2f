package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// Camera describes the viewpoint for one frame. It is passed by value, so
// the rasterizer always works from an immutable snapshot.
//
// Positions and angles are in the host's left-handed world (X right, Y up,
// Z forward). Rotation is applied roll first, then pitch, then yaw.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // around X, positive looks down
	Yaw   float64 // around Y, positive turns right
	Roll  float64 // around Z

	Orthographic bool
	OrthoSize    float64 // half of the visible height in orthographic mode
	FOV          float64 // vertical field of view in radians
	AspectRatio  float64 // width / height, 0 uses the buffer's aspect
	Near         float64
	Far          float64
}

// NewCamera returns a perspective camera at the origin looking down +Z.
func NewCamera() Camera {
	return Camera{
		FOV:  math.Pi / 3,
		Near: 0.3,
		Far:  1000,
	}
}

func (c Camera) rotation() math3d.Mat4 {
	return math3d.RotateY(c.Yaw).Mul(math3d.RotateX(c.Pitch)).Mul(math3d.RotateZ(c.Roll))
}

// Forward returns the viewing direction.
func (c Camera) Forward() math3d.Vec3 {
	return c.rotation().MulVec3Dir(math3d.V3(0, 0, 1))
}

// Up returns the camera's up direction.
func (c Camera) Up() math3d.Vec3 {
	return c.rotation().MulVec3Dir(math3d.V3(0, 1, 0))
}

// Right returns the camera's right direction.
func (c Camera) Right() math3d.Vec3 {
	return c.rotation().MulVec3Dir(math3d.V3(1, 0, 0))
}

// LookAt returns a copy of the camera turned to face target, with no roll.
func (c Camera) LookAt(target math3d.Vec3) Camera {
	dir := target.Sub(c.Position).Normalize()
	if dir == (math3d.Vec3{}) {
		return c
	}
	c.Pitch = math.Asin(-dir.Y)
	c.Yaw = math.Atan2(dir.X, dir.Z)
	c.Roll = 0
	return c
}

// BuildViewProjection builds the right-handed view matrix and the
// depth-inverted projection matrix for cam. aspect is used when the camera
// does not set its own.
//
// The camera basis is mirrored through the XY plane once here, so the
// returned matrices expect vertices with their z already negated. The
// projection maps the near plane to NDC z = +1 and the far plane to -1.
func BuildViewProjection(cam Camera, aspect float64) (view, proj math3d.Mat4) {
	if cam.AspectRatio > 0 {
		aspect = cam.AspectRatio
	}

	eye := cam.Position.FlipZ()
	forward := cam.Forward().FlipZ()
	up := cam.Up().FlipZ()
	view = math3d.LookAt(eye, eye.Add(forward), up)

	if cam.Orthographic {
		h := cam.OrthoSize
		w := h * aspect
		proj = math3d.Orthographic(-w, w, -h, h, cam.Near, cam.Far)
	} else {
		proj = math3d.Perspective(cam.FOV, aspect, cam.Near, cam.Far)
	}
	return view, proj.NegateRow(2)
}
