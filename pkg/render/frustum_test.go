package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softraster/pkg/math3d"
)

func unitBox() AABB {
	return NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
}

// cullMVP composes the matrix the rasterizer hands to FrustumCull.
func cullMVP(cam Camera, model math3d.Mat4) math3d.Mat4 {
	view, proj := BuildViewProjection(cam, 1)
	return proj.Mul(view).Mul(model.FlipZ())
}

func TestAABBBasics(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	center := box.Center()
	if center.X != 0 || center.Y != 0 || center.Z != 0 {
		t.Errorf("center = %v, want (0, 0, 0)", center)
	}

	size := box.Size()
	if size.X != 2 || size.Y != 4 || size.Z != 6 {
		t.Errorf("size = %v, want (2, 4, 6)", size)
	}
}

func TestAABBCorners(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(1, 2, 3))
	corners := box.Corners()

	assert.Equal(t, box.Min, corners[0])
	assert.Equal(t, box.Max, corners[7])
	assert.Equal(t, math3d.V3(1, 0, 0), corners[1])
	assert.Equal(t, math3d.V3(0, 2, 0), corners[2])
	assert.Equal(t, math3d.V3(0, 0, 3), corners[4])

	seen := map[math3d.Vec3]bool{}
	for _, c := range corners {
		seen[c] = true
	}
	assert.Len(t, seen, 8, "corners must be distinct")
}

func TestAABBTransform(t *testing.T) {
	box := unitBox()

	t.Run("translation", func(t *testing.T) {
		transformed := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))

		if transformed.Min.X != 9 || transformed.Min.Y != 19 || transformed.Min.Z != 29 {
			t.Errorf("translated min = %v, want (9, 19, 29)", transformed.Min)
		}
		if transformed.Max.X != 11 || transformed.Max.Y != 21 || transformed.Max.Z != 31 {
			t.Errorf("translated max = %v, want (11, 21, 31)", transformed.Max)
		}
	})

	t.Run("scale", func(t *testing.T) {
		transformed := box.Transform(math3d.Scale(math3d.V3(2, 2, 2)))

		if transformed.Min.X != -2 || transformed.Min.Y != -2 || transformed.Min.Z != -2 {
			t.Errorf("scaled min = %v, want (-2, -2, -2)", transformed.Min)
		}
		if transformed.Max.X != 2 || transformed.Max.Y != 2 || transformed.Max.Z != 2 {
			t.Errorf("scaled max = %v, want (2, 2, 2)", transformed.Max)
		}
	})

	t.Run("rotation grows box", func(t *testing.T) {
		transformed := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		assert.InDelta(t, -want, transformed.Min.X, 1e-9)
		assert.InDelta(t, want, transformed.Max.X, 1e-9)
		assert.InDelta(t, -1, transformed.Min.Y, 1e-9)
		assert.InDelta(t, 1, transformed.Max.Y, 1e-9)
	})
}

func TestFrustumCull(t *testing.T) {
	cam := NewCamera()

	tests := []struct {
		name   string
		pos    math3d.Vec3
		culled bool
	}{
		{"in front", math3d.V3(0, 0, 5), false},
		{"far in front", math3d.V3(0, 0, 500), false},
		{"straddling near plane", math3d.V3(0, 0, 0.5), false},
		{"straddling left edge", math3d.V3(-3, 0, 5), false},
		{"behind", math3d.V3(0, 0, -5), true},
		{"far left", math3d.V3(-50, 0, 5), true},
		{"far right", math3d.V3(50, 0, 5), true},
		{"far above", math3d.V3(0, 50, 5), true},
		{"far below", math3d.V3(0, -50, 5), true},
		{"beyond far plane", math3d.V3(0, 0, 2000), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mvp := cullMVP(cam, math3d.Translate(tc.pos))
			assert.Equal(t, tc.culled, FrustumCull(unitBox(), mvp))
		})
	}
}

func TestFrustumCullFollowsCamera(t *testing.T) {
	cam := NewCamera()
	cam.Position = math3d.V3(0, 0, -20)
	model := math3d.Translate(math3d.V3(0, 0, -40))

	assert.True(t, FrustumCull(unitBox(), cullMVP(cam, model)), "box behind camera")

	cam.Yaw = math.Pi
	assert.False(t, FrustumCull(unitBox(), cullMVP(cam, model)), "camera turned around")
}

func TestBuildViewProjectionDepthRange(t *testing.T) {
	cam := NewCamera()
	view, proj := BuildViewProjection(cam, 1)
	vp := proj.Mul(view)

	ndcZ := func(z float64) float64 {
		p := math3d.V3(0, 0, z).FlipZ()
		return vp.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide().Z
	}

	assert.InDelta(t, 1, ndcZ(cam.Near), 1e-9, "near plane")
	assert.InDelta(t, -1, ndcZ(cam.Far), 1e-6, "far plane")
	assert.Greater(t, ndcZ(2), ndcZ(10), "nearer points have larger depth")
}

func TestBuildViewProjectionOrthographic(t *testing.T) {
	cam := NewCamera()
	cam.Orthographic = true
	cam.OrthoSize = 5
	view, proj := BuildViewProjection(cam, 2)
	vp := proj.Mul(view)

	p := vp.MulVec4(math3d.V4FromV3(math3d.V3(10, 5, 10).FlipZ(), 1))
	require.InDelta(t, 1, p.W, 1e-12)
	assert.InDelta(t, 1, p.X, 1e-9, "right edge uses aspect")
	assert.InDelta(t, 1, p.Y, 1e-9, "top edge is OrthoSize")
}

func TestBuildViewProjectionCameraAspect(t *testing.T) {
	cam := NewCamera()
	cam.AspectRatio = 2
	_, withOwn := BuildViewProjection(cam, 1)

	cam.AspectRatio = 0
	_, fromBuffer := BuildViewProjection(cam, 2)

	assert.Equal(t, fromBuffer, withOwn)
}

func TestCameraBasis(t *testing.T) {
	cam := NewCamera()
	assertVec := func(t *testing.T, want, got math3d.Vec3) {
		t.Helper()
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
		assert.InDelta(t, want.Z, got.Z, 1e-9)
	}

	assertVec(t, math3d.V3(0, 0, 1), cam.Forward())
	assertVec(t, math3d.V3(0, 1, 0), cam.Up())
	assertVec(t, math3d.V3(1, 0, 0), cam.Right())

	cam.Yaw = math.Pi / 2
	assertVec(t, math3d.V3(1, 0, 0), cam.Forward())

	cam.Yaw = 0
	cam.Pitch = math.Pi / 2
	assertVec(t, math3d.V3(0, -1, 0), cam.Forward())
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera()
	cam.Position = math3d.V3(1, 2, 3)
	cam.Roll = 0.3

	target := math3d.V3(4, -2, 15)
	looked := cam.LookAt(target)
	want := target.Sub(cam.Position).Normalize()

	fwd := looked.Forward()
	assert.InDelta(t, want.X, fwd.X, 1e-9)
	assert.InDelta(t, want.Y, fwd.Y, 1e-9)
	assert.InDelta(t, want.Z, fwd.Z, 1e-9)
	assert.Zero(t, looked.Roll)
	assert.Equal(t, 0.3, cam.Roll, "receiver is unchanged")

	same := cam.LookAt(cam.Position)
	assert.Equal(t, cam, same, "looking at own position is a no-op")
}
