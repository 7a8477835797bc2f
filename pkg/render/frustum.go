package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners. Corner i takes Max on axis X when
// bit 0 of i is set, on Y for bit 1 and on Z for bit 2.
func (b AABB) Corners() [8]math3d.Vec3 {
	var c [8]math3d.Vec3
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}

// Transform returns an AABB that bounds the original AABB after transformation.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := b.Corners()
	p := m.MulVec3(corners[0])
	out := AABB{Min: p, Max: p}
	for _, c := range corners[1:] {
		p = m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// FrustumCull reports whether a local-space bounding box is entirely
// outside the view volume of mvp. The corners are mirrored into the
// right-handed frame and projected; the box is culled only when all eight
// lie outside the same clip plane (tested against |w|). The test is
// conservative: a box straddling a plane is always kept.
func FrustumCull(bounds AABB, mvp math3d.Mat4) bool {
	all := uint8(0x3f)
	for _, c := range bounds.Corners() {
		all &= mvp.MulVec4(math3d.V4FromV3(c.FlipZ(), 1)).Outcode()
		if all == 0 {
			return false
		}
	}
	return true
}

// clipReject reports whether all three clip positions lie outside one
// common clip plane.
func clipReject(a, b, c math3d.Vec4) bool {
	return a.Outcode()&b.Outcode()&c.Outcode() != 0
}
