package models

import (
	"github.com/taigrr/softraster/pkg/math3d"
)

// cubeFaces lists each face normal with the direction that is "up" in the
// face's texture space.
var cubeFaces = [6][2]math3d.Vec3{
	{{X: 0, Y: 0, Z: -1}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}},
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
	{{X: 0, Y: -1, Z: 0}, {X: 0, Y: 0, Z: -1}},
}

// addFace appends a square of half-width h centered on center, facing
// normal, as two triangles with UVs spanning [0,1]^2.
func (m *Mesh) addFace(center, normal, up math3d.Vec3, h float64) {
	right := normal.Cross(up)
	base := len(m.Vertices)
	corners := [4]struct {
		r, u float64
		uv   math3d.Vec2
	}{
		{-1, -1, math3d.V2(0, 0)},
		{1, -1, math3d.V2(1, 0)},
		{1, 1, math3d.V2(1, 1)},
		{-1, 1, math3d.V2(0, 1)},
	}
	for _, c := range corners {
		p := center.Add(right.Scale(c.r * h)).Add(up.Scale(c.u * h))
		m.Vertices = append(m.Vertices, MeshVertex{Position: p, Normal: normal, UV: c.uv})
	}
	m.AddTriangle(base, base+1, base+2, -1)
	m.AddTriangle(base, base+2, base+3, -1)
}

// NewQuad returns a square of the given side length in the XY plane,
// facing -Z (toward a camera at the origin looking down +Z).
func NewQuad(size float64) *Mesh {
	m := NewMesh("quad")
	f := cubeFaces[0]
	m.addFace(math3d.Vec3{}, f[0], f[1], size/2)
	m.CalculateBounds()
	return m
}

// NewCube returns an axis-aligned cube of the given side length centered
// on the origin, with flat per-face normals and a full texture on every
// face.
func NewCube(size float64) *Mesh {
	m := NewMesh("cube")
	h := size / 2
	for _, f := range cubeFaces {
		m.addFace(f[0].Scale(h), f[0], f[1], h)
	}
	m.CalculateBounds()
	return m
}
