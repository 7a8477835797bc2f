package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softraster/pkg/math3d"
)

// TVertex is one corner of an assembled triangle.
type TVertex struct {
	// Pos is the screen position: pixel x and y, depth in [0, 1] (1 is
	// nearest) and the clip-space w kept for perspective correction.
	Pos         math3d.Vec4
	Normal      math3d.Vec3
	UV          math3d.Vec2
	Color       colorful.Color
	WorldPos    math3d.Vec3
	WorldNormal math3d.Vec3
}

// Triangle is a transient primitive built during assembly and consumed by
// scan conversion.
type Triangle struct {
	V [3]TVertex
}
