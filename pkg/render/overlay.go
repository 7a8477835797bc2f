package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
)

// drawBounds outlines the bounding box of every active object on the
// color buffer. Lines are not depth tested.
func (r *Rasterizer) drawBounds(objects []*Object, c Color) {
	vp := r.proj.Mul(r.view)
	for _, o := range objects {
		if o == nil || !o.Active || o.Mesh == nil {
			continue
		}
		mvp := vp.Mul(o.Model.FlipZ())
		corners := o.Bounds().Corners()

		var clip [8]math3d.Vec4
		for i, p := range corners {
			clip[i] = mvp.MulVec4(math3d.V4FromV3(p.FlipZ(), 1))
		}
		// corners differing in exactly one bit share an edge
		for i := range 8 {
			for _, bit := range [3]int{1, 2, 4} {
				if i&bit == 0 {
					r.drawLine3D(clip[i], clip[i|bit], c)
				}
			}
		}
	}
}

// drawLine3D projects a clip-space segment and draws it. Segments with an
// endpoint behind the eye are skipped.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec4, c Color) {
	if a.W <= 0 || b.W <= 0 {
		return
	}
	pa := r.viewport(a.PerspectiveDivide(), a.W)
	pb := r.viewport(b.PerspectiveDivide(), b.W)
	r.fb.DrawLine(int(pa.X+0.5), int(pa.Y+0.5), int(pb.X+0.5), int(pb.Y+0.5), c)
}
