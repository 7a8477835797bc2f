package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// directed edge (x0, y0) -> (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// baryEdge is one barycentric weight: the edge function of the opposite
// edge scaled by Inv, the reciprocal of its value at the vertex.
type baryEdge struct {
	A, B, C float64
	Inv     float64
}

func (e baryEdge) at(x, y float64) float64 {
	return edgeFunc(e.A, e.B, e.C, x, y) * e.Inv
}

// barySetup builds the three weight functions of a screen triangle. ok is
// false when the triangle is degenerate and covers no pixel.
func barySetup(p0, p1, p2 math3d.Vec4) (w [3]baryEdge, ok bool) {
	pts := [3]math3d.Vec4{p0, p1, p2}
	for i := range 3 {
		a, b, opp := pts[(i+1)%3], pts[(i+2)%3], pts[i]
		A, B, C := edgeCoeffs(a.X, a.Y, b.X, b.Y)
		d := edgeFunc(A, B, C, opp.X, opp.Y)
		if d == 0 {
			return w, false
		}
		w[i] = baryEdge{A, B, C, 1 / d}
	}
	return w, true
}

// rasterize scan-converts t over its clamped bounding box, depth tests
// each covered pixel and shades the survivors.
func (r *Rasterizer) rasterize(t *Triangle, tex *Texture) {
	v0, v1, v2 := t.V[0].Pos, t.V[1].Pos, t.V[2].Pos

	minX := max(int(math.Floor(min3(v0.X, v1.X, v2.X))), 0)
	maxX := min(int(math.Ceil(max3(v0.X, v1.X, v2.X))), r.width)
	minY := max(int(math.Floor(min3(v0.Y, v1.Y, v2.Y))), 0)
	maxY := min(int(math.Ceil(max3(v0.Y, v1.Y, v2.Y))), r.height)
	if minX >= maxX || minY >= maxY {
		return
	}

	w, ok := barySetup(v0, v1, v2)
	if !ok {
		return
	}

	inv0, inv1, inv2 := 1/v0.W, 1/v1.W, 1/v2.W

	f := &r.frag
	f.Texture = tex
	f.Bilinear = r.cfg.Bilinear

	// Edge values are stepped unnormalized so pixels on a shared edge
	// land exactly on zero for both triangles.
	px, py := float64(minX), float64(minY)
	e0Row := edgeFunc(w[0].A, w[0].B, w[0].C, px, py)
	e1Row := edgeFunc(w[1].A, w[1].B, w[1].C, px, py)
	e2Row := edgeFunc(w[2].A, w[2].B, w[2].C, px, py)

	for y := minY; y < maxY; y++ {
		e0, e1, e2 := e0Row, e1Row, e2Row
		row := y * r.width

		for x := minX; x < maxX; x++ {
			alpha, beta, gamma := e0*w[0].Inv, e1*w[1].Inv, e2*w[2].Inv
			if alpha >= 0 && beta >= 0 && gamma >= 0 {
				a, b, c := alpha*inv0, beta*inv1, gamma*inv2
				ls := 1 / (a + b + c)
				z := (a*v0.Z + b*v1.Z + c*v2.Z) * ls

				idx := row + x
				if z >= r.depth.Depth[idx] {
					r.depth.Depth[idx] = z
					r.interpolate(t, f, a*ls, b*ls, c*ls)
					f.X, f.Y, f.Depth = x, y, z
					r.fb.Pixels[idx] = toRGBA(r.cfg.Shader(f, &r.env))
					r.Stats.FragmentsShaded++
				}
			}
			e0 += w[0].A
			e1 += w[1].A
			e2 += w[2].A
		}
		e0Row += w[0].B
		e1Row += w[1].B
		e2Row += w[2].B
	}
}

// interpolate fills the fragment attributes from perspective-corrected
// weights: each divided by its vertex w, then scaled by the interpolated w.
func (r *Rasterizer) interpolate(t *Triangle, f *Fragment, a, b, c float64) {
	t0, t1, t2 := &t.V[0], &t.V[1], &t.V[2]
	f.UV = t0.UV.Scale(a).Add(t1.UV.Scale(b)).Add(t2.UV.Scale(c))
	f.Normal = lerp3(t0.Normal, t1.Normal, t2.Normal, a, b, c)
	f.WorldPos = lerp3(t0.WorldPos, t1.WorldPos, t2.WorldPos, a, b, c)
	f.WorldNormal = lerp3(t0.WorldNormal, t1.WorldNormal, t2.WorldNormal, a, b, c)
	f.Color = addColor(addColor(scaleColor(t0.Color, a), scaleColor(t1.Color, b)), scaleColor(t2.Color, c))
}

func lerp3(p0, p1, p2 math3d.Vec3, a, b, c float64) math3d.Vec3 {
	return math3d.Vec3{
		X: p0.X*a + p1.X*b + p2.X*c,
		Y: p0.Y*a + p1.Y*b + p2.Y*c,
		Z: p0.Z*a + p1.Z*b + p2.Z*c,
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
