package render

import (
	"fmt"

	"github.com/taigrr/softraster/pkg/math3d"
)

// Config selects the shading and presentation of a Rasterizer.
type Config struct {
	Shader                 FragmentShader // nil uses BlinnPhong
	Bilinear               bool           // bilinear texture filtering
	ClearColor             Color
	DisableBackfaceCulling bool // render both sides; zero-area triangles are still dropped
	ShowBounds             bool // outline object bounding boxes before presenting
	BoundsColor            Color
	Presenter              Presenter
}

// DefaultConfig returns Blinn-Phong shading with nearest sampling on a
// white background and no presenter.
func DefaultConfig() Config {
	return Config{
		Shader:      BlinnPhong,
		ClearColor:  ColorWhite,
		BoundsColor: ColorGreen,
	}
}

// Stats counts pipeline work for the last frame.
type Stats struct {
	ObjectsTested      int // active objects considered
	ObjectsCulled      int // rejected by the bounding box test
	ObjectsSkipped     int // rejected for malformed mesh data
	Vertices           int // vertices shaded
	Triangles          int // triangles assembled
	TrianglesClipped   int // trivially rejected or crossing w <= 0
	TrianglesBackFace  int // back-facing or zero-area
	TrianglesRasterize int // handed to scan conversion
	FragmentsShaded    int // pixels that passed the depth test
}

// Rasterizer renders objects into its owned color and depth buffers.
// It is not safe for concurrent use.
type Rasterizer struct {
	width, height int
	fb            *Framebuffer
	depth         *DepthBuffer
	cfg           Config

	view, proj math3d.Mat4
	env        Environment
	white      *Texture

	// scratch reused for every triangle and fragment
	tri  Triangle
	frag Fragment

	Stats Stats
}

// NewRasterizer allocates color and depth buffers of width x height.
func NewRasterizer(width, height int, cfg Config) *Rasterizer {
	if cfg.Shader == nil {
		cfg.Shader = BlinnPhong
	}
	r := &Rasterizer{
		width:  width,
		height: height,
		fb:     NewFramebuffer(width, height),
		depth:  NewDepthBuffer(width, height),
		cfg:    cfg,
		white:  NewSolidTexture(ColorWhite),
	}
	r.clear()
	Logger().Debug("rasterizer: buffers allocated", "width", width, "height", height)
	return r
}

// Width returns the buffer width in pixels.
func (r *Rasterizer) Width() int { return r.width }

// Height returns the buffer height in pixels.
func (r *Rasterizer) Height() int { return r.height }

// ColorBuffer returns the color buffer. It is owned by the rasterizer and
// overwritten by the next Render call.
func (r *Rasterizer) ColorBuffer() *Framebuffer { return r.fb }

// DepthBuffer returns the depth buffer of the last frame.
func (r *Rasterizer) DepthBuffer() *DepthBuffer { return r.depth }

// ViewProjection returns the view and projection matrices of the last frame.
func (r *Rasterizer) ViewProjection() (view, proj math3d.Mat4) { return r.view, r.proj }

// SetShader switches the fragment shader for subsequent frames.
func (r *Rasterizer) SetShader(s FragmentShader) {
	if s == nil {
		s = BlinnPhong
	}
	r.cfg.Shader = s
}

// SetBilinear toggles bilinear texture filtering for subsequent frames.
func (r *Rasterizer) SetBilinear(on bool) { r.cfg.Bilinear = on }

// SetShowBounds toggles the bounding box overlay.
func (r *Rasterizer) SetShowBounds(on bool) { r.cfg.ShowBounds = on }

// SetBackfaceCulling enables or disables back-face culling.
func (r *Rasterizer) SetBackfaceCulling(on bool) { r.cfg.DisableBackfaceCulling = !on }

// Config returns the current configuration.
func (r *Rasterizer) Config() Config { return r.cfg }

// Render draws one frame: clear, set up camera and light, draw every
// active object in order, then hand the color buffer to the presenter.
// Only the presenter can fail.
func (r *Rasterizer) Render(cam Camera, light Light, objects []*Object) error {
	r.clear()
	r.setup(cam, light)
	for _, o := range objects {
		r.drawObject(o)
	}
	if r.cfg.ShowBounds {
		r.drawBounds(objects, r.cfg.BoundsColor)
	}

	Logger().Debug("rasterizer: frame done",
		"objects", r.Stats.ObjectsTested,
		"culled", r.Stats.ObjectsCulled,
		"triangles", r.Stats.Triangles,
		"rasterized", r.Stats.TrianglesRasterize,
		"fragments", r.Stats.FragmentsShaded)

	if r.cfg.Presenter == nil {
		return nil
	}
	if err := r.cfg.Presenter.Present(r.fb); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

func (r *Rasterizer) clear() {
	r.fb.Clear(r.cfg.ClearColor)
	r.depth.Clear()
	r.Stats = Stats{}
}

func (r *Rasterizer) setup(cam Camera, light Light) {
	aspect := 1.0
	if r.height > 0 {
		aspect = float64(r.width) / float64(r.height)
	}
	r.view, r.proj = BuildViewProjection(cam, aspect)
	r.env = Environment{
		CameraPos:    cam.Position.FlipZ(),
		ToLight:      light.toLight(),
		LightColor:   light.radiance(),
		AmbientColor: AmbientColor,
	}
}

func (r *Rasterizer) drawObject(o *Object) {
	if o == nil || !o.Active || o.Mesh == nil {
		return
	}
	r.Stats.ObjectsTested++

	if err := ValidateMesh(o.Mesh); err != nil {
		r.Stats.ObjectsSkipped++
		Logger().Warn("rasterizer: skipping object", "object", o.Name, "err", err)
		return
	}

	model := o.Model.FlipZ()
	mvp := r.proj.Mul(r.view).Mul(model)
	if FrustumCull(o.Bounds(), mvp) {
		r.Stats.ObjectsCulled++
		return
	}

	buf := o.vertexBuffer()
	ShadeVertices(o.Mesh, mvp, model, buf)

	tex := o.Texture
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		tex = r.white
	}

	idx := o.Mesh.Indices()
	r.Stats.Vertices += len(buf)
	r.Stats.Triangles += len(idx) / 3

	for i := 0; i+2 < len(idx); i += 3 {
		tri := [3]int{idx[i+1], idx[i], idx[i+2]}
		if r.assemble(o, buf, tri) {
			r.rasterize(&r.tri, tex)
			r.Stats.TrianglesRasterize++
		}
	}
}

// assemble runs clipping, back-face culling and the viewport transform
// for one triangle, filling r.tri. It reports whether the triangle
// survived.
//
// Beyond the common-plane trivial reject, a triangle with any vertex at or
// behind the eye (w <= 0) is dropped whole, since there is no near-plane
// clipping to split it. Large triangles passing under the camera vanish
// rather than rasterize with flipped coordinates.
func (r *Rasterizer) assemble(o *Object, buf VertexBuffer, tri [3]int) bool {
	c0, c1, c2 := buf[tri[0]].Clip, buf[tri[1]].Clip, buf[tri[2]].Clip
	if clipReject(c0, c1, c2) || c0.W <= 0 || c1.W <= 0 || c2.W <= 0 {
		r.Stats.TrianglesClipped++
		return false
	}

	n0, n1, n2 := c0.PerspectiveDivide(), c1.PerspectiveDivide(), c2.PerspectiveDivide()
	nz := n1.Sub(n0).Cross(n2.Sub(n0)).Z
	if nz == 0 || (-nz < 0 && !r.cfg.DisableBackfaceCulling) {
		r.Stats.TrianglesBackFace++
		return false
	}

	ndc := [3]math3d.Vec3{n0, n1, n2}
	clip := [3]math3d.Vec4{c0, c1, c2}
	for j, vi := range tri {
		_, _, uv := o.Mesh.GetVertex(vi)
		out := &buf[vi]
		r.tri.V[j] = TVertex{
			Pos:         r.viewport(ndc[j], clip[j].W),
			Normal:      out.ObjectNormal,
			UV:          uv,
			Color:       o.Color,
			WorldPos:    out.World,
			WorldNormal: out.WorldNormal,
		}
	}
	return true
}

// viewport maps NDC to pixel coordinates (row 0 at the top) and depth
// from [-1, 1] to [0, 1].
func (r *Rasterizer) viewport(ndc math3d.Vec3, w float64) math3d.Vec4 {
	return math3d.Vec4{
		X: 0.5 * float64(r.width-1) * (ndc.X + 1),
		Y: 0.5 * float64(r.height-1) * (1 - ndc.Y),
		Z: ndc.Z*0.5 + 0.5,
		W: w,
	}
}
