package render

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/softraster/pkg/math3d"
)

// mockMesh implements MeshDescriptor for testing.
type mockMesh struct {
	pos     []math3d.Vec3
	normals []math3d.Vec3
	uvs     []math3d.Vec2
	indices []int
}

func (m *mockMesh) VertexCount() int { return len(m.pos) }
func (m *mockMesh) Indices() []int   { return m.indices }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	return m.pos[i], m.normals[i], m.uvs[i]
}

func (m *mockMesh) GetBounds() (min, max math3d.Vec3) {
	min, max = m.pos[0], m.pos[0]
	for _, p := range m.pos[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// quadMesh is a square of side 2*half in the plane z, facing a viewer on
// its -z side.
func quadMesh(half, z float64) *mockMesh {
	n := math3d.V3(0, 0, -1)
	return &mockMesh{
		pos: []math3d.Vec3{
			{X: -half, Y: -half, Z: z},
			{X: half, Y: -half, Z: z},
			{X: half, Y: half, Z: z},
			{X: -half, Y: half, Z: z},
		},
		normals: []math3d.Vec3{n, n, n, n},
		uvs:     []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		indices: []int{0, 1, 2, 0, 2, 3},
	}
}

func orthoCamera(size float64) Camera {
	return Camera{Orthographic: true, OrthoSize: size, Near: 0.3, Far: 100}
}

// vertexColor returns the interpolated vertex color.
func vertexColor(f *Fragment, _ *Environment) colorful.Color {
	return f.Color
}

func newTestRasterizer(width, height int, shader FragmentShader) *Rasterizer {
	cfg := DefaultConfig()
	cfg.Shader = shader
	return NewRasterizer(width, height, cfg)
}

func coloredQuad(half, z float64, c colorful.Color) *Object {
	o := NewObject("quad", quadMesh(half, z), nil)
	o.Color = c
	return o
}

func countNot(fb *Framebuffer, c Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != c {
			n++
		}
	}
	return n
}

func TestBarySetup(t *testing.T) {
	p0 := math3d.V4(0, 0, 0, 1)
	p1 := math3d.V4(4, 0, 0, 1)
	p2 := math3d.V4(0, 4, 0, 1)
	w, ok := barySetup(p0, p1, p2)
	if !ok {
		t.Fatal("non-degenerate triangle reported degenerate")
	}

	tests := []struct {
		name   string
		px, py float64
		want   [3]float64
	}{
		{"vertex 0", 0, 0, [3]float64{1, 0, 0}},
		{"vertex 1", 4, 0, [3]float64{0, 1, 0}},
		{"vertex 2", 0, 4, [3]float64{0, 0, 1}},
		{"centroid", 4.0 / 3, 4.0 / 3, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for i := range 3 {
				if got := w[i].at(tc.px, tc.py); math.Abs(got-tc.want[i]) > 1e-9 {
					t.Errorf("weight %d at (%v, %v) = %v, want %v", i, tc.px, tc.py, got, tc.want[i])
				}
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		if w[0].at(-1, -1) >= 0 && w[1].at(-1, -1) >= 0 && w[2].at(-1, -1) >= 0 {
			t.Error("point outside triangle should have a negative weight")
		}
	})

	t.Run("weights sum to one", func(t *testing.T) {
		for y := 0.0; y <= 4; y += 0.5 {
			for x := 0.0; x <= 4-y; x += 0.5 {
				sum := w[0].at(x, y) + w[1].at(x, y) + w[2].at(x, y)
				if math.Abs(sum-1) > 1e-9 {
					t.Errorf("sum at (%v, %v) = %v", x, y, sum)
				}
			}
		}
	})

	t.Run("winding independent", func(t *testing.T) {
		r, ok := barySetup(p0, p2, p1)
		require.True(t, ok)
		assert.InDelta(t, 1.0/3, r[0].at(4.0/3, 4.0/3), 1e-9)
		assert.InDelta(t, 1.0, r[1].at(0, 4), 1e-9)
	})

	t.Run("degenerate", func(t *testing.T) {
		_, ok := barySetup(p0, p1, math3d.V4(8, 0, 0, 1))
		assert.False(t, ok)
	})
}

func TestMin3Max3(t *testing.T) {
	if min3(3, 1, 2) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 3, 2) != 3 {
		t.Error("max3 failed")
	}
}

func TestRenderEmptyScene(t *testing.T) {
	r := newTestRasterizer(16, 8, BlinnPhong)
	require.NoError(t, r.Render(NewCamera(), NewLight(math3d.V3(0, 0, 1)), nil))

	for i, p := range r.ColorBuffer().Pixels {
		require.Equal(t, ColorWhite, p, "pixel %d", i)
	}
	for i, d := range r.DepthBuffer().Depth {
		require.Zero(t, d, "depth %d", i)
	}
	assert.Equal(t, Stats{}, r.Stats)
}

func TestRenderQuadExtent(t *testing.T) {
	const size = 64
	r := newTestRasterizer(size, size, BlinnPhong)

	quad := NewObject("quad", quadMesh(2.5, 5), NewSolidTexture(ColorRed))
	light := NewLight(math3d.V3(0, 0, 1))
	require.NoError(t, r.Render(orthoCamera(5), light, []*Object{quad}))

	// +-2.5 of a half height of 5 is NDC +-0.5, i.e. pixels 15.75..47.25.
	fb := r.ColorBuffer()
	for y := range size {
		for x := range size {
			c := fb.GetPixel(x, y)
			inside := x >= 17 && x <= 46 && y >= 17 && y <= 46
			outside := x < 15 || x > 48 || y < 15 || y > 48
			switch {
			case inside:
				assert.NotEqual(t, ColorWhite, c, "pixel (%d, %d) should be covered", x, y)
				assert.Equal(t, uint8(255), c.R, "pixel (%d, %d) should be lit red", x, y)
			case outside:
				assert.Equal(t, ColorWhite, c, "pixel (%d, %d) should be background", x, y)
			}
		}
	}

	assert.Equal(t, 2, r.Stats.TrianglesRasterize)
	assert.Zero(t, r.Stats.TrianglesBackFace)
	assert.Equal(t, 4, r.Stats.Vertices)
}

func TestRenderCullsOutsideObjects(t *testing.T) {
	tests := []struct {
		name string
		obj  *Object
	}{
		{"left of frustum", coloredQuad(1, 5, White)},
		{"behind camera", coloredQuad(1, -5, White)},
		{"beyond far plane", coloredQuad(1, 500, White)},
	}
	tests[0].obj.Model = math3d.Translate(math3d.V3(-100, 0, 0))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(32, 32, Unlit)
			require.NoError(t, r.Render(orthoCamera(5), NewLight(math3d.V3(0, 0, 1)), []*Object{tt.obj}))
			assert.Equal(t, 1, r.Stats.ObjectsCulled)
			assert.Zero(t, r.Stats.FragmentsShaded)
			assert.Zero(t, countNot(r.ColorBuffer(), ColorWhite))
		})
	}
}

func TestTrivialRejectPerTriangle(t *testing.T) {
	// one triangle in view, one far to the right: the object straddles
	// the frustum so only the triangle test can drop the second one
	m := quadMesh(1, 5)
	m.pos = append(m.pos,
		math3d.V3(50, 0, 5), math3d.V3(52, 0, 5), math3d.V3(52, 2, 5))
	m.normals = append(m.normals, m.normals[:3]...)
	m.uvs = append(m.uvs, m.uvs[:3]...)
	m.indices = []int{0, 1, 2, 4, 5, 6}

	r := newTestRasterizer(32, 32, Unlit)
	require.NoError(t, r.Render(orthoCamera(5), NewLight(math3d.V3(0, 0, 1)), []*Object{NewObject("m", m, nil)}))
	assert.Zero(t, r.Stats.ObjectsCulled)
	assert.Equal(t, 1, r.Stats.TrianglesClipped)
	assert.Equal(t, 1, r.Stats.TrianglesRasterize)
	assert.Positive(t, r.Stats.FragmentsShaded)
}

func TestClipReject(t *testing.T) {
	in := math3d.V4(0, 0, 0, 1)
	tests := []struct {
		name    string
		a, b, c math3d.Vec4
		want    bool
	}{
		{"inside", in, in, in, false},
		{"all left", math3d.V4(-2, 0, 0, 1), math3d.V4(-3, 1, 0, 1), math3d.V4(-5, -1, 0, 1), true},
		{"straddling", math3d.V4(-2, 0, 0, 1), math3d.V4(2, 0, 0, 1), in, false},
		{"different planes", math3d.V4(-2, 0, 0, 1), math3d.V4(0, 2, 0, 1), math3d.V4(2, 0, 0, 1), false},
		{"all beyond near", math3d.V4(0, 0, 2, 1), math3d.V4(0, 0, 3, 1), math3d.V4(0, 0, 4, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clipReject(tt.a, tt.b, tt.c))
		})
	}
}

func TestAssembleDropsVertexBehindEye(t *testing.T) {
	r := newTestRasterizer(16, 16, Unlit)
	o := NewObject("m", quadMesh(1, 5), nil)
	tri := [3]int{0, 1, 2}

	// one vertex behind the eye, the others in view: no common plane
	buf := VertexBuffer{
		{Clip: math3d.V4(0, 0, 0, 1)},
		{Clip: math3d.V4(0, 0.5, 0, 1)},
		{Clip: math3d.V4(0.5, 0, 0, -0.1)},
	}
	require.False(t, clipReject(buf[0].Clip, buf[1].Clip, buf[2].Clip))
	assert.False(t, r.assemble(o, buf, tri))
	assert.Equal(t, 1, r.Stats.TrianglesClipped)

	buf[2].Clip.W = 1
	assert.True(t, r.assemble(o, buf, tri))
	assert.Equal(t, 1, r.Stats.TrianglesClipped)
}

func TestDepthTest(t *testing.T) {
	red := colorful.Color{R: 1}
	green := colorful.Color{G: 1}
	light := NewLight(math3d.V3(0, 0, 1))

	tests := []struct {
		name  string
		first *Object
		last  *Object
		want  Color
	}{
		{"nearer overwrites", coloredQuad(2, 6, red), coloredQuad(2, 4, green), ColorGreen},
		{"farther is hidden", coloredQuad(2, 4, red), coloredQuad(2, 6, green), ColorRed},
		{"equal depth overwrites", coloredQuad(2, 5, red), coloredQuad(2, 5, green), ColorGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(32, 32, vertexColor)
			require.NoError(t, r.Render(orthoCamera(5), light, []*Object{tt.first, tt.last}))
			assert.Equal(t, tt.want, r.ColorBuffer().GetPixel(16, 16))
		})
	}
}

func TestDepthIsNearerForCloserSurfaces(t *testing.T) {
	r := newTestRasterizer(32, 32, Unlit)
	cam := NewCamera()
	light := NewLight(math3d.V3(0, 0, 1))

	require.NoError(t, r.Render(cam, light, []*Object{coloredQuad(1, 5, White)}))
	far := r.DepthBuffer().At(16, 16)
	require.NoError(t, r.Render(cam, light, []*Object{coloredQuad(1, 3, White)}))
	near := r.DepthBuffer().At(16, 16)

	assert.Greater(t, far, 0.0)
	assert.Greater(t, near, far)
	assert.LessOrEqual(t, near, 1.0)
}

func TestPerspectiveCorrectEqualW(t *testing.T) {
	var frags []Fragment
	record := func(f *Fragment, _ *Environment) colorful.Color {
		frags = append(frags, *f)
		return Black
	}
	r := newTestRasterizer(32, 32, record)

	uvs := [3]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.25, Y: 1}}
	pos := [3]math3d.Vec4{
		math3d.V4(2, 2, 0.5, 3),
		math3d.V4(28, 5, 0.25, 3),
		math3d.V4(10, 29, 0.75, 3),
	}
	for i := range 3 {
		r.tri.V[i] = TVertex{Pos: pos[i], UV: uvs[i]}
	}
	r.rasterize(&r.tri, r.white)
	require.NotEmpty(t, frags)

	w, ok := barySetup(pos[0], pos[1], pos[2])
	require.True(t, ok)
	for _, f := range frags {
		x, y := float64(f.X), float64(f.Y)
		a, b, c := w[0].at(x, y), w[1].at(x, y), w[2].at(x, y)
		want := uvs[0].Scale(a).Add(uvs[1].Scale(b)).Add(uvs[2].Scale(c))
		assert.InDelta(t, want.X, f.UV.X, 1e-9)
		assert.InDelta(t, want.Y, f.UV.Y, 1e-9)
		assert.InDelta(t, a*0.5+b*0.25+c*0.75, f.Depth, 1e-9)
	}
}

func TestPerspectiveCorrectUnequalW(t *testing.T) {
	var frags []Fragment
	record := func(f *Fragment, _ *Environment) colorful.Color {
		frags = append(frags, *f)
		return Black
	}
	r := newTestRasterizer(32, 32, record)

	pos := [3]math3d.Vec4{
		math3d.V4(0, 0, 0.5, 1),
		math3d.V4(30, 0, 0.5, 4),
		math3d.V4(0, 30, 0.5, 1),
	}
	for i := range 3 {
		r.tri.V[i] = TVertex{Pos: pos[i], UV: math3d.V2(float64(i), 0)}
	}
	r.tri.V[2].UV = math3d.V2(0, 0)
	r.rasterize(&r.tri, r.white)

	w, _ := barySetup(pos[0], pos[1], pos[2])
	for _, f := range frags {
		x, y := float64(f.X), float64(f.Y)
		a, b, c := w[0].at(x, y), w[1].at(x, y)/4, w[2].at(x, y)
		assert.InDelta(t, b/(a+b+c), f.UV.X, 1e-9)
	}
}

func TestBackfaceCullingWinding(t *testing.T) {
	light := NewLight(math3d.V3(0, 0, 1))
	front := quadMesh(2, 5)
	front.indices = []int{0, 1, 2}
	back := quadMesh(2, 5)
	back.indices = []int{0, 2, 1}

	r := newTestRasterizer(32, 32, Unlit)
	require.NoError(t, r.Render(orthoCamera(5), light, []*Object{NewObject("front", front, nil)}))
	assert.Positive(t, r.Stats.FragmentsShaded)
	assert.Zero(t, r.Stats.TrianglesBackFace)

	require.NoError(t, r.Render(orthoCamera(5), light, []*Object{NewObject("back", back, nil)}))
	assert.Zero(t, r.Stats.FragmentsShaded)
	assert.Equal(t, 1, r.Stats.TrianglesBackFace)

	t.Run("disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Shader = Unlit
		cfg.DisableBackfaceCulling = true
		r := NewRasterizer(32, 32, cfg)
		require.NoError(t, r.Render(orthoCamera(5), light, []*Object{NewObject("back", back, nil)}))
		assert.Positive(t, r.Stats.FragmentsShaded)
	})

	t.Run("degenerate always culled", func(t *testing.T) {
		flat := quadMesh(2, 5)
		flat.pos[2] = math3d.V3(6, -2, 5)
		flat.indices = []int{0, 1, 2}
		cfg := DefaultConfig()
		cfg.DisableBackfaceCulling = true
		r := NewRasterizer(32, 32, cfg)
		require.NoError(t, r.Render(orthoCamera(5), light, []*Object{NewObject("flat", flat, nil)}))
		assert.Equal(t, 1, r.Stats.TrianglesBackFace)
		assert.Zero(t, r.Stats.FragmentsShaded)
	})
}

func TestMalformedObjectIsSkipped(t *testing.T) {
	bad := quadMesh(2, 5)
	bad.indices = []int{0, 1, 2, 3}
	outOfRange := quadMesh(2, 5)
	outOfRange.indices = []int{0, 1, 9}

	assert.ErrorIs(t, ValidateMesh(bad), ErrIndexCount)
	assert.ErrorIs(t, ValidateMesh(outOfRange), ErrIndexRange)
	assert.NoError(t, ValidateMesh(quadMesh(1, 1)))

	r := newTestRasterizer(32, 32, Unlit)
	objects := []*Object{
		NewObject("bad", bad, nil),
		NewObject("range", outOfRange, nil),
		NewObject("good", quadMesh(2, 5), nil),
	}
	require.NoError(t, r.Render(orthoCamera(5), NewLight(math3d.V3(0, 0, 1)), objects))
	assert.Equal(t, 2, r.Stats.ObjectsSkipped)
	assert.Equal(t, ColorMagenta, r.ColorBuffer().GetPixel(16, 16))
}

func TestInactiveObjectIsIgnored(t *testing.T) {
	o := NewObject("quad", quadMesh(2, 5), nil)
	o.Active = false

	r := newTestRasterizer(32, 32, Unlit)
	require.NoError(t, r.Render(orthoCamera(5), NewLight(math3d.V3(0, 0, 1)), []*Object{o, nil}))
	assert.Zero(t, r.Stats.ObjectsTested)
	assert.Zero(t, countNot(r.ColorBuffer(), ColorWhite))
}

func TestPerspectiveCameraRendersCenteredQuad(t *testing.T) {
	r := newTestRasterizer(40, 30, Unlit)
	cam := NewCamera()
	cam.Position = math3d.V3(0, 0, -10)
	cam = cam.LookAt(math3d.V3(0, 0, 0))

	require.NoError(t, r.Render(cam, NewLight(math3d.V3(0, 0, 1)), []*Object{NewObject("q", quadMesh(1, 0), nil)}))
	fb := r.ColorBuffer()
	assert.Equal(t, ColorMagenta, fb.GetPixel(20, 15))
	assert.Equal(t, ColorWhite, fb.GetPixel(0, 0))
	assert.Equal(t, ColorWhite, fb.GetPixel(39, 29))
}

func TestVertexBufferReused(t *testing.T) {
	o := NewObject("q", quadMesh(2, 5), nil)
	r := newTestRasterizer(16, 16, Unlit)
	light := NewLight(math3d.V3(0, 0, 1))

	require.NoError(t, r.Render(orthoCamera(5), light, []*Object{o}))
	first := &o.buf[0]
	require.NoError(t, r.Render(orthoCamera(5), light, []*Object{o}))
	assert.Same(t, first, &o.buf[0])
}

type countingPresenter struct {
	frames int
	err    error
}

func (p *countingPresenter) Present(*Framebuffer) error {
	p.frames++
	return p.err
}

func TestPresenterReceivesFrames(t *testing.T) {
	p := &countingPresenter{}
	cfg := DefaultConfig()
	cfg.Presenter = p
	r := NewRasterizer(8, 8, cfg)

	light := NewLight(math3d.V3(0, 0, 1))
	require.NoError(t, r.Render(NewCamera(), light, nil))
	require.NoError(t, r.Render(NewCamera(), light, nil))
	assert.Equal(t, 2, p.frames)

	p.err = errors.New("screen gone")
	err := r.Render(NewCamera(), light, nil)
	assert.ErrorIs(t, err, p.err)
}

func TestShowBoundsDrawsOutline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shader = Unlit
	cfg.ShowBounds = true
	r := NewRasterizer(64, 64, cfg)

	o := NewObject("quad", quadMesh(2.5, 5), nil)
	require.NoError(t, r.Render(orthoCamera(5), NewLight(math3d.V3(0, 0, 1)), []*Object{o}))
	fb := r.ColorBuffer()
	assert.Equal(t, ColorGreen, fb.GetPixel(16, 32))
	assert.Equal(t, ColorMagenta, fb.GetPixel(32, 32))
}

func BenchmarkRenderQuad(b *testing.B) {
	r := newTestRasterizer(160, 90, BlinnPhong)
	o := NewObject("quad", quadMesh(2, 5), NewCheckerTexture(64, 64, 8, ColorRed, ColorWhite))
	cam := NewCamera()
	light := NewLight(math3d.V3(0.3, -0.5, 1))

	for b.Loop() {
		_ = r.Render(cam, light, []*Object{o})
	}
}

func BenchmarkRenderQuadBilinear(b *testing.B) {
	r := newTestRasterizer(160, 90, BlinnPhong)
	r.SetBilinear(true)
	o := NewObject("quad", quadMesh(2, 5), NewCheckerTexture(64, 64, 8, ColorRed, ColorWhite))
	cam := NewCamera()
	light := NewLight(math3d.V3(0.3, -0.5, 1))

	for b.Loop() {
		_ = r.Render(cam, light, []*Object{o})
	}
}
