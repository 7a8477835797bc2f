package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softraster/pkg/math3d"
)

// Blinn-Phong constants.
const (
	SpecularExponent = 150
	specularStrength = 0.7
)

var (
	// SpecularColor is the specular reflectance Ks.
	SpecularColor = colorful.Color{R: specularStrength, G: specularStrength, B: specularStrength}
	// AmbientColor is reported to shaders through Environment. Blinn-Phong
	// does not add it to its output.
	AmbientColor = Yellow
)

// Fragment is the perspective-correct interpolated input of one pixel.
type Fragment struct {
	X, Y        int
	Depth       float64
	UV          math3d.Vec2
	Normal      math3d.Vec3 // object space
	WorldPos    math3d.Vec3
	WorldNormal math3d.Vec3
	Color       colorful.Color
	Texture     *Texture
	Bilinear    bool
}

// Environment is per-frame shading state, all vectors in the
// right-handed pipeline frame.
type Environment struct {
	CameraPos    math3d.Vec3
	ToLight      math3d.Vec3 // unit vector toward the light
	LightColor   colorful.Color
	AmbientColor colorful.Color
}

// FragmentShader computes the color of one fragment. The result is
// clamped to [0, 1] when written.
type FragmentShader func(f *Fragment, env *Environment) colorful.Color

// Unlit shades everything magenta.
func Unlit(*Fragment, *Environment) colorful.Color {
	return Magenta
}

// BlinnPhong shades the texture with one directional light: diffuse
// tex*light*max(0, N.L) plus specular Ks*light*max(0, H.N)^150. N is the
// interpolated world normal as is; its length scales both terms.
func BlinnPhong(f *Fragment, env *Environment) colorful.Color {
	tex := f.Texture.Sample(f.UV.X, f.UV.Y, f.Bilinear)

	n := f.WorldNormal
	ndotl := n.Dot(env.ToLight)
	diffuse := scaleColor(mulColor(tex, env.LightColor), math.Max(0, ndotl))

	view := env.CameraPos.Sub(f.WorldPos).Normalize()
	half := view.Add(env.ToLight).Normalize()
	spec := math.Pow(math.Max(0, half.Dot(n)), SpecularExponent)
	specular := scaleColor(mulColor(SpecularColor, env.LightColor), spec)

	return addColor(diffuse, specular)
}
