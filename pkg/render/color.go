package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA color as stored in the color buffer and textures.
type Color = color.RGBA

// Shading colors are linear float RGB in [0, 1], clamped only when written
// to the color buffer.
var (
	ColorWhite   = RGB(255, 255, 255)
	ColorBlack   = RGB(0, 0, 0)
	ColorRed     = RGB(255, 0, 0)
	ColorGreen   = RGB(0, 255, 0)
	ColorMagenta = RGB(255, 0, 255)
	ColorYellow  = RGB(255, 255, 0)

	Magenta = colorful.Color{R: 1, G: 0, B: 1}
	Yellow  = colorful.Color{R: 1, G: 1, B: 0}
	White   = colorful.Color{R: 1, G: 1, B: 1}
	Black   = colorful.Color{}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// toFloat converts a stored color into a shading color. Alpha is dropped.
func toFloat(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// toRGBA clamps a shading color into an opaque stored color.
func toRGBA(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: 255}
}

// mulColor is the component-wise product a*b.
func mulColor(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R * b.R, G: a.G * b.G, B: a.B * b.B}
}

func scaleColor(c colorful.Color, s float64) colorful.Color {
	return colorful.Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

func addColor(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
}

// lerpColor blends a toward b by t, with t clamped to [0, 1].
func lerpColor(a, b colorful.Color, t float64) colorful.Color {
	t = min(max(t, 0), 1)
	return a.BlendRgb(b, t)
}
