package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// WrapMode determines how texel coordinates outside the image are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture holds a 2D image for texture mapping. Pixels are stored
// row-major from the top of the image; texel lookups count rows from the
// bottom so that v = 0 is the bottom edge.
type Texture struct {
	Width  int
	Height int
	Pixels []Color
	WrapU  WrapMode
	WrapV  WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		WrapU:  WrapRepeat,
		WrapV:  WrapRepeat,
	}
}

// LoadTexture loads a texture from a PNG, JPEG, BMP, TIFF or WebP file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}
	return tex
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Pixels[y*width+x] = c1
			} else {
				tex.Pixels[y*width+x] = c2
			}
		}
	}
	return tex
}

// Texel returns the texel at column x and row y, counting rows from the
// bottom of the image. Out-of-range coordinates follow the wrap modes.
func (t *Texture) Texel(x, y int) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	x = wrapTexel(x, t.Width, t.WrapU)
	y = wrapTexel(y, t.Height, t.WrapV)
	return t.Pixels[(t.Height-1-y)*t.Width+x]
}

func wrapTexel(x, size int, mode WrapMode) int {
	switch mode {
	case WrapClamp:
		return min(max(x, 0), size-1)
	default:
		x %= size
		if x < 0 {
			x += size
		}
		return x
	}
}

// Nearest samples the texel at ((w-1)u, (h-1)v), truncated toward zero.
func (t *Texture) Nearest(u, v float64) colorful.Color {
	x := int(float64(t.Width-1) * u)
	y := int(float64(t.Height-1) * v)
	return toFloat(t.Texel(x, y))
}

// Bilinear blends the four texels around (u, v), treating each texel as
// centered at its index plus one half. Coordinates in the first half of a
// texel pair with the previous column (or row), never below index 0.
func (t *Texture) Bilinear(u, v float64) colorful.Color {
	u0, s := bilinearAxis(u, t.Width)
	v0, tt := bilinearAxis(v, t.Height)

	c00 := toFloat(t.Texel(u0, v0))
	c10 := toFloat(t.Texel(u0+1, v0))
	c01 := toFloat(t.Texel(u0, v0+1))
	c11 := toFloat(t.Texel(u0+1, v0+1))

	return lerpColor(lerpColor(c00, c10, s), lerpColor(c01, c11, s), tt)
}

// bilinearAxis returns the lower texel index and blend weight along one
// axis of the given size.
func bilinearAxis(coord float64, size int) (int, float64) {
	img := coord * float64(size-1)
	i := int(img)
	lo := i
	if img < float64(i)+0.5 {
		lo = i - 1
	}
	lo = max(lo, 0)
	return lo, img - (float64(lo) + 0.5)
}

// Sample dispatches to Bilinear or Nearest.
func (t *Texture) Sample(u, v float64, bilinear bool) colorful.Color {
	if bilinear {
		return t.Bilinear(u, v)
	}
	return t.Nearest(u, v)
}
