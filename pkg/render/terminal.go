package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell covers two framebuffer rows: the upper half block
// takes the top pixel as foreground and the bottom pixel as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor maps fully transparent pixels to the terminal default.
func rgbaToColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalScreen is a cell screen that can flush its pending changes,
// such as *uv.Terminal.
type TerminalScreen interface {
	uv.Screen
	Display() error
}

// TerminalPresenter shows each frame on a terminal using half blocks, so
// a framebuffer of W x 2H pixels fills W x H cells.
type TerminalPresenter struct {
	Screen TerminalScreen
}

// NewTerminalPresenter returns a presenter drawing onto scr.
func NewTerminalPresenter(scr TerminalScreen) *TerminalPresenter {
	return &TerminalPresenter{Screen: scr}
}

// FramebufferSize returns the pixel size that fills a terminal of
// cols x rows cells.
func FramebufferSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Present draws fb over the whole screen and flushes it.
func (p *TerminalPresenter) Present(fb *Framebuffer) error {
	fb.Draw(p.Screen, p.Screen.Bounds())
	return p.Screen.Display()
}
