package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Presenter receives the finished color buffer at the end of each frame.
// The buffer is only valid until the next frame starts.
type Presenter interface {
	Present(fb *Framebuffer) error
}

var frameVerb = regexp.MustCompile(`%[-+ #0]*[0-9]*d`)

// IsFramePattern reports whether pattern holds an integer verb for the
// frame number.
func IsFramePattern(pattern string) bool {
	return frameVerb.MatchString(pattern)
}

// PNGSequence writes every presented frame to a numbered PNG file.
// Pattern is a fmt format with one integer verb, e.g. "out/frame%04d.png".
// A pattern without one is a plain path, overwritten on every frame.
type PNGSequence struct {
	Pattern string
	Scale   int // nearest-neighbor upscale factor, <= 1 keeps the size
	frame   int
}

// Path returns the file the given frame is written to.
func (p *PNGSequence) Path(frame int) string {
	if !IsFramePattern(p.Pattern) {
		return p.Pattern
	}
	return fmt.Sprintf(p.Pattern, frame)
}

// Present encodes fb as the next file in the sequence.
func (p *PNGSequence) Present(fb *Framebuffer) error {
	path := p.Path(p.frame)
	p.frame++

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return fb.SavePNG(path, p.Scale)
}

// Frames returns how many frames have been written.
func (p *PNGSequence) Frames() int { return p.frame }
