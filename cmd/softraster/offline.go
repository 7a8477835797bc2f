package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
	"github.com/taigrr/softraster/pkg/scene"
)

type offlineOptions struct {
	Width, Height int
	Frames        int
	FPS           int
	Pattern       string
	Scale         int
}

// framePattern turns an -out value into a PNGSequence pattern. A value
// with an integer verb, or any value for a single frame, is used as is.
// Otherwise "%04d" goes before the extension.
func framePattern(out string, frames int) string {
	if frames == 1 || render.IsFramePattern(out) {
		return out
	}
	escaped := strings.ReplaceAll(out, "%", "%%")
	ext := filepath.Ext(escaped)
	return strings.TrimSuffix(escaped, ext) + "%04d" + ext
}

// progressWriter returns w when it is a terminal, nil otherwise.
func progressWriter(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return f
	}
	return nil
}

// renderFrames renders opts.Frames frames of the animated world to a PNG
// sequence. A progress bar is drawn on progress when it is non-nil.
func renderFrames(world *scene.World, cfg render.Config, opts offlineOptions, progress io.Writer) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Frames <= 0 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}
	fps := max(opts.FPS, 1)

	seq := &render.PNGSequence{Pattern: framePattern(opts.Pattern, opts.Frames), Scale: opts.Scale}
	cfg.Presenter = seq
	r := render.NewRasterizer(opts.Width, opts.Height, cfg)

	var bar *progressbar.ProgressBar
	if progress != nil && opts.Frames > 1 {
		bar = progressbar.NewOptions(opts.Frames,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	start := time.Now()
	for i := range opts.Frames {
		world.Animate(float64(i)/float64(fps), math3d.Vec3{})
		if err := r.Render(world.Camera, world.Light, world.Objects); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		slog.Debug("frame rendered", "frame", i,
			"triangles", r.Stats.TrianglesRasterize,
			"fragments", r.Stats.FragmentsShaded)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	slog.Info("render complete", "frames", seq.Frames(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
