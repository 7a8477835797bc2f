// softraster - CPU triangle rasterizer
// Renders a YAML scene either to a numbered PNG sequence or live in the
// terminal.
//
// Terminal controls:
//
//	Mouse drag  - Rotate objects (yaw/pitch)
//	Scroll, +/- - Move the camera along its view direction
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation and zoom
//	U           - Toggle unlit shading
//	B           - Toggle bilinear filtering
//	X           - Toggle bounding box overlay
//	C           - Toggle back-face culling
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay
//	Esc         - Quit (or cancel light mode)
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taigrr/softraster/pkg/render"
	"github.com/taigrr/softraster/pkg/scene"
)

var (
	scenePath = flag.String("scene", "", "Scene file (YAML); empty renders a spinning cube")
	width     = flag.Int("width", 320, "Output width in pixels (offline mode)")
	height    = flag.Int("height", 180, "Output height in pixels (offline mode)")
	frames    = flag.Int("frames", 1, "Number of frames to render (offline mode)")
	targetFPS = flag.Int("fps", 30, "Frame rate for animation and the terminal loop")
	outPath   = flag.String("out", "", "Output pattern, e.g. out/frame%04d.png; empty runs in the terminal")
	scale     = flag.Int("scale", 1, "Nearest-neighbor upscale factor for PNG output")
	bilinear  = flag.Bool("bilinear", false, "Bilinear texture filtering")
	unlit     = flag.Bool("unlit", false, "Use the unlit shader")
	bounds    = flag.Bool("bounds", false, "Draw object bounding boxes")
	noCull    = flag.Bool("nocull", false, "Disable back-face culling")
	verbose   = flag.Bool("v", false, "Verbose (debug) logging")
	logPath   = flag.String("log", "", "Log file for terminal mode")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softraster - CPU triangle rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softraster [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nTerminal controls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate objects\n")
		fmt.Fprintf(os.Stderr, "  Scroll, +/- - Zoom\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  U/B/X/C     - Toggle unlit, bilinear, bounds, culling\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	interactive := *outPath == ""

	closeLog, err := setupLogging(interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	sc, name, err := loadScene(*scenePath)
	if err != nil {
		return err
	}
	world, err := sc.Build("")
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	slog.Info("scene loaded", "scene", name, "objects", len(world.Objects), "triangles", world.TriangleCount())

	cfg := rasterConfig()
	if interactive {
		return runTerminal(world, name, cfg)
	}
	return renderFrames(world, cfg, offlineOptions{
		Width:   *width,
		Height:  *height,
		Frames:  *frames,
		FPS:     *targetFPS,
		Pattern: *outPath,
		Scale:   *scale,
	}, progressWriter(os.Stderr))
}

func loadScene(path string) (*scene.Scene, string, error) {
	if path == "" {
		return scene.Default(), "default", nil
	}
	sc, err := scene.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load scene: %w", err)
	}
	return sc, filepath.Base(path), nil
}

func rasterConfig() render.Config {
	cfg := render.DefaultConfig()
	cfg.Bilinear = *bilinear
	cfg.ShowBounds = *bounds
	cfg.DisableBackfaceCulling = *noCull
	if *unlit {
		cfg.Shader = render.Unlit
	}
	return cfg
}

// setupLogging installs a text handler for both the CLI and the render
// package. In terminal mode records go to -log, or nowhere, so they do not
// tear the display.
func setupLogging(interactive bool) (func(), error) {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	if interactive {
		w = io.Discard
		if *logPath != "" {
			f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closer = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	return closer, nil
}
