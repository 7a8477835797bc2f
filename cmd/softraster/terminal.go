package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
	"github.com/taigrr/softraster/pkg/scene"
)

const (
	torqueStrength = 3.0
	zoomStep       = 0.5
	zoomMin        = -20.0
)

// ViewState holds the interactive toggles and camera offset.
type ViewState struct {
	Unlit        bool
	Bilinear     bool
	ShowBounds   bool
	Culling      bool
	LightMode    bool        // Whether in light positioning mode
	LightDir     math3d.Vec3 // Current light direction
	PendingLight math3d.Vec3 // Light direction while positioning
	ShowHUD      bool
	Zoom         float64 // distance moved along the camera's forward axis
}

// NewViewState mirrors cfg and the scene's light.
func NewViewState(cfg render.Config, light render.Light, unlit bool) *ViewState {
	return &ViewState{
		Unlit:      unlit,
		Bilinear:   cfg.Bilinear,
		ShowBounds: cfg.ShowBounds,
		Culling:    !cfg.DisableBackfaceCulling,
		LightDir:   light.Direction,
	}
}

// Apply pushes the toggles into r.
func (v *ViewState) Apply(r *render.Rasterizer) {
	if v.Unlit {
		r.SetShader(render.Unlit)
	} else {
		r.SetShader(render.BlinnPhong)
	}
	r.SetBilinear(v.Bilinear)
	r.SetShowBounds(v.ShowBounds)
	r.SetBackfaceCulling(v.Culling)
}

// Camera returns base moved by the zoom offset.
func (v *ViewState) Camera(base render.Camera) render.Camera {
	base.Position = base.Position.Add(base.Forward().Scale(v.Zoom))
	return base
}

// HUD renders an overlay with scene info and toggles
type HUD struct {
	name      string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(name string, polyCount int) *HUD {
	return &HUD{
		name:      name,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, v *ViewState, stats render.Stats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if v.LightMode {
		lightMsg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		fmt.Print(moveTo(height, max((width-60)/2, 1)) + lightMsg)
		return
	}
	if !v.ShowHUD {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.name, reset)
	fmt.Print(moveTo(1, max((width-len(h.name)-2)/2, 1)) + title)

	tris := fmt.Sprintf("%s%s%s %d/%d tris %s", bgBlack, fgCyan, bold, stats.TrianglesRasterize, h.polyCount, reset)
	fmt.Print(moveTo(1, max(width-18, 1)) + tris)

	modes := fmt.Sprintf("%s%s %s Unlit  %s Bilinear  %s Bounds  %s Culling %s",
		bgBlack, fgWhite, check(v.Unlit), check(v.Bilinear), check(v.ShowBounds), check(v.Culling), reset)
	fmt.Print(moveTo(height, 1) + modes)

	hint := fmt.Sprintf("%s%s%s L: position light %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-18, 1)) + hint)
}

// runTerminal shows the world live in the terminal until Esc or a signal.
// Events and frames are handled on one goroutine.
func runTerminal(world *scene.World, name string, cfg render.Config) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fps := max(*targetFPS, 1)
	cfg.Presenter = render.NewTerminalPresenter(term)
	cfg.ClearColor = render.RGB(30, 30, 40)
	newRasterizer := func() *render.Rasterizer {
		fbWidth, fbHeight := render.FramebufferSize(width, height)
		return render.NewRasterizer(fbWidth, fbHeight, cfg)
	}
	rasterizer := newRasterizer()

	baseCamera := world.Camera
	rotation := NewRotationState(fps)
	view := NewViewState(cfg, world.Light, *unlit)
	hud := NewHUD(name, world.TriangleCount())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	var mouseDown bool
	var lastMouseX, lastMouseY int

	handle := func(ev uv.Event) bool {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			rasterizer = newRasterizer()

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"):
				if !view.LightMode {
					return false
				}
				view.LightMode = false
			case ev.MatchString("ctrl+c"):
				return false
			case ev.MatchString("q"):
				inputTorque.roll = -torqueStrength
			case ev.MatchString("e"):
				inputTorque.roll = torqueStrength
			case ev.MatchString("w", "up"):
				inputTorque.pitch = -torqueStrength
			case ev.MatchString("s", "down"):
				inputTorque.pitch = torqueStrength
			case ev.MatchString("a", "left"):
				inputTorque.yaw = -torqueStrength
			case ev.MatchString("d", "right"):
				inputTorque.yaw = torqueStrength
			case ev.MatchString("space"):
				rotation.ApplyImpulse(
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
				)
			case ev.MatchString("r"):
				rotation.Reset()
				view.Zoom = 0
			case ev.MatchString("+", "="):
				view.Zoom += zoomStep
			case ev.MatchString("-", "_"):
				view.Zoom = math.Max(zoomMin, view.Zoom-zoomStep)
			case ev.MatchString("u"):
				view.Unlit = !view.Unlit
			case ev.MatchString("b"):
				view.Bilinear = !view.Bilinear
			case ev.MatchString("x"):
				view.ShowBounds = !view.ShowBounds
			case ev.MatchString("c"):
				view.Culling = !view.Culling
			case ev.MatchString("l"):
				view.LightMode = true
				view.PendingLight = view.LightDir
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				view.ShowHUD = !view.ShowHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
				inputTorque.pitch = 0
			case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
				inputTorque.yaw = 0
			case ev.MatchString("q"), ev.MatchString("e"):
				inputTorque.roll = 0
			}

		case uv.MouseClickEvent:
			if view.LightMode {
				view.LightDir = view.PendingLight
				view.LightMode = false
			} else {
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseReleaseEvent:
			if !view.LightMode {
				mouseDown = false
			}

		case uv.MouseMotionEvent:
			if view.LightMode {
				view.PendingLight = ScreenToLightDir(ev.X, ev.Y, width, height)
			} else if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				view.Zoom += zoomStep
			case uv.MouseWheelDown:
				view.Zoom = math.Max(zoomMin, view.Zoom-zoomStep)
			}
		}
		return true
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	lastFrame := start
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || !handle(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now

			// Apply input torque and decay it (key release events unreliable)
			rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
			inputTorque.pitch *= 0.9
			inputTorque.yaw *= 0.9
			inputTorque.roll *= 0.9
			rotation.Update()

			world.Animate(now.Sub(start).Seconds(), rotation.Angles())

			light := world.Light
			light.Direction = view.LightDir
			if view.LightMode {
				light.Direction = view.PendingLight
			}

			view.Apply(rasterizer)
			if err := rasterizer.Render(view.Camera(baseCamera), light, world.Objects); err != nil {
				return fmt.Errorf("render: %w", err)
			}

			hud.UpdateFPS()
			hud.Render(width, height, view, rasterizer.Stats)
		}
	}
}
