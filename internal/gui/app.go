// Package gui runs the playground in a raylib window.
package gui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/picker"
	"github.com/san-kum/afterimage/internal/scene"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	maxTelemetry = 200
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColFloor   = rl.NewColor(33, 33, 33, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
)

type Options struct {
	Seed   int64
	Font   string
	Logger *log.Logger
}

type App struct {
	PG        *scene.Playground
	Camera    rl.Camera3D
	Font      rl.Font
	Telemetry []float64

	blockColor rl.Color
	trailColor rl.Color
	seed       int64
	logger     *log.Logger
}

// cursor forwards picker feedback to the window's mouse cursor.
type cursor struct {
	style picker.CursorStyle
	apply func(int32)
}

func (c *cursor) SetCursor(style picker.CursorStyle) {
	c.style = style
	if c.apply != nil {
		c.apply(mouseCursor(style))
	}
}

func mouseCursor(style picker.CursorStyle) int32 {
	switch style {
	case picker.CursorGrab:
		return rl.MouseCursorPointingHand
	case picker.CursorGrabbing:
		return rl.MouseCursorResizeAll
	}
	return rl.MouseCursorDefault
}

func initWindow() {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(screenWidth, screenHeight, "afterimage")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
	rl.DisableBackfaceCulling()
}

// loadFont falls back to the raylib default font when path is empty.
func loadFont(path string) rl.Font {
	if path == "" {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(pg *scene.Playground, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	block, err := parseColor(pg.Config.Blocks.Color, pg.Config.Blocks.Opacity)
	if err != nil {
		return nil, err
	}
	return &App{
		PG:         pg,
		Camera:     toCamera3D(pg.Camera),
		Telemetry:  make([]float64, 0, maxTelemetry),
		blockColor: block,
		trailColor: rl.ColorAlpha(block, float32(pg.Config.Blocks.Opacity)*0.35),
		seed:       opts.Seed,
		logger:     logger,
	}, nil
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config, opts Options) error {
	initWindow()
	defer rl.CloseWindow()

	cur := &cursor{apply: rl.SetMouseCursor}
	pg, err := scene.New(cfg, scene.Options{
		Width:  screenWidth,
		Height: screenHeight,
		Cursor: cur,
		Logger: opts.Logger,
	})
	if err != nil {
		return fmt.Errorf("gui: %w", err)
	}
	defer pg.Close()

	app, err := NewApp(pg, opts)
	if err != nil {
		return fmt.Errorf("gui: %w", err)
	}
	app.Font = loadFont(opts.Font)
	return app.RunLoop()
}

func (a *App) RunLoop() error {
	for !rl.WindowShouldClose() {
		quit, err := a.Update()
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		a.Draw()
	}
	return nil
}

// Update feeds one frame of window input to the playground and advances it.
func (a *App) Update() (bool, error) {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true, nil
	}
	if rl.IsWindowResized() {
		a.PG.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		active := a.PG.Driver.ToggleAnimation()
		a.logger.Debug("animation toggled", "active", active)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.seed++
		a.PG.Reset(a.seed)
		a.Telemetry = a.Telemetry[:0]
	}

	a.handleMouse()

	stats, err := a.PG.Frame(float64(rl.GetFrameTime()))
	if err != nil {
		return false, err
	}
	if stats.Stepped {
		a.Telemetry = append(a.Telemetry, a.PG.KineticEnergy())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	a.Camera = toCamera3D(a.PG.Camera)
	return false, nil
}

// mouseFrame is the button and motion state sampled once per frame.
type mouseFrame struct {
	leftPressed, leftReleased, rightPressed, moved bool
}

type pointerCall struct {
	kind    input.Kind
	primary bool
}

// pointerCalls orders one frame of mouse state into pointer events. Motion
// comes first so a drag delta in the same frame as a release still lands.
func pointerCalls(m mouseFrame) []pointerCall {
	var calls []pointerCall
	if m.moved {
		calls = append(calls, pointerCall{input.Move, true})
	}
	if m.leftPressed {
		calls = append(calls, pointerCall{input.Down, true})
	}
	if m.rightPressed {
		calls = append(calls, pointerCall{input.Down, false})
	}
	if m.leftReleased {
		calls = append(calls, pointerCall{input.Up, true})
	}
	return calls
}

// handleMouse reports the left button as the primary pointer. The right
// button is forwarded as non-primary and dropped by the tracker.
func (a *App) handleMouse() {
	pos := rl.GetMousePosition()
	x, y := float64(pos.X), float64(pos.Y)

	if w := rl.GetMouseWheelMove(); w != 0 {
		a.PG.Zoom(float64(w))
	}

	d := rl.GetMouseDelta()
	m := mouseFrame{
		leftPressed:  rl.IsMouseButtonPressed(rl.MouseLeftButton),
		leftReleased: rl.IsMouseButtonReleased(rl.MouseLeftButton),
		rightPressed: rl.IsMouseButtonPressed(rl.MouseRightButton),
		moved:        d.X != 0 || d.Y != 0,
	}
	for _, c := range pointerCalls(m) {
		a.PG.Pointer(c.kind, x, y, c.primary, nil)
	}
}
