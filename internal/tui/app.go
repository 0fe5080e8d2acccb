// Package tui runs the playground in a terminal with bubbletea.
package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/scene"
	"github.com/san-kum/afterimage/internal/viz"
)

const (
	panelWidth    = 40
	historySize   = 60
	frameInterval = time.Second / 60
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Options struct {
	Theme  string
	Seed   int64
	Logger *log.Logger
}

type model struct {
	pg     *scene.Playground
	canvas *viz.Canvas
	styles viz.Styles
	draw   viz.DrawOptions
	logger *log.Logger

	history   []float64
	stats     frame.Stats
	lastFrame time.Time
	fps       float64
	seed      int64
	err       error

	width  int
	height int
}

// NewApp wraps a playground in a terminal model sized for an 80x24 screen
// until the first window size arrives.
func NewApp(pg *scene.Playground, opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := model{
		pg:      pg,
		styles:  viz.NewStyles(viz.GetTheme(opts.Theme)),
		draw:    viz.DefaultDrawOptions(),
		logger:  logger,
		history: make([]float64, 0, historySize),
		seed:    opts.Seed,
	}
	m.resize(80, 24)
	return m
}

func (m model) Init() tea.Cmd { return tick() }

// resize gives the canvas whatever the panel leaves and sizes the pointer
// surface in braille dots.
func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	cols := max(width-panelWidth-3, 10)
	rows := max(height-1, 5)
	m.canvas = viz.NewCanvas(cols, rows)
	w, h := m.canvas.SubSize()
	m.pg.Resize(float64(w), float64(h))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, tea.ClearScreen
	case tickMsg:
		return m.frame(time.Time(msg))
	}
	return m, nil
}

func (m model) frame(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := frameInterval.Seconds()
	if !m.lastFrame.IsZero() {
		elapsed = now.Sub(m.lastFrame).Seconds()
		if elapsed > 0 {
			m.fps = 1 / elapsed
		}
	}
	m.lastFrame = now

	stats, err := m.pg.Frame(elapsed)
	if err != nil {
		m.logger.Error("frame failed", "err", err)
		m.err = err
		return m, tea.Quit
	}
	m.stats = stats

	if stats.Stepped {
		m.history = append(m.history, m.pg.KineticEnergy())
		if len(m.history) > historySize {
			m.history = m.history[1:]
		}
	}
	return m, tick()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		active := m.pg.Driver.ToggleAnimation()
		m.logger.Debug("animation toggled", "active", active)
	case "r":
		m.seed++
		m.pg.Reset(m.seed)
		m.history = m.history[:0]
	case "t":
		m.styles = viz.NewStyles(viz.NextTheme(m.styles.Theme))
	case "g":
		if m.draw.Grid > 0 {
			m.draw.Grid = 0
		} else {
			m.draw.Grid = viz.DefaultDrawOptions().Grid
		}
	case "+", "=":
		m.pg.Zoom(1)
	case "-":
		m.pg.Zoom(-1)
	}
	return m, nil
}

// handleMouse maps a cell to the dot at its center. Only the left button is
// the primary pointer.
func (m model) handleMouse(msg tea.MouseMsg) {
	x := (float64(msg.X) + 0.5) * 2
	y := (float64(msg.Y) + 0.5) * 4

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pg.Zoom(1)
		return
	case tea.MouseButtonWheelDown:
		m.pg.Zoom(-1)
		return
	}

	primary := msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.X >= m.canvas.Width {
			return
		}
		m.pg.Pointer(input.Down, x, y, true, msg)
	case tea.MouseActionMotion:
		m.pg.Pointer(input.Move, x, y, primary, msg)
	case tea.MouseActionRelease:
		m.pg.Pointer(input.Up, x, y, primary, msg)
	}
}

func (m model) View() string {
	m.canvas.Clear()
	viz.DrawPlayground(m.canvas, m.pg, m.draw)

	p := viz.PanelStats{
		Preset:   m.pg.Config.Preset,
		State:    m.pg.Picker.State().String(),
		Paused:   !m.pg.Driver.AnimationActive(),
		Time:     m.pg.Driver.Elapsed(),
		Frames:   m.pg.Driver.Frames(),
		SubSteps: m.stats.SubSteps,
		Energy:   m.pg.KineticEnergy(),
		Visible:  m.pg.Trail.VisibleCount(),
		Capacity: m.pg.Trail.Capacity(),
		FPS:      m.fps,
	}
	return viz.Layout(m.canvas, viz.Panel(p, m.history, m.styles, panelWidth), m.styles)
}

// Run blocks until the user quits.
func Run(pg *scene.Playground, opts Options) error {
	p := tea.NewProgram(NewApp(pg, opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}
