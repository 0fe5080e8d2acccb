package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// PanelStats is what the side panel shows.
type PanelStats struct {
	Preset   string
	State    string
	Paused   bool
	Time     float64
	Frames   int
	SubSteps int
	Energy   float64
	Visible  int
	Capacity int
	FPS      float64
}

func (p PanelStats) Fill() float64 {
	if p.Capacity == 0 {
		return 0
	}
	return float64(p.Visible) / float64(p.Capacity)
}

// Panel renders the stats panel with a kinetic energy strip from history.
func Panel(p PanelStats, history []float64, s Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("afterimage") + " " + s.Subtle.Render(p.Preset) + "\n")

	status := s.Running.Render("● running")
	if p.Paused {
		status = s.Paused.Render("○ paused")
	}
	if p.State == "dragging" {
		status += "  " + s.Drag.Render("✥ dragging")
	}
	b.WriteString(status + "\n\n")

	row := func(label, value string) {
		b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.2fs", p.Time))
	row("frames", fmt.Sprintf("%d (%d sub)", p.Frames, p.SubSteps))
	row("picker", p.State)
	row("energy", fmt.Sprintf("%.4f", p.Energy))
	row("trail", fmt.Sprintf("%d/%d", p.Visible, p.Capacity))
	if p.FPS > 0 {
		row("fps", fmt.Sprintf("%.0f", p.FPS))
	}
	b.WriteString(s.ProgressBar(p.Fill(), max(width-4, 4)) + "\n")

	if len(history) > 1 {
		chart := asciigraph.Plot(history,
			asciigraph.Height(4),
			asciigraph.Width(max(width-12, 8)),
			asciigraph.Caption("kinetic energy"))
		b.WriteString("\n" + s.Graph.Render(chart) + "\n")
	} else {
		b.WriteString("\n" + s.Subtle.Render(Sparkline(history, max(width-4, 4))) + "\n")
	}

	b.WriteString("\n" + s.KeyHint.Render("space pause  r reset  t theme  q quit"))
	return s.Panel.Width(width).Render(b.String())
}

// Layout places the canvas and panel side by side.
func Layout(canvas *Canvas, panel string, s Styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.Canvas.Render(canvas.String()), " ", panel)
}
