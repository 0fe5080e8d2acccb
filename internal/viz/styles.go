package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles of one theme.
type Styles struct {
	Theme   Theme
	Canvas  lipgloss.Style
	Panel   lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Drag    lipgloss.Style
	Graph   lipgloss.Style
	KeyHint lipgloss.Style
	Subtle  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,
		Canvas: lipgloss.NewStyle().
			Foreground(t.Primary),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(10),
		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),
		Running: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Paused: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Drag: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		Graph: lipgloss.NewStyle().
			Foreground(t.Secondary),
		KeyHint: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
	}
}

// ProgressBar renders a filled bar for percent in [0, 1].
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.Title.Render(strings.Repeat("█", filled)) + s.Subtle.Render(strings.Repeat("░", width-filled))
}

// Sparkline renders values as a single row of block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[min(max(idx, 0), len(chars)-1)])
	}
	return b.String()
}

// Separator is a muted horizontal rule.
func (s Styles) Separator(width int) string {
	return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
}
