package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvasani/holonsim/internal/holon"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	ActiveParam = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff00ff")).
			Bold(true)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	CanvasPane = lipgloss.NewStyle().Padding(1, 2)

	StatsPane = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2).
			Width(46)

	sparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	sparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	sparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Gauge renders a 0..1 bar, colored by how full it is.
func Gauge(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if fraction > 0.8 {
		return sparkHigh.Render(bar)
	} else if fraction > 0.4 {
		return sparkMid.Render(bar)
	}
	return sparkLow.Render(bar)
}

// LevelCensus renders per-level particle counts in the level palette,
// lowest level first.
func LevelCensus(ps []holon.Particle) string {
	maxLevel := 0
	counts := make(map[int]int)
	for _, p := range ps {
		counts[p.Level]++
		if p.Level > maxLevel {
			maxLevel = p.Level
		}
	}

	var b strings.Builder
	for level := 0; level <= maxLevel; level++ {
		if level > 0 {
			b.WriteString(" ")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(holon.LevelColor(level)))
		b.WriteString(style.Render(fmt.Sprintf("L%d×%d", level, counts[level])))
	}
	return b.String()
}

// Separator is a subtle horizontal rule.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}
