package storage

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvasani/holonsim/internal/holon"
)

// SnapshotToSVG renders the X/Y plane of a snapshot as a scatter plot.
// Particles are filled circles colored by level, memory nodes are rings.
func SnapshotToSVG(snap holon.Snapshot, width, height int) string {
	if len(snap.Particles) == 0 && len(snap.Nodes) == 0 {
		return ""
	}

	// Find bounds over everything drawn
	first := true
	var minX, maxX, minY, maxY float64
	extend := func(x, y float64) {
		if first {
			minX, maxX = x, x
			minY, maxY = y, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, p := range snap.Particles {
		extend(p.Position.X, p.Position.Y)
	}
	for _, n := range snap.Nodes {
		extend(n.Position.X, n.Position.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	toPx := func(x, y float64) (float64, float64) {
		px := (x - minX) / rangeX * float64(width)
		py := float64(height) - (y-minY)/rangeY*float64(height)
		return px, py
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, p := range snap.Particles {
		cx, cy := toPx(p.Position.X, p.Position.Y)
		color := p.Color
		if color == "" {
			color = holon.LevelColor(p.Level)
		}
		r := 2.0 + math.Cbrt(p.Mass)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, r, color))
	}

	for _, n := range snap.Nodes {
		cx, cy := toPx(n.Position.X, n.Position.Y)
		r := 4.0 + 6.0*n.Strength
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.8"/>
`, cx, cy, r, holon.LevelColor(n.Level)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
