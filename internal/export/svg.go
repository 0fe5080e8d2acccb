package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/afterimage/internal/trail"
	"github.com/san-kum/afterimage/internal/viz"
)

// CanvasToSVG converts a braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.SubSize()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, color))

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type Point struct{ X, Y float64 }

// TrailPaths splits oldest-first trail instances into one top-down (x, z)
// path per tracked object. Each step stores the objects in a fixed order.
func TrailPaths(instances []trail.Instance, tracked int) [][]Point {
	if tracked <= 0 {
		return nil
	}
	paths := make([][]Point, tracked)
	for i, in := range instances {
		paths[i%tracked] = append(paths[i%tracked], Point{in.Position[0], in.Position[2]})
	}
	return paths
}

// TrajectoryToSVG draws each path as a polyline on shared bounds.
func TrajectoryToSVG(paths [][]Point, width, height int, strokeColor string) string {
	first := true
	var minX, maxX, minY, maxY float64
	for _, path := range paths {
		for _, p := range path {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if first {
		return ""
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.8">
`, width, height, width, height, strokeColor))

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		sb.WriteString(`<path d="M`)
		for i, p := range path {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrailToSVG renders a top-down view of a stored trail.
func TrailToSVG(instances []trail.Instance, tracked, width, height int, strokeColor string) string {
	return TrajectoryToSVG(TrailPaths(instances, tracked), width, height, strokeColor)
}
