package geometry

import (
	"math"

	"MarkupBoard/internal/state"
)

// Rect is an axis-aligned box with non-negative size.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromCorners builds the normalized box spanned by two corners.
func RectFromCorners(a, b state.Point) Rect {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Normalize converts a signed rectangle annotation into a box, so a drag
// to the upper-left yields the same box as the swapped drag.
func Normalize(r state.Rectangle) Rect {
	return RectFromCorners(
		state.Point{X: r.X, Y: r.Y},
		state.Point{X: r.X + r.Width, Y: r.Y + r.Height},
	)
}

// Contains reports whether p lies in r, edges included.
func (r Rect) Contains(p state.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Expand grows the box by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// BoundsOf returns the bounding box of a non-empty point set.
func BoundsOf(points []state.Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
