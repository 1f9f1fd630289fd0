// Package geometry holds the pure shape math shared by hit-testing,
// selection decoration and list labels. Every function is read-only over
// its inputs.
package geometry

import (
	"math"

	"MarkupBoard/internal/state"
)

// Tolerance is the pixel radius within which a near miss on a line or a
// freehand stroke still counts as a hit.
const Tolerance = 5.0

// TextMeasurer measures the advance width of s rendered at fontSize pixels.
type TextMeasurer interface {
	MeasureText(s string, fontSize float64) float64
}

// TextBounds is the box of a text annotation: baseline at Y, extending
// fontSize pixels up and the measured width to the right.
func TextBounds(t state.Text, m TextMeasurer) Rect {
	size := t.FontSize
	if size <= 0 {
		size = state.DefaultFontSize
	}
	width := 0.0
	if m != nil {
		width = m.MeasureText(t.Text, size)
	}
	return Rect{X: t.X, Y: t.Y - size, Width: width, Height: size}
}

// DistanceToSegment returns the distance from p to the closest point of the
// finite segment ab.
func DistanceToSegment(p, a, b state.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := state.Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Distance(closest)
}

// DistanceToPolyline returns the distance from p to the nearest segment of
// path. A single-point path measures to that point; an empty path is
// infinitely far away.
func DistanceToPolyline(p state.Point, path []state.Point) float64 {
	switch len(path) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(path[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(path); i++ {
		best = math.Min(best, DistanceToSegment(p, path[i-1], path[i]))
	}
	return best
}

// HitShape reports whether p is on the shape.
func HitShape(shape state.Shape, p state.Point, m TextMeasurer) bool {
	switch s := shape.(type) {
	case state.Text:
		return TextBounds(s, m).Contains(p)
	case state.Rectangle:
		return Normalize(s).Contains(p)
	case state.Circle:
		return p.Distance(state.Point{X: s.X, Y: s.Y}) <= s.Radius
	case state.Line:
		return DistanceToSegment(p, s.Start(), s.End()) <= Tolerance
	case state.Freehand:
		return DistanceToPolyline(p, s.Path) <= Tolerance
	}
	return false
}

// HitTest reports whether p is on a visible annotation.
func HitTest(a state.Annotation, p state.Point, m TextMeasurer) bool {
	return a.Visible() && HitShape(a.Shape, p, m)
}

// Pick returns the topmost visible annotation under p. The sequence is in
// stored order, so it is walked from the end.
func Pick(annotations []state.Annotation, p state.Point, m TextMeasurer) (state.Annotation, bool) {
	for i := len(annotations) - 1; i >= 0; i-- {
		if HitTest(annotations[i], p, m) {
			return annotations[i], true
		}
	}
	return state.Annotation{}, false
}
