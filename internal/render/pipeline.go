// Package render draws annotations onto a raster surface. Rendering is a
// full clear and redraw; nothing is kept between calls.
package render

import (
	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/state"
)

// Surface is a raster target. Primitives take the paint style explicitly,
// so no drawing state leaks from one annotation to the next.
type Surface interface {
	geometry.TextMeasurer

	Size() (width, height int)
	Clear()
	StrokeRect(r geometry.Rect, ps PaintStyle)
	StrokeCircle(center state.Point, radius float64, ps PaintStyle)
	StrokeLine(from, to state.Point, ps PaintStyle)
	StrokePolyline(path []state.Point, ps PaintStyle)
	// FillText draws s with its baseline at y.
	FillText(s string, x, y, fontSize float64, ps PaintStyle)
}

// Render clears the surface and draws every visible annotation in stored
// order, decorating the one whose id equals selectedID. It is idempotent.
func Render(s Surface, annotations []state.Annotation, selectedID string) {
	s.Clear()
	for _, a := range annotations {
		if !a.Visible() {
			continue
		}
		drawAnnotation(s, a, selectedID != "" && a.ID == selectedID)
	}
}

// DrawShape draws a single shape with an explicit style, without clearing.
// The interaction layer uses it for live previews.
func DrawShape(s Surface, shape state.Shape, ps PaintStyle) {
	drawShape(s, shape, ps, ps)
}

func drawAnnotation(s Surface, a state.Annotation, selected bool) {
	fill := StyleFor(a.Style)
	stroke := fill
	if selected {
		stroke.Color = HighlightColor
		stroke.LineWidth += SelectionWidthIncrement
	}

	drawShape(s, a.Shape, fill, stroke)
	if !selected {
		return
	}

	box := geometry.Bounds(a.Shape, s).Expand(SelectionMargin)
	switch a.Kind() {
	case state.KindText:
		s.StrokeRect(box, stroke)
	case state.KindLine:
		deco := stroke
		deco.Color = LineHighlightColor
		s.StrokeRect(box, deco)
	}
}

func drawShape(s Surface, shape state.Shape, fill, stroke PaintStyle) {
	switch sh := shape.(type) {
	case state.Text:
		size := sh.FontSize
		if size <= 0 {
			size = state.DefaultFontSize
		}
		s.FillText(sh.Text, sh.X, sh.Y, size, fill)
	case state.Rectangle:
		s.StrokeRect(geometry.Normalize(sh), stroke)
	case state.Circle:
		s.StrokeCircle(state.Point{X: sh.X, Y: sh.Y}, sh.Radius, stroke)
	case state.Line:
		s.StrokeLine(sh.Start(), sh.End(), stroke)
	case state.Freehand:
		if len(sh.Path) > 1 {
			s.StrokePolyline(sh.Path, stroke)
		}
	}
}
