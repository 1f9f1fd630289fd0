package geometry

import (
	"fmt"
	"math"

	"MarkupBoard/internal/state"
)

// Size is the scalar metric of an annotation shown in the list. Only the
// fields of the shape's own kind are set.
type Size struct {
	Width    float64
	Height   float64
	Radius   float64
	Length   float64
	Vertices int
	Text     string
}

// Measure returns the size metric of shape.
func Measure(shape state.Shape) Size {
	switch s := shape.(type) {
	case state.Rectangle:
		return Size{Width: s.Width, Height: s.Height}
	case state.Circle:
		return Size{Radius: s.Radius}
	case state.Line:
		return Size{Length: LineLength(s)}
	case state.Freehand:
		return Size{Vertices: len(s.Path)}
	case state.Text:
		return Size{Text: s.Text}
	}
	return Size{}
}

// LineLength is the Euclidean distance between the endpoints.
func LineLength(l state.Line) float64 {
	return l.Start().Distance(l.End())
}

// Label is the one-line description of an annotation.
func Label(a state.Annotation) string {
	size := Measure(a.Shape)
	switch a.Kind() {
	case state.KindText:
		if size.Text == "" {
			return "Text"
		}
		return size.Text
	case state.KindRectangle:
		return fmt.Sprintf("Rectangle (%d×%d)", round(size.Width), round(size.Height))
	case state.KindCircle:
		return fmt.Sprintf("Circle (r: %d)", round(size.Radius))
	case state.KindLine:
		return fmt.Sprintf("Line (%dpx)", round(size.Length))
	case state.KindFreehand:
		return fmt.Sprintf("Freehand (%d points)", size.Vertices)
	}
	return "Annotation"
}

// Bounds returns the axis-aligned box covering the drawn shape, stroke
// width excluded.
func Bounds(shape state.Shape, m TextMeasurer) Rect {
	switch s := shape.(type) {
	case state.Text:
		return TextBounds(s, m)
	case state.Rectangle:
		return Normalize(s)
	case state.Circle:
		r := math.Abs(s.Radius)
		return Rect{X: s.X - r, Y: s.Y - r, Width: 2 * r, Height: 2 * r}
	case state.Line:
		return RectFromCorners(s.Start(), s.End())
	case state.Freehand:
		r, _ := BoundsOf(s.Path)
		return r
	}
	return Rect{}
}

// round matches Math.round: halves go up.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
