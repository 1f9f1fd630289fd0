// Package rendertest provides a Surface that records draw calls instead of
// rasterizing them.
package rendertest

import (
	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

// Op names a recorded primitive.
type Op string

const (
	OpClear    Op = "clear"
	OpRect     Op = "rect"
	OpCircle   Op = "circle"
	OpLine     Op = "line"
	OpPolyline Op = "polyline"
	OpText     Op = "text"
)

// Call is one recorded primitive with its arguments.
type Call struct {
	Op       Op
	Rect     geometry.Rect
	Center   state.Point
	Radius   float64
	From     state.Point
	To       state.Point
	Path     []state.Point
	Text     string
	FontSize float64
	Style    render.PaintStyle
}

// Recorder is a render.Surface that appends every call to Calls. Text is
// measured as CharWidth times the rune count, scaled by fontSize/16.
type Recorder struct {
	Width     int
	Height    int
	CharWidth float64
	Calls     []Call
}

var _ render.Surface = (*Recorder)(nil)

// NewRecorder returns a recorder of the given size with 8px glyphs at 16px.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height, CharWidth: 8}
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

// Clear drops earlier calls, like a real clear drops earlier pixels, and
// records itself.
func (r *Recorder) Clear() {
	r.Calls = []Call{{Op: OpClear}}
}

func (r *Recorder) StrokeRect(rect geometry.Rect, ps render.PaintStyle) {
	r.Calls = append(r.Calls, Call{Op: OpRect, Rect: rect, Style: ps})
}

func (r *Recorder) StrokeCircle(center state.Point, radius float64, ps render.PaintStyle) {
	r.Calls = append(r.Calls, Call{Op: OpCircle, Center: center, Radius: radius, Style: ps})
}

func (r *Recorder) StrokeLine(from, to state.Point, ps render.PaintStyle) {
	r.Calls = append(r.Calls, Call{Op: OpLine, From: from, To: to, Style: ps})
}

func (r *Recorder) StrokePolyline(path []state.Point, ps render.PaintStyle) {
	cp := make([]state.Point, len(path))
	copy(cp, path)
	r.Calls = append(r.Calls, Call{Op: OpPolyline, Path: cp, Style: ps})
}

func (r *Recorder) FillText(s string, x, y, fontSize float64, ps render.PaintStyle) {
	r.Calls = append(r.Calls, Call{Op: OpText, Text: s, From: state.Point{X: x, Y: y}, FontSize: fontSize, Style: ps})
}

func (r *Recorder) MeasureText(s string, fontSize float64) float64 {
	return float64(len([]rune(s))) * r.CharWidth * fontSize / 16
}

// Draws returns the recorded calls after the last clear.
func (r *Recorder) Draws() []Call {
	if len(r.Calls) > 0 && r.Calls[0].Op == OpClear {
		return r.Calls[1:]
	}
	return r.Calls
}
