package state

import "math"

// Point is a position in display space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Kind names an annotation variant. It doubles as the tool that creates it.
type Kind string

const (
	KindText      Kind = "text"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindLine      Kind = "line"
	KindFreehand  Kind = "freehand"
)

// Fallbacks for partially specified annotations.
const (
	DefaultColor     = "#000000"
	DefaultLineWidth = 2.0
	DefaultOpacity   = 1.0
	DefaultFontSize  = 16.0
)

// Shape is the geometry of one annotation. The set of implementations is
// closed: Text, Rectangle, Circle, Line and Freehand.
type Shape interface {
	Kind() Kind
	isShape()
}

// Text is anchored with the bottom-left of its box at (X, Y).
type Text struct {
	X        float64
	Y        float64
	Text     string
	FontSize float64
}

// Rectangle keeps the signed size of the drag that produced it.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Circle struct {
	X      float64
	Y      float64
	Radius float64
}

type Line struct {
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

type Freehand struct {
	Path []Point
}

func (Text) Kind() Kind      { return KindText }
func (Rectangle) Kind() Kind { return KindRectangle }
func (Circle) Kind() Kind    { return KindCircle }
func (Line) Kind() Kind      { return KindLine }
func (Freehand) Kind() Kind  { return KindFreehand }

func (Text) isShape()      {}
func (Rectangle) isShape() {}
func (Circle) isShape()    {}
func (Line) isShape()      {}
func (Freehand) isShape()  {}

// Start returns the first endpoint of the segment.
func (l Line) Start() Point { return Point{X: l.StartX, Y: l.StartY} }

// End returns the second endpoint of the segment.
func (l Line) End() Point { return Point{X: l.EndX, Y: l.EndY} }

// Style is the paint state stored with every annotation.
//
// Hidden and Opacity are independent: a hidden annotation keeps its opacity
// so that showing it again restores the original blend.
type Style struct {
	Color     string
	LineWidth float64
	Opacity   float64
	Hidden    bool
}

// DefaultStyle returns the style used when a record carries no style fields.
func DefaultStyle() Style {
	return Style{
		Color:     DefaultColor,
		LineWidth: DefaultLineWidth,
		Opacity:   DefaultOpacity,
	}
}

// Annotation is one committed overlay shape.
type Annotation struct {
	ID    string
	Style Style
	Shape Shape
}

// Kind returns the variant of the annotation's shape.
func (a Annotation) Kind() Kind {
	if a.Shape == nil {
		return ""
	}
	return a.Shape.Kind()
}

// Visible reports whether the annotation takes part in rendering and
// hit-testing. Zero opacity hides exactly like the hidden flag does.
func (a Annotation) Visible() bool {
	return a.Shape != nil && !a.Style.Hidden && a.Style.Opacity > 0
}

// Clone returns a copy that shares no mutable memory with a.
func (a Annotation) Clone() Annotation {
	if fh, ok := a.Shape.(Freehand); ok {
		path := make([]Point, len(fh.Path))
		copy(path, fh.Path)
		a.Shape = Freehand{Path: path}
	}
	return a
}
