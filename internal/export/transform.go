// Package export maps annotations from display space to the native space of
// the media and writes the flattened raster and the annotation data file.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"MarkupBoard/internal/state"
)

var (
	ErrNoMedia        = errors.New("export: no media loaded")
	ErrNoAnnotations  = errors.New("export: no annotations to export")
	ErrSurfaceMissing = errors.New("export: display surface has no size")
)

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// Empty reports whether either side is not positive.
func (d Dimensions) Empty() bool {
	return d.Width <= 0 || d.Height <= 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ParseDimensions reads "WxH", as in "1280x720".
func ParseDimensions(s string) (Dimensions, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Dimensions{}, fmt.Errorf("export: dimensions %q: want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Dimensions{}, fmt.Errorf("export: dimensions %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Dimensions{}, fmt.Errorf("export: dimensions %q: %w", s, err)
	}
	d := Dimensions{Width: width, Height: height}
	if d.Empty() {
		return Dimensions{}, fmt.Errorf("export: dimensions %q: must be positive", s)
	}
	return d, nil
}

// Scale holds the independent per-axis factors native/display.
type Scale struct {
	X, Y float64
}

// ScaleFactors computes native/display per axis. It is cheap and must be
// called with the display size measured at export time.
func ScaleFactors(native, display Dimensions) (Scale, error) {
	if display.Empty() {
		return Scale{}, ErrSurfaceMissing
	}
	if native.Empty() {
		return Scale{}, ErrNoMedia
	}
	return Scale{
		X: float64(native.Width) / float64(display.Width),
		Y: float64(native.Height) / float64(display.Height),
	}, nil
}

// Transform returns scaled copies of the visible annotations. Invisible
// ones are dropped before scaling. Line width, font size and circle radius
// follow the X factor.
func Transform(annotations []state.Annotation, native, display Dimensions) ([]state.Annotation, error) {
	sc, err := ScaleFactors(native, display)
	if err != nil {
		return nil, err
	}
	out := make([]state.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if !a.Visible() || a.Shape == nil {
			continue
		}
		scaled := a.Clone()
		scaled.Style.LineWidth = orDefault(a.Style.LineWidth, state.DefaultLineWidth) * sc.X
		scaled.Shape = sc.Apply(a.Shape)
		out = append(out, scaled)
	}
	return out, nil
}

// Apply scales one shape.
func (sc Scale) Apply(shape state.Shape) state.Shape {
	switch s := shape.(type) {
	case state.Text:
		s.X *= sc.X
		s.Y *= sc.Y
		s.FontSize = orDefault(s.FontSize, state.DefaultFontSize) * sc.X
		return s
	case state.Rectangle:
		s.X *= sc.X
		s.Y *= sc.Y
		s.Width *= sc.X
		s.Height *= sc.Y
		return s
	case state.Circle:
		s.X *= sc.X
		s.Y *= sc.Y
		s.Radius *= sc.X
		return s
	case state.Line:
		s.StartX *= sc.X
		s.StartY *= sc.Y
		s.EndX *= sc.X
		s.EndY *= sc.Y
		return s
	case state.Freehand:
		path := make([]state.Point, len(s.Path))
		for i, p := range s.Path {
			path[i] = state.Point{X: p.X * sc.X, Y: p.Y * sc.Y}
		}
		return state.Freehand{Path: path}
	}
	return shape
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
