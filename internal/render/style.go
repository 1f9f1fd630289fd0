package render

import (
	"math"

	"github.com/gogpu/gg"

	"MarkupBoard/internal/state"
)

// Selection decoration.
var (
	HighlightColor     = gg.Hex("#3b82f6")
	LineHighlightColor = gg.Hex("#7dd3fc")
)

const (
	// SelectionWidthIncrement is added to the stroke width of a selected
	// annotation.
	SelectionWidthIncrement = 1.0
	// SelectionMargin pads the box drawn around a selected text or line.
	SelectionMargin = 2.0
)

// PaintStyle is the immutable paint state handed to every draw primitive.
// Alpha multiplies the color's own alpha.
type PaintStyle struct {
	Color     gg.RGBA
	LineWidth float64
	Alpha     float64
}

// RGBA returns the color with Alpha applied.
func (p PaintStyle) RGBA() gg.RGBA {
	c := p.Color
	c.A *= p.Alpha
	return c
}

// ParseColor converts a #hex color, falling back to black.
func ParseColor(s string) gg.RGBA {
	if !state.ValidColor(s) {
		return gg.Hex(state.DefaultColor)
	}
	return gg.Hex(s)
}

// StyleFor resolves the paint style of a stored annotation style, filling
// in defaults for missing values.
func StyleFor(s state.Style) PaintStyle {
	return PaintStyle{
		Color:     ParseColor(s.Color),
		LineWidth: orDefault(s.LineWidth, state.DefaultLineWidth),
		Alpha:     clampUnit(s.Opacity),
	}
}

// PreviewStyle resolves the paint style of a live preview from the active
// settings.
func PreviewStyle(s state.Settings) PaintStyle {
	return PaintStyle{
		Color:     ParseColor(s.Color),
		LineWidth: orDefault(s.LineWidth, state.DefaultLineWidth),
		Alpha:     clampUnit(orDefault(s.Opacity, state.DefaultOpacity)),
	}
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return fallback
	}
	return v
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(0, math.Min(1, v))
}
