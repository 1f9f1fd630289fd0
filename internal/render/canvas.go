package render

import (
	"image"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/state"
)

// Canvas is a Surface backed by a software gg context. A freshly cleared
// canvas is fully transparent, so it can be composited over media.
type Canvas struct {
	dc    *gg.Context
	fonts *FontBook
	log   *zap.Logger
}

var _ Surface = (*Canvas)(nil)

// NewCanvas allocates a transparent canvas. A nil font book selects the
// default font.
func NewCanvas(width, height int, fonts *FontBook) *Canvas {
	if fonts == nil {
		fonts = DefaultFontBook()
	}
	return &Canvas{
		dc:    gg.NewContext(width, height),
		fonts: fonts,
		log:   zap.L().Named("canvas"),
	}
}

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Resize matches the canvas to a new display size. Contents are dropped.
func (c *Canvas) Resize(width, height int) error {
	return c.dc.Resize(width, height)
}

// Clear implements Surface.
func (c *Canvas) Clear() {
	c.dc.ClearPath()
	c.dc.Clear()
}

// StrokeRect implements Surface.
func (c *Canvas) StrokeRect(r geometry.Rect, ps PaintStyle) {
	c.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	c.stroke(ps)
}

// StrokeCircle implements Surface.
func (c *Canvas) StrokeCircle(center state.Point, radius float64, ps PaintStyle) {
	c.dc.DrawCircle(center.X, center.Y, radius)
	c.stroke(ps)
}

// StrokeLine implements Surface.
func (c *Canvas) StrokeLine(from, to state.Point, ps PaintStyle) {
	c.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	c.stroke(ps)
}

// StrokePolyline implements Surface.
func (c *Canvas) StrokePolyline(path []state.Point, ps PaintStyle) {
	if len(path) == 0 {
		return
	}
	c.dc.MoveTo(path[0].X, path[0].Y)
	for _, p := range path[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.stroke(ps)
}

// FillText implements Surface.
func (c *Canvas) FillText(s string, x, y, fontSize float64, ps PaintStyle) {
	if s == "" {
		return
	}
	c.dc.SetFont(c.fonts.Face(fontSize))
	c.dc.SetColor(ps.RGBA().Color())
	c.dc.DrawString(s, x, y)
}

// MeasureText implements Surface.
func (c *Canvas) MeasureText(s string, fontSize float64) float64 {
	return c.fonts.MeasureText(s, fontSize)
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// Close releases the drawing context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

func (c *Canvas) stroke(ps PaintStyle) {
	c.dc.SetColor(ps.RGBA().Color())
	c.dc.SetLineWidth(ps.LineWidth)
	if err := c.dc.Stroke(); err != nil {
		c.log.Debug("stroke failed", zap.Error(err))
	}
}
