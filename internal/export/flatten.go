package export

import (
	"image"

	"golang.org/x/image/draw"

	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

// NativeSize returns the pixel size of a decoded frame.
func NativeSize(frame image.Image) Dimensions {
	if frame == nil {
		return Dimensions{}
	}
	b := frame.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// Flatten renders the visible annotations, authored against display, onto
// a copy of frame at the frame's own resolution. Selection is never drawn.
// A nil font book selects the default font.
func Flatten(frame image.Image, annotations []state.Annotation, display Dimensions, fonts *render.FontBook) (*image.RGBA, error) {
	native := NativeSize(frame)
	scaled, err := Transform(annotations, native, display)
	if err != nil {
		return nil, err
	}

	overlay := render.NewCanvas(native.Width, native.Height, fonts)
	defer overlay.Close()
	render.Render(overlay, scaled, "")

	bounds := image.Rect(0, 0, native.Width, native.Height)
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, frame.Bounds().Min, draw.Src)
	draw.Draw(out, bounds, overlay.Image(), image.Point{}, draw.Over)
	return out, nil
}
