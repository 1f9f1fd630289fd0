package ui

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"MarkupBoard/internal/export"
	"MarkupBoard/internal/interact"
	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

var backdropColor = color.NRGBA{R: 245, G: 246, B: 248, A: 255}

// Annotator shows the media frame with the annotation overlay on top and
// feeds pointer events to the interaction machine. Display space is the
// area the frame occupies inside the widget.
type Annotator struct {
	widget.BaseWidget

	store   *state.Store
	machine *interact.Machine
	surface *render.Canvas
	log     *zap.Logger

	frame    image.Image
	fallback export.Dimensions
	origin   fyne.Position
	display  export.Dimensions
	lastDrag fyne.Position

	backdrop *canvas.Rectangle
	media    *canvas.Image
	overlay  *canvas.Image
}

var _ fyne.Widget = (*Annotator)(nil)
var _ fyne.Draggable = (*Annotator)(nil)
var _ fyne.Tappable = (*Annotator)(nil)
var _ desktop.Mouseable = (*Annotator)(nil)

// NewAnnotator draws the annotations of store with the tool and style of
// settings. fallback sizes the surface while no frame is loaded.
func NewAnnotator(store *state.Store, settings interact.SettingsSource, fonts *render.FontBook, fallback export.Dimensions) *Annotator {
	a := &Annotator{
		store:    store,
		surface:  render.NewCanvas(1, 1, fonts),
		fallback: fallback,
		backdrop: canvas.NewRectangle(backdropColor),
		log:      zap.L().Named("annotator"),
	}
	a.media = canvas.NewImageFromImage(nil)
	a.media.FillMode = canvas.ImageFillStretch
	a.overlay = canvas.NewImageFromImage(a.surface.Image())
	a.overlay.FillMode = canvas.ImageFillStretch
	a.overlay.ScaleMode = canvas.ImageScaleFastest

	a.machine = interact.NewMachine(a.surface, store, settings)
	store.OnChange(func(uint64) { a.redraw() })
	a.ExtendBaseWidget(a)
	return a
}

// Machine exposes the interaction machine for text entry wiring.
func (a *Annotator) Machine() *interact.Machine { return a.machine }

// SetFrame shows a decoded media frame; nil clears it.
func (a *Annotator) SetFrame(img image.Image) {
	a.frame = img
	a.media.Image = img
	a.display = export.Dimensions{}
	a.Refresh()
}

// Frame returns the shown frame.
func (a *Annotator) Frame() image.Image { return a.frame }

// DisplaySize is the size of the drawing surface right now.
func (a *Annotator) DisplaySize() export.Dimensions { return a.display }

// ToSurface maps a widget position to display space.
func (a *Annotator) ToSurface(pos fyne.Position) state.Point {
	return state.Point{X: float64(pos.X - a.origin.X), Y: float64(pos.Y - a.origin.Y)}
}

func (a *Annotator) native() export.Dimensions {
	if a.frame != nil {
		return export.NativeSize(a.frame)
	}
	return a.fallback
}

// layout fits the frame into size keeping its aspect ratio and resizes the
// surface when the display size changed.
func (a *Annotator) layout(size fyne.Size) {
	pos, fit := FitRect(size, a.native())
	a.origin = pos
	a.backdrop.Resize(size)
	for _, obj := range []fyne.CanvasObject{a.media, a.overlay} {
		obj.Move(pos)
		obj.Resize(fit)
	}

	display := export.Dimensions{Width: int(math.Round(float64(fit.Width))), Height: int(math.Round(float64(fit.Height)))}
	if display == a.display || display.Empty() {
		return
	}
	a.display = display
	if err := a.surface.Resize(display.Width, display.Height); err != nil {
		a.log.Warn("surface resize failed", zap.Stringer("size", display), zap.Error(err))
		return
	}
	a.redraw()
}

func (a *Annotator) redraw() {
	a.machine.Redraw()
	a.present()
}

func (a *Annotator) present() {
	a.overlay.Image = a.surface.Image()
	a.overlay.Refresh()
}

func (a *Annotator) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	a.lastDrag = e.Position
	a.machine.PointerDown(a.ToSurface(e.Position))
}

func (a *Annotator) Dragged(e *fyne.DragEvent) {
	if a.machine.Phase() != interact.Drawing {
		return
	}
	a.lastDrag = e.Position
	a.machine.PointerMove(a.ToSurface(e.Position))
	a.present()
}

func (a *Annotator) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	a.machine.PointerUp(a.ToSurface(e.Position))
	a.present()
}

func (a *Annotator) Tapped(e *fyne.PointEvent) {
	a.machine.Click(a.ToSurface(e.Position))
	a.present()
}

// DragEnd commits a drag released outside the widget, where MouseUp goes
// to another object.
func (a *Annotator) DragEnd() {
	if a.machine.Phase() != interact.Drawing {
		return
	}
	a.machine.PointerUp(a.ToSurface(a.lastDrag))
	a.present()
}

func (a *Annotator) CreateRenderer() fyne.WidgetRenderer {
	return &annotatorRenderer{a: a}
}

// FitRect centers native inside size at the largest scale that fits.
func FitRect(size fyne.Size, native export.Dimensions) (fyne.Position, fyne.Size) {
	if native.Empty() || size.Width <= 0 || size.Height <= 0 {
		return fyne.NewPos(0, 0), size
	}
	scale := math.Min(float64(size.Width)/float64(native.Width), float64(size.Height)/float64(native.Height))
	w := float32(float64(native.Width) * scale)
	h := float32(float64(native.Height) * scale)
	return fyne.NewPos((size.Width-w)/2, (size.Height-h)/2), fyne.NewSize(w, h)
}

type annotatorRenderer struct {
	a *Annotator
}

func (r *annotatorRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.a.backdrop, r.a.media, r.a.overlay}
}

func (r *annotatorRenderer) Layout(size fyne.Size) {
	r.a.layout(size)
}

func (r *annotatorRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *annotatorRenderer) Refresh() {
	r.a.layout(r.a.Size())
	r.a.media.Refresh()
	r.a.present()
}

func (r *annotatorRenderer) Destroy() {}

// Close releases the drawing surface.
func (a *Annotator) Close() error {
	return a.surface.Close()
}
