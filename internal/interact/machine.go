// Package interact turns pointer and keyboard events into live previews and
// committed annotations.
package interact

import (
	"strings"

	"go.uber.org/zap"

	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

// Store is the annotation owner the machine reads from and commits to.
type Store interface {
	Add(shape state.Shape, settings state.Settings) state.Annotation
	Snapshot() []state.Annotation
	Selected() string
	Select(id string) error
}

// SettingsSource supplies the active tool and style.
type SettingsSource interface {
	Settings() state.Settings
}

// SettingsFunc adapts a function to SettingsSource.
type SettingsFunc func() state.Settings

// Settings implements SettingsSource.
func (f SettingsFunc) Settings() state.Settings { return f() }

// Phase is the drag state of the machine. Text entry is tracked separately
// by TextPending.
type Phase int

const (
	Idle Phase = iota
	Drawing
)

func (p Phase) String() string {
	if p == Drawing {
		return "drawing"
	}
	return "idle"
}

// gesture is the transient in-progress state. It is reset on every commit
// and cancel.
type gesture struct {
	drawing     bool
	tool        state.Tool
	start       state.Point
	path        []state.Point
	pendingText *state.Point
}

// Machine is the pointer-driven interaction state machine. It is not safe
// for concurrent use; all calls come from the surface owner's thread.
type Machine struct {
	surface  render.Surface
	store    Store
	settings SettingsSource
	g        gesture
	log      *zap.Logger

	// OnTextRequest asks the UI for a text input at p.
	OnTextRequest func(p state.Point)
	// OnTextClosed tells the UI the pending text input is gone.
	OnTextClosed func()
	// OnCommit runs after a gesture produced an annotation.
	OnCommit func(a state.Annotation)
}

// NewMachine wires a machine to its surface, store and settings.
func NewMachine(surface render.Surface, store Store, settings SettingsSource) *Machine {
	return &Machine{
		surface:  surface,
		store:    store,
		settings: settings,
		log:      zap.L().Named("interact"),
	}
}

// Phase returns the drag state.
func (m *Machine) Phase() Phase {
	if m.g.drawing {
		return Drawing
	}
	return Idle
}

// TextPending reports whether a text position awaits confirmation, and
// where.
func (m *Machine) TextPending() (state.Point, bool) {
	if m.g.pendingText == nil {
		return state.Point{}, false
	}
	return *m.g.pendingText, true
}

// Redraw renders the committed annotations with the current selection.
func (m *Machine) Redraw() {
	render.Render(m.surface, m.store.Snapshot(), m.store.Selected())
}

// PointerDown starts a gesture. The text tool only remembers the position
// and asks for input; the select tool is handled by Click.
func (m *Machine) PointerDown(p state.Point) {
	tool := m.settings.Settings().Tool
	switch tool {
	case state.ToolSelect:
		return
	case state.ToolText:
		pos := p
		m.g.pendingText = &pos
		if m.OnTextRequest != nil {
			m.OnTextRequest(p)
		}
		return
	}

	m.g.drawing = true
	m.g.tool = tool
	m.g.start = p
	m.g.path = nil
	if tool == state.ToolFreehand {
		m.g.path = []state.Point{p}
	}
}

// PointerMove extends the gesture and redraws the committed set with a live
// preview on top. It is a no-op unless a drag is in progress.
func (m *Machine) PointerMove(p state.Point) {
	if !m.g.drawing {
		return
	}
	if m.g.tool == state.ToolFreehand {
		m.g.path = append(m.g.path, p)
	}

	m.Redraw()
	shape := m.shapeTo(p)
	if shape == nil {
		return
	}
	render.DrawShape(m.surface, shape, render.PreviewStyle(m.settings.Settings()))
}

// PointerUp commits the gesture with the same geometry the preview showed.
// Zero-size shapes and single-point strokes are committed too.
func (m *Machine) PointerUp(p state.Point) {
	if !m.g.drawing {
		return
	}
	shape := m.shapeTo(p)
	m.g = gesture{pendingText: m.g.pendingText}
	if shape == nil {
		return
	}
	m.commit(shape)
}

// ConfirmText commits the pending text at the remembered position.
// Whitespace-only input commits nothing. It reports whether an annotation
// was created; either way the pending state ends.
func (m *Machine) ConfirmText(text string) bool {
	pos, ok := m.TextPending()
	if !ok {
		return false
	}
	m.closeText()
	if strings.TrimSpace(text) == "" {
		return false
	}
	m.commit(state.Text{X: pos.X, Y: pos.Y, Text: text})
	return true
}

// CancelText discards the pending text without committing.
func (m *Machine) CancelText() {
	if m.g.pendingText == nil {
		return
	}
	m.closeText()
}

// Click selects the topmost visible annotation under p when the select tool
// is active, or clears the selection when nothing is hit.
func (m *Machine) Click(p state.Point) {
	if m.settings.Settings().Tool != state.ToolSelect {
		return
	}
	id := ""
	if hit, ok := geometry.Pick(m.store.Snapshot(), p, m.surface); ok {
		id = hit.ID
	}
	if err := m.store.Select(id); err != nil {
		m.log.Warn("select failed", zap.String("id", id), zap.Error(err))
	}
}

func (m *Machine) closeText() {
	m.g.pendingText = nil
	if m.OnTextClosed != nil {
		m.OnTextClosed()
	}
}

// shapeTo computes the shape of the current drag ending at p.
func (m *Machine) shapeTo(p state.Point) state.Shape {
	start := m.g.start
	switch m.g.tool {
	case state.ToolRectangle:
		return state.Rectangle{X: start.X, Y: start.Y, Width: p.X - start.X, Height: p.Y - start.Y}
	case state.ToolCircle:
		return state.Circle{X: start.X, Y: start.Y, Radius: start.Distance(p)}
	case state.ToolLine:
		return state.Line{StartX: start.X, StartY: start.Y, EndX: p.X, EndY: p.Y}
	case state.ToolFreehand:
		path := make([]state.Point, len(m.g.path))
		copy(path, m.g.path)
		return state.Freehand{Path: path}
	}
	return nil
}

func (m *Machine) commit(shape state.Shape) {
	a := m.store.Add(shape, m.settings.Settings())
	m.log.Debug("gesture committed", zap.String("id", a.ID), zap.String("type", string(a.Kind())))
	if m.OnCommit != nil {
		m.OnCommit(a)
	}
}
