package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarkupBoard/internal/render"
	"MarkupBoard/internal/render/rendertest"
	"MarkupBoard/internal/state"
)

type fixture struct {
	store    *state.Store
	rec      *rendertest.Recorder
	settings state.Settings
	m        *Machine
}

func newFixture(tool state.Tool) *fixture {
	f := &fixture{
		store:    state.NewStore(),
		rec:      rendertest.NewRecorder(600, 400),
		settings: state.DefaultSettings(),
	}
	f.settings.Tool = tool
	f.m = NewMachine(f.rec, f.store, SettingsFunc(func() state.Settings { return f.settings }))
	f.store.OnChange(func(uint64) { f.m.Redraw() })
	return f
}

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func (f *fixture) drag(from state.Point, moves ...state.Point) {
	f.m.PointerDown(from)
	for _, p := range moves[:len(moves)-1] {
		f.m.PointerMove(p)
	}
	f.m.PointerUp(moves[len(moves)-1])
}

func TestMachine_RectangleCommit(t *testing.T) {
	f := newFixture(state.ToolRectangle)
	f.drag(pt(10, 10), pt(30, 20), pt(50, 40))

	snap := f.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, state.Rectangle{X: 10, Y: 10, Width: 40, Height: 30}, snap[0].Shape)
	assert.Equal(t, Idle, f.m.Phase())
}

func TestMachine_CircleCommit(t *testing.T) {
	f := newFixture(state.ToolCircle)
	f.drag(pt(100, 100), pt(103, 104))

	snap := f.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, state.Circle{X: 100, Y: 100, Radius: 5}, snap[0].Shape)
}

func TestMachine_LineCommit(t *testing.T) {
	f := newFixture(state.ToolLine)
	f.drag(pt(1, 2), pt(7, 9), pt(30, 40))

	snap := f.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, state.Line{StartX: 1, StartY: 2, EndX: 30, EndY: 40}, snap[0].Shape)
}

func TestMachine_FreehandAccumulatesPath(t *testing.T) {
	f := newFixture(state.ToolFreehand)
	f.drag(pt(0, 0), pt(1, 1), pt(2, 3), pt(9, 9))

	snap := f.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, state.Freehand{Path: []state.Point{pt(0, 0), pt(1, 1), pt(2, 3)}}, snap[0].Shape)
}

func TestMachine_DegenerateGesturesCommit(t *testing.T) {
	f := newFixture(state.ToolFreehand)
	f.m.PointerDown(pt(5, 5))
	f.m.PointerUp(pt(5, 5))

	f.settings.Tool = state.ToolRectangle
	f.m.PointerDown(pt(5, 5))
	f.m.PointerUp(pt(5, 5))

	snap := f.store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, state.Freehand{Path: []state.Point{pt(5, 5)}}, snap[0].Shape)
	assert.Equal(t, state.Rectangle{X: 5, Y: 5}, snap[1].Shape)
}

func TestMachine_CommitCarriesActiveSettings(t *testing.T) {
	f := newFixture(state.ToolCircle)
	f.settings.Color = "#ff00ff"
	f.settings.LineWidth = 6
	f.settings.Opacity = 0.3

	var committed state.Annotation
	f.m.OnCommit = func(a state.Annotation) { committed = a }
	f.drag(pt(0, 0), pt(3, 4))

	assert.NotEmpty(t, committed.ID)
	assert.Equal(t, state.Style{Color: "#ff00ff", LineWidth: 6, Opacity: 0.3}, committed.Style)
}

func TestMachine_PreviewUsesSettingsOverCommittedSet(t *testing.T) {
	f := newFixture(state.ToolRectangle)
	existing := f.store.Add(state.Circle{X: 1, Y: 1, Radius: 1}, f.settings)
	f.settings.Color = "#ff0000"
	f.settings.LineWidth = 7

	f.m.PointerDown(pt(10, 10))
	f.m.PointerMove(pt(4, 6))

	draws := f.rec.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, rendertest.OpCircle, draws[0].Op, "committed set is redrawn first")
	assert.Equal(t, rendertest.OpRect, draws[1].Op)
	assert.Equal(t, 7.0, draws[1].Style.LineWidth)
	assert.Equal(t, render.ParseColor("#ff0000"), draws[1].Style.Color)
	assert.Equal(t, 1, f.store.Len(), "preview commits nothing")
	assert.Equal(t, Drawing, f.m.Phase())

	f.m.PointerMove(pt(20, 30))
	draws = f.rec.Draws()
	require.Len(t, draws, 2, "each move is a full redraw")
	assert.Equal(t, existing.ID, f.store.Snapshot()[0].ID)
}

func TestMachine_MoveWithoutDragIsNoop(t *testing.T) {
	f := newFixture(state.ToolLine)
	f.m.PointerMove(pt(3, 3))
	f.m.PointerUp(pt(3, 3))

	assert.Empty(t, f.rec.Calls)
	assert.Zero(t, f.store.Len())
}

func TestMachine_TextFlow(t *testing.T) {
	f := newFixture(state.ToolText)
	var requested []state.Point
	closed := 0
	f.m.OnTextRequest = func(p state.Point) { requested = append(requested, p) }
	f.m.OnTextClosed = func() { closed++ }

	f.m.PointerDown(pt(20, 30))
	pos, pending := f.m.TextPending()
	require.True(t, pending)
	assert.Equal(t, pt(20, 30), pos)
	assert.Equal(t, Idle, f.m.Phase())
	assert.Zero(t, f.store.Len(), "pointer down creates nothing")

	f.m.PointerUp(pt(20, 30))
	assert.Zero(t, f.store.Len(), "pointer up does not commit text")

	assert.True(t, f.m.ConfirmText("A"))
	snap := f.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, state.Text{X: 20, Y: 30, Text: "A", FontSize: 16}, snap[0].Shape)

	f.m.PointerDown(pt(60, 60))
	assert.False(t, f.m.ConfirmText(""))
	assert.False(t, f.m.ConfirmText("A"), "nothing pending after a confirm")
	assert.Equal(t, 1, f.store.Len())

	assert.Equal(t, []state.Point{pt(20, 30), pt(60, 60)}, requested)
	assert.Equal(t, 2, closed)
}

func TestMachine_TextWhitespaceAndCancel(t *testing.T) {
	f := newFixture(state.ToolText)

	f.m.PointerDown(pt(1, 1))
	assert.False(t, f.m.ConfirmText("   \t"))

	f.m.PointerDown(pt(2, 2))
	f.m.CancelText()
	_, pending := f.m.TextPending()
	assert.False(t, pending)
	assert.False(t, f.m.ConfirmText("late"))

	assert.Zero(t, f.store.Len())
}

func TestMachine_ClickSelectsTopmost(t *testing.T) {
	f := newFixture(state.ToolSelect)
	below := f.store.Add(state.Rectangle{X: 0, Y: 0, Width: 100, Height: 100}, f.settings)
	above := f.store.Add(state.Circle{X: 50, Y: 50, Radius: 10}, f.settings)

	f.m.Click(pt(50, 50))
	assert.Equal(t, above.ID, f.store.Selected())

	f.m.Click(pt(5, 5))
	assert.Equal(t, below.ID, f.store.Selected())

	f.m.Click(pt(500, 500))
	assert.Empty(t, f.store.Selected())
}

func TestMachine_ClickIgnoresHiddenAndOtherTools(t *testing.T) {
	f := newFixture(state.ToolSelect)
	a := f.store.Add(state.Circle{X: 50, Y: 50, Radius: 10}, f.settings)
	require.NoError(t, f.store.ToggleVisibility(a.ID))

	f.m.Click(pt(50, 50))
	assert.Empty(t, f.store.Selected())

	require.NoError(t, f.store.ToggleVisibility(a.ID))
	f.settings.Tool = state.ToolRectangle
	f.m.Click(pt(50, 50))
	assert.Empty(t, f.store.Selected())
	assert.Equal(t, 1, f.store.Len(), "selection never mutates the sequence")
}

func TestMachine_SelectToolDoesNotDraw(t *testing.T) {
	f := newFixture(state.ToolSelect)
	f.drag(pt(0, 0), pt(10, 10), pt(20, 20))
	assert.Zero(t, f.store.Len())
	assert.Equal(t, Idle, f.m.Phase())
}

func TestMachine_SelectionRedrawsWithDecoration(t *testing.T) {
	f := newFixture(state.ToolSelect)
	a := f.store.Add(state.Rectangle{X: 0, Y: 0, Width: 10, Height: 10}, f.settings)

	f.m.Click(pt(5, 5))
	require.Equal(t, a.ID, f.store.Selected())

	draws := f.rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, render.HighlightColor, draws[0].Style.Color)
}
