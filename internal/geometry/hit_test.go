package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"MarkupBoard/internal/state"
)

// fixedWidth measures every rune as half the font size.
type fixedWidth struct{}

func (fixedWidth) MeasureText(s string, fontSize float64) float64 {
	return float64(len([]rune(s))) * fontSize / 2
}

func ann(id string, shape state.Shape) state.Annotation {
	return state.Annotation{ID: id, Style: state.DefaultStyle(), Shape: shape}
}

func TestHitShape(t *testing.T) {
	tests := []struct {
		name  string
		shape state.Shape
		p     state.Point
		want  bool
	}{
		{"text inside", state.Text{X: 20, Y: 30, Text: "AB", FontSize: 16}, state.Point{X: 30, Y: 20}, true},
		{"text above box", state.Text{X: 20, Y: 30, Text: "AB", FontSize: 16}, state.Point{X: 30, Y: 13}, false},
		{"text below baseline", state.Text{X: 20, Y: 30, Text: "AB", FontSize: 16}, state.Point{X: 30, Y: 31}, false},
		{"text negative font size falls back", state.Text{X: 20, Y: 30, Text: "AB", FontSize: -4}, state.Point{X: 30, Y: 20}, true},
		{"text right edge", state.Text{X: 20, Y: 30, Text: "AB", FontSize: 16}, state.Point{X: 36, Y: 30}, true},
		{"rect inside", state.Rectangle{X: 10, Y: 10, Width: 40, Height: 30}, state.Point{X: 30, Y: 20}, true},
		{"rect edge", state.Rectangle{X: 10, Y: 10, Width: 40, Height: 30}, state.Point{X: 50, Y: 40}, true},
		{"rect outside", state.Rectangle{X: 10, Y: 10, Width: 40, Height: 30}, state.Point{X: 51, Y: 20}, false},
		{"rect negative size", state.Rectangle{X: 50, Y: 40, Width: -40, Height: -30}, state.Point{X: 30, Y: 20}, true},
		{"circle on rim", state.Circle{X: 100, Y: 100, Radius: 5}, state.Point{X: 103, Y: 104}, true},
		{"circle outside", state.Circle{X: 100, Y: 100, Radius: 5}, state.Point{X: 104, Y: 104}, false},
		{"line at tolerance", state.Line{StartX: 0, StartY: 0, EndX: 100, EndY: 0}, state.Point{X: 50, Y: 5}, true},
		{"line past tolerance", state.Line{StartX: 0, StartY: 0, EndX: 100, EndY: 0}, state.Point{X: 50, Y: 5.0001}, false},
		{"line beyond end clamps", state.Line{StartX: 0, StartY: 0, EndX: 100, EndY: 0}, state.Point{X: 104, Y: 3}, true},
		{"line beyond end misses", state.Line{StartX: 0, StartY: 0, EndX: 100, EndY: 0}, state.Point{X: 106, Y: 0}, false},
		{"zero length line", state.Line{StartX: 5, StartY: 5, EndX: 5, EndY: 5}, state.Point{X: 8, Y: 9}, true},
		{"freehand vertex", state.Freehand{Path: []state.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}, state.Point{X: 0, Y: 4}, true},
		{"freehand between sparse vertices", state.Freehand{Path: []state.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}, state.Point{X: 50, Y: 2}, true},
		{"freehand far", state.Freehand{Path: []state.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}, state.Point{X: 50, Y: 20}, false},
		{"freehand single point", state.Freehand{Path: []state.Point{{X: 10, Y: 10}}}, state.Point{X: 13, Y: 14}, true},
		{"freehand empty", state.Freehand{}, state.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HitShape(tt.shape, tt.p, fixedWidth{}))
		})
	}
}

func TestPick_TopmostWins(t *testing.T) {
	below := ann("below", state.Rectangle{X: 0, Y: 0, Width: 100, Height: 100})
	above := ann("above", state.Circle{X: 50, Y: 50, Radius: 20})
	list := []state.Annotation{below, above}

	for i := 0; i < 3; i++ {
		got, ok := Pick(list, state.Point{X: 50, Y: 50}, fixedWidth{})
		assert.True(t, ok)
		assert.Equal(t, "above", got.ID)
	}

	got, ok := Pick(list, state.Point{X: 5, Y: 5}, fixedWidth{})
	assert.True(t, ok)
	assert.Equal(t, "below", got.ID)
}

func TestPick_SkipsHidden(t *testing.T) {
	below := ann("below", state.Rectangle{X: 0, Y: 0, Width: 100, Height: 100})
	hidden := ann("hidden", state.Circle{X: 50, Y: 50, Radius: 20})
	hidden.Style.Hidden = true
	transparent := ann("transparent", state.Circle{X: 50, Y: 50, Radius: 20})
	transparent.Style.Opacity = 0

	got, ok := Pick([]state.Annotation{below, hidden, transparent}, state.Point{X: 50, Y: 50}, fixedWidth{})
	assert.True(t, ok)
	assert.Equal(t, "below", got.ID)

	_, ok = Pick([]state.Annotation{hidden, transparent}, state.Point{X: 50, Y: 50}, fixedWidth{})
	assert.False(t, ok)
}

func TestNormalize_SwappedCornersAgree(t *testing.T) {
	dragged := state.Rectangle{X: 50, Y: 40, Width: -40, Height: -30}
	swapped := state.Rectangle{X: 10, Y: 10, Width: 40, Height: 30}
	assert.Equal(t, Normalize(swapped), Normalize(dragged))
}

func TestRect_Helpers(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, r.Contains(state.Point{X: 10, Y: 10}))
	assert.False(t, r.Contains(state.Point{X: 10.5, Y: 0}))
	assert.Equal(t, Rect{X: -2, Y: -2, Width: 14, Height: 14}, r.Expand(2))

	_, ok := BoundsOf(nil)
	assert.False(t, ok)
}
