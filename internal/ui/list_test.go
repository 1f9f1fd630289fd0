package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarkupBoard/internal/state"
)

func TestAnnotationList_FollowsStore(t *testing.T) {
	fa := test.NewTempApp(t)
	store := state.NewStore()
	l := NewAnnotationList(store, fa.NewWindow("list"))
	assert.Equal(t, "Annotations (0)", l.header.Text)

	first := store.Add(state.Rectangle{Width: 40, Height: 30}, state.DefaultSettings())
	second := store.Add(state.Circle{Radius: 5}, state.DefaultSettings())
	assert.Equal(t, "Annotations (2)", l.header.Text)
	require.Len(t, l.Items(), 2)
	assert.Equal(t, first.ID, l.Items()[0].ID)

	l.list.Select(1)
	assert.Equal(t, second.ID, store.Selected())

	require.True(t, store.Remove(second.ID))
	assert.Len(t, l.Items(), 1)
	assert.Empty(t, store.Selected())
}

func TestAnnotationRow_Bind(t *testing.T) {
	fa := test.NewTempApp(t)
	store := state.NewStore()
	l := NewAnnotationList(store, fa.NewWindow("list"))
	a := store.Add(state.Text{Text: "hello"}, state.DefaultSettings())
	require.NoError(t, store.ToggleVisibility(a.ID))

	row := newAnnotationRow()
	l.bind(0, row)
	assert.Equal(t, "hello", row.label.Text)
	assert.True(t, row.edit.Visible())
	assert.Equal(t, theme.VisibilityOffIcon().Name(), row.toggle.Icon.Name())

	c := store.Add(state.Circle{Radius: 4}, state.DefaultSettings())
	zero := 0.0
	require.NoError(t, store.Update(c.ID, state.Patch{Opacity: &zero}))
	l.bind(1, row)
	assert.False(t, row.edit.Visible())
	assert.Equal(t, theme.VisibilityOffIcon().Name(), row.toggle.Icon.Name(), "zero opacity is not drawn")

	row.toggle.OnTapped()
	l.bind(1, row)
	assert.Equal(t, theme.VisibilityIcon().Name(), row.toggle.Icon.Name())
}
