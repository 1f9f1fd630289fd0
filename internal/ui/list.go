package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/state"
)

// annotationRow is one entry of the list: a label plus edit, visibility
// and delete buttons.
type annotationRow struct {
	widget.BaseWidget
	label  *widget.Label
	edit   *widget.Button
	toggle *widget.Button
	remove *widget.Button
}

func newAnnotationRow() *annotationRow {
	r := &annotationRow{
		label:  widget.NewLabel(""),
		edit:   widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil),
		toggle: widget.NewButtonWithIcon("", theme.VisibilityIcon(), nil),
		remove: widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
	}
	r.label.Truncation = fyne.TextTruncateEllipsis
	r.edit.Importance = widget.LowImportance
	r.toggle.Importance = widget.LowImportance
	r.remove.Importance = widget.LowImportance
	r.ExtendBaseWidget(r)
	return r
}

func (r *annotationRow) CreateRenderer() fyne.WidgetRenderer {
	buttons := container.NewHBox(r.edit, r.toggle, r.remove)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, nil, buttons, r.label))
}

// AnnotationList shows the annotations in stored order and edits them
// through the store.
type AnnotationList struct {
	store   *state.Store
	win     fyne.Window
	items   []state.Annotation
	list    *widget.List
	header  *widget.Label
	view    fyne.CanvasObject
	syncing bool
	log     *zap.Logger
}

// NewAnnotationList follows store. win parents the text edit dialog.
func NewAnnotationList(store *state.Store, win fyne.Window) *AnnotationList {
	l := &AnnotationList{
		store:  store,
		win:    win,
		header: widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		log:    zap.L().Named("list"),
	}
	l.list = widget.NewList(
		func() int { return len(l.items) },
		func() fyne.CanvasObject { return newAnnotationRow() },
		func(id widget.ListItemID, obj fyne.CanvasObject) { l.bind(id, obj.(*annotationRow)) },
	)
	l.list.OnSelected = func(id widget.ListItemID) {
		if l.syncing || id >= len(l.items) {
			return
		}
		l.report(l.store.Select(l.items[id].ID))
	}
	l.view = container.NewBorder(l.header, nil, nil, nil, l.list)
	store.OnChange(func(uint64) { l.Reload() })
	l.Reload()
	return l
}

// Object is the widget tree to place in a window.
func (l *AnnotationList) Object() fyne.CanvasObject { return l.view }

// Items returns the annotations as last shown.
func (l *AnnotationList) Items() []state.Annotation { return l.items }

// Reload re-reads the store and mirrors its selection.
func (l *AnnotationList) Reload() {
	l.items = l.store.Snapshot()
	l.header.SetText(fmt.Sprintf("Annotations (%d)", len(l.items)))

	l.syncing = true
	defer func() { l.syncing = false }()
	l.list.Refresh()
	selected := l.store.Selected()
	for i, a := range l.items {
		if a.ID == selected {
			l.list.Select(i)
			return
		}
	}
	l.list.UnselectAll()
}

func (l *AnnotationList) bind(id widget.ListItemID, row *annotationRow) {
	if id >= len(l.items) {
		return
	}
	a := l.items[id]
	row.label.SetText(geometry.Label(a))

	if a.Visible() {
		row.toggle.SetIcon(theme.VisibilityIcon())
	} else {
		row.toggle.SetIcon(theme.VisibilityOffIcon())
	}
	row.toggle.OnTapped = func() { l.report(l.store.ToggleVisibility(a.ID)) }
	row.remove.OnTapped = func() { l.store.Remove(a.ID) }

	if a.Kind() == state.KindText {
		row.edit.Show()
		row.edit.OnTapped = func() { l.editText(a) }
	} else {
		row.edit.Hide()
		row.edit.OnTapped = nil
	}
}

// editText asks for a new text. Empty input keeps the old text.
func (l *AnnotationList) editText(a state.Annotation) {
	t, ok := a.Shape.(state.Text)
	if !ok {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(t.Text)
	items := []*widget.FormItem{widget.NewFormItem("Text", entry)}
	dialog.ShowForm("Edit text", "Save", "Cancel", items, func(confirm bool) {
		if confirm {
			l.report(l.store.SetText(a.ID, entry.Text))
		}
	}, l.win)
}

func (l *AnnotationList) report(err error) {
	if err == nil {
		return
	}
	l.log.Warn("annotation edit failed", zap.Error(err))
	if l.win != nil {
		dialog.ShowError(err, l.win)
	}
}
