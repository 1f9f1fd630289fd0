// Package ui is the desktop shell: the annotator surface, the toolbar, the
// annotation list and the export panel.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"MarkupBoard/internal/config"
	"MarkupBoard/internal/export"
	"MarkupBoard/internal/geometry"
	"MarkupBoard/internal/media"
	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

// exportTimeout bounds the wait for media that is still loading.
const exportTimeout = 30 * time.Second

// App is one annotation window.
type App struct {
	cfg      *config.Config
	win      fyne.Window
	store    *state.Store
	settings *SettingsModel
	board    *Annotator
	list     *AnnotationList
	exporter *export.Exporter
	handle   *media.Handle
	textForm *dialog.FormDialog
	status   *widget.Label
	log      *zap.Logger

	// OnMediaChanged runs after new media replaced the session.
	OnMediaChanged func(m *media.Media)
}

// New builds the window. fonts may be nil.
func New(fa fyne.App, cfg *config.Config, fonts *render.FontBook) *App {
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		format = export.FormatPNG
	}
	a := &App{
		cfg:      cfg,
		win:      fa.NewWindow("MarkupBoard"),
		store:    state.NewStore(),
		settings: NewSettingsModel(cfg.Settings()),
		exporter: export.NewExporter(cfg.Export.Dir, format, fonts),
		status:   widget.NewLabel("Open an image or video to start"),
		log:      zap.L().Named("ui"),
	}
	fallback := export.Dimensions{Width: cfg.Display.Width, Height: cfg.Display.Height}
	a.board = NewAnnotator(a.store, a.settings, fonts, fallback)
	a.board.Machine().OnTextRequest = a.askText
	a.board.Machine().OnTextClosed = a.closeText
	a.board.Machine().OnCommit = func(ann state.Annotation) {
		a.SetStatus("Added " + geometry.Label(ann))
	}
	a.list = NewAnnotationList(a.store, a.win)

	a.win.SetContent(a.layout())
	a.win.Resize(fyne.NewSize(float32(cfg.Display.Width)+320, float32(cfg.Display.Height)+80))
	a.win.SetOnClosed(func() { _ = a.board.Close() })
	return a
}

// Store is the annotation owner of this window.
func (a *App) Store() *state.Store { return a.store }

// Window is the fyne window.
func (a *App) Window() fyne.Window { return a.win }

// Board is the annotation surface.
func (a *App) Board() *Annotator { return a.board }

// Settings is the toolbar model.
func (a *App) Settings() *SettingsModel { return a.settings }

// ShowAndRun shows the window and runs the event loop.
func (a *App) ShowAndRun() {
	a.win.ShowAndRun()
}

// SetStatus updates the status line.
func (a *App) SetStatus(text string) {
	a.status.SetText(text)
}

func (a *App) layout() fyne.CanvasObject {
	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.chooseMedia),
		widget.NewToolbarAction(theme.DocumentIcon(), a.chooseDocument),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), a.confirmClear),
	)
	side := container.NewBorder(
		NewToolbar(a.settings, a.win),
		a.exportPanel(),
		nil, nil,
		a.list.Object(),
	)
	split := container.NewHSplit(a.board, side)
	split.SetOffset(0.75)
	return container.NewBorder(actions, a.status, nil, nil, split)
}

// OpenMedia replaces the session with the media at path. framePath is the
// still frame of a video and is ignored for images.
func (a *App) OpenMedia(path, framePath string) error {
	m, err := media.Open(path)
	if err != nil {
		return err
	}
	if m.Kind == media.KindVideo && framePath != "" {
		if err := m.WithFrame(framePath); err != nil {
			return err
		}
	}

	a.handle = media.Load(context.Background(), m)
	a.store.Clear()
	a.board.SetFrame(nil)
	a.SetStatus(fmt.Sprintf("Loading %s…", m.Name))
	a.win.SetTitle("MarkupBoard - " + m.Name)

	h := a.handle
	go func() {
		frame, err := h.Wait(context.Background())
		fyne.Do(func() {
			if h != a.handle {
				return
			}
			if err != nil {
				if errors.Is(err, media.ErrNoFrame) {
					a.SetStatus(fmt.Sprintf("%s loaded; add a still frame to export it", m.Name))
					return
				}
				a.showError(err)
				return
			}
			a.board.SetFrame(frame)
			b := frame.Bounds()
			a.SetStatus(fmt.Sprintf("%s (%d×%d)", m.Name, b.Dx(), b.Dy()))
		})
	}()
	if a.OnMediaChanged != nil {
		a.OnMediaChanged(m)
	}
	return nil
}

// LoadDocument restores the annotations of a data export.
func (a *App) LoadDocument(r io.Reader) error {
	doc, err := export.ReadDocument(r)
	if err != nil {
		return err
	}
	a.store.Replace(doc.Annotations)
	msg := fmt.Sprintf("Loaded %d annotations", len(doc.Annotations))
	if date, err := doc.Date(); err == nil {
		msg += date.Local().Format(" exported Jan 2 15:04")
	}
	if a.handle != nil && doc.Media.Name != "" && doc.Media.Name != a.handle.Name() {
		msg += fmt.Sprintf(" (drawn on %s)", doc.Media.Name)
	}
	a.SetStatus(msg)
	return nil
}

// Document is the current session as a data export.
func (a *App) Document() export.Document {
	var info export.MediaInfo
	if a.handle != nil {
		info = export.MediaInfo{Name: a.handle.Name(), Type: a.handle.Type()}
	}
	return export.NewDocument(info, a.store.Snapshot(), a.board.DisplaySize(), time.Now())
}

func (a *App) request() export.Request {
	req := export.Request{
		Annotations: a.store.Snapshot(),
		Display:     a.board.DisplaySize(),
	}
	if a.handle != nil {
		req.Source = a.handle
	}
	return req
}

// askText collects the text of a text annotation at p. A new request
// replaces an open dialog, like the pending position is replaced.
func (a *App) askText(p state.Point) {
	a.closeText()
	m := a.board.Machine()
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Enter text…")
	items := []*widget.FormItem{widget.NewFormItem("Text", entry)}
	var form *dialog.FormDialog
	form = dialog.NewForm("Add text", "Add", "Cancel", items, func(confirm bool) {
		if form != a.textForm {
			return
		}
		a.textForm = nil
		if !confirm {
			m.CancelText()
			return
		}
		m.ConfirmText(entry.Text)
	}, a.win)
	entry.OnSubmitted = func(string) { form.Submit() }
	a.textForm = form
	form.Show()
	a.win.Canvas().Focus(entry)
}

// closeText dismisses the text dialog once the machine no longer waits
// for input.
func (a *App) closeText() {
	form := a.textForm
	if form == nil {
		return
	}
	a.textForm = nil
	form.Hide()
}

func (a *App) chooseMedia() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()

		if err := a.OpenMedia(path, ""); err != nil {
			a.showError(err)
			return
		}
		if a.handle.Media().Kind == media.KindVideo {
			a.chooseFrame(a.handle.Media())
		}
	}, a.win)
}

// chooseFrame asks for a still frame of a video, which sets the native
// size used for export.
func (a *App) chooseFrame(m *media.Media) {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		if err := a.OpenMedia(m.Path, path); err != nil {
			a.showError(err)
		}
	}, a.win)
}

func (a *App) chooseDocument() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		if err := a.LoadDocument(r); err != nil {
			a.showError(err)
		}
	}, a.win)
}

func (a *App) confirmClear() {
	if a.store.Len() == 0 {
		return
	}
	dialog.ShowConfirm("Clear annotations", "Remove every annotation?", func(ok bool) {
		if ok {
			a.store.Clear()
		}
	}, a.win)
}

func (a *App) showError(err error) {
	a.log.Warn("operation failed", zap.Error(err))
	a.SetStatus(err.Error())
	dialog.ShowError(err, a.win)
}
