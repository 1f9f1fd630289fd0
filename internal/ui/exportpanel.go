package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"MarkupBoard/internal/export"
)

func formatLabel(f export.Format) string {
	if f == export.FormatPNG {
		return "PNG (Recommended)"
	}
	return strings.ToUpper(string(f))
}

// exportPanel is the format picker, the two export buttons and a summary
// of what will be written.
func (a *App) exportPanel() fyne.CanvasObject {
	labels := make([]string, 0, len(export.Formats))
	byLabel := make(map[string]export.Format, len(export.Formats))
	for _, f := range export.Formats {
		labels = append(labels, formatLabel(f))
		byLabel[formatLabel(f)] = f
	}

	imageBtn := widget.NewButton("", nil)
	imageBtn.Importance = widget.HighImportance
	dataBtn := widget.NewButton("Export Annotation Data", a.exportData)
	summary := widget.NewLabel("")
	summary.Wrapping = fyne.TextWrapWord

	format := widget.NewSelect(labels, func(label string) {
		a.exporter.Format = byLabel[label]
		imageBtn.SetText("Export as " + strings.ToUpper(string(a.exporter.Format)))
	})
	format.SetSelected(formatLabel(a.exporter.Format))

	imageBtn.OnTapped = func() {
		imageBtn.Disable()
		imageBtn.SetText("Exporting…")
		a.exportImage(func() {
			imageBtn.Enable()
			imageBtn.SetText("Export as " + strings.ToUpper(string(a.exporter.Format)))
		})
	}

	refresh := func() {
		n := a.store.Len()
		summary.SetText(fmt.Sprintf("%d annotation(s) will be exported. Hidden annotations are left out of the image; the data file keeps them. Images keep the original media resolution.", n))
		if n == 0 {
			imageBtn.Disable()
			dataBtn.Disable()
		} else {
			imageBtn.Enable()
			dataBtn.Enable()
		}
	}
	refresh()
	a.store.OnChange(func(uint64) { refresh() })

	return container.NewVBox(
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Export", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		format,
		imageBtn,
		dataBtn,
		summary,
	)
}

// exportImage flattens on a worker goroutine, since it may wait for the
// media to finish loading. done runs on the UI thread.
func (a *App) exportImage(done func()) {
	req := a.request()
	e := *a.exporter
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		res, err := e.ExportImage(ctx, req)
		fyne.Do(func() {
			done()
			if err != nil {
				a.showError(err)
				return
			}
			a.SetStatus(fmt.Sprintf("Saved %s (%s %s, %d annotations)", res.RasterPath, res.MIME, res.Native, res.Drawn))
		})
	}()
}

func (a *App) exportData() {
	path, err := a.exporter.ExportData(a.request())
	if err != nil {
		a.showError(err)
		return
	}
	a.SetStatus("Saved " + path)
}
