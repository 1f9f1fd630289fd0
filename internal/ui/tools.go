package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

var toolLabels = map[state.Tool]string{
	state.ToolSelect:    "Select",
	state.ToolText:      "Text",
	state.ToolRectangle: "Rectangle",
	state.ToolCircle:    "Circle",
	state.ToolLine:      "Line",
	state.ToolFreehand:  "Freehand",
}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex).Color())
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// toHex renders c as #rrggbb.
func toHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// NewToolbar builds the tool buttons, the color palette and the style
// sliders bound to settings.
func NewToolbar(settings *SettingsModel, win fyne.Window) fyne.CanvasObject {
	current := settings.Settings()

	buttons := make(map[state.Tool]*widget.Button, len(state.Tools))
	tools := container.NewGridWithColumns(3)
	for _, t := range state.Tools {
		b := widget.NewButton(toolLabels[t], func() { settings.SetTool(t) })
		buttons[t] = b
		tools.Add(b)
	}
	highlight := func(active state.Tool) {
		for t, b := range buttons {
			if t == active {
				b.Importance = widget.HighImportance
			} else {
				b.Importance = widget.MediumImportance
			}
			b.Refresh()
		}
	}
	highlight(current.Tool)

	preview := canvas.NewRectangle(render.ParseColor(current.Color).Color())
	preview.SetMinSize(fyne.NewSize(24, 24))
	palette := container.NewGridWithColumns(4)
	for _, hex := range state.PresetColors {
		palette.Add(newColorSwatch(hex, settings.SetColor))
	}
	custom := widget.NewButton("Custom…", func() {
		picker := dialog.NewColorPicker("Annotation color", "", func(c color.Color) {
			settings.SetColor(toHex(c))
		}, win)
		picker.Advanced = true
		picker.Show()
	})

	widthLabel := widget.NewLabel("")
	width := widget.NewSlider(state.MinLineWidth, state.MaxLineWidth)
	width.Step = 1
	width.SetValue(current.LineWidth)
	width.OnChanged = settings.SetLineWidth

	opacityLabel := widget.NewLabel("")
	opacity := widget.NewSlider(state.MinOpacity, state.MaxOpacity)
	opacity.Step = 0.1
	opacity.SetValue(current.Opacity)
	opacity.OnChanged = settings.SetOpacity

	fontLabel := widget.NewLabel("")
	font := widget.NewSlider(state.MinFontSize, state.MaxFontSize)
	font.Step = 1
	font.SetValue(current.FontSize)
	font.OnChanged = settings.SetFontSize

	show := func(s state.Settings) {
		highlight(s.Tool)
		preview.FillColor = render.ParseColor(s.Color).Color()
		preview.Refresh()
		widthLabel.SetText(fmt.Sprintf("Line width: %gpx", s.LineWidth))
		opacityLabel.SetText(fmt.Sprintf("Opacity: %d%%", int(s.Opacity*100+0.5)))
		fontLabel.SetText(fmt.Sprintf("Font size: %gpx", s.FontSize))
	}
	show(current)
	settings.OnChange(show)

	return container.NewVBox(
		widget.NewLabelWithStyle("Tools", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tools,
		widget.NewSeparator(),
		container.NewHBox(widget.NewLabel("Color"), preview, layout.NewSpacer(), custom),
		palette,
		widget.NewSeparator(),
		widthLabel, width,
		opacityLabel, opacity,
		fontLabel, font,
	)
}
