package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"MarkupBoard/internal/export"
	"MarkupBoard/internal/state"
)

// ValidationError is one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every rejected field of one file.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section. Zero style values are allowed and mean
// "use the default".
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Defaults.Tool != "" {
		if _, err := state.ParseTool(c.Defaults.Tool); err != nil {
			add("defaults.tool", "%v", err)
		}
	}
	if c.Defaults.Color != "" && !state.ValidColor(c.Defaults.Color) {
		add("defaults.color", "%q is not a hex color", c.Defaults.Color)
	}
	inRange := func(field string, v, lo, hi float64) {
		if v != 0 && (v < lo || v > hi) {
			add(field, "%g outside [%g, %g]", v, lo, hi)
		}
	}
	inRange("defaults.font_size", c.Defaults.FontSize, state.MinFontSize, state.MaxFontSize)
	inRange("defaults.line_width", c.Defaults.LineWidth, state.MinLineWidth, state.MaxLineWidth)
	inRange("defaults.opacity", c.Defaults.Opacity, state.MinOpacity, state.MaxOpacity)

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		add("display", "size %dx%d must be positive", c.Display.Width, c.Display.Height)
	}

	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		add("export.format", "%v", err)
	}

	if c.Viewer.Port < 0 || c.Viewer.Port > 65535 {
		add("viewer.port", "%d is not a port", c.Viewer.Port)
	}
	if c.Viewer.Advertise && c.Viewer.Instance == "" {
		add("viewer.instance", "required when advertise is on")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
