package state

import (
	"fmt"
	"regexp"
	"strings"
)

// Tool is the active pointer tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolText      Tool = Tool(KindText)
	ToolRectangle Tool = Tool(KindRectangle)
	ToolCircle    Tool = Tool(KindCircle)
	ToolLine      Tool = Tool(KindLine)
	ToolFreehand  Tool = Tool(KindFreehand)
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolText, ToolRectangle, ToolCircle, ToolLine, ToolFreehand}

// PresetColors are the quick colors offered next to the color picker.
var PresetColors = []string{
	"#000000", "#ff0000", "#00ff00", "#0000ff",
	"#ffff00", "#ff00ff", "#00ffff", "#ffffff",
}

// Ranges of the style controls.
const (
	MinFontSize  = 10.0
	MaxFontSize  = 48.0
	MinLineWidth = 1.0
	MaxLineWidth = 10.0
	MinOpacity   = 0.1
	MaxOpacity   = 1.0
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ParseTool maps a tool name to a Tool.
func ParseTool(name string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Tools {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// ValidColor reports whether s is a #rgb, #rrggbb or #rrggbbaa color.
func ValidColor(s string) bool {
	return hexColor.MatchString(s)
}

// Settings is the active tool plus the style applied to new annotations and
// to live previews.
type Settings struct {
	Tool      Tool
	Color     string
	FontSize  float64
	LineWidth float64
	Opacity   float64
}

// DefaultSettings matches a fresh session: text tool, black, 16px, 2px, opaque.
func DefaultSettings() Settings {
	return Settings{
		Tool:      ToolText,
		Color:     DefaultColor,
		FontSize:  DefaultFontSize,
		LineWidth: DefaultLineWidth,
		Opacity:   DefaultOpacity,
	}
}

// Normalize clamps every field into its control range and replaces invalid
// values with defaults.
func (s Settings) Normalize() Settings {
	if _, err := ParseTool(string(s.Tool)); err != nil {
		s.Tool = ToolText
	}
	if !ValidColor(s.Color) {
		s.Color = DefaultColor
	}
	s.FontSize = clamp(s.FontSize, MinFontSize, MaxFontSize, DefaultFontSize)
	s.LineWidth = clamp(s.LineWidth, MinLineWidth, MaxLineWidth, DefaultLineWidth)
	s.Opacity = clamp(s.Opacity, MinOpacity, MaxOpacity, DefaultOpacity)
	return s
}

// Style returns the annotation style these settings stamp on a commit.
func (s Settings) Style() Style {
	return Style{Color: s.Color, LineWidth: s.LineWidth, Opacity: s.Opacity}
}

func clamp(v, lo, hi, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
