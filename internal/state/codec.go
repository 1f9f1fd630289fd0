package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a record names no known annotation variant.
var ErrUnknownKind = errors.New("unknown annotation type")

// record is the flat wire form of an annotation. Only the fields of the
// record's own variant are written; foreign fields are ignored on decode.
type record struct {
	ID   json.RawMessage `json:"id"`
	Type Kind            `json:"type"`

	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
	StartX   *float64 `json:"startX,omitempty"`
	StartY   *float64 `json:"startY,omitempty"`
	EndX     *float64 `json:"endX,omitempty"`
	EndY     *float64 `json:"endY,omitempty"`
	Path     []Point  `json:"path,omitempty"`

	Color     *string  `json:"color,omitempty"`
	LineWidth *float64 `json:"lineWidth,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Visible   *bool    `json:"visible,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// MarshalJSON writes the flat record used by the data export.
func (a Annotation) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(a.ID)
	if err != nil {
		return nil, err
	}
	r := record{
		ID:        id,
		Type:      a.Kind(),
		Color:     ptr(a.Style.Color),
		LineWidth: ptr(a.Style.LineWidth),
		Opacity:   ptr(a.Style.Opacity),
		Visible:   ptr(!a.Style.Hidden),
	}
	switch s := a.Shape.(type) {
	case Text:
		r.X, r.Y, r.Text, r.FontSize = ptr(s.X), ptr(s.Y), ptr(s.Text), ptr(s.FontSize)
	case Rectangle:
		r.X, r.Y, r.Width, r.Height = ptr(s.X), ptr(s.Y), ptr(s.Width), ptr(s.Height)
	case Circle:
		r.X, r.Y, r.Radius = ptr(s.X), ptr(s.Y), ptr(s.Radius)
	case Line:
		r.StartX, r.StartY, r.EndX, r.EndY = ptr(s.StartX), ptr(s.StartY), ptr(s.EndX), ptr(s.EndY)
	case Freehand:
		r.Path = s.Path
		if r.Path == nil {
			r.Path = []Point{}
		}
	default:
		return nil, fmt.Errorf("marshal annotation %q: %w", a.ID, ErrUnknownKind)
	}
	return json.Marshal(r)
}

// UnmarshalJSON reads a flat record. Missing geometry decodes as zero and
// missing style fields fall back to the package defaults.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	id, err := decodeID(r.ID)
	if err != nil {
		return err
	}

	var shape Shape
	switch r.Type {
	case KindText:
		shape = Text{
			X:        deref(r.X, 0),
			Y:        deref(r.Y, 0),
			Text:     deref(r.Text, ""),
			FontSize: deref(r.FontSize, DefaultFontSize),
		}
	case KindRectangle:
		shape = Rectangle{
			X:      deref(r.X, 0),
			Y:      deref(r.Y, 0),
			Width:  deref(r.Width, 0),
			Height: deref(r.Height, 0),
		}
	case KindCircle:
		shape = Circle{X: deref(r.X, 0), Y: deref(r.Y, 0), Radius: deref(r.Radius, 0)}
	case KindLine:
		shape = Line{
			StartX: deref(r.StartX, 0),
			StartY: deref(r.StartY, 0),
			EndX:   deref(r.EndX, 0),
			EndY:   deref(r.EndY, 0),
		}
	case KindFreehand:
		shape = Freehand{Path: r.Path}
	default:
		return fmt.Errorf("decode annotation %s: %q: %w", id, r.Type, ErrUnknownKind)
	}

	*a = Annotation{
		ID:    id,
		Shape: shape,
		Style: Style{
			Color:     deref(r.Color, DefaultColor),
			LineWidth: deref(r.LineWidth, DefaultLineWidth),
			Opacity:   deref(r.Opacity, DefaultOpacity),
			Hidden:    !deref(r.Visible, true),
		},
	}
	return nil
}

// decodeID accepts both string ids and the numeric timestamp ids written by
// older dumps.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode annotation id: %w", err)
	}
	return n.String(), nil
}
