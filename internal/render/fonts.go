package render

import (
	"fmt"
	"os"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// FontBook hands out text faces of one font source, cached per pixel size.
type FontBook struct {
	source *text.FontSource
	mu     sync.Mutex
	faces  map[float64]text.Face
}

// NewFontBook parses a TrueType/OpenType font.
func NewFontBook(data []byte) (*FontBook, error) {
	source, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &FontBook{source: source, faces: make(map[float64]text.Face)}, nil
}

// LoadFontBook reads the font at path; an empty path selects Go Regular.
func LoadFontBook(path string) (*FontBook, error) {
	if path == "" {
		return NewFontBook(goregular.TTF)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return NewFontBook(data)
}

var (
	defaultBookOnce sync.Once
	defaultBook     *FontBook
)

// DefaultFontBook returns the shared Go Regular font book.
func DefaultFontBook() *FontBook {
	defaultBookOnce.Do(func() {
		b, err := NewFontBook(goregular.TTF)
		if err != nil {
			panic(err) // embedded font
		}
		defaultBook = b
	})
	return defaultBook
}

// Face returns the face for size pixels.
func (b *FontBook) Face(size float64) text.Face {
	b.mu.Lock()
	defer b.mu.Unlock()
	face, ok := b.faces[size]
	if !ok {
		face = b.source.Face(size)
		b.faces[size] = face
	}
	return face
}

// MeasureText implements geometry.TextMeasurer.
func (b *FontBook) MeasureText(s string, fontSize float64) float64 {
	if s == "" {
		return 0
	}
	return b.Face(fontSize).Advance(s)
}

// Close releases the font source.
func (b *FontBook) Close() error {
	return b.source.Close()
}
