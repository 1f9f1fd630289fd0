// Package media opens the image or video an annotation session is drawn on
// and decodes the frame used for export in the background.
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedType = errors.New("media: unsupported type")
	ErrNoFrame         = errors.New("media: video has no still frame")
)

// Kind selects where the native size comes from.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Media is an opened file.
type Media struct {
	Path string
	Name string
	Kind Kind
	MIME string
	// FramePath is a still image of a video at its native resolution.
	// Frame extraction happens outside this program.
	FramePath string
}

// Open detects the content type of path. Only image/* and video/* files
// are accepted.
func Open(path string) (*Media, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("media: open %s: %w", path, err)
	}
	kind, ok := kindOf(mt.String())
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, filepath.Base(path), mt.String())
	}
	return &Media{
		Path: path,
		Name: filepath.Base(path),
		Kind: kind,
		MIME: mt.String(),
	}, nil
}

// WithFrame attaches the still frame of a video. The frame must be an
// image.
func (m *Media) WithFrame(path string) error {
	frame, err := Open(path)
	if err != nil {
		return err
	}
	if frame.Kind != KindImage {
		return fmt.Errorf("%w: frame %s is %s", ErrUnsupportedType, frame.Name, frame.MIME)
	}
	m.FramePath = path
	return nil
}

// FrameFile is the file the native frame is decoded from.
func (m *Media) FrameFile() (string, error) {
	if m.Kind == KindImage {
		return m.Path, nil
	}
	if m.FramePath == "" {
		return "", ErrNoFrame
	}
	return m.FramePath, nil
}

func kindOf(mime string) (Kind, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage, true
	case strings.HasPrefix(mime, "video/"):
		return KindVideo, true
	}
	return "", false
}

// DecodeFile decodes any registered image format.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Handle is media being loaded. Wait is the load-completion signal.
type Handle struct {
	media *Media
	done  chan struct{}
	frame image.Image
	err   error
}

// Load decodes the frame of m on its own goroutine. Cancelling ctx before
// the decode starts fails the handle with ctx's error.
func Load(ctx context.Context, m *Media) *Handle {
	h := &Handle{media: m, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		if err := ctx.Err(); err != nil {
			h.err = err
			return
		}
		path, err := m.FrameFile()
		if err != nil {
			h.err = err
			return
		}
		h.frame, h.err = DecodeFile(path)
		if h.err != nil {
			zap.L().Named("media").Warn("load failed", zap.String("name", m.Name), zap.Error(h.err))
			return
		}
		b := h.frame.Bounds()
		zap.L().Named("media").Debug("media loaded",
			zap.String("name", m.Name),
			zap.String("kind", string(m.Kind)),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
		)
	}()
	return h
}

// Media returns the opened file.
func (h *Handle) Media() *Media { return h.media }

// Name is the original file name.
func (h *Handle) Name() string { return h.media.Name }

// Type is "image" or "video".
func (h *Handle) Type() string { return string(h.media.Kind) }

// Done is closed once loading finished, successfully or not.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Ready reports whether loading finished.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the frame is decoded or ctx ends.
func (h *Handle) Wait(ctx context.Context) (image.Image, error) {
	if h.Ready() {
		return h.frame, h.err
	}
	select {
	case <-h.done:
		return h.frame, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the native size once loaded.
func (h *Handle) Size() (width, height int, ok bool) {
	if !h.Ready() || h.err != nil {
		return 0, 0, false
	}
	b := h.frame.Bounds()
	return b.Dx(), b.Dy(), true
}
