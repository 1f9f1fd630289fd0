package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
)

// Source is loaded media. Wait blocks until the frame is decoded.
type Source interface {
	Name() string
	Type() string
	Wait(ctx context.Context) (image.Image, error)
}

// Request is one export of a session.
type Request struct {
	Source      Source
	Annotations []state.Annotation
	// Display is the size of the surface the annotations were drawn on,
	// measured at export time.
	Display Dimensions
}

// Result names the files an export wrote.
type Result struct {
	RasterPath string
	MIME       string
	DataPath   string
	Native     Dimensions
	Drawn      int
}

// Exporter writes flattened rasters and data files into Dir.
type Exporter struct {
	Dir    string
	Format Format
	Fonts  *render.FontBook
	Now    func() time.Time
	log    *zap.Logger
}

// NewExporter returns an exporter writing into dir. A nil font book
// selects the default font.
func NewExporter(dir string, format Format, fonts *render.FontBook) *Exporter {
	return &Exporter{
		Dir:    dir,
		Format: format,
		Fonts:  fonts,
		Now:    time.Now,
		log:    zap.L().Named("export"),
	}
}

func (e *Exporter) check(req Request) error {
	if req.Source == nil {
		return ErrNoMedia
	}
	if len(req.Annotations) == 0 {
		return ErrNoAnnotations
	}
	return nil
}

// Export writes both the raster and the data file.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	res, err := e.ExportImage(ctx, req)
	if err != nil {
		return Result{}, err
	}
	res.DataPath, err = e.ExportData(req)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// ExportImage waits for the media, flattens the visible annotations at
// native resolution and writes annotated-<base>.<format>.
func (e *Exporter) ExportImage(ctx context.Context, req Request) (Result, error) {
	if err := e.check(req); err != nil {
		return Result{}, err
	}
	if req.Display.Empty() {
		return Result{}, ErrSurfaceMissing
	}

	frame, err := req.Source.Wait(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("export: wait for media: %w", err)
	}
	native := NativeSize(frame)
	if native.Empty() {
		return Result{}, ErrNoMedia
	}

	flat, err := Flatten(frame, req.Annotations, req.Display, e.Fonts)
	if err != nil {
		return Result{}, err
	}

	path := filepath.Join(e.Dir, RasterFileName(req.Source.Name(), e.Format))
	err = writeAtomic(path, func(w io.Writer) error {
		return Encode(w, flat, e.Format)
	})
	if err != nil {
		return Result{}, err
	}

	drawn := 0
	for _, a := range req.Annotations {
		if a.Visible() {
			drawn++
		}
	}
	e.log.Info("image exported",
		zap.String("path", path),
		zap.String("mime", e.Format.MIME()),
		zap.Stringer("native", native),
		zap.Stringer("display", req.Display),
		zap.Int("annotations", drawn),
	)
	return Result{RasterPath: path, MIME: e.Format.MIME(), Native: native, Drawn: drawn}, nil
}

// ExportData writes <base>-annotations.json with every annotation unscaled.
func (e *Exporter) ExportData(req Request) (string, error) {
	if err := e.check(req); err != nil {
		return "", err
	}
	media := MediaInfo{Name: req.Source.Name(), Type: req.Source.Type()}
	doc := NewDocument(media, req.Annotations, req.Display, e.Now())

	path := filepath.Join(e.Dir, DataFileName(media.Name))
	if err := writeAtomic(path, func(w io.Writer) error { return WriteDocument(w, doc) }); err != nil {
		return "", err
	}
	e.log.Info("data exported", zap.String("path", path), zap.Int("annotations", len(doc.Annotations)))
	return path, nil
}

// writeAtomic writes through a temp file in the target directory so a
// failed export leaves nothing behind.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
