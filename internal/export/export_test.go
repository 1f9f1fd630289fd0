package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/webp"

	"MarkupBoard/internal/state"
)

func whiteFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

type frameSource struct {
	name  string
	frame image.Image
	err   error
	waits int
}

func (s *frameSource) Name() string { return s.name }
func (s *frameSource) Type() string { return "image" }
func (s *frameSource) Wait(ctx context.Context) (image.Image, error) {
	s.waits++
	return s.frame, s.err
}

func TestFlatten_DrawsAtNativeResolution(t *testing.T) {
	a := styled(state.Rectangle{X: 2, Y: 2, Width: 10, Height: 5})
	a.Style.Color = "#ff0000"

	out, err := Flatten(whiteFrame(40, 20), []state.Annotation{a}, Dimensions{20, 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())

	r, g, _, _ := out.At(4, 9).RGBA()
	assert.Greater(t, r, uint32(0xc000), "left edge is red")
	assert.Less(t, g, uint32(0x4000))

	for _, p := range []image.Point{{14, 9}, {35, 15}} {
		r, g, b, _ := out.At(p.X, p.Y).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "frame shows through at %v", p)
	}
}

func TestFlatten_HiddenLeavesFrameUntouched(t *testing.T) {
	a := styled(state.Rectangle{X: 0, Y: 0, Width: 10, Height: 10})
	a.Style.Hidden = true
	frame := whiteFrame(10, 10)

	out, err := Flatten(frame, []state.Annotation{a}, Dimensions{10, 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, frame.Pix, out.Pix)
}

func TestEncode_AllFormats(t *testing.T) {
	img := whiteFrame(8, 6)
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, img, f))
			if f == FormatPDF {
				assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
				return
			}
			decoded, name, err := image.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, f.Ext(), name)
			assert.Equal(t, img.Bounds(), decoded.Bounds())
		})
	}
	assert.Error(t, Encode(&bytes.Buffer{}, img, "tiff"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPNG, "PNG": FormatPNG, ".jpg": FormatJPEG, "jpeg": FormatJPEG, "webp": FormatWebP, "pdf": FormatPDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "annotated-photo.png", RasterFileName("photo.png", FormatPNG))
	assert.Equal(t, "annotated-my.trip.jpeg", RasterFileName("my.trip.jpg", FormatJPEG))
	assert.Equal(t, "clip-annotations.json", DataFileName("clip.mp4"))
	assert.Equal(t, "noext-annotations.json", DataFileName("noext"))
	assert.Equal(t, "photo", BaseName("/tmp/uploads/photo.webp"))
}

func TestDocument_RoundTripKeepsHidden(t *testing.T) {
	hidden := styled(state.Circle{X: 5, Y: 5, Radius: 2})
	hidden.Style.Hidden = true
	list := []state.Annotation{styled(state.Text{X: 1, Y: 2, Text: "A", FontSize: 16}), hidden}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, NewDocument(MediaInfo{Name: "a.png", Type: "image"}, list, Dimensions{}, now)))
	assert.Contains(t, buf.String(), `"exportDate": "2024-05-01T12:00:00.000Z"`)
	assert.Contains(t, buf.String(), `"version": "1.0"`)
	assert.NotContains(t, buf.String(), `"display"`)

	doc, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, MediaInfo{Name: "a.png", Type: "image"}, doc.Media)
	assert.Equal(t, list, doc.Annotations)
	date, err := doc.Date()
	require.NoError(t, err)
	assert.True(t, now.Equal(date))
}

func TestExporter_WritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, FormatPNG, nil)
	e.Now = func() time.Time { return time.Unix(0, 0) }

	src := &frameSource{name: "shot.jpg", frame: whiteFrame(40, 20)}
	transparent := styled(state.Circle{X: 5, Y: 5, Radius: 2})
	transparent.Style.Opacity = 0
	req := Request{
		Source:      src,
		Annotations: []state.Annotation{styled(state.Line{EndX: 10, EndY: 10}), transparent},
		Display:     Dimensions{20, 10},
	}

	res, err := e.Export(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "annotated-shot.png"), res.RasterPath)
	assert.Equal(t, "image/png", res.MIME)
	assert.Equal(t, filepath.Join(dir, "shot-annotations.json"), res.DataPath)
	assert.Equal(t, Dimensions{40, 20}, res.Native)
	assert.Equal(t, 1, res.Drawn)
	assert.Equal(t, 1, src.waits)

	f, err := os.Open(res.DataPath)
	require.NoError(t, err)
	defer f.Close()
	doc, err := ReadDocument(f)
	require.NoError(t, err)
	assert.Len(t, doc.Annotations, 2, "data file keeps hidden annotations")
	require.NotNil(t, doc.Display)
	assert.Equal(t, Dimensions{20, 10}, *doc.Display)
}

func TestExporter_Preconditions(t *testing.T) {
	ctx := context.Background()
	one := []state.Annotation{styled(state.Line{EndX: 1})}
	src := &frameSource{name: "a.png", frame: whiteFrame(4, 4)}

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no media", Request{Annotations: one, Display: Dimensions{4, 4}}, ErrNoMedia},
		{"no annotations", Request{Source: src, Display: Dimensions{4, 4}}, ErrNoAnnotations},
		{"no surface", Request{Source: src, Annotations: one}, ErrSurfaceMissing},
		{"empty frame", Request{Source: &frameSource{name: "a.png", frame: image.NewRGBA(image.Rect(0, 0, 0, 0))}, Annotations: one, Display: Dimensions{4, 4}}, ErrNoMedia},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := NewExporter(dir, FormatPNG, nil).Export(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing is written on failure")
		})
	}
}

func TestExporter_WaitError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("decode failed")
	src := &frameSource{name: "a.png", err: boom}

	_, err := NewExporter(dir, FormatJPEG, nil).ExportImage(context.Background(), Request{
		Source:      src,
		Annotations: []state.Annotation{styled(state.Line{EndX: 1})},
		Display:     Dimensions{4, 4},
	})
	assert.ErrorIs(t, err, boom)
}
