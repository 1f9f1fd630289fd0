package export

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// encodePDF wraps the flattened raster in a single page sized to it, one
// pixel per point.
func encodePDF(w io.Writer, img image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetCreator("MarkupBoard", true)
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("frame", opts, &raster)
	p.ImageOptions("frame", 0, 0, width, height, false, opts, 0, "")
	return p.Output(w)
}
