package sink

import (
	"bytes"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/matzehuels/photosheet/pkg/errors"
)

const mmPerInch = 25.4

// encodePDF writes a one-page PDF. The page uses the configured size in mm,
// or the image's physical size, and the image is placed at the top-left
// corner at width px/dpi*25.4 mm so it prints at true scale.
func encodePDF(img image.Image, dpi int, e encoder) ([]byte, error) {
	b := img.Bounds()
	imgW := float64(b.Dx()) / float64(dpi) * mmPerInch
	imgH := float64(b.Dy()) / float64(dpi) * mmPerInch

	pageW, pageH := e.pageW, e.pageH
	if pageW <= 0 || pageH <= 0 {
		pageW, pageH = imgW, imgH
	}

	var raster bytes.Buffer
	if err := imaging.Encode(&raster, img, imaging.PNG); err != nil {
		return nil, err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("photosheet", true)
	if e.title != "" {
		pdf.SetTitle(e.title, true)
	}
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sheet", opts, &raster)
	pdf.ImageOptions("sheet", 0, 0, imgW, imgH, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

var disableConfigDir sync.Once

// PageSize returns the width and height of the first page of a PDF in points.
func PageSize(data []byte) (width, height float64, err error) {
	disableConfigDir.Do(api.DisableConfigDir)

	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "read pdf page size")
	}
	if len(dims) == 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "pdf has no pages")
	}
	return dims[0].Width, dims[0].Height, nil
}
