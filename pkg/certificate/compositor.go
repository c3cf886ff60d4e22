// compositor.go - Whole-certificate rendering: template decode, field
// iteration, flattening and PDF serialization.
package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/go-pdf/fpdf"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
)

// templateDPI is the assumed resolution of template images. PDF page sizes
// are derived from it: one pixel becomes 72/templateDPI points.
const templateDPI = 96

// pdfTimestamp pins the document dates so rendering the same recipient
// against the same config and template is byte-identical.
var pdfTimestamp = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RenderImage composites one recipient onto a fresh canvas decoded from the
// template bytes (PNG, JPEG or BMP). Fields render in sorted field-name
// order; recipient keys with no config, and configs with no recipient
// value, are skipped silently. The returned canvas keeps its alpha channel.
func (r *Renderer) RenderImage(rec Recipient, cfg Config, template []byte) (*image.RGBA, error) {
	tmpl, _, err := image.Decode(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	b := tmpl.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), tmpl, b.Min, draw.Src)

	for _, name := range cfg.FieldNames() {
		value, ok := rec[name]
		if !ok {
			continue
		}
		if err := r.RenderField(canvas, fieldValue(value), cfg[name]); err != nil {
			return nil, fmt.Errorf("render field %q: %w", name, err)
		}
	}

	return canvas, nil
}

// RenderPNG renders a recipient and returns the flattened certificate as
// PNG bytes. Used for previews.
func (r *Renderer) RenderPNG(rec Recipient, cfg Config, template []byte) ([]byte, error) {
	canvas, err := r.RenderImage(rec, cfg, template)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, flatten(canvas)); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the final certificate document: the flattened canvas
// becomes the single full-bleed page of a PDF whose page size equals the
// template pixel size at the fixed DPI assumption. No I/O happens beyond
// the template bytes handed in.
func (r *Renderer) Render(rec Recipient, cfg Config, template []byte) ([]byte, error) {
	canvas, err := r.RenderImage(rec, cfg, template)
	if err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := png.Encode(&page, flatten(canvas)); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	wPt := float64(canvas.Bounds().Dx()) * 72 / templateDPI
	hPt := float64(canvas.Bounds().Dy()) * 72 / templateDPI

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: wPt, Ht: hPt},
	})
	pdf.SetCreationDate(pdfTimestamp)
	pdf.SetModificationDate(pdfTimestamp)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opts, &page)
	pdf.ImageOptions("certificate", 0, 0, wPt, hPt, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return out.Bytes(), nil
}

// flatten squashes the canvas onto an opaque white base. Glow compositing
// needs alpha while fields render; the serialized page must not.
func flatten(canvas *image.RGBA) *image.RGBA {
	flat := image.NewRGBA(canvas.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), canvas, image.Point{}, draw.Over)
	return flat
}
