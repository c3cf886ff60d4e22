// Package generator produces certificate background templates.
//
// All output follows a unified pipeline: render an image.Image first,
// then encode it as PNG or BMP based on the output extension.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// A4 landscape at 96 px/inch, matching the DPI certificates render at.
const (
	defaultWidth  = 1123
	defaultHeight = 794
)

// Config holds parameters for template generation.
type Config struct {
	Width       int    // Pixel width (default: 1123)
	Height      int    // Pixel height (default: 794)
	Color       string // Background hex "#rrggbb" or "random"
	BorderColor string // Frame color (default: "#b8860b")
	BorderWidth int    // Outer frame thickness in px (default: 6); negative disables
	Title       string // Optional heading drawn near the top
}

// Generate creates a template file. The format is inferred from the file
// extension:
//   - ".png" → PNG image
//   - ".bmp" → 24-bit BMP image
func Generate(output string, cfg Config) error {
	ext := strings.ToLower(filepath.Ext(output))
	switch ext {
	case ".png", ".bmp":
	default:
		return fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := GenerateToWriter(f, ext, cfg); err != nil {
		return err
	}
	return f.Sync()
}

// GenerateToWriter writes a template to an io.Writer. The format is
// specified by ext (".png" or ".bmp"). This is useful for in-memory
// generation (e.g., WASM).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	img, err := Render(cfg)
	if err != nil {
		return err
	}

	switch strings.ToLower(ext) {
	case ".png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case ".bmp":
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("encode BMP: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}
	return nil
}

// Render draws the background: a solid fill, a double frame, and the
// optional title.
func Render(cfg Config) (image.Image, error) {
	w := cfg.Width
	if w <= 0 {
		w = defaultWidth
	}
	h := cfg.Height
	if h <= 0 {
		h = defaultHeight
	}

	r, g, b, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	img := NewSolidImage(w, h, toRGBA(r, g, b))

	borderWidth := cfg.BorderWidth
	if borderWidth == 0 {
		borderWidth = 6
	}
	if borderWidth < 0 {
		borderWidth = 0
	}

	borderColor := cfg.BorderColor
	if borderColor == "" {
		borderColor = "#b8860b"
	}
	br, bg, bb, err := ParseColor(borderColor)
	if err != nil {
		return nil, fmt.Errorf("border: %w", err)
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetRGB255(int(br), int(bg), int(bb))

	if borderWidth > 0 {
		drawFrame(dc, w, h, borderWidth)
	}

	if cfg.Title != "" {
		if err := drawTitle(dc, cfg.Title, w, h); err != nil {
			return nil, err
		}
	}

	return dc.Image(), nil
}

// drawFrame strokes the classic double border: a thick outer rectangle and
// a thin inner one.
func drawFrame(dc *gg.Context, w, h, bw int) {
	outer := float64(bw) / 2
	dc.SetLineWidth(float64(bw))
	dc.DrawRectangle(outer, outer, float64(w)-2*outer, float64(h)-2*outer)
	dc.Stroke()

	innerWidth := float64(bw) / 3
	if innerWidth < 1 {
		innerWidth = 1
	}
	inset := float64(bw) * 2.5
	dc.SetLineWidth(innerWidth)
	dc.DrawRectangle(inset, inset, float64(w)-2*inset, float64(h)-2*inset)
	dc.Stroke()
}

// drawTitle centers the heading a fifth of the way down, sized relative to
// the canvas so small and large templates look alike.
func drawTitle(dc *gg.Context, title string, w, h int) error {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse title font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(h) / 14,
		DPI:  72,
	})
	if err != nil {
		return fmt.Errorf("title face: %w", err)
	}
	defer face.Close()

	dc.SetFontFace(face)
	dc.DrawStringAnchored(title, float64(w)/2, float64(h)/5, 0.5, 0.5)
	return nil
}
