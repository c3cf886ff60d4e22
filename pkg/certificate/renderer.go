// renderer.go - Field rendering engine: shaping, fitting, alignment, glow
// compositing and crisp text drawing onto a shared canvas.
package certificate

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer composites text fields onto certificate canvases.
type Renderer struct {
	resolver *Resolver
	shaper   Shaper
}

// NewRenderer creates a renderer whose fonts resolve from fontsDir first.
// Arabic shaping is on by default; SetShaper swaps it out.
func NewRenderer(fontsDir string) (*Renderer, error) {
	resolver, err := NewResolver(fontsDir)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		resolver: resolver,
		shaper:   ArabicShaper{},
	}, nil
}

// SetShaper replaces the script shaping step.
func (r *Renderer) SetShaper(s Shaper) {
	r.shaper = s
}

// RenderField draws one text field onto the canvas. Steps run in a fixed
// order: shape, fit, align, glow, main text. The canvas is mutated in place
// so subsequent fields see the cumulative result.
func (r *Renderer) RenderField(canvas *image.RGBA, text string, fc FieldConfig) error {
	shaped := r.shaper.Shape(text)

	face, _, err := r.fit(shaped, fc)
	if err != nil {
		return err
	}

	// Alignment shifts only x. Ties on the center split round toward the
	// anchor via integer floor division.
	w := font.MeasureString(face, shaped).Ceil()
	x := fc.Position[0]
	switch fc.Align {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}

	// The anchor y is the top of the text; the drawer wants the baseline.
	y := fc.Position[1] + face.Metrics().Ascent.Ceil()

	if g := fc.Glow; g != nil && g.Enabled && g.Radius > 0 {
		r.drawGlow(canvas, shaped, x, y, face, *g)
	}

	drawString(canvas, shaped, x, y, parseColor(fc.Fill), face)
	return nil
}

// drawGlow composites a blurred halo of the text beneath where the crisp
// glyphs will land: the text is drawn in the glow color on a transparent
// canvas-sized layer, Gaussian-blurred, alpha-scaled by the configured
// opacity, and drawn over the canvas before the main text.
func (r *Renderer) drawGlow(canvas *image.RGBA, text string, x, y int, face font.Face, g Glow) {
	layer := image.NewRGBA(canvas.Bounds())
	drawString(layer, text, x, y, parseColor(g.Color), face)

	blurred := imaging.GaussianBlur(layer, g.Radius)
	scaleAlpha(blurred, clampUnit(g.Opacity))

	draw.Draw(canvas, canvas.Bounds(), blurred, image.Point{}, draw.Over)
}

// scaleAlpha multiplies the alpha channel of a non-premultiplied image by a
// uniform factor in [0,1].
func scaleAlpha(img *image.NRGBA, factor float64) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i])*factor + 0.5)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// drawString draws text with its baseline at (x, y).
func drawString(img draw.Image, text string, x, y int, col color.Color, face font.Face) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// ── Color parsing ──

// namedColors covers the color words field configs commonly carry.
var namedColors = map[string]color.RGBA{
	"black":  {0, 0, 0, 255},
	"white":  {255, 255, 255, 255},
	"red":    {255, 0, 0, 255},
	"green":  {0, 128, 0, 255},
	"blue":   {0, 0, 255, 255},
	"yellow": {255, 255, 0, 255},
	"orange": {255, 165, 0, 255},
	"purple": {128, 0, 128, 255},
	"brown":  {165, 42, 42, 255},
	"gray":   {128, 128, 128, 255},
	"grey":   {128, 128, 128, 255},
	"gold":   {255, 215, 0, 255},
	"silver": {192, 192, 192, 255},
	"navy":   {0, 0, 128, 255},
}

// parseColor converts a named or hex color to RGBA. Unparsable values fall
// back to black, the default text color; ValidateConfig surfaces them as
// warnings beforehand.
func parseColor(s string) color.RGBA {
	if c, ok := lookupColor(s); ok {
		return c
	}
	return color.RGBA{0, 0, 0, 255}
}

// lookupColor resolves "name", "#rgb", "#rrggbb" or "#rrggbbaa".
func lookupColor(s string) (color.RGBA, bool) {
	if c, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, true
	}

	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if hex == s || hex == "" {
		return color.RGBA{}, false
	}

	// Expand #rgb shorthand.
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.RGBA{}, false
	}

	if len(hex) == 8 {
		return color.RGBA{
			R: uint8(v >> 24),
			G: uint8(v >> 16),
			B: uint8(v >> 8),
			A: uint8(v),
		}, true
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, true
}
