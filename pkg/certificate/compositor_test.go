package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestRenderImageMatchesTemplateSize(t *testing.T) {
	r := testRenderer(t)
	template := encodePNG(t, solidImage(320, 200, color.RGBA{230, 230, 230, 255}))

	canvas, err := r.RenderImage(Recipient{}, Config{}, template)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 200), canvas.Bounds())
	assert.Equal(t, color.RGBA{230, 230, 230, 255}, canvas.RGBAAt(10, 10))
}

func TestRenderImageSkipsMissingAndUnknownFields(t *testing.T) {
	r := testRenderer(t)
	template := encodePNG(t, solidImage(320, 200, color.RGBA{255, 255, 255, 255}))
	cfg := Config{
		"name": {Position: [2]int{40, 40}, Font: "GcNoSuchFont", FontSize: 24, Fill: "black"},
	}

	baseline, err := r.RenderImage(Recipient{}, Config{}, template)
	require.NoError(t, err)

	// A config with no recipient value renders nothing.
	missing, err := r.RenderImage(Recipient{"other": "x"}, cfg, template)
	require.NoError(t, err)
	assert.Equal(t, baseline.Pix, missing.Pix)

	// A present value does.
	rendered, err := r.RenderImage(Recipient{"name": "Ahmed", "other": "x"}, cfg, template)
	require.NoError(t, err)
	assert.NotEqual(t, baseline.Pix, rendered.Pix)
}

func TestRenderImageCentersWithinBox(t *testing.T) {
	r := testRenderer(t)
	template := encodePNG(t, solidImage(600, 300, color.RGBA{255, 255, 255, 255}))
	cfg := Config{
		"name": {
			Position: [2]int{300, 80}, Font: "GcNoSuchFont", FontSize: 48,
			MinFontSize: 12, BoxWidth: 400, Align: AlignCenter, Fill: "black",
		},
	}

	canvas, err := r.RenderImage(Recipient{"name": "Ahmed Ali"}, cfg, template)
	require.NoError(t, err)

	minX, _, maxX, _ := inkBounds(t, canvas)
	assert.InDelta(t, 300, (minX+maxX)/2, 3, "text should straddle the anchor")
	assert.GreaterOrEqual(t, minX, 100, "text escaped the box on the left")
	assert.LessOrEqual(t, maxX, 500, "text escaped the box on the right")
}

func TestRenderPNGRoundTrip(t *testing.T) {
	r := testRenderer(t)
	template := encodePNG(t, solidImage(240, 160, color.RGBA{250, 246, 227, 255}))
	cfg := Config{
		"name": {Position: [2]int{20, 30}, Font: "GcNoSuchFont", FontSize: 20, Fill: "navy"},
	}

	data, err := r.RenderPNG(Recipient{"name": "Mary Smith"}, cfg, template)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 240, 160), decoded.Bounds())

	// Flattening leaves no transparency behind.
	_, _, _, a := decoded.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderProducesDeterministicPDF(t *testing.T) {
	r := testRenderer(t)
	template := encodePNG(t, solidImage(400, 300, color.RGBA{255, 255, 255, 255}))
	cfg := Config{
		"name": {Position: [2]int{60, 80}, Font: "GcNoSuchFont", FontSize: 32, Fill: "black"},
	}
	rec := Recipient{"name": "John Doe"}

	first, err := r.Render(rec, cfg, template)
	require.NoError(t, err)
	second, err := r.Render(rec, cfg, template)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Greater(t, len(first), 1000)
	assert.Equal(t, first, second, "same inputs must serialize to identical bytes")
}

func TestRenderRejectsBadTemplate(t *testing.T) {
	r := testRenderer(t)

	_, err := r.RenderImage(Recipient{}, Config{}, []byte("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode template")
}

func TestRenderImageAcceptsRegisteredFormats(t *testing.T) {
	r := testRenderer(t)
	src := solidImage(100, 80, color.RGBA{200, 210, 220, 255})

	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			canvas, err := r.RenderImage(Recipient{}, Config{}, buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 100, 80), canvas.Bounds())
		})
	}
}
