package certificate

import (
	"archive/zip"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const kitFieldsJSON = `{
  "name": {"position": [10, 20], "font": "Arial", "fontSize": 24}
}`

func writeKit(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestLoadKit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json":  []byte(kitFieldsJSON),
		"template.png": encodePNG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
	})

	kit, cleanup, err := LoadKit(path)
	require.NoError(t, err)

	require.Contains(t, kit.Config, "name")
	assert.Equal(t, float64(DefaultMinFontSize), kit.Config["name"].MinFontSize, "defaults apply on load")
	assert.Equal(t, AlignLeft, kit.Config["name"].Align)
	assert.Empty(t, kit.Warnings)
	assert.Empty(t, kit.FontsDir, "no fonts bundled")

	_, err = os.Stat(kit.TemplatePath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(kit.TemplatePath, "template.png"))

	cleanup()
	_, err = os.Stat(kit.TemplatePath)
	assert.True(t, os.IsNotExist(err), "cleanup must remove the extraction dir")
}

func TestLoadKitWithFonts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json":          []byte(kitFieldsJSON),
		"template.jpg":         encodeJPEG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
		"fonts/GcTestSans.ttf": goregular.TTF,
	})

	kit, cleanup, err := LoadKit(path)
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, strings.HasSuffix(kit.TemplatePath, "template.jpg"))
	require.NotEmpty(t, kit.FontsDir)
	_, err = os.Stat(filepath.Join(kit.FontsDir, "GcTestSans.ttf"))
	assert.NoError(t, err)
}

func TestLoadKitPrefersPNGTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json":  []byte(kitFieldsJSON),
		"template.png": encodePNG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
		"template.jpg": encodeJPEG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
	})

	kit, cleanup, err := LoadKit(path)
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, strings.HasSuffix(kit.TemplatePath, "template.png"))
}

func TestLoadKitMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gckit")
	writeKit(t, path, map[string][]byte{
		"template.png": encodePNG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
	})

	_, _, err := LoadKit(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field config")
}

func TestLoadKitMissingTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json": []byte(kitFieldsJSON),
	})

	_, _, err := LoadKit(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no template image")
}

func TestLoadKitRejectsZipSlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json":  []byte(kitFieldsJSON),
		"../evil.txt":  []byte("outside"),
		"template.png": encodePNG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
	})

	_, _, err := LoadKit(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal path")
}

func TestLoadKitSurfacesConfigWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.gckit")
	writeKit(t, path, map[string][]byte{
		"fields.json":  []byte(`{"name": {"position": [0, 0], "font": "Arial", "fontSize": 0}}`),
		"template.png": encodePNG(t, solidImage(50, 40, color.RGBA{255, 255, 255, 255})),
	})

	kit, cleanup, err := LoadKit(path)
	require.NoError(t, err)
	defer cleanup()

	assert.NotEmpty(t, kit.Warnings)
}
