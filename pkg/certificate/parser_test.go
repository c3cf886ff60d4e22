package certificate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"name": {"position": [100, 200], "font": "Arial", "fontSize": 30}
	}`))
	require.NoError(t, err)

	fc := cfg["name"]
	assert.Equal(t, [2]int{100, 200}, fc.Position)
	assert.Equal(t, float64(DefaultMinFontSize), fc.MinFontSize)
	assert.Equal(t, AlignLeft, fc.Align)
	assert.Equal(t, "black", fc.Fill)
}

func TestParseConfigKeepsExplicitValues(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"name": {
			"position": [100, 200], "font": "Arial", "fontSize": 30,
			"minFontSize": 18, "align": "right", "fill": "red"
		}
	}`))
	require.NoError(t, err)

	fc := cfg["name"]
	assert.Equal(t, 18.0, fc.MinFontSize)
	assert.Equal(t, AlignRight, fc.Align)
	assert.Equal(t, "red", fc.Fill)
}

func TestParseConfigGlowOpacityDefault(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"lit":  {"fontSize": 30, "glow": {"enabled": true, "radius": 6}},
		"dark": {"fontSize": 30, "glow": {"enabled": false, "radius": 6}}
	}`))
	require.NoError(t, err)

	// An enabled glow with no stated opacity becomes fully visible; a
	// disabled glow is left alone.
	assert.Equal(t, 1.0, cfg["lit"].Glow.Opacity)
	assert.Zero(t, cfg["dark"].Glow.Opacity)
}

func TestParseConfigRejectsMalformed(t *testing.T) {
	_, err := ParseConfig([]byte(`{"name": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse field config")
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": {"fontSize": 30}}`), 0644))

	cfg, err := ParseConfigFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg, 1)

	_, err = ParseConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read field config")
}

func TestParseRecipient(t *testing.T) {
	rec, err := ParseRecipient([]byte(`{"name": "Ahmed Ali", "grade": 95}`))
	require.NoError(t, err)
	assert.Equal(t, "Ahmed Ali", rec["name"])
	assert.Equal(t, float64(95), rec["grade"])

	_, err = ParseRecipient([]byte(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse recipient")
}

func TestGetExampleJSONRoundTrips(t *testing.T) {
	configJSON, recipientJSON := GetExampleJSON()

	cfg, err := ParseConfig([]byte(configJSON))
	require.NoError(t, err)
	require.Contains(t, cfg, "name")
	require.Contains(t, cfg, "grade")
	require.Contains(t, cfg, FieldFirstName)
	require.Contains(t, cfg, FieldLastName)
	assert.Empty(t, ValidateConfig(cfg))

	require.NotNil(t, cfg["name"].Glow)
	assert.True(t, cfg["name"].Glow.Enabled)

	rec, err := ParseRecipient([]byte(recipientJSON))
	require.NoError(t, err)

	// The sample recipient exercises every sample field and nothing else.
	assert.Empty(t, ValidateRecipient(rec, cfg))
	assert.Len(t, rec, len(cfg))
}
