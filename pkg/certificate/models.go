// Package certificate renders personalized certificate documents from a
// template image and a JSON field configuration.
package certificate

import (
	"sort"
	"strconv"
)

// ── Configuration types ──

// DefaultMinFontSize is the shrink-to-fit floor applied when a field does
// not set its own minimum.
const DefaultMinFontSize = 12

// Alignment values for FieldConfig.Align.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Conventionally named recipient fields used for derived filenames.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
)

// FieldConfig describes one named placeholder on the template.
type FieldConfig struct {
	Position    [2]int  `json:"position"`              // [x, y] anchor in template pixels
	Font        string  `json:"font"`                  // logical font name, ".ttf" hint allowed
	FontSize    float64 `json:"fontSize"`              // preferred/maximum point size
	MinFontSize float64 `json:"minFontSize,omitempty"` // shrink-to-fit floor (default 12)
	BoxWidth    int     `json:"boxWidth,omitempty"`    // max rendered width in px; 0 = no fitting
	Margins     Margins `json:"margins,omitempty"`     // left/right are subtracted from boxWidth
	Bold        bool    `json:"bold,omitempty"`
	Italic      bool    `json:"italic,omitempty"`
	Fill        string  `json:"fill"`                 // named color or "#rrggbb"/"#rrggbbaa"
	Align       string  `json:"align,omitempty"`      // "left", "center", "right"
	Glow        *Glow   `json:"glow,omitempty"`       // optional soft outline behind the text
	SampleText  string  `json:"sampleText,omitempty"` // informational, carried from extraction
}

// Margins is the inset around a field's box, in pixels.
// Only Left and Right participate in width fitting.
type Margins struct {
	Left   int `json:"left,omitempty"`
	Right  int `json:"right,omitempty"`
	Top    int `json:"top,omitempty"`
	Bottom int `json:"bottom,omitempty"`
}

// Glow configures the blurred halo composited beneath a field's text.
// Radius <= 0 disables the effect silently.
type Glow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"` // 0..1, uniform alpha scale of the halo
	Radius  float64 `json:"radius,omitempty"`  // Gaussian blur radius in pixels
}

// Config maps field names to their placement and styling.
type Config map[string]FieldConfig

// FieldNames returns the config's field names in sorted order. This is the
// rendering order: fields drawn later occlude earlier ones at overlapping
// positions, so a stable order keeps output deterministic.
func (c Config) FieldNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ── Recipient types ──

// Recipient maps field names to raw values (strings or numbers). Keys with
// no matching FieldConfig are ignored, not errors.
type Recipient map[string]any

// fieldValue renders a recipient value as the string to draw. JSON numbers
// arrive as float64; integral values must not pick up an exponent or a
// trailing fraction.
func fieldValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
