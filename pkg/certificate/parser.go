// parser.go - Field configuration parsing and example generation.
package certificate

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseConfig parses a field configuration document and applies defaults.
// A missing or unparsable configuration is a fatal configuration error.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse field config: %w", err)
	}

	for name, fc := range cfg {
		applyFieldDefaults(&fc)
		cfg[name] = fc
	}

	return cfg, nil
}

// ParseConfigFile loads a field configuration JSON file.
func ParseConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field config: %w", err)
	}
	return ParseConfig(data)
}

// ParseRecipient parses a single recipient's values.
func ParseRecipient(data []byte) (Recipient, error) {
	var rec Recipient
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse recipient: %w", err)
	}
	return rec, nil
}

// ParseRecipientFile loads a single recipient's values from a JSON file.
func ParseRecipientFile(path string) (Recipient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipient: %w", err)
	}
	return ParseRecipient(data)
}

// applyFieldDefaults sets sane fallbacks for one field.
func applyFieldDefaults(fc *FieldConfig) {
	if fc.MinFontSize <= 0 {
		fc.MinFontSize = DefaultMinFontSize
	}
	if fc.Align == "" {
		fc.Align = AlignLeft
	}
	if fc.Fill == "" {
		fc.Fill = "black"
	}
	if g := fc.Glow; g != nil && g.Enabled {
		// An enabled glow with no stated opacity means fully visible.
		if g.Opacity == 0 {
			g.Opacity = 1
		}
	}
}

// GetExampleJSON returns a sample fields.json and recipient.json for
// gocertify init.
func GetExampleJSON() (configJSON, recipientJSON string) {
	configJSON = `{
  "name": {
    "position": [562, 380],
    "font": "Arial",
    "fontSize": 48,
    "minFontSize": 12,
    "boxWidth": 640,
    "margins": { "left": 10, "right": 10 },
    "bold": true,
    "fill": "black",
    "align": "center",
    "glow": {
      "enabled": true,
      "color": "gold",
      "opacity": 0.6,
      "radius": 8
    },
    "sampleText": "Ahmed Ali"
  },
  "grade": {
    "position": [562, 520],
    "font": "Arial",
    "fontSize": 30,
    "fill": "red",
    "align": "center",
    "sampleText": "95"
  },
  "firstName": {
    "position": [210, 640],
    "font": "Arial",
    "fontSize": 24,
    "fill": "#333333"
  },
  "lastName": {
    "position": [420, 640],
    "font": "Arial-Bold.ttf",
    "fontSize": 24,
    "fill": "#333333"
  }
}`

	recipientJSON = `{
  "name": "Ahmed Ali",
  "grade": 95,
  "firstName": "Ahmed",
  "lastName": "Ali"
}`
	return
}
