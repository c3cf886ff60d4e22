// validator.go - Field configuration checks and recipient schema output.
package certificate

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateConfig checks a parsed configuration for semantic problems.
// Returns warnings (never fatal errors): rendering degrades gracefully,
// only a missing or unparsable config file stops processing.
func ValidateConfig(cfg Config) []string {
	var warnings []string

	for _, name := range cfg.FieldNames() {
		fc := cfg[name]

		if fc.FontSize <= 0 {
			warnings = append(warnings, fmt.Sprintf("field %q: fontSize %.0f is not positive", name, fc.FontSize))
		}
		if fc.MinFontSize > fc.FontSize {
			warnings = append(warnings, fmt.Sprintf("field %q: minFontSize %.0f exceeds fontSize %.0f", name, fc.MinFontSize, fc.FontSize))
		}
		if fc.BoxWidth > 0 && fc.BoxWidth <= fc.Margins.Left+fc.Margins.Right {
			warnings = append(warnings, fmt.Sprintf("field %q: boxWidth %d leaves no room after margins; fitting degenerates to the floor size", name, fc.BoxWidth))
		}
		switch fc.Align {
		case AlignLeft, AlignCenter, AlignRight:
		default:
			warnings = append(warnings, fmt.Sprintf("field %q: unknown align %q — treated as left", name, fc.Align))
		}
		if _, ok := lookupColor(fc.Fill); !ok {
			warnings = append(warnings, fmt.Sprintf("field %q: unparsable fill %q — black is used", name, fc.Fill))
		}
		if g := fc.Glow; g != nil && g.Enabled {
			if g.Opacity < 0 || g.Opacity > 1 {
				warnings = append(warnings, fmt.Sprintf("field %q: glow opacity %.2f outside [0,1] — clamped", name, g.Opacity))
			}
			if g.Radius < 0 {
				warnings = append(warnings, fmt.Sprintf("field %q: negative glow radius %.1f disables the glow", name, g.Radius))
			}
		}
	}

	return warnings
}

// ValidateRecipient reports recipient keys that no field config knows about.
// Unknown keys are ignored during rendering; the warnings only make the
// no-op visible.
func ValidateRecipient(rec Recipient, cfg Config) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	for _, k := range keys {
		if _, ok := cfg[k]; !ok {
			warnings = append(warnings, fmt.Sprintf("recipient key %q has no field config — ignored", k))
		}
	}
	return warnings
}

// FormatSchema returns a human-readable description of the recipient JSON a
// configuration expects.
func FormatSchema(cfg Config) string {
	if len(cfg) == 0 {
		return "This configuration defines no fields.\n"
	}

	var b strings.Builder
	b.WriteString("Fields:\n")
	for _, name := range cfg.FieldNames() {
		fc := cfg[name]
		fmt.Fprintf(&b, "\n  [%s] at (%d, %d), %s %.0fpt, %s-aligned",
			name, fc.Position[0], fc.Position[1], fc.Font, fc.FontSize, fc.Align)
		if fc.BoxWidth > 0 {
			fmt.Fprintf(&b, ", fits %dpx (floor %.0fpt)", fc.BoxWidth, fc.MinFontSize)
		}
		b.WriteString("\n")
		if fc.SampleText != "" {
			fmt.Fprintf(&b, "       sample: %q\n", fc.SampleText)
		}
	}

	b.WriteString("\nExpected recipient JSON:\n  {\n")
	names := cfg.FieldNames()
	for i, name := range names {
		sample := cfg[name].SampleText
		if sample == "" {
			sample = "..."
		}
		comma := ","
		if i == len(names)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "    %q: %q%s\n", name, sample, comma)
	}
	b.WriteString("  }\n")

	return b.String()
}
