// merge.go - Overlay hand-tuned field overrides onto an extracted base config.
package certificate

// MergeConfigs combines a base configuration with overrides. Fields only
// present in the override are added whole; fields present in both are merged
// per attribute with non-zero override values winning. Extraction produces
// geometry and fonts; overrides typically add glow, boxWidth and floors.
func MergeConfigs(base, override Config) Config {
	merged := make(Config, len(base)+len(override))
	for name, fc := range base {
		merged[name] = fc
	}

	for name, over := range override {
		fc, ok := merged[name]
		if !ok {
			applyFieldDefaults(&over)
			merged[name] = over
			continue
		}
		mergeFieldConfig(&fc, over)
		merged[name] = fc
	}

	return merged
}

// mergeFieldConfig applies non-zero override attributes. Boolean style flags
// can only be switched on, not off, by an override.
func mergeFieldConfig(base *FieldConfig, over FieldConfig) {
	if over.Position != [2]int{} {
		base.Position = over.Position
	}
	if over.Font != "" {
		base.Font = over.Font
	}
	if over.FontSize > 0 {
		base.FontSize = over.FontSize
	}
	if over.MinFontSize > 0 {
		base.MinFontSize = over.MinFontSize
	}
	if over.BoxWidth > 0 {
		base.BoxWidth = over.BoxWidth
	}
	if over.Margins != (Margins{}) {
		base.Margins = over.Margins
	}
	if over.Bold {
		base.Bold = true
	}
	if over.Italic {
		base.Italic = true
	}
	if over.Fill != "" {
		base.Fill = over.Fill
	}
	if over.Align != "" {
		base.Align = over.Align
	}
	if over.Glow != nil {
		g := *over.Glow
		base.Glow = &g
		applyFieldDefaults(base)
	}
	if over.SampleText != "" {
		base.SampleText = over.SampleText
	}
}
