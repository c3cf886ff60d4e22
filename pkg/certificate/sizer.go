// sizer.go - Shrink-to-fit font sizing for bounded fields.
package certificate

import (
	"golang.org/x/image/font"
)

// fitStep is the point decrement between fitting candidates.
const fitStep = 2

// fit picks the largest size whose rendered width fits the field's box and
// returns the face at that size. Text must already be shaped.
//
// Without a boxWidth the preferred size is used directly. Otherwise sizes
// are tried from fontSize down in steps of 2 to minFontSize inclusive,
// measuring with the same face that will draw the text; the first fit wins.
// When nothing fits the floor size is returned best-effort, which may still
// overflow the box. A linear scan is deliberate: the range is a handful of
// steps and measurement dominates, so binary search buys nothing.
func (r *Renderer) fit(text string, fc FieldConfig) (font.Face, float64, error) {
	if fc.BoxWidth <= 0 {
		face, err := r.resolver.Resolve(fc.Font, fc.FontSize, fc.Bold, fc.Italic)
		return face, fc.FontSize, err
	}

	effectiveWidth := fc.BoxWidth - fc.Margins.Left - fc.Margins.Right
	floor := fc.MinFontSize
	if floor <= 0 {
		floor = DefaultMinFontSize
	}

	for size := fc.FontSize; size >= floor; size -= fitStep {
		face, err := r.resolver.Resolve(fc.Font, size, fc.Bold, fc.Italic)
		if err != nil {
			return nil, 0, err
		}
		if font.MeasureString(face, text).Ceil() <= effectiveWidth {
			return face, size, nil
		}
	}

	face, err := r.resolver.Resolve(fc.Font, floor, fc.Bold, fc.Italic)
	return face, floor, err
}
