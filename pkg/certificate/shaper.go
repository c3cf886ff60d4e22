// shaper.go - Script reshaping boundary. Rendering treats shaping as a pure
// string transform so layout logic stays testable with fakes; the production
// shaper joins Arabic letters into presentation forms (AbdullahDiaa/garabic)
// and reorders bidirectional runs into visual order (x/text/unicode/bidi).
package certificate

import (
	"strings"

	"github.com/AbdullahDiaa/garabic"
	"golang.org/x/text/unicode/bidi"
)

// Shaper reshapes a raw string for correct visual display. It must be
// applied before any width measurement: visual width depends on the shaped
// glyph sequence, not the logical one.
type Shaper interface {
	Shape(text string) string
}

// NoopShaper passes text through unchanged. Useful for Latin-only templates
// and deterministic layout tests.
type NoopShaper struct{}

// Shape returns text as-is.
func (NoopShaper) Shape(text string) string { return text }

// ArabicShaper substitutes contextual letter forms and flips right-to-left
// runs so a left-to-right drawer paints them correctly.
type ArabicShaper struct{}

// Shape reshapes and visually reorders text.
func (ArabicShaper) Shape(text string) string {
	if text == "" {
		return text
	}

	shaped := garabic.Shape(text)

	var p bidi.Paragraph
	if _, err := p.SetString(shaped); err != nil {
		return shaped
	}
	order, err := p.Order()
	if err != nil {
		return shaped
	}

	var b strings.Builder
	b.Grow(len(shaped))
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		if run.Direction() == bidi.RightToLeft {
			b.WriteString(bidi.ReverseString(run.String()))
			continue
		}
		b.WriteString(run.String())
	}

	return b.String()
}
