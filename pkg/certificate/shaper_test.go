package certificate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopShaperIdentity(t *testing.T) {
	s := NoopShaper{}

	for _, text := range []string{"", "John Doe", "سلام", "mixed سلام text"} {
		assert.Equal(t, text, s.Shape(text))
	}
}

func TestArabicShaperLatinPassthrough(t *testing.T) {
	s := ArabicShaper{}

	// Latin text has no contextual forms and a single left-to-right run,
	// so shaping must be the identity.
	assert.Equal(t, "", s.Shape(""))
	assert.Equal(t, "John Doe", s.Shape("John Doe"))
	assert.Equal(t, "grade: 95%", s.Shape("grade: 95%"))
}

func TestArabicShaperReshapesArabic(t *testing.T) {
	s := ArabicShaper{}

	logical := "سلام"
	shaped := s.Shape(logical)

	// Joined presentation forms plus visual reordering: the output is a
	// different string, never empty. Rune counts are not compared because
	// ligatures (lam-alef) can merge letters.
	assert.NotEmpty(t, shaped)
	assert.NotEqual(t, logical, shaped)
}

func TestArabicShaperIsDeterministic(t *testing.T) {
	s := ArabicShaper{}

	text := "شهادة تقدير"
	assert.Equal(t, s.Shape(text), s.Shape(text))
}
