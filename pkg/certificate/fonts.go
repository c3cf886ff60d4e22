// fonts.go - Font resolution with style-suffix candidates, a local fonts
// directory, system lookup, and an embedded fallback font. Uses
// golang.org/x/image/font for OpenType rendering; flopp/go-findfont covers
// the system step of the chain.
package certificate

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontDPI is the fixed rendering resolution. At 72 DPI one point equals one
// pixel, so configured sizes read directly as pixel heights.
const fontDPI = 72

// Resolver maps logical font names plus style flags to loadable faces.
// Resolution never fails: when every candidate is missing the embedded
// default font is used and a diagnostic is logged.
type Resolver struct {
	dir string // local fonts directory, tried before the system

	mu       sync.Mutex
	cache    map[string]*opentype.Font // keyed by name|bold|italic
	fallback *opentype.Font
}

// NewResolver creates a resolver backed by the given local fonts directory.
// An empty dir skips the local step.
func NewResolver(dir string) (*Resolver, error) {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}

	return &Resolver{
		dir:      dir,
		cache:    make(map[string]*opentype.Font),
		fallback: fallback,
	}, nil
}

// Resolve returns a face for the font at the requested size. The styled
// candidate is tried before the plain one, each first in the local fonts
// directory and then as a system-resolvable name.
func (r *Resolver) Resolve(name string, size float64, bold, italic bool) (font.Face, error) {
	parsed := r.lookup(name, bold, italic)

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}

	return face, nil
}

// lookup returns the parsed font for a name/style combination, loading and
// caching it on first use.
func (r *Resolver) lookup(name string, bold, italic bool) *opentype.Font {
	key := fmt.Sprintf("%s|%t|%t", name, bold, italic)

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.cache[key]; ok {
		return f
	}

	f := r.load(name, bold, italic)
	r.cache[key] = f
	return f
}

// load walks the candidate chain and parses the first font that can be read.
func (r *Resolver) load(name string, bold, italic bool) *opentype.Font {
	for _, candidate := range candidateFilenames(name, bold, italic) {
		if r.dir != "" {
			local := filepath.Join(r.dir, candidate)
			if f := parseFontFile(local); f != nil {
				return f
			}
		}

		path, err := findfont.Find(candidate)
		if err != nil {
			continue
		}
		if f := parseFontFile(path); f != nil {
			log.Printf("font %q resolved from system path %s", candidate, path)
			return f
		}
	}

	log.Printf("font %q (bold=%t italic=%t) not found, using embedded default", name, bold, italic)
	return r.fallback
}

// parseFontFile reads and parses a TTF file, returning nil when either step
// fails so the caller can continue down the chain.
func parseFontFile(path string) *opentype.Font {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		log.Printf("font file %s is unusable: %v", path, err)
		return nil
	}
	return f
}

// candidateFilenames builds the ordered filename list for a font request.
// The styled name comes first, the plain name is the fallback.
func candidateFilenames(name string, bold, italic bool) []string {
	base := name
	if strings.EqualFold(filepath.Ext(base), ".ttf") {
		base = base[:len(base)-len(filepath.Ext(base))]
	}

	suffix := styleSuffix(bold, italic)
	if suffix == "" {
		return []string{base + ".ttf"}
	}
	return []string{base + suffix + ".ttf", base + ".ttf"}
}

// styleSuffix derives the filename suffix from style flags. Bold and italic
// are appended one after the other, so both flags yield "-Bold-Italic"
// rather than a combined token; the candidate list keeps the plain name as
// a fallback for fonts that do not ship that spelling.
func styleSuffix(bold, italic bool) string {
	var suffix string
	if bold {
		suffix += "-Bold"
	}
	if italic {
		suffix += "-Italic"
	}
	return suffix
}
