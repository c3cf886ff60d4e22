// extract.go - Pull field placements out of .pptx slide decks.

// Package deck reads PowerPoint files and turns their text boxes into a
// field configuration, so a certificate designed as a slide can seed
// fields.json instead of being measured by hand.
package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kby0x/GoCertify/pkg/certificate"
)

// OOXML lengths are EMUs: 914400 per inch, rendered here at 96 px/inch.
const emuPerInch = 914400

// Text-frame inset defaults, applied when bodyPr omits the attribute.
const (
	defaultInsetLR = 91440 // EMU
	defaultInsetTB = 45720 // EMU
)

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ── Slide XML shapes ──
//
// encoding/xml matches on local names, which sidesteps the a:/p: namespace
// prefixes. Lengths stay strings here; parsing and defaulting happen in
// one place below.

type slideXML struct {
	Shapes []shapeXML `xml:"cSld>spTree>sp"`
}

type shapeXML struct {
	Xfrm   xfrmXML    `xml:"spPr>xfrm"`
	TxBody *txBodyXML `xml:"txBody"`
}

type xfrmXML struct {
	Off struct {
		X string `xml:"x,attr"`
		Y string `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		Cx string `xml:"cx,attr"`
		Cy string `xml:"cy,attr"`
	} `xml:"ext"`
}

type txBodyXML struct {
	BodyPr struct {
		LIns string `xml:"lIns,attr"`
		TIns string `xml:"tIns,attr"`
		RIns string `xml:"rIns,attr"`
		BIns string `xml:"bIns,attr"`
	} `xml:"bodyPr"`
	Paragraphs []paragraphXML `xml:"p"`
}

type paragraphXML struct {
	Props struct {
		Algn string `xml:"algn,attr"`
	} `xml:"pPr"`
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Props *runPropsXML `xml:"rPr"`
	Text  string       `xml:"t"`
}

type runPropsXML struct {
	Size   string `xml:"sz,attr"` // hundredths of a point
	Bold   string `xml:"b,attr"`
	Italic string `xml:"i,attr"`
	Fill   struct {
		Val string `xml:"val,attr"`
	} `xml:"solidFill>srgbClr"`
	Latin struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"latin"`
}

// ── Extraction ──

// ExtractFile reads a .pptx from disk and returns its field config.
func ExtractFile(path string) (certificate.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Extract(data)
}

// Extract walks every slide of a .pptx held in memory and returns one
// FieldConfig per non-empty text box, named field1..fieldN in document
// order. Geometry converts EMU to pixels at 96 DPI; styling comes from the
// text runs, with Arial 24pt black as the fallback.
func Extract(data []byte) (certificate.Config, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}

	slides, err := slideFiles(zr)
	if err != nil {
		return nil, err
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("deck has no slides")
	}

	cfg := make(certificate.Config)
	index := 1
	for _, sf := range slides {
		var slide slideXML
		if err := parseSlide(sf, &slide); err != nil {
			return nil, fmt.Errorf("slide %s: %w", sf.Name, err)
		}
		for _, shape := range slide.Shapes {
			fc, ok := shapeField(shape)
			if !ok {
				continue
			}
			cfg[fmt.Sprintf("field%d", index)] = fc
			index++
		}
	}
	return cfg, nil
}

// slideFiles returns the deck's slide entries sorted by slide number.
// Lexical order would put slide10 before slide2.
func slideFiles(zr *zip.Reader) ([]*zip.File, error) {
	type numbered struct {
		n int
		f *zip.File
	}
	var found []numbered
	for _, f := range zr.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("slide name %q: %w", f.Name, err)
		}
		found = append(found, numbered{n: n, f: f})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	files := make([]*zip.File, len(found))
	for i, nf := range found {
		files[i] = nf.f
	}
	return files, nil
}

func parseSlide(f *zip.File, dst *slideXML) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, dst)
}

// shapeField converts one shape into a FieldConfig. Shapes without a text
// body or without any text are skipped.
func shapeField(shape shapeXML) (certificate.FieldConfig, bool) {
	if shape.TxBody == nil {
		return certificate.FieldConfig{}, false
	}
	text := shapeText(shape.TxBody)
	if text == "" {
		return certificate.FieldConfig{}, false
	}

	fc := certificate.FieldConfig{
		Position: [2]int{
			emuToPx(parseEMU(shape.Xfrm.Off.X, 0)),
			emuToPx(parseEMU(shape.Xfrm.Off.Y, 0)),
		},
		BoxWidth: emuToPx(parseEMU(shape.Xfrm.Ext.Cx, 0)),
		Margins: certificate.Margins{
			Left:   emuToPx(parseEMU(shape.TxBody.BodyPr.LIns, defaultInsetLR)),
			Right:  emuToPx(parseEMU(shape.TxBody.BodyPr.RIns, defaultInsetLR)),
			Top:    emuToPx(parseEMU(shape.TxBody.BodyPr.TIns, defaultInsetTB)),
			Bottom: emuToPx(parseEMU(shape.TxBody.BodyPr.BIns, defaultInsetTB)),
		},
		Align:      alignment(shape.TxBody),
		SampleText: text,
	}

	// Styling comes from the runs: the last run to state a font name, size
	// or color wins, bold and italic stick once any run sets them.
	fc.Font = "Arial"
	fc.FontSize = 24
	fc.Fill = "black"
	for _, p := range shape.TxBody.Paragraphs {
		for _, r := range p.Runs {
			if r.Props == nil {
				continue
			}
			if tf := r.Props.Latin.Typeface; tf != "" {
				fc.Font = tf
			}
			if sz, err := strconv.Atoi(r.Props.Size); err == nil && sz > 0 {
				fc.FontSize = float64(sz) / 100
			}
			if ooxmlBool(r.Props.Bold) {
				fc.Bold = true
			}
			if ooxmlBool(r.Props.Italic) {
				fc.Italic = true
			}
			if val := r.Props.Fill.Val; val != "" {
				fc.Fill = "#" + strings.ToLower(val)
			}
		}
	}

	return fc, true
}

// shapeText joins the shape's runs, paragraphs separated by newlines, and
// trims the result.
func shapeText(body *txBodyXML) string {
	var parts []string
	for _, p := range body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		parts = append(parts, b.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// alignment reads the first paragraph's algn attribute, matching how the
// rest of the box is assumed to follow the leading paragraph.
func alignment(body *txBodyXML) string {
	if len(body.Paragraphs) == 0 {
		return certificate.AlignLeft
	}
	switch body.Paragraphs[0].Props.Algn {
	case "ctr":
		return certificate.AlignCenter
	case "r":
		return certificate.AlignRight
	default:
		return certificate.AlignLeft
	}
}

func parseEMU(attr string, def int64) int64 {
	if attr == "" {
		return def
	}
	v, err := strconv.ParseInt(attr, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func emuToPx(emu int64) int {
	return int(float64(emu) / emuPerInch * 96)
}

func ooxmlBool(attr string) bool {
	return attr == "1" || attr == "true"
}
