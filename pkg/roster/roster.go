// roster.go - Load recipient rosters from Excel workbooks.

// Package roster reads recipient spreadsheets and matches generated
// certificates back to the people they belong to.
package roster

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kby0x/GoCertify/pkg/certificate"
)

// Column hints, matched case-insensitively as substrings against header
// names. English and Arabic headers are both common in the wild.
var (
	identifierHints = []string{"id", "number", "رقم", "هوية"}
	emailHints      = []string{"mail", "بريد"}
)

// Roster is a parsed spreadsheet: one header row and the data rows under
// it. Rows may be shorter than Headers when trailing cells are empty.
type Roster struct {
	Headers []string
	Rows    [][]string
}

// Load parses an Excel workbook from r. Only the first sheet is read; the
// first row is taken as the header row.
func Load(r io.Reader) (*Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Roster{Headers: headers, Rows: rows[1:]}, nil
}

// LoadFile reads a workbook from disk.
func LoadFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Recipients converts the data rows into render payloads keyed by header
// name. Rows with no non-empty cell are skipped.
func (ro *Roster) Recipients() []certificate.Recipient {
	recipients := make([]certificate.Recipient, 0, len(ro.Rows))
	for _, row := range ro.Rows {
		rec := make(certificate.Recipient, len(ro.Headers))
		empty := true
		for i, h := range ro.Headers {
			if h == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if cell != "" {
				empty = false
			}
			rec[h] = cell
		}
		if !empty {
			recipients = append(recipients, rec)
		}
	}
	return recipients
}

// DetectColumns finds the identifier and email columns by header hints.
// The first header matching any hint wins. A roster without both columns
// cannot be reconciled, so either miss is an error.
func DetectColumns(headers []string) (idIdx, emailIdx int, err error) {
	idIdx = findColumn(headers, identifierHints)
	emailIdx = findColumn(headers, emailHints)
	if idIdx < 0 {
		return 0, 0, fmt.Errorf("no identifier column found (headers: %s)", strings.Join(headers, ", "))
	}
	if emailIdx < 0 {
		return 0, 0, fmt.Errorf("no email column found (headers: %s)", strings.Join(headers, ", "))
	}
	return idIdx, emailIdx, nil
}

func findColumn(headers []string, hints []string) int {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, hint := range hints {
			if strings.Contains(lower, hint) {
				return i
			}
		}
	}
	return -1
}

// NormalizeIdentifier strips everything but ASCII digits, so formatted
// identifiers ("301-112-345", " 301112345 ") compare equal to the runs
// extracted from filenames.
func NormalizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WriteDemoRoster writes a small example workbook, used by the init
// command to give new projects something runnable.
func WriteDemoRoster(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"name", "id", "email"},
		{"John Doe", "301112345", "john.doe@example.com"},
		{"Mary Smith", "301254876", "mary.smith@example.com"},
		{"Ahmed Ali", "301987654", "ahmed.ali@example.com"},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
