// reconcile.go - Match archived certificate files to roster rows by
// identifier.
package roster

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// identifierPattern matches the digit runs treated as identifiers in
// filenames. Seven to nine digits covers the student and national ID
// formats this tool is used with; the first run in a name wins.
var identifierPattern = regexp.MustCompile(`[0-9]{7,9}`)

// Match statuses.
const (
	StatusReady   = "ready"   // a certificate file was found for the row
	StatusMissing = "missing" // no file carries the row's identifier
)

// ArchiveEntry is one file pulled out of an uploaded archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// MatchRecord pairs a roster row with the certificate file found for it,
// if any. Payload stays out of JSON responses; callers that need the file
// bytes read them from the record directly.
type MatchRecord struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Filename   string `json:"filename,omitempty"`
	Payload    []byte `json:"-"`
	Status     string `json:"status"`
}

// ReadArchive lists the files inside a ZIP held in memory. Directory
// entries are skipped.
func ReadArchive(data []byte) ([]ArchiveEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var entries []ArchiveEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		entries = append(entries, ArchiveEntry{Name: f.Name, Data: content})
	}
	return entries, nil
}

// ExtractIdentifier pulls the first 7-9 digit run out of a filename.
// Returns "" when the name carries no such run.
func ExtractIdentifier(name string) string {
	return identifierPattern.FindString(name)
}

// Reconcile matches archive entries to roster rows. Every roster row
// yields one record, in row order; entries whose names carry no
// identifier are dropped, and when two entries carry the same identifier
// the later one wins. Column detection failures abort before any row is
// processed.
func Reconcile(ro *Roster, entries []ArchiveEntry) ([]MatchRecord, error) {
	idIdx, emailIdx, err := DetectColumns(ro.Headers)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]ArchiveEntry, len(entries))
	for _, e := range entries {
		if id := ExtractIdentifier(e.Name); id != "" {
			byID[id] = e
		}
	}

	records := make([]MatchRecord, 0, len(ro.Rows))
	for _, row := range ro.Rows {
		rec := MatchRecord{Status: StatusMissing}
		if idIdx < len(row) {
			rec.Identifier = NormalizeIdentifier(row[idIdx])
		}
		if emailIdx < len(row) {
			rec.Email = strings.TrimSpace(row[emailIdx])
		}
		if e, ok := byID[rec.Identifier]; ok && rec.Identifier != "" {
			rec.Filename = e.Name
			rec.Payload = e.Data
			rec.Status = StatusReady
		}
		records = append(records, rec)
	}
	return records, nil
}
