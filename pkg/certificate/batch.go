// batch.go - Render a roster of recipients and pack the documents into one
// in-memory zip archive.
package certificate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CertificateFilename derives an archive entry name from the two
// conventionally named identifying fields. Missing fields degrade to empty
// segments ("certificate--.pdf") rather than failing the batch.
func CertificateFilename(rec Recipient) string {
	return fmt.Sprintf("certificate-%s-%s.pdf",
		fieldValue(rec[FieldFirstName]), fieldValue(rec[FieldLastName]))
}

// Pack renders every recipient and returns a zip archive of the documents
// plus the entry names in archive order. Renders run concurrently, one
// worker per CPU, since each recipient touches only its own canvas; the
// archive itself is written serially afterwards because zip writers are not
// safe for concurrent entries.
//
// Filename collisions silently overwrite earlier entries (last write wins,
// keeping the first occurrence's position). This is a known sharp edge of
// the naming convention.
func (r *Renderer) Pack(recipients []Recipient, cfg Config, template []byte) ([]byte, []string, error) {
	documents := make([][]byte, len(recipients))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rec := range recipients {
		g.Go(func() error {
			doc, err := r.Render(rec, cfg, template)
			if err != nil {
				return fmt.Errorf("recipient %d: %w", i+1, err)
			}
			documents[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	type entry struct {
		name string
		data []byte
	}
	var entries []entry
	slot := make(map[string]int, len(recipients))
	for i, rec := range recipients {
		name := CertificateFilename(rec)
		if j, ok := slot[name]; ok {
			entries[j].data = documents[i]
			continue
		}
		slot[name] = len(entries)
		entries = append(entries, entry{name: name, data: documents[i]})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// Fixed header fields keep archive bytes reproducible.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, nil, fmt.Errorf("archive entry %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, nil, fmt.Errorf("archive entry %s: %w", e.name, err)
		}
		names = append(names, e.name)
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("close archive: %w", err)
	}

	return buf.Bytes(), names, nil
}
