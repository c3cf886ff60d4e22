// kit.go - Load .gckit (ZIP) bundles: a field config, a template image,
// and optional fonts, packaged as one file.
package certificate

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// templateBasenames are the archive entries probed for the template image,
// in preference order.
var templateBasenames = []string{
	"template.png",
	"template.jpg",
	"template.jpeg",
	"template.bmp",
}

// Kit is an extracted certificate bundle. TemplatePath points at the
// template image inside the extraction directory; FontsDir is empty when
// the bundle ships no fonts.
type Kit struct {
	Config       Config
	TemplatePath string
	FontsDir     string
	Warnings     []string
}

// LoadKit opens a .gckit ZIP, extracts it to a temp directory, parses
// fields.json, and locates the template image and fonts directory. The
// returned cleanup function removes the temp directory.
func LoadKit(path string) (*Kit, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	// Extract to temp dir.
	tmpDir, err := os.MkdirTemp("", "gckit-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(r, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	// Parse fields.json.
	cfg, err := ParseConfigFile(filepath.Join(tmpDir, "fields.json"))
	if err != nil {
		cleanup()
		return nil, noop, err
	}

	kit := &Kit{
		Config:   cfg,
		Warnings: ValidateConfig(cfg),
	}

	// Locate the template image.
	for _, name := range templateBasenames {
		candidate := filepath.Join(tmpDir, name)
		if _, err := os.Stat(candidate); err == nil {
			kit.TemplatePath = candidate
			break
		}
	}
	if kit.TemplatePath == "" {
		cleanup()
		return nil, noop, fmt.Errorf("no template image in %s (expected one of %s)",
			path, strings.Join(templateBasenames, ", "))
	}

	// Bundled fonts are optional.
	fontsDir := filepath.Join(tmpDir, "fonts")
	if info, err := os.Stat(fontsDir); err == nil && info.IsDir() {
		kit.FontsDir = fontsDir
	}

	return kit, cleanup, nil
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.ReadCloser, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		// Ensure parent directory exists.
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip entry to disk.
func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
