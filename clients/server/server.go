// Package server provides the GoCertify HTTP API: render previews,
// single certificates, roster batches, and reconciliation over a shared
// template and field config.
package server

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/jpeg" // register template decoders
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/kby0x/GoCertify/pkg/certificate"
	"github.com/kby0x/GoCertify/pkg/roster"
)

// templateExts are the upload extensions accepted for template images.
var templateExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// ── Server ──

type srv struct {
	store    certificate.TemplateStore
	renderer *certificate.Renderer

	mu  sync.RWMutex
	cfg certificate.Config
}

// RunServe starts the API server. A kit bundle, or separate config,
// template, and fonts paths, seed the initial state; everything can be
// replaced over the API afterwards.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		port         string
		configPath   string
		templatePath string
		fontsDir     string
		kitPath      string
	)

	fs.StringVar(&port, "port", "8080", "Listen port")
	fs.StringVar(&port, "p", "8080", "Listen port")
	fs.StringVar(&configPath, "config", "", "Path to fields.json")
	fs.StringVar(&templatePath, "template", "", "Path to the template image")
	fs.StringVar(&fontsDir, "fonts", "", "Directory with .ttf fonts")
	fs.StringVar(&kitPath, "kit", "", "Path to a .gckit bundle (replaces the three flags above)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := certificate.Config{}
	var store certificate.TemplateStore = certificate.NewMemTemplateStore(nil)

	if kitPath != "" {
		kit, cleanup, err := certificate.LoadKit(kitPath)
		if err != nil {
			return err
		}
		defer cleanup()
		for _, warn := range kit.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
		}
		cfg = kit.Config
		store = certificate.NewFileTemplateStore(kit.TemplatePath)
		fontsDir = kit.FontsDir
	} else {
		if configPath != "" {
			parsed, err := certificate.ParseConfigFile(configPath)
			if err != nil {
				return err
			}
			for _, warn := range certificate.ValidateConfig(parsed) {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
			}
			cfg = parsed
		}
		if templatePath != "" {
			store = certificate.NewFileTemplateStore(templatePath)
		}
	}

	renderer, err := certificate.NewRenderer(fontsDir)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	s := &srv{
		store:    store,
		renderer: renderer,
		cfg:      cfg,
	}

	addr := ":" + port
	log.Printf("GoCertify API → http://localhost%s", addr)

	return http.ListenAndServe(addr, s.routes())
}

func (s *srv) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handlePutConfig)
	mux.HandleFunc("PATCH /api/config", s.handlePatchConfig)
	mux.HandleFunc("GET /api/template", s.handleGetTemplate)
	mux.HandleFunc("POST /api/template", s.handlePostTemplate)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/certificate", s.handleCertificate)
	mux.HandleFunc("POST /api/batch", s.handleBatch)
	mux.HandleFunc("POST /api/reconcile", s.handleReconcile)

	return mux
}

func (s *srv) config() certificate.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ── Health ──

func (s *srv) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, templateErr := s.store.Bytes()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"fields":   len(s.config()),
		"template": templateErr == nil,
	})
}

// ── Config ──

func (s *srv) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.config())
}

func (s *srv) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	cfg, err := certificate.ParseConfig(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.writeConfigStatus(w, cfg)
}

// handlePatchConfig overlays the request's fields onto the current config
// instead of replacing it, so hand tuning (glow, box widths) survives a
// re-extraction.
func (s *srv) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	override, err := certificate.ParseConfig(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.cfg = certificate.MergeConfigs(s.cfg, override)
	merged := s.cfg
	s.mu.Unlock()

	s.writeConfigStatus(w, merged)
}

func (s *srv) writeConfigStatus(w http.ResponseWriter, cfg certificate.Config) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"fields":   len(cfg),
		"warnings": certificate.ValidateConfig(cfg),
	})
}

// ── Template ──

func (s *srv) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Bytes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

func (s *srv) handlePostTemplate(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(10 << 20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !templateExts[ext] {
		http.Error(w, fmt.Sprintf("unsupported template type %q: use .png, .jpg or .bmp", ext), http.StatusBadRequest)
		return
	}

	data, _ := io.ReadAll(file)
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		http.Error(w, "not a decodable image: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Replace(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"size":   len(data),
	})
}

// ── Render ──

type renderRequest struct {
	Recipient certificate.Recipient `json:"recipient"`
	Config    json.RawMessage       `json:"config"` // optional, overrides the server config
}

// parseRenderRequest decodes the request body and resolves the config to
// use: the inline one when supplied, the server's otherwise.
func (s *srv) parseRenderRequest(w http.ResponseWriter, r *http.Request) (certificate.Recipient, certificate.Config, error) {
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, fmt.Errorf("decode request: %w", err)
	}
	if len(req.Recipient) == 0 {
		return nil, nil, fmt.Errorf("recipient is required")
	}

	cfg := s.config()
	if len(req.Config) > 0 && string(req.Config) != "null" {
		parsed, err := certificate.ParseConfig(req.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("parse config: %w", err)
		}
		cfg = parsed
	}
	if len(cfg) == 0 {
		return nil, nil, fmt.Errorf("no field config loaded (PUT /api/config first)")
	}

	return req.Recipient, cfg, nil
}

func (s *srv) handleRender(w http.ResponseWriter, r *http.Request) {
	rec, cfg, err := s.parseRenderRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl, err := s.store.Bytes()
	if err != nil {
		http.Error(w, "no template loaded: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.renderer.RenderPNG(rec, cfg, tmpl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *srv) handleCertificate(w http.ResponseWriter, r *http.Request) {
	rec, cfg, err := s.parseRenderRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl, err := s.store.Bytes()
	if err != nil {
		http.Error(w, "no template loaded: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.renderer.Render(rec, cfg, tmpl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, certificate.CertificateFilename(rec)))
	w.Write(data)
}

// ── Batch ──

func (s *srv) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(50 << 20)
	file, _, err := r.FormFile("roster")
	if err != nil {
		http.Error(w, "no roster uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ro, err := roster.Load(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recipients := ro.Recipients()
	if len(recipients) == 0 {
		http.Error(w, "roster has no data rows", http.StatusBadRequest)
		return
	}

	cfg := s.config()
	if len(cfg) == 0 {
		http.Error(w, "no field config loaded (PUT /api/config first)", http.StatusBadRequest)
		return
	}
	tmpl, err := s.store.Bytes()
	if err != nil {
		http.Error(w, "no template loaded: "+err.Error(), http.StatusBadRequest)
		return
	}

	archive, names, err := s.renderer.Pack(recipients, cfg, tmpl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("batch: %d certificates, %d bytes", len(names), len(archive))

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.zip"`)
	w.Write(archive)
}

// ── Reconcile ──

func (s *srv) handleReconcile(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(50 << 20)

	rosterFile, _, err := r.FormFile("roster")
	if err != nil {
		http.Error(w, "no roster uploaded", http.StatusBadRequest)
		return
	}
	defer rosterFile.Close()

	archiveFile, _, err := r.FormFile("archive")
	if err != nil {
		http.Error(w, "no archive uploaded", http.StatusBadRequest)
		return
	}
	defer archiveFile.Close()

	ro, err := roster.Load(rosterFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	archiveData, _ := io.ReadAll(archiveFile)
	entries, err := roster.ReadArchive(archiveData)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := roster.Reconcile(ro, entries)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ready := 0
	for _, rec := range records {
		if rec.Status == roster.StatusReady {
			ready++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"records": records,
		"ready":   ready,
		"missing": len(records) - ready,
	})
}
