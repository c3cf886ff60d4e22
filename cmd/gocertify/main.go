// GoCertify renders personalized certificates from a template image and
// a JSON field config.
//
// Usage:
//
//	gocertify -o <file> --config <path> --recipient <path> --template <path> [options]
//	gocertify batch -o <zip> --roster <xlsx> --config <path> --template <path>
//	gocertify reconcile --roster <xlsx> --archive <zip>
//	gocertify extract --deck <pptx> [-o fields.json]
//	gocertify schema --config <path>
//	gocertify serve [--port 8080]
//	gocertify init
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kby0x/GoCertify/clients/server"
	"github.com/kby0x/GoCertify/pkg/certificate"
	"github.com/kby0x/GoCertify/pkg/deck"
	"github.com/kby0x/GoCertify/pkg/generator"
	"github.com/kby0x/GoCertify/pkg/roster"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "schema":
		if err := runSchema(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "extract":
		if err := runExtract(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "batch":
		if err := runBatch(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "reconcile":
		if err := runReconcile(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		if err := run(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

// ── Render (default mode) ──

func run(args []string) error {
	fs := flag.NewFlagSet("gocertify", flag.ExitOnError)

	var (
		output        string
		configPath    string
		recipientPath string
		templatePath  string
		fontsDir      string
		kitPath       string
	)

	fs.StringVar(&output, "o", "", "Output file path (.pdf or .png)")
	fs.StringVar(&output, "output", "", "Output file path (.pdf or .png)")
	fs.StringVar(&configPath, "config", "", "Path to fields.json")
	fs.StringVar(&recipientPath, "recipient", "", "Path to recipient.json")
	fs.StringVar(&templatePath, "template", "", "Path to the template image")
	fs.StringVar(&fontsDir, "fonts", "", "Directory with .ttf fonts")
	fs.StringVar(&kitPath, "kit", "", "Path to a .gckit bundle")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}
	if recipientPath == "" {
		return fmt.Errorf("--recipient is required")
	}

	cfg, templatePath, fontsDir, cleanup, err := loadInputs(kitPath, configPath, templatePath, fontsDir)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := certificate.ParseRecipientFile(recipientPath)
	if err != nil {
		return err
	}
	for _, warn := range certificate.ValidateRecipient(rec, cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}

	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	renderer, err := certificate.NewRenderer(fontsDir)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	fmt.Printf("Rendering: %s\n", output)

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".pdf":
		data, err = renderer.Render(rec, cfg, template)
	case ".png":
		data, err = renderer.RenderPNG(rec, cfg, template)
	default:
		return fmt.Errorf("unsupported output %q: use .pdf or .png", ext)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}

// loadInputs resolves the field config, template path, and fonts dir from
// either a kit bundle or the separate flags. Config warnings go to stderr.
// The returned cleanup removes the kit's extraction dir.
func loadInputs(kitPath, configPath, templatePath, fontsDir string) (certificate.Config, string, string, func(), error) {
	noop := func() {}

	if kitPath != "" {
		kit, cleanup, err := certificate.LoadKit(kitPath)
		if err != nil {
			return nil, "", "", noop, err
		}
		for _, warn := range kit.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
		}
		if fontsDir == "" {
			fontsDir = kit.FontsDir
		}
		return kit.Config, kit.TemplatePath, fontsDir, cleanup, nil
	}

	if configPath == "" {
		return nil, "", "", noop, fmt.Errorf("field config is required (--config or --kit)")
	}
	if templatePath == "" {
		return nil, "", "", noop, fmt.Errorf("template image is required (--template or --kit)")
	}

	cfg, err := certificate.ParseConfigFile(configPath)
	if err != nil {
		return nil, "", "", noop, err
	}
	for _, warn := range certificate.ValidateConfig(cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}

	return cfg, templatePath, fontsDir, noop, nil
}

// ── Batch ──

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)

	var (
		output       string
		rosterPath   string
		configPath   string
		templatePath string
		fontsDir     string
		kitPath      string
	)

	fs.StringVar(&output, "o", "certificates.zip", "Output archive path")
	fs.StringVar(&output, "output", "certificates.zip", "Output archive path")
	fs.StringVar(&rosterPath, "roster", "", "Path to the roster workbook (.xlsx)")
	fs.StringVar(&configPath, "config", "", "Path to fields.json")
	fs.StringVar(&templatePath, "template", "", "Path to the template image")
	fs.StringVar(&fontsDir, "fonts", "", "Directory with .ttf fonts")
	fs.StringVar(&kitPath, "kit", "", "Path to a .gckit bundle")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if rosterPath == "" {
		return fmt.Errorf("--roster is required")
	}

	cfg, templatePath, fontsDir, cleanup, err := loadInputs(kitPath, configPath, templatePath, fontsDir)
	if err != nil {
		return err
	}
	defer cleanup()

	ro, err := roster.LoadFile(rosterPath)
	if err != nil {
		return err
	}
	recipients := ro.Recipients()
	if len(recipients) == 0 {
		return fmt.Errorf("roster %s has no data rows", rosterPath)
	}

	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	renderer, err := certificate.NewRenderer(fontsDir)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	fmt.Printf("Rendering %d certificates...\n", len(recipients))
	archive, names, err := renderer.Pack(recipients, cfg, template)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, archive, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Done: %s (%d files)\n", output, len(names))
	return nil
}

// ── Reconcile ──

func runReconcile(args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)

	var (
		output      string
		rosterPath  string
		archivePath string
	)

	fs.StringVar(&output, "o", "", "Report path (default: stdout)")
	fs.StringVar(&output, "output", "", "Report path (default: stdout)")
	fs.StringVar(&rosterPath, "roster", "", "Path to the roster workbook (.xlsx)")
	fs.StringVar(&archivePath, "archive", "", "Path to the certificate archive (.zip)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if rosterPath == "" {
		return fmt.Errorf("--roster is required")
	}
	if archivePath == "" {
		return fmt.Errorf("--archive is required")
	}

	ro, err := roster.LoadFile(rosterPath)
	if err != nil {
		return err
	}

	archiveData, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	entries, err := roster.ReadArchive(archiveData)
	if err != nil {
		return err
	}

	records, err := roster.Reconcile(ro, entries)
	if err != nil {
		return err
	}

	ready := 0
	for _, rec := range records {
		if rec.Status == roster.StatusReady {
			ready++
		}
	}

	report, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if output == "" {
		fmt.Println(string(report))
	} else {
		if err := os.WriteFile(output, report, 0644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	}
	fmt.Fprintf(os.Stderr, "Matched: %d ready, %d missing\n", ready, len(records)-ready)
	return nil
}

// ── Extract ──

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)

	var (
		output        string
		deckPath      string
		overridesPath string
	)

	fs.StringVar(&output, "o", "fields.json", "Output config path")
	fs.StringVar(&output, "output", "fields.json", "Output config path")
	fs.StringVar(&deckPath, "deck", "", "Path to the slide deck (.pptx)")
	fs.StringVar(&overridesPath, "overrides", "", "Config overlaid onto the extracted fields")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if deckPath == "" {
		return fmt.Errorf("--deck is required")
	}

	cfg, err := deck.ExtractFile(deckPath)
	if err != nil {
		return err
	}

	if overridesPath != "" {
		over, err := certificate.ParseConfigFile(overridesPath)
		if err != nil {
			return err
		}
		cfg = certificate.MergeConfigs(cfg, over)
	}

	for _, warn := range certificate.ValidateConfig(cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Extracted %d fields: %s\n", len(cfg), output)
	return nil
}

// ── Schema ──

func runSchema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)

	var (
		configPath string
		kitPath    string
	)
	fs.StringVar(&configPath, "config", "", "Path to fields.json")
	fs.StringVar(&kitPath, "kit", "", "Path to a .gckit bundle")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg certificate.Config
	switch {
	case kitPath != "":
		kit, cleanup, err := certificate.LoadKit(kitPath)
		if err != nil {
			return err
		}
		defer cleanup()
		cfg = kit.Config
	case configPath != "":
		var err error
		cfg, err = certificate.ParseConfigFile(configPath)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("--config or --kit is required for schema command")
	}

	fmt.Print(certificate.FormatSchema(cfg))
	return nil
}

// ── Init ──

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	var (
		configOut    string
		recipientOut string
		rosterOut    string
		templateOut  string
	)
	fs.StringVar(&configOut, "config", "fields.json", "Output path for the sample field config")
	fs.StringVar(&recipientOut, "recipient", "recipient.json", "Output path for the sample recipient")
	fs.StringVar(&rosterOut, "roster", "students.xlsx", "Output path for the demo roster")
	fs.StringVar(&templateOut, "template", "certificate-template.png", "Output path for the demo template")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c, r := certificate.GetExampleJSON()

	if err := os.WriteFile(configOut, []byte(c), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.WriteFile(recipientOut, []byte(r), 0644); err != nil {
		return fmt.Errorf("write recipient: %w", err)
	}
	if err := roster.WriteDemoRoster(rosterOut); err != nil {
		return err
	}
	if err := generator.Generate(templateOut, generator.Config{
		Color: "#fdf6e3",
		Title: "Certificate of Achievement",
	}); err != nil {
		return err
	}

	fmt.Printf("Created: %s, %s, %s, %s\n", configOut, recipientOut, rosterOut, templateOut)
	fmt.Println("Run: gocertify -o certificate.pdf --config fields.json --recipient recipient.json --template certificate-template.png")
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoCertify — Certificate Generation (Pure Go)

USAGE:
    gocertify -o <file> --config <path> --recipient <path> --template <path> [options]
    gocertify batch -o <zip> --roster <xlsx> --config <path> --template <path>
    gocertify reconcile --roster <xlsx> --archive <zip> [-o report.json]
    gocertify extract --deck <pptx> [-o fields.json] [--overrides <path>]
    gocertify schema --config <path>
    gocertify serve [--port 8080]
    gocertify init

RENDER MODE:
    -o, --output <path>    Output file (.pdf or .png)
    --config <path>        Field config JSON
    --recipient <path>     Recipient values JSON
    --template <path>      Template image (.png, .jpg, .bmp)
    --fonts <dir>          Directory with .ttf fonts (optional)
    --kit <path>           .gckit bundle replacing config/template/fonts

BATCH MODE:
    gocertify batch --roster students.xlsx --config fields.json --template bg.png
                           Render one PDF per roster row into a ZIP

RECONCILE:
    gocertify reconcile --roster students.xlsx --archive certificates.zip
                           Match archived certificates to roster rows by ID

EXTRACT:
    gocertify extract --deck design.pptx
                           Derive fields.json from a slide deck's text boxes

API SERVER:
    gocertify serve [--port 8080] [--kit bundle.gckit]

SCHEMA:
    gocertify schema --config fields.json    Print expected recipient JSON

EXAMPLES:
    gocertify init
    gocertify -o out.pdf --config fields.json --recipient recipient.json --template certificate-template.png
    gocertify -o preview.png --kit course.gckit --recipient recipient.json
    gocertify batch --roster students.xlsx --kit course.gckit
    gocertify reconcile --roster students.xlsx --archive certificates.zip
    gocertify extract --deck design.pptx -o fields.json
`)
}
