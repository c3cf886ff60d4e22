// mktemplate - Certificate background generator.
//
// Usage:
//
//	mktemplate -o <file> [--width 1123] [--height 794] [--color <hex>] [options]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kby0x/GoCertify/pkg/generator"
)

func main() {
	fs := flag.NewFlagSet("mktemplate", flag.ExitOnError)

	var (
		output      string
		width       int
		height      int
		color       string
		borderColor string
		borderWidth int
		title       string
	)

	fs.StringVar(&output, "o", "", "Output file path (.png or .bmp)")
	fs.StringVar(&output, "output", "", "Output file path (.png or .bmp)")
	fs.IntVar(&width, "width", 1123, "Width in pixels")
	fs.IntVar(&height, "height", 794, "Height in pixels")
	fs.StringVar(&color, "color", "#fdf6e3", "Background color: hex or 'random'")
	fs.StringVar(&borderColor, "border-color", "#b8860b", "Frame color")
	fs.IntVar(&borderWidth, "border-width", 6, "Frame thickness in px (negative disables)")
	fs.StringVar(&title, "title", "", "Heading drawn near the top (optional)")

	fs.Usage = printUsage
	if err := fs.Parse(os.Args[1:]); err != nil {
		fatal(err)
	}

	if output == "" {
		printUsage()
		fatal(fmt.Errorf("output file is required (-o)"))
	}

	cfg := generator.Config{
		Width:       width,
		Height:      height,
		Color:       color,
		BorderColor: borderColor,
		BorderWidth: borderWidth,
		Title:       title,
	}

	fmt.Printf("Generating template: %s\n", output)
	if err := generator.Generate(output, cfg); err != nil {
		fatal(err)
	}
	fmt.Printf("Done: %s\n", output)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`mktemplate — Certificate Background Generator

USAGE:
    mktemplate -o <file> [options]

OPTIONS:
    -o, --output <path>    Output file (.png or .bmp)
    --width <px>           Width in pixels (default: 1123)
    --height <px>          Height in pixels (default: 794)
    --color <hex>          Background color or 'random' (default: #fdf6e3)
    --border-color <hex>   Frame color (default: #b8860b)
    --border-width <px>    Frame thickness, negative disables (default: 6)
    --title <text>         Heading drawn near the top

EXAMPLES:
    mktemplate -o certificate-template.png
    mktemplate -o bg.png --color "#1a1a2e" --border-color "#ffd700" --title "Certificate of Achievement"
    mktemplate -o plain.bmp --border-width -1 --color "#ffffff"
`)
}
