//go:build js && wasm

// GoCertify WASM, a client-side certificate renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o gocertify.wasm ./clients/wasm/
package main

import (
	"encoding/base64"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/kby0x/GoCertify/pkg/certificate"
)

// In-memory state (replaces the server's stores).
var (
	mu       sync.RWMutex
	cfg      certificate.Config
	store    = certificate.NewMemTemplateStore(nil)
	renderer *certificate.Renderer
)

func main() {
	fmt.Println("GoCertify WASM loaded")

	var err error
	renderer, err = certificate.NewRenderer("")
	if err != nil {
		fmt.Println("renderer init failed:", err)
		return
	}

	// Register JS-callable functions.
	js.Global().Set("goSetConfig", js.FuncOf(setConfig))
	js.Global().Set("goSetTemplate", js.FuncOf(setTemplate))
	js.Global().Set("goSchema", js.FuncOf(schema))
	js.Global().Set("goRenderPNG", js.FuncOf(renderPNG))
	js.Global().Set("goRenderPDF", js.FuncOf(renderPDF))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func currentConfig() certificate.Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// goSetConfig(configJSON) — parse and store the field config.
func setConfig(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need configJSON")
	}

	parsed, err := certificate.ParseConfig([]byte(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	mu.Lock()
	cfg = parsed
	mu.Unlock()

	return js.ValueOf("ok")
}

// goSetTemplate(base64Data) — store the template image.
func setTemplate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need base64Data")
	}

	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	if err := store.Replace(data); err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	return js.ValueOf("ok")
}

// goSchema() — describe the recipient JSON the current config expects.
func schema(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(certificate.FormatSchema(currentConfig()))
}

// goRenderPNG(recipientJSON) — render and return base64 PNG.
func renderPNG(this js.Value, args []js.Value) interface{} {
	return render(args, func(rec certificate.Recipient, c certificate.Config, tmpl []byte) ([]byte, error) {
		return renderer.RenderPNG(rec, c, tmpl)
	})
}

// goRenderPDF(recipientJSON) — render and return base64 PDF.
func renderPDF(this js.Value, args []js.Value) interface{} {
	return render(args, func(rec certificate.Recipient, c certificate.Config, tmpl []byte) ([]byte, error) {
		return renderer.Render(rec, c, tmpl)
	})
}

func render(args []js.Value, encode func(certificate.Recipient, certificate.Config, []byte) ([]byte, error)) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need recipientJSON")
	}

	rec, err := certificate.ParseRecipient([]byte(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	c := currentConfig()
	if len(c) == 0 {
		return js.ValueOf("error: no config set (call goSetConfig first)")
	}

	tmpl, err := store.Bytes()
	if err != nil {
		return js.ValueOf("error: no template set (call goSetTemplate first)")
	}

	data, err := encode(rec, c, tmpl)
	if err != nil {
		return js.ValueOf("error: render: " + err.Error())
	}

	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}
