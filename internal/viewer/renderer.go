package viewer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"marimo-hub-be/internal/config"
	"marimo-hub-be/pkg/marimo"

	"github.com/gofiber/fiber/v2"
)

const (
	StyleSimulated = "simulated"
	StyleWasm      = "wasm"

	PyodideURL = "https://cdn.jsdelivr.net/pyodide/v0.24.1/full/pyodide.js"
)

type Renderer struct {
	style string
}

var _ Facade = (*Renderer)(nil)

// NewRenderer returns a renderer for style; unknown styles fall back to
// simulated.
func NewRenderer(style string) *Renderer {
	if style != StyleWasm {
		style = StyleSimulated
	}
	return &Renderer{style: style}
}

func (r *Renderer) Mode() string {
	return config.ModeRender
}

func (r *Renderer) Style() string {
	return r.style
}

type cellView struct {
	Index  int
	Number int
	Name   string
	Code   string
}

type pageData struct {
	ID         string
	Filename   string
	Cells      []cellView
	Source     template.JS
	Download   template.URL
	PyodideURL string
}

// Render writes the HTML page for content to w.
func (r *Renderer) Render(w io.Writer, id, content string) error {
	cells := marimo.ParseCells(content)
	views := make([]cellView, len(cells))
	for i, c := range cells {
		views[i] = cellView{Index: c.Index, Number: c.Index + 1, Name: c.Name, Code: c.Code}
	}

	data := pageData{
		ID:       id,
		Filename: id + ".py",
		Cells:    views,
		// ScriptLiteral output cannot break out of the script element.
		Source:     template.JS(marimo.ScriptLiteral(content)),
		Download:   template.URL("data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(content))),
		PyodideURL: PyodideURL,
	}

	if err := pages.ExecuteTemplate(w, r.style+".html", data); err != nil {
		return fmt.Errorf("render %s page: %w", r.style, err)
	}
	return nil
}

func (r *Renderer) Open(ctx *fiber.Ctx, id string, content string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, id, content); err != nil {
		return err
	}
	return sendHTML(ctx, buf.Bytes())
}
