// Package viewer serves GET /notebooks/:id either as a self-contained HTML
// page (render mode) or as a wrapper around the proxied runtime UI (proxy
// mode).
package viewer

import (
	"embed"
	"html/template"

	"marimo-hub-be/internal/config"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Facade interface {
	// Mode is "render" or "proxy".
	Mode() string
	// Open writes the page for a stored notebook.
	Open(ctx *fiber.Ctx, id string, content string) error
}

// New picks the facade for cfg.App.ViewerMode.
func New(cfg *config.Config, uiPrefix string) Facade {
	if cfg.App.ViewerMode == config.ModeProxy {
		return NewEmbedder(uiPrefix)
	}
	return NewRenderer(cfg.App.RenderStyle)
}

func sendHTML(ctx *fiber.Ctx, body []byte) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Send(body)
}
