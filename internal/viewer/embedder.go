package viewer

import (
	"bytes"
	"fmt"
	"strings"

	"marimo-hub-be/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Embedder wraps the proxied runtime UI in an iframe. The content is
// already on disk for the runtime, so only the id is used.
type Embedder struct {
	uiPrefix string
}

var _ Facade = (*Embedder)(nil)

func NewEmbedder(uiPrefix string) *Embedder {
	return &Embedder{uiPrefix: strings.TrimRight(uiPrefix, "/")}
}

func (e *Embedder) Mode() string {
	return config.ModeProxy
}

func (e *Embedder) Open(ctx *fiber.Ctx, id string, _ string) error {
	var buf bytes.Buffer
	err := pages.ExecuteTemplate(&buf, "embed.html", struct {
		ID  string
		Src string
	}{ID: id, Src: e.uiPrefix + "/"})
	if err != nil {
		return fmt.Errorf("render embed page: %w", err)
	}
	return sendHTML(ctx, buf.Bytes())
}
