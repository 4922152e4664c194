package viewer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"marimo-hub-be/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hostileNotebook = "import marimo as mo\n\napp = mo.App()\n\n@app.cell\ndef inject():\n    s = `${alert(1)}` + \"</script><script>alert(2)</script>\"\n    return (s,)\n"

func embeddedLiteral(t *testing.T, page string) string {
	t.Helper()
	const marker = "const notebookSource = "
	start := strings.Index(page, marker)
	require.GreaterOrEqual(t, start, 0, "source literal missing")
	rest := page[start+len(marker):]
	end := strings.Index(rest, ";\n")
	require.Greater(t, end, 0)
	return rest[:end]
}

func TestRenderer_EscapesHostileContent(t *testing.T) {
	for _, style := range []string{StyleSimulated, StyleWasm} {
		t.Run(style, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewRenderer(style).Render(&buf, "abc123", hostileNotebook))
			page := buf.String()

			scriptTags := 1
			if style == StyleWasm {
				scriptTags = 2
			}
			assert.Equal(t, scriptTags, strings.Count(page, "</script>"))
			assert.NotContains(t, page, "<script>alert(2)")

			literal := embeddedLiteral(t, page)
			assert.NotContains(t, literal, "`")
			assert.NotContains(t, literal, "${")
			assert.NotContains(t, literal, "</")

			var decoded string
			require.NoError(t, json.Unmarshal([]byte(literal), &decoded))
			assert.Equal(t, hostileNotebook, decoded)
		})
	}
}

func TestRenderer_CellsAndDownload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(StyleSimulated).Render(&buf, "nb1", hostileNotebook))
	page := buf.String()

	assert.Contains(t, page, "Cell 1 &middot; inject")
	assert.Contains(t, page, "&lt;/script&gt;")
	assert.Contains(t, page, `download="nb1.py"`)
	// html/template writes '+' as an entity inside attributes.
	encoded := strings.ReplaceAll(base64.StdEncoding.EncodeToString([]byte(hostileNotebook)), "+", "&#43;")
	assert.Contains(t, page, `href="data:text/plain;base64,`+encoded+`"`)
}

func TestNewRenderer_UnknownStyle(t *testing.T) {
	r := NewRenderer("fancy")
	assert.Equal(t, StyleSimulated, r.Style())
	assert.Equal(t, config.ModeRender, r.Mode())
}

func TestFacade_Open(t *testing.T) {
	render := NewRenderer(StyleSimulated)
	embed := NewEmbedder("/ui/")

	app := fiber.New()
	app.Get("/render/:id", func(c *fiber.Ctx) error {
		return render.Open(c, c.Params("id"), "print(1)")
	})
	app.Get("/embed/:id", func(c *fiber.Ctx) error {
		return embed.Open(c, c.Params("id"), "print(1)")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/render/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextHTMLCharsetUTF8, resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "print(1)")

	resp, err = app.Test(httptest.NewRequest("GET", "/embed/abc123", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `src="/ui/"`)
	assert.Equal(t, config.ModeProxy, embed.Mode())
}

func TestNew_PicksByMode(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{ViewerMode: config.ModeProxy}}
	assert.Equal(t, config.ModeProxy, New(cfg, "/ui").Mode())

	cfg.App.ViewerMode = config.ModeRender
	assert.Equal(t, config.ModeRender, New(cfg, "/ui").Mode())
}
