package marimo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ScriptMetadata is the PEP 723 block marimo uses to declare dependencies.
const ScriptMetadata = "# /// script\n# dependencies = [\"marimo\"]\n# ///\n"

const appHeader = "import marimo as mo\n\napp = mo.App()\n\n"

var (
	importRe = regexp.MustCompile(`(?m)^\s*import\s+marimo(\s+as\s+mo)?\s*$`)
	appRe    = regexp.MustCompile(`app\s*=\s*(mo|marimo)\.App\(`)
	cellRe   = regexp.MustCompile(`@(app|mo)\.cell`)
	fenceRe  = regexp.MustCompile("(?i)^```(?:python|py)?[ \\t]*\\n?")
	chunkRe  = regexp.MustCompile(`\n{2,}`)
	returnRe = regexp.MustCompile(`\breturn\b`)
)

// IsNotebook reports whether content has the marimo import, the app
// declaration and at least one cell decorator.
func IsNotebook(content string) bool {
	return importRe.MatchString(content) &&
		appRe.MatchString(content) &&
		cellRe.MatchString(content)
}

// StripCodeFences removes a leading ```python fence and a trailing ```
// fence from model output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceRe.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FromPlainPython wraps every blank-line separated chunk of src in its own
// cell function. Chunks without a return statement get "return None".
func FromPlainPython(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var cells []string
	for _, chunk := range chunkRe.Split(src, -1) {
		chunk = strings.Trim(chunk, "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s\ndef cell_%d():\n", CellMarker, len(cells)+1)
		for i, line := range strings.Split(chunk, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString("    " + line)
			}
		}
		if !returnRe.MatchString(chunk) {
			b.WriteString("\n    return None")
		}
		cells = append(cells, strings.TrimRight(b.String(), " \n"))
	}

	return appHeader + strings.Join(cells, "\n\n") + "\n"
}

// EnsureHeader prepends the script metadata block and the marimo
// import/app lines when they are missing.
func EnsureHeader(content string) string {
	content = strings.TrimSpace(content)
	if !importRe.MatchString(content) || !appRe.MatchString(content) {
		content = appHeader + content
	}
	if !strings.HasPrefix(content, "# /// script") {
		content = ScriptMetadata + "\n" + content
	}
	return content + "\n"
}

// Fallback builds a small runnable notebook that echoes the request. It
// stands in when the model call fails.
func Fallback(prompt, diagram, language string) string {
	body := fmt.Sprintf(`import marimo as mo

app = mo.App()


@app.cell
def setup():
    prompt = %s
    language = %s
    print("Marimo notebook initialized")
    print(f"Prompt: {prompt}")
    print(f"Language: {language}")
    return prompt, language


@app.cell
def process_diagram():
    diagram = %s
    print("Processing diagram:")
    print(diagram)
    return (diagram,)


@app.cell
def main_logic():
    print("This is a fallback notebook: AI generation failed")
    return


if __name__ == "__main__":
    app.run()`, pyQuote(prompt), pyQuote(language), pyQuote(diagram))

	return EnsureHeader(body)
}

// pyQuote renders s as a Python string literal. Go's quoting escapes are a
// subset of Python's, so the output parses the same in both.
func pyQuote(s string) string {
	return strconv.Quote(s)
}
