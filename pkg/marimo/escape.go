package marimo

import (
	"encoding/json"
	"strings"
)

var literalEscaper = strings.NewReplacer(
	"`", `\u0060`,
	"$", `\u0024`,
	"'", `\u0027`,
)

// ScriptLiteral encodes content as a double-quoted JavaScript string literal
// that cannot terminate the surrounding script block, string or template
// literal. The result is also valid JSON and decodes back to content.
//
// encoding/json already escapes quote, backslash, control characters, <, >,
// & and U+2028/U+2029; backtick, $ and ' are escaped on top of that.
func ScriptLiteral(content string) string {
	b, err := json.Marshal(content)
	if err != nil {
		// json.Marshal cannot fail for a string
		return `""`
	}
	return literalEscaper.Replace(string(b))
}
