// Package marimo holds helpers for Marimo-format notebook sources: cell
// parsing, validation, normalization of generated code and safe embedding
// of notebook text into HTML pages.
package marimo

import (
	"regexp"
	"strings"
)

// CellMarker is the decorator that opens a cell.
const CellMarker = "@app.cell"

var defRe = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Cell is one decorated unit of a notebook.
type Cell struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Code  string `json:"code"`
}

// ParseCells splits content on CellMarker lines. The marker line itself is
// dropped, as is anything before the first marker. Content without a marker
// becomes a single cell.
func ParseCells(content string) []Cell {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var cells []Cell
	var current []string
	open := false

	flush := func() {
		if !open {
			return
		}
		cells = append(cells, newCell(len(cells), current))
		current = nil
	}

	for _, line := range lines {
		if strings.Contains(line, CellMarker) {
			flush()
			open = true
			continue
		}
		if open {
			current = append(current, line)
		}
	}
	flush()

	if len(cells) == 0 {
		return []Cell{{Index: 0, Code: content}}
	}
	return cells
}

func newCell(index int, lines []string) Cell {
	c := Cell{
		Index: index,
		Code:  strings.TrimRight(strings.Join(lines, "\n"), "\n \t"),
	}
	for _, l := range lines {
		if m := defRe.FindStringSubmatch(l); m != nil {
			c.Name = m[1]
			break
		}
		if strings.TrimSpace(l) != "" {
			break
		}
	}
	return c
}
