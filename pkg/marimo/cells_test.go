package marimo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotebook = `import marimo as mo

app = mo.App()

@app.cell
def intro():
    mo.md("# Hello")
    return

@app.cell()
def compute():
    x = 1 + 1
    return (x,)
`

func TestParseCells(t *testing.T) {
	cells := ParseCells(sampleNotebook)
	require.Len(t, cells, 2)

	assert.Equal(t, 0, cells[0].Index)
	assert.Equal(t, "intro", cells[0].Name)
	assert.Equal(t, "def intro():\n    mo.md(\"# Hello\")\n    return", cells[0].Code)

	assert.Equal(t, 1, cells[1].Index)
	assert.Equal(t, "compute", cells[1].Name)
	assert.Contains(t, cells[1].Code, "x = 1 + 1")
	assert.NotContains(t, cells[1].Code, CellMarker)
}

func TestParseCells_NoMarker(t *testing.T) {
	cells := ParseCells("print(1)")
	require.Len(t, cells, 1)
	assert.Equal(t, "print(1)", cells[0].Code)
	assert.Empty(t, cells[0].Name)
}

func TestParseCells_CRLF(t *testing.T) {
	cells := ParseCells("@app.cell\r\ndef a():\r\n    return\r\n")
	require.Len(t, cells, 1)
	assert.Equal(t, "a", cells[0].Name)
	assert.Equal(t, "def a():\n    return", cells[0].Code)
}
