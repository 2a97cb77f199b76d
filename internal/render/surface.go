package render

import (
	"math"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/csheth/pagewise/internal/document"
)

// Points covered by one terminal cell at zoom 1.
const (
	CellWidthPt  = 6.0
	CellHeightPt = 12.0
)

// maxCanvasCells bounds one canvas allocation. A poster-sized page at zoom 1
// fits; a corrupt page box does not.
const maxCanvasCells = 1 << 22

// ErrCanvasTooLarge reports a page whose canvas would exceed maxCanvasCells.
var ErrCanvasTooLarge = errors.New("page too large to draw")

// Surface is a 2D drawing target sized in cells.
type Surface interface {
	Size() (cols, rows int)
	Plot(col, row int, text string)
}

// Canvas is a rune grid surface. It is not safe for concurrent writes; once
// painted it is only read.
type Canvas struct {
	cols  int
	rows  int
	cells [][]rune
}

// NewCanvas returns a blank canvas of the given size. Non-positive sizes are
// clamped to one cell.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return &Canvas{cols: cols, rows: rows, cells: cells}
}

// CanvasSize converts a page size in points to cells at the given zoom. It
// fails with ErrCanvasTooLarge when the result is not finite or would exceed
// the cell budget.
func CanvasSize(widthPt, heightPt, zoom float64) (int, int, error) {
	cols := math.Ceil(widthPt * zoom / CellWidthPt)
	rows := math.Ceil(heightPt * zoom / CellHeightPt)
	cells := math.Max(cols, 1) * math.Max(rows, 1)
	if math.IsNaN(cells) || cells > maxCanvasCells {
		return 0, 0, errors.Wrapf(ErrCanvasTooLarge, "%.0fx%.0f points at zoom %.2f", widthPt, heightPt, zoom)
	}
	return int(cols), int(rows), nil
}

func (c *Canvas) Size() (int, int) { return c.cols, c.rows }

// Plot writes text left to right starting at (col, row). Cells outside the
// canvas are dropped.
func (c *Canvas) Plot(col, row int, text string) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range text {
		if col >= c.cols {
			return
		}
		if col >= 0 {
			if !unicode.IsPrint(r) {
				r = ' '
			}
			c.cells[row][col] = r
		}
		col++
	}
}

// Lines returns the canvas rows with trailing blanks removed.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}

func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// Paint plots glyphs onto surface. Glyph coordinates are PDF user space with
// the origin at the bottom-left; pageHeight flips them top-down.
func Paint(surface Surface, glyphs []document.Glyph, pageHeight, zoom float64) {
	for _, g := range glyphs {
		col := int(math.Floor(g.X * zoom / CellWidthPt))
		row := int(math.Floor((pageHeight - g.Y) * zoom / CellHeightPt))
		surface.Plot(col, row, g.S)
	}
}
