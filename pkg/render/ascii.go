package render

import (
	"math"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// ASCII draws g on a character grid. One cell covers the layout units set
// by [WithCell]; edges are snapped to the nearest cell.
func ASCII(g scene.Geometry, opts ...Option) string {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	col := func(v int) int { return int(math.Round(float64(v) / float64(o.cellWidth))) }
	row := func(v int) int { return int(math.Round(float64(v) / float64(o.cellHeight))) }

	c := newCanvas(max(col(g.Width), 1)+1, max(row(g.Height), 1)+1)
	c.frame(0, 0, c.cols-1, c.rows-1)

	if o.guides {
		for _, l := range lines(g) {
			ch := ':'
			if l.barrier {
				ch = '!'
			}
			if l.vertical {
				x := col(l.pos)
				for y := 1; y < c.rows-1; y++ {
					c.setBlank(x, y, ch)
				}
				continue
			}
			if !l.barrier {
				ch = '.'
			}
			y := row(l.pos)
			for x := 1; x < c.cols-1; x++ {
				c.setBlank(x, y, ch)
			}
		}
	}

	for _, b := range boxes(g) {
		x0, y0 := col(b.X), row(b.Y)
		x1, y1 := max(col(b.X+b.Width), x0+1), max(row(b.Y+b.Height), y0+1)
		c.frame(x0, y0, x1, y1)
		if !o.labels {
			continue
		}
		ly := y0 + 1
		if y1-y0 < 2 {
			ly = y0
		}
		c.text(x0+1, ly, b.label, x1-x0-1)
	}
	return c.String()
}

type canvas struct {
	cols, rows int
	cells      [][]rune
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", cols))
	}
	return c
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && y >= 0 && x < c.cols && y < c.rows {
		c.cells[y][x] = r
	}
}

func (c *canvas) setBlank(x, y int, r rune) {
	if x >= 0 && y >= 0 && x < c.cols && y < c.rows && c.cells[y][x] == ' ' {
		c.cells[y][x] = r
	}
}

func (c *canvas) frame(x0, y0, x1, y1 int) {
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '-')
		c.set(x, y1, '-')
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '|')
		c.set(x1, y, '|')
	}
	for _, p := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		c.set(p[0], p[1], '+')
	}
}

func (c *canvas) text(x, y int, s string, width int) {
	for i, r := range []rune(s) {
		if i >= width {
			break
		}
		c.set(x+i, y, r)
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for _, line := range c.cells {
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
