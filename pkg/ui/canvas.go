package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/orbweave/pkg/view"
)

// cell styles, indexed into cellStyles
const (
	cellPlain = iota
	cellLink
	cellNode
	cellFolded
	cellOnPath
	cellCursor
)

var cellStyles = []lipgloss.Style{
	lipgloss.NewStyle(),
	lipgloss.NewStyle().Foreground(ColorMuted),
	styleNode,
	styleNodeFolded,
	styleNodeOnPath,
	styleNodeCursor,
}

type cell struct {
	r     rune
	style int
}

// canvas projects diagram coordinates onto a character grid. Terminal cells
// are roughly twice as tall as wide, so the vertical scale is halved to keep
// the ring round.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	cells := make([][]cell, h)
	for i := range cells {
		cells[i] = make([]cell, w)
		for j := range cells[i] {
			cells[i][j] = cell{r: ' '}
		}
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (c *canvas) set(x, y int, r rune, style int) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, style: style}
}

// line draws a coarse link between two grid points.
func (c *canvas) line(x1, y1, x2, y2 int) {
	steps := int(math.Max(math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))))
	if steps == 0 {
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x1) + t*float64(x2-x1)))
		y := int(math.Round(float64(y1) + t*float64(y2-y1)))
		if c.cells[clampInt(y, 0, c.h-1)][clampInt(x, 0, c.w-1)].style != cellPlain {
			continue // never overdraw a node label
		}
		c.set(x, y, '·', cellLink)
	}
}

// label writes a truncated string starting at (x, y).
func (c *canvas) label(x, y int, s string, style int) {
	if y < 0 || y >= c.h {
		return
	}
	s = runewidth.Truncate(s, c.w-clampInt(x, 0, c.w), "…")
	for _, r := range s {
		if x >= c.w {
			return
		}
		if x >= 0 {
			c.cells[y][x] = cell{r: r, style: style}
		}
		x += runewidth.RuneWidth(r)
	}
}

// String renders the grid with per-run styling.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		runStyle := row[0].style
		var run strings.Builder
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle == cellPlain {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[runStyle].Render(run.String()))
			}
			run.Reset()
		}
		for _, cl := range row {
			if cl.style != runStyle {
				flush()
				runStyle = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// renderDiagram draws the snapshot into a w x h character canvas. The cursor
// node and its tree path are highlighted; folded bubbles are marked with a
// trailing +.
func renderDiagram(snap *view.Snapshot, path view.TreePath, cursorID int, w, h int, showValues bool) string {
	if snap == nil || len(snap.Nodes) == 0 || w < 4 || h < 4 {
		return ""
	}
	c := newCanvas(w, h)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range snap.Nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	spanX := math.Max(maxX-minX, 1)
	spanY := math.Max(maxY-minY, 1)

	// Leave a margin for labels hanging off the right edge.
	sx := float64(w-16) / spanX
	sy := float64(h-2) / spanY
	px := func(x float64) int { return int(math.Round((x-minX)*sx)) + 2 }
	py := func(y float64) int { return int(math.Round((y-minY)*sy)) + 1 }

	for _, l := range snap.Links {
		c.line(px(l.Source.X), py(l.Source.Y), px(l.Target.X), py(l.Target.Y))
	}

	for _, n := range snap.Nodes {
		style := cellNode
		switch {
		case n.ID == cursorID:
			style = cellCursor
		case path.Contains(n.ID):
			style = cellOnPath
		case n.HasHiddenAggregation:
			style = cellFolded
		}

		label := "● " + n.Name
		if n.HasHiddenAggregation {
			label += "+"
		}
		if showValues {
			label += " " + formatValue(snap.DisplayTotal(n.ID))
		}
		c.label(px(n.X), py(n.Y), label, style)
	}

	return c.String()
}
