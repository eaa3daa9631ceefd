package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/mimic/pkg/topology"
)

// cell states, in increasing draw priority
const (
	cellEmpty = iota
	cellEdge
	cellEdgeActive
	cellEdgeInfected
	cellNode
	cellNodeActive
	cellNodeInfected
)

var cellStyles = map[int]lipgloss.Style{
	cellEdge:         lipgloss.NewStyle().Foreground(colorDim),
	cellEdgeActive:   lipgloss.NewStyle().Foreground(colorGold),
	cellEdgeInfected: lipgloss.NewStyle().Foreground(colorGreen),
	cellNode:         lipgloss.NewStyle().Foreground(colorIdle).Bold(true),
	cellNodeActive:   lipgloss.NewStyle().Foreground(colorGold).Bold(true),
	cellNodeInfected: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
}

var nodeGlyphs = map[topology.NodeType]rune{
	topology.Server:   'S',
	topology.Router:   'R',
	topology.Firewall: 'F',
	topology.Database: 'D',
	topology.Endpoint: 'E',
}

type canvas struct {
	cols, rows int
	glyphs     [][]rune
	kinds      [][]int
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows}
	c.glyphs = make([][]rune, rows)
	c.kinds = make([][]int, rows)
	for y := range rows {
		c.glyphs[y] = []rune(strings.Repeat(" ", cols))
		c.kinds[y] = make([]int, cols)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, kind int) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	if kind < c.kinds[y][x] {
		return
	}
	c.glyphs[y][x] = r
	c.kinds[y][x] = kind
}

// line draws from (x0,y0) to (x1,y1) with Bresenham's algorithm,
// leaving both end cells for the nodes.
func (c *canvas) line(x0, y0, x1, y1 int, kind int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			c.set(x, y, '·', kind)
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= c.cols; x++ {
			if x < c.cols && c.kinds[y][x] == c.kinds[y][start] {
				continue
			}
			run := string(c.glyphs[y][start:x])
			if style, ok := cellStyles[c.kinds[y][start]]; ok {
				run = style.Render(run)
			}
			b.WriteString(run)
			start = x
		}
	}
	return b.String()
}

// renderTopology scales g onto a cols×rows character grid. Infected
// nodes and links between them are green, active ones gold, the rest
// blue and grey.
func renderTopology(g *topology.Graph, marks *topology.Marks, bounds topology.Bounds, cols, rows int) string {
	cols, rows = max(cols, 10), max(rows, 5)
	c := newCanvas(cols, rows)
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = topology.DefaultBounds
	}

	nodes := g.Nodes()
	pos := make([][2]int, len(nodes))
	for i, n := range nodes {
		pos[i] = [2]int{
			n.X * (cols - 1) / bounds.Width,
			n.Y * (rows - 1) / bounds.Height,
		}
	}

	infected := func(id topology.NodeID) bool { return marks != nil && marks.IsInfected(id) }
	active := func(id topology.NodeID) bool { return marks != nil && marks.IsActive(id) }

	for _, e := range g.Edges() {
		kind := cellEdge
		switch {
		case infected(e.A) && infected(e.B):
			kind = cellEdgeInfected
		case active(e.A) && active(e.B):
			kind = cellEdgeActive
		}
		a, b := pos[e.A], pos[e.B]
		c.line(a[0], a[1], b[0], b[1], kind)
	}

	for i, n := range nodes {
		id := topology.NodeID(i)
		kind := cellNode
		switch {
		case infected(id):
			kind = cellNodeInfected
		case active(id):
			kind = cellNodeActive
		}
		c.set(pos[i][0], pos[i][1], nodeGlyphs[n.Type], kind)
	}

	return c.String()
}

func topologyLegend() string {
	return strings.Join([]string{
		cellStyles[cellNode].Render("■") + " idle",
		cellStyles[cellNodeActive].Render("■") + " active",
		cellStyles[cellNodeInfected].Render("■") + " infected",
		subtitleStyle.Render("S server  R router  F firewall  D database  E endpoint"),
	}, "   ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
